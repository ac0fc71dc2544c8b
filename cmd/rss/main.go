// Command rss is an example launcher extension that shows the entries of an
// RSS, Atom or JSON feed.
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"launcher/internal/rss"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := rss.Main(ctx, os.Args[1:], os.Stdout, os.Stderr, rss.NewClient(20*time.Second), time.Now)
	stop()
	os.Exit(code)
}
