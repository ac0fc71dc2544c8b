// Package rss is an example extension that lists the entries of a feed.
package rss

import (
	"context"
	"fmt"
	"io"
	"time"

	"launcher/internal/manifest"
	"launcher/internal/page"
)

// Manifest describes the extension's single command.
func Manifest() *manifest.Manifest {
	return &manifest.Manifest{
		Version:     manifest.ProtocolVersion,
		Title:       "RSS",
		Description: "Manage your RSS feeds",
		Commands: []manifest.CommandSpec{
			{
				Name:  "show",
				Title: "Show a feed",
				Mode:  manifest.ModeFilter,
				Params: []manifest.ParamSpec{
					{Name: "url", Title: "URL", Type: manifest.ParamText},
				},
			},
		},
	}
}

// Main runs the extension: no arguments prints the manifest, one argument is
// a payload answered with a page. It returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer, fetcher Fetcher, now func() time.Time) int {
	if err := run(ctx, args, stdout, fetcher, now); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func run(ctx context.Context, args []string, stdout io.Writer, fetcher Fetcher, now func() time.Time) error {
	m := Manifest()

	if len(args) == 0 {
		data, err := manifest.Encode(m)
		if err != nil {
			return err
		}
		return writeLine(stdout, data)
	}
	if len(args) > 1 {
		return fmt.Errorf("expected at most one argument, got %d", len(args))
	}

	payload, err := m.DecodePayload([]byte(args[0]))
	if err != nil {
		return err
	}

	switch payload.Command {
	case "show":
		url, _ := payload.Params["url"].(string)
		feed, err := fetcher.Fetch(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		data, err := page.Encode(BuildPage(feed, now()))
		if err != nil {
			return err
		}
		return writeLine(stdout, data)
	default:
		return fmt.Errorf("unsupported command %q", payload.Command)
	}
}

func writeLine(w io.Writer, data []byte) error {
	_, err := fmt.Fprintln(w, string(data))
	return err
}
