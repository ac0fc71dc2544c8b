package host

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"

	"launcher/internal/page"
)

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemOpener opens targets with the OS default handler, or with a named
// application when one is given.
type SystemOpener struct{}

func (SystemOpener) Open(target string, app *page.Application) error {
	if app == nil {
		return browser.OpenURL(target)
	}

	cmd := openWith(runtime.GOOS, app.Name, target)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", app.Name, err)
	}
	// reap in the background so the launcher never waits on a GUI app
	go func() { _ = cmd.Wait() }()
	return nil
}

func openWith(goos, app, target string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", "-a", app, target)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", app, target)
	default:
		return exec.Command(app, target)
	}
}
