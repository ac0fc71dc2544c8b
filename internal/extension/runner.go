// Package extension runs extension processes: zero arguments for the
// manifest, one payload argument for a page.
package extension

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"launcher/internal/manifest"
	"launcher/internal/page"
	"launcher/internal/protocol"
)

// DefaultTimeout bounds a single extension invocation.
const DefaultTimeout = 30 * time.Second

// maxStderr is how much of an extension's stderr is kept for error reports.
const maxStderr = 4096

// ErrNoOutput is reported when an extension exits cleanly without printing anything.
var ErrNoOutput = errors.New("no output on stdout")

// Extension is a registered extension
type Extension struct {
	Name       string `yaml:"-"`
	Entrypoint string `yaml:"entrypoint"`
	Dir        string `yaml:"dir,omitempty"`
}

// Path resolves the entrypoint against Dir when it is relative.
func (e Extension) Path() string {
	if e.Dir == "" || filepath.IsAbs(e.Entrypoint) {
		return e.Entrypoint
	}
	return filepath.Join(e.Dir, e.Entrypoint)
}

// Runner spawns extension processes
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a runner. A non-positive timeout falls back to DefaultTimeout.
func NewRunner(timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{timeout: timeout, logger: logger}
}

// Run executes ext with args and returns its standard output. A non-zero exit,
// a timeout or an empty stdout is reported as *protocol.InvocationError.
func (r *Runner) Run(ctx context.Context, ext Extension, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ext.Path(), args...)
	cmd.Dir = ext.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logger := r.logger.With("extension", ext.Name, "args", len(args), "duration", time.Since(start))

	if err != nil {
		invErr := &protocol.InvocationError{
			Extension: ext.Name,
			Stderr:    tail(stderr.Bytes(), maxStderr),
			Err:       err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			invErr.ExitCode = exitErr.ExitCode()
		}
		if ctx.Err() != nil {
			invErr.Err = fmt.Errorf("timed out after %s: %w", r.timeout, ctx.Err())
		}
		logger.Warn("extension failed", "exit_code", invErr.ExitCode, "error", err)
		return nil, invErr
	}

	if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
		logger.Warn("extension printed nothing")
		return nil, &protocol.InvocationError{
			Extension: ext.Name,
			Stderr:    tail(stderr.Bytes(), maxStderr),
			Err:       ErrNoOutput,
		}
	}

	logger.Debug("extension finished", "bytes", stdout.Len())
	return stdout.Bytes(), nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}

// Process binds an extension to a runner. It satisfies manifest.Source and
// host.Invoker.
type Process struct {
	runner *Runner
	ext    Extension
}

// Bind returns a Process for ext
func (r *Runner) Bind(ext Extension) *Process {
	return &Process{runner: r, ext: ext}
}

// Extension returns the bound extension
func (p *Process) Extension() Extension { return p.ext }

// CacheKey combines the entrypoint path with its modification time, so a
// rebuilt extension gets a fresh manifest.
func (p *Process) CacheKey() string {
	path := p.ext.Path()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return path + "@" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

// ReadManifest runs the extension without arguments.
func (p *Process) ReadManifest(ctx context.Context) ([]byte, error) {
	return p.runner.Run(ctx, p.ext)
}

// Invoke runs the extension with the encoded payload as its only argument
// and decodes the page it prints.
func (p *Process) Invoke(ctx context.Context, payload manifest.Payload) (page.Page, error) {
	arg, err := manifest.EncodePayload(payload.Command, payload.Params)
	if err != nil {
		return nil, err
	}

	out, err := p.runner.Run(ctx, p.ext, string(arg))
	if err != nil {
		return nil, err
	}

	pg, err := page.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("extension %s returned an invalid page: %w", p.ext.Name, err)
	}
	return pg, nil
}
