// Package host holds the host side of the protocol: the navigation stack and
// the dispatcher that applies an action's command to it.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"launcher/internal/manifest"
	"launcher/internal/page"
)

// ErrExited is returned by Dispatch once the session has ended.
var ErrExited = errors.New("session has exited")

// State of a session
type State int

const (
	StateRunning State = iota
	StateExited
)

func (s State) String() string {
	if s == StateExited {
		return "exited"
	}
	return "running"
}

// Invoker runs the extension with a payload and decodes the page it prints.
type Invoker interface {
	Invoke(ctx context.Context, payload manifest.Payload) (page.Page, error)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// Opener opens a URL or path, with a specific application when app is set.
type Opener interface {
	Open(target string, app *page.Application) error
}

// Frame is one entry of the navigation stack: the page and the invocation
// that produced it.
type Frame struct {
	Command string
	Params  map[string]any
	Page    page.Page
}

// Dispatcher owns a navigation stack and applies commands to it. It is not
// safe for concurrent use; a host drives it from a single goroutine.
type Dispatcher struct {
	id        string
	invoker   Invoker
	clipboard Clipboard
	opener    Opener
	platform  page.Platform
	logger    *slog.Logger
	manifest  *manifest.Manifest

	stack []Frame
	state State
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithPlatform overrides the platform used to resolve Open applications.
func WithPlatform(p page.Platform) Option {
	return func(d *Dispatcher) { d.platform = p }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithManifest validates every payload against m before the extension is
// invoked, so Run and Reload commands naming unknown commands or carrying
// mistyped params fail without running anything.
func WithManifest(m *manifest.Manifest) Option {
	return func(d *Dispatcher) { d.manifest = m }
}

// NewDispatcher creates a running session with an empty stack.
func NewDispatcher(invoker Invoker, clipboard Clipboard, opener Opener, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		id:        uuid.NewString(),
		invoker:   invoker,
		clipboard: clipboard,
		opener:    opener,
		platform:  page.CurrentPlatform(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("session", d.id)
	return d
}

// State returns the session state.
func (d *Dispatcher) State() State { return d.state }

// Depth returns the number of pages on the stack.
func (d *Dispatcher) Depth() int { return len(d.stack) }

// Top returns the current frame.
func (d *Dispatcher) Top() (Frame, bool) {
	if len(d.stack) == 0 {
		return Frame{}, false
	}
	return d.stack[len(d.stack)-1], true
}

// Dispatch performs exactly one command. On error the stack is left as it
// was before the call, except for side effects that already happened. A Pop
// whose reload fails keeps the popped page.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd page.Command) error {
	if d.state == StateExited {
		return ErrExited
	}

	d.logger.Debug("dispatching command", "type", cmd.CommandType(), "depth", len(d.stack))

	switch c := cmd.(type) {
	case *page.Copy:
		if err := d.clipboard.WriteAll(c.Text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		if c.Exit {
			d.exit()
		}
		return nil

	case *page.Open:
		var app *page.Application
		if resolved, ok := c.Apps.Resolve(d.platform); ok {
			app = &resolved
		}
		if err := d.opener.Open(c.Target, app); err != nil {
			return fmt.Errorf("failed to open %s: %w", c.Target, err)
		}
		if c.Exit {
			d.exit()
		}
		return nil

	case *page.Run:
		return d.push(ctx, c.Command, c.Params)

	case *page.Reload:
		top, ok := d.Top()
		if !ok {
			return errors.New("nothing to reload: navigation stack is empty")
		}
		return d.replaceTop(ctx, top.Command, c.Params)

	case *page.Pop:
		if len(d.stack) <= 1 {
			d.stack = d.stack[:0]
			d.exit()
			return nil
		}
		popped := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		if c.Reload {
			top, _ := d.Top()
			if err := d.replaceTop(ctx, top.Command, top.Params); err != nil {
				d.stack = append(d.stack, popped)
				return err
			}
		}
		return nil

	case *page.Exit:
		d.exit()
		return nil

	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
}

// Push invokes command and pushes the resulting page. It is how a session
// starts: Push on an empty stack yields depth 1.
func (d *Dispatcher) Push(ctx context.Context, command string, params map[string]any) error {
	if d.state == StateExited {
		return ErrExited
	}
	return d.push(ctx, command, params)
}

func (d *Dispatcher) push(ctx context.Context, command string, params map[string]any) error {
	frame, err := d.invoke(ctx, command, params)
	if err != nil {
		return err
	}
	d.stack = append(d.stack, frame)
	return nil
}

// replaceTop re-invokes command with params, which replace the previous
// params of the top frame outright.
func (d *Dispatcher) replaceTop(ctx context.Context, command string, params map[string]any) error {
	frame, err := d.invoke(ctx, command, params)
	if err != nil {
		return err
	}
	d.stack[len(d.stack)-1] = frame
	return nil
}

func (d *Dispatcher) invoke(ctx context.Context, command string, params map[string]any) (Frame, error) {
	params = maps.Clone(params)
	if params == nil {
		params = map[string]any{}
	}

	payload := manifest.Payload{Command: command, Params: params}
	if d.manifest != nil {
		if err := d.manifest.ValidatePayload(payload); err != nil {
			return Frame{}, err
		}
	}

	p, err := d.invoker.Invoke(ctx, payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Command: command, Params: params, Page: p}, nil
}

func (d *Dispatcher) exit() {
	d.state = StateExited
	d.logger.Debug("session exited")
}
