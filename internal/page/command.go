package page

import (
	"bytes"
	"encoding/json"
	"runtime"

	"launcher/internal/protocol"
)

// CommandType is the discriminant of a Command
type CommandType string

const (
	CommandCopy   CommandType = "copy"
	CommandOpen   CommandType = "open"
	CommandRun    CommandType = "run"
	CommandReload CommandType = "reload"
	CommandPop    CommandType = "pop"
	CommandExit   CommandType = "exit"
)

// Command is the effect of an action: one of *Copy, *Open, *Run, *Reload,
// *Pop or *Exit.
type Command interface {
	CommandType() CommandType
	isCommand()
}

// Copy places Text on the clipboard.
type Copy struct {
	Text string `json:"text"`
	Exit bool   `json:"exit,omitempty"`
}

// Open opens Target (a URL or path) with the default or a specific application.
type Open struct {
	Target string       `json:"target"`
	Apps   Applications `json:"app,omitempty"`
	Exit   bool         `json:"exit,omitempty"`
}

// Run invokes another command of the same extension and pushes the result.
type Run struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params,omitempty"`
}

// Reload re-invokes the current command. Params replace the previous
// invocation's params entirely; they are never merged.
type Reload struct {
	Params map[string]any `json:"params,omitempty"`
}

// Pop removes the current page, optionally refreshing the one below it.
type Pop struct {
	Reload bool `json:"reload,omitempty"`
}

// Exit ends the session.
type Exit struct{}

func (*Copy) CommandType() CommandType   { return CommandCopy }
func (*Open) CommandType() CommandType   { return CommandOpen }
func (*Run) CommandType() CommandType    { return CommandRun }
func (*Reload) CommandType() CommandType { return CommandReload }
func (*Pop) CommandType() CommandType    { return CommandPop }
func (*Exit) CommandType() CommandType   { return CommandExit }

func (*Copy) isCommand()   {}
func (*Open) isCommand()   {}
func (*Run) isCommand()    {}
func (*Reload) isCommand() {}
func (*Pop) isCommand()    {}
func (*Exit) isCommand()   {}

func (c Copy) MarshalJSON() ([]byte, error) {
	type alias Copy
	return marshalTagged(CommandCopy, alias(c))
}

func (o Open) MarshalJSON() ([]byte, error) {
	type alias Open
	return marshalTagged(CommandOpen, alias(o))
}

func (r Run) MarshalJSON() ([]byte, error) {
	type alias Run
	return marshalTagged(CommandRun, alias(r))
}

func (r Reload) MarshalJSON() ([]byte, error) {
	type alias Reload
	return marshalTagged(CommandReload, alias(r))
}

func (p Pop) MarshalJSON() ([]byte, error) {
	type alias Pop
	return marshalTagged(CommandPop, alias(p))
}

func (Exit) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]CommandType{"type": CommandExit})
}

// marshalTagged encodes v and prepends a "type" member.
func marshalTagged[T ~string](tag T, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head, err := json.Marshal(map[string]T{"type": tag})
	if err != nil {
		return nil, err
	}
	if bytes.Equal(body, []byte("{}")) {
		return head, nil
	}

	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

func decodeCommand(data json.RawMessage) (Command, error) {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, protocol.NewSchemaError(document, "onAction", "missing required field %q", "onAction")
	}

	var head struct {
		Type CommandType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var cmd Command
	switch head.Type {
	case CommandCopy:
		cmd = &Copy{}
	case CommandOpen:
		cmd = &Open{}
	case CommandRun:
		cmd = &Run{}
	case CommandReload:
		cmd = &Reload{}
	case CommandPop:
		cmd = &Pop{}
	case CommandExit:
		return &Exit{}, nil
	default:
		return nil, protocol.NewSchemaError(document, "onAction.type", "unknown command type %q", head.Type)
	}

	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Platform scopes an Application to an operating system
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMac     Platform = "mac"
	PlatformLinux   Platform = "linux"
)

// CurrentPlatform maps the running OS to a Platform; other systems map to "".
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMac
	case "linux":
		return PlatformLinux
	}
	return ""
}

// Application names a program used to open a target
type Application struct {
	Name     string   `json:"name"`
	Platform Platform `json:"platform,omitempty"`
}

// Applications is the "app" member of Open, written on the wire as either a
// single object or an array.
type Applications []Application

func (a Applications) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]Application(a))
}

func (a *Applications) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("{")) {
		var app Application
		if err := json.Unmarshal(data, &app); err != nil {
			return err
		}
		*a = Applications{app}
		return nil
	}

	var apps []Application
	if err := json.Unmarshal(data, &apps); err != nil {
		return err
	}
	*a = apps
	return nil
}

// Resolve picks the application for platform: an entry scoped to it if one
// exists, else the first unscoped entry. ok is false when the system default
// opener should be used.
func (a Applications) Resolve(platform Platform) (Application, bool) {
	for _, app := range a {
		if app.Platform != "" && app.Platform == platform {
			return app, true
		}
	}
	for _, app := range a {
		if app.Platform == "" {
			return app, true
		}
	}
	return Application{}, false
}
