package manifest

import "encoding/json"

// ProtocolVersion is the newest protocol version this host understands.
// Manifests that omit a version are treated as version 1.
const ProtocolVersion = 1

// Manifest is the root structure an extension prints when run without arguments
type Manifest struct {
	Version     int           `json:"version,omitempty" yaml:"version,omitempty"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Commands    []CommandSpec `json:"commands" yaml:"commands"`
}

// MarshalJSON emits an empty commands array rather than null.
func (m Manifest) MarshalJSON() ([]byte, error) {
	type alias Manifest
	if m.Commands == nil {
		m.Commands = []CommandSpec{}
	}
	return json.Marshal(alias(m))
}

// Mode tells the host how to present a command's output. The set is open:
// unknown modes are accepted and treated like ModeView.
type Mode string

const (
	ModeFilter Mode = "filter"
	ModeView   Mode = "view"
	ModeNoView Mode = "no-view"
)

// CommandSpec defines a single extension command
type CommandSpec struct {
	Name   string      `json:"name" yaml:"name"`
	Title  string      `json:"title" yaml:"title"`
	Mode   Mode        `json:"mode" yaml:"mode"`
	Params []ParamSpec `json:"params,omitempty" yaml:"params,omitempty"`
}

// ParamType is the declared type of a command parameter
type ParamType string

const (
	ParamText    ParamType = "text"
	ParamBoolean ParamType = "boolean"
	ParamNumber  ParamType = "number"
)

// ParamSpec defines a single command parameter. A param is required unless
// it is marked optional or carries a default.
type ParamSpec struct {
	Name     string    `json:"name" yaml:"name"`
	Title    string    `json:"title" yaml:"title"`
	Type     ParamType `json:"type" yaml:"type"`
	Optional bool      `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default  any       `json:"default,omitempty" yaml:"default,omitempty"`
}

// Required reports whether the param must be present in a payload.
func (p ParamSpec) Required() bool {
	return !p.Optional && p.Default == nil
}

// EffectiveVersion returns the declared protocol version, defaulting to 1.
func (m *Manifest) EffectiveVersion() int {
	if m.Version == 0 {
		return 1
	}
	return m.Version
}

// Command looks up a command by name.
func (m *Manifest) Command(name string) (CommandSpec, bool) {
	for _, cmd := range m.Commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return CommandSpec{}, false
}

// CommandNames returns command names in declaration order.
func (m *Manifest) CommandNames() []string {
	names := make([]string, len(m.Commands))
	for i, cmd := range m.Commands {
		names[i] = cmd.Name
	}
	return names
}

// Param looks up a parameter by name.
func (c CommandSpec) Param(name string) (ParamSpec, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// MissingParams returns the required params absent from params, in declaration order.
func (c CommandSpec) MissingParams(params map[string]any) []ParamSpec {
	var missing []ParamSpec
	for _, p := range c.Params {
		if _, ok := params[p.Name]; !ok && p.Required() {
			missing = append(missing, p)
		}
	}
	return missing
}
