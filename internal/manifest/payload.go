package manifest

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"

	"launcher/internal/protocol"
)

const payloadDocument = "payload"

// Payload is the invocation input handed to an extension as its sole argument.
// Params keeps every key it was given, including ones the command does not declare.
type Payload struct {
	Command string         `json:"command"`
	Params  map[string]any `json:"params"`
}

// EncodePayload serializes a payload. A nil params map encodes as {}.
func EncodePayload(command string, params map[string]any) ([]byte, error) {
	if command == "" {
		return nil, protocol.NewSchemaError(payloadDocument, "command", "must not be empty")
	}
	if params == nil {
		params = map[string]any{}
	}
	return json.Marshal(Payload{Command: command, Params: params})
}

// DecodePayload parses a payload without checking it against a manifest.
func DecodePayload(data []byte) (Payload, error) {
	raw, err := protocol.Validate(protocol.KindPayload, data)
	if err != nil {
		return Payload{}, err
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, &protocol.ParseError{Document: payloadDocument, Err: err}
	}
	if p.Params == nil {
		p.Params = map[string]any{}
	}
	return p, nil
}

// DecodePayload parses a payload and checks it against the manifest's
// declared command and param types.
func (m *Manifest) DecodePayload(data []byte) (Payload, error) {
	p, err := DecodePayload(data)
	if err != nil {
		return Payload{}, err
	}
	if err := m.ValidatePayload(p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// ValidatePayload checks that the command exists, declared params carry
// values of the declared type, and required params are present. Undeclared
// params are allowed and left untouched.
func (m *Manifest) ValidatePayload(p Payload) error {
	cmd, ok := m.Command(p.Command)
	if !ok {
		msg := fmt.Sprintf("unknown command %q", p.Command)
		if suggestion := Suggest(p.Command, m.CommandNames()); suggestion != "" {
			msg += fmt.Sprintf(", did you mean %q?", suggestion)
		}
		return &protocol.SchemaError{Document: payloadDocument, Path: "command", Message: msg}
	}

	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		spec, ok := cmd.Param(name)
		if !ok {
			continue
		}
		if err := spec.Check(p.Params[name]); err != nil {
			return protocol.NewSchemaError(payloadDocument, protocol.JoinPath("params", name), "%v", err)
		}
	}

	if missing := cmd.MissingParams(p.Params); len(missing) > 0 {
		return protocol.NewSchemaError(payloadDocument, protocol.JoinPath("params", missing[0].Name),
			"missing required param %q for command %q", missing[0].Name, cmd.Name)
	}

	return nil
}

// WithDefaults returns a copy of params with declared defaults filled in.
func (c CommandSpec) WithDefaults(params map[string]any) map[string]any {
	out := make(map[string]any, len(params)+len(c.Params))
	for _, p := range c.Params {
		if p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	for k, v := range params {
		out[k] = v
	}
	return out
}

// Suggest returns the candidate closest to name, or "" if none is close enough.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := len(name)/2 + 2
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
