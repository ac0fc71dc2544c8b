package manifest

import (
	"encoding/json"
	"fmt"

	"launcher/internal/protocol"
)

const document = "manifest"

// Decode parses and validates a manifest document. Failures are reported as
// *protocol.ParseError or *protocol.SchemaError.
func Decode(data []byte) (*Manifest, error) {
	raw, err := protocol.Validate(protocol.KindManifest, data)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &protocol.ParseError{Document: document, Err: err}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Encode validates and normalizes m, then serializes it. The output is
// checked against the manifest schema so that anything Encode returns is
// accepted by Decode.
func Encode(m *Manifest) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if _, err := protocol.Validate(protocol.KindManifest, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Validate checks the rules the schema cannot express: unique command names,
// unique param names per command, known param types and well-typed defaults.
//
// It also normalizes m in place: Commands is never nil, empty Params become
// nil and numeric defaults are stored as float64, matching what Decode
// produces.
func (m *Manifest) Validate() error {
	if m.Version < 0 {
		return protocol.NewSchemaError(document, "version", "must be positive")
	}
	if m.EffectiveVersion() > ProtocolVersion {
		return protocol.NewSchemaError(document, "version",
			"protocol version %d is newer than the supported version %d", m.Version, ProtocolVersion)
	}

	if m.Commands == nil {
		m.Commands = []CommandSpec{}
	}

	commands := make(map[string]int, len(m.Commands))
	for i := range m.Commands {
		cmd := &m.Commands[i]
		if cmd.Name == "" {
			return protocol.NewSchemaError(document, protocol.JoinPath("commands", i, "name"), "must not be empty")
		}
		if cmd.Mode == "" {
			return protocol.NewSchemaError(document, protocol.JoinPath("commands", i, "mode"), "must not be empty")
		}
		if len(cmd.Params) == 0 {
			cmd.Params = nil
		}
		if first, ok := commands[cmd.Name]; ok {
			return protocol.NewSchemaError(document, protocol.JoinPath("commands", i, "name"),
				"duplicate command name %q (first declared at commands[%d])", cmd.Name, first)
		}
		commands[cmd.Name] = i

		params := make(map[string]int, len(cmd.Params))
		for j := range cmd.Params {
			p := &cmd.Params[j]
			path := protocol.JoinPath("commands", i, "params", j)
			if p.Name == "" {
				return protocol.NewSchemaError(document, protocol.JoinPath(path, "name"), "must not be empty")
			}
			if first, ok := params[p.Name]; ok {
				return protocol.NewSchemaError(document, protocol.JoinPath(path, "name"),
					"duplicate param name %q (first declared at params[%d])", p.Name, first)
			}
			params[p.Name] = j

			if !p.Type.Known() {
				return protocol.NewSchemaError(document, protocol.JoinPath(path, "type"),
					"unknown param type %q", p.Type)
			}
			if p.Default != nil {
				if err := p.Check(p.Default); err != nil {
					return protocol.NewSchemaError(document, protocol.JoinPath(path, "default"), "%v", err)
				}
				if p.Type == ParamNumber {
					n, err := toFloat(p.Default)
					if err != nil {
						return protocol.NewSchemaError(document, protocol.JoinPath(path, "default"), "%v", err)
					}
					p.Default = n
				}
			}
		}
	}

	return nil
}

// Known reports whether t is one of the recognized param types.
func (t ParamType) Known() bool {
	switch t {
	case ParamText, ParamBoolean, ParamNumber:
		return true
	}
	return false
}

// Check reports whether value matches the param's declared type.
func (p ParamSpec) Check(value any) error {
	switch p.Type {
	case ParamText:
		if _, ok := value.(string); ok {
			return nil
		}
	case ParamBoolean:
		if _, ok := value.(bool); ok {
			return nil
		}
	case ParamNumber:
		switch value.(type) {
		case float64, float32, int, int64, int32, json.Number:
			return nil
		}
	default:
		return fmt.Errorf("unknown param type %q", p.Type)
	}
	return fmt.Errorf("expected %s, got %s", p.Type, describe(value))
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, fmt.Errorf("expected number, got %s", describe(v))
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "text"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
