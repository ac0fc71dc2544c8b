package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"launcher/internal/manifest"
)

// InputSchema is the JSON Schema of a tool's arguments
type InputSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Tool is one extension command exposed over MCP
type Tool struct {
	Name        string
	Description string
	Schema      InputSchema

	extension string
	spec      manifest.CommandSpec
}

// ToolName joins extension and command names into a valid MCP tool name.
func ToolName(extension, command string) string {
	name := extension + "_" + command
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

func buildTools(extension string, m *manifest.Manifest) []Tool {
	tools := make([]Tool, 0, len(m.Commands))
	for _, cmd := range m.Commands {
		tool := Tool{
			Name:        ToolName(extension, cmd.Name),
			Description: describeCommand(m, cmd),
			Schema: InputSchema{
				Type:       "object",
				Properties: make(map[string]Property, len(cmd.Params)),
				// Extensions receive undeclared params untouched.
				AdditionalProperties: true,
			},
			extension: extension,
			spec:      cmd,
		}

		for _, p := range cmd.Params {
			tool.Schema.Properties[p.Name] = Property{
				Type:        mapType(p.Type),
				Description: p.Title,
				Default:     p.Default,
			}
			if p.Required() {
				tool.Schema.Required = append(tool.Schema.Required, p.Name)
			}
		}

		tools = append(tools, tool)
	}
	return tools
}

func describeCommand(m *manifest.Manifest, cmd manifest.CommandSpec) string {
	desc := fmt.Sprintf("%s: %s", m.Title, cmd.Title)
	if m.Description != "" {
		desc += ". " + m.Description
	}
	return desc + ". Returns the resulting page as JSON."
}

func mapType(t manifest.ParamType) string {
	switch t {
	case manifest.ParamBoolean:
		return "boolean"
	case manifest.ParamNumber:
		return "number"
	default:
		return "string"
	}
}

func (t Tool) schemaJSON() ([]byte, error) {
	return json.Marshal(t.Schema)
}
