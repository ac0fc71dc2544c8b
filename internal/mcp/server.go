// Package mcp exposes extension commands as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"launcher/internal/host"
	"launcher/internal/manifest"
	"launcher/internal/page"
)

const serverName = "launcher"

// runToolName is the built-in tool that sends a raw payload to any extension.
const runToolName = "run_extension"

// Extension is a loaded extension the server can call
type Extension struct {
	Name     string
	Manifest *manifest.Manifest
	Invoker  host.Invoker
}

// Server is the MCP server
type Server struct {
	mcpServer  *server.MCPServer
	extensions map[string]Extension
	tools      []Tool
	logger     *slog.Logger
}

// NewServer registers one tool per extension command plus run_extension.
func NewServer(extensions []Extension, version string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(false),
		),
		extensions: make(map[string]Extension, len(extensions)),
		logger:     logger,
	}

	for _, ext := range extensions {
		s.extensions[ext.Name] = ext
		for _, tool := range buildTools(ext.Name, ext.Manifest) {
			if err := s.register(tool); err != nil {
				return nil, err
			}
		}
	}

	if err := s.registerRunTool(); err != nil {
		return nil, err
	}

	return s, nil
}

// Tools returns the generated extension tools
func (s *Server) Tools() []Tool {
	return s.tools
}

// Run serves MCP on stdio until stdin closes
func (s *Server) Run() error {
	s.logger.Info("serving MCP on stdio", "tools", len(s.tools)+1)
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) register(tool Tool) error {
	schemaJSON, err := tool.schemaJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal schema for tool %s: %w", tool.Name, err)
	}
	s.mcpServer.AddTool(mcp.NewToolWithRawSchema(tool.Name, tool.Description, schemaJSON), s.toolHandler(tool))
	s.tools = append(s.tools, tool)
	return nil
}

func (s *Server) toolHandler(tool Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := arguments(request)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		return s.call(ctx, tool.extension, tool.spec.Name, tool.spec.WithDefaults(args)), nil
	}
}

func (s *Server) registerRunTool() error {
	schema := InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"extension": {Type: "string", Description: "Registered extension name"},
			"command":   {Type: "string", Description: "Command name from the extension's manifest"},
			"params":    {Type: "object", Description: "Params passed to the command"},
		},
		Required: []string{"extension", "command"},
	}
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return err
	}

	tool := mcp.NewToolWithRawSchema(runToolName,
		"Invoke any command of a registered extension with a raw payload. Returns the resulting page as JSON.",
		schemaJSON)

	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := arguments(request)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		name, _ := args["extension"].(string)
		command, _ := args["command"].(string)
		params, _ := args["params"].(map[string]any)
		return s.call(ctx, name, command, params), nil
	})
	return nil
}

// call validates and invokes one command; failures become tool errors so the
// client sees them as results rather than protocol errors.
func (s *Server) call(ctx context.Context, extName, command string, params map[string]any) *mcp.CallToolResult {
	ext, ok := s.extensions[extName]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown extension %q", extName))
	}
	if params == nil {
		params = map[string]any{}
	}

	payload := manifest.Payload{Command: command, Params: params}
	if err := ext.Manifest.ValidatePayload(payload); err != nil {
		return mcp.NewToolResultError(err.Error())
	}

	s.logger.Debug("calling extension", "extension", extName, "command", command)
	p, err := ext.Invoker.Invoke(ctx, payload)
	if err != nil {
		s.logger.Warn("tool call failed", "extension", extName, "command", command, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err))
	}

	data, err := page.Encode(p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func arguments(request mcp.CallToolRequest) (map[string]any, error) {
	raw, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return nil, err
	}
	args := map[string]any{}
	if string(raw) == "null" {
		return args, nil
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}
