package cmd

import (
	"github.com/spf13/cobra"

	"launcher/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for AI assistant integration",
	Long: `Run the Model Context Protocol (MCP) server on stdio. Every command of every
registered extension becomes a tool whose arguments are the command's params.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	var exts []mcp.Extension
	for _, ext := range a.loadExtensions(contextOf(cmd)) {
		exts = append(exts, mcp.Extension{
			Name:     ext.process.Extension().Name,
			Manifest: ext.manifest,
			Invoker:  ext.process,
		})
	}

	server, err := mcp.NewServer(exts, Version, logger)
	if err != nil {
		return err
	}

	return server.Run()
}
