package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xvierd/fuzzle/internal/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server for integration with AI assistants.
The server provides read-only tools for study sessions and points.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !app.config.MCP.Enabled {
			return fmt.Errorf("the MCP server is disabled (set mcp.enabled = true in the config)")
		}

		// stdout carries the protocol.
		stderr := cmd.ErrOrStderr()
		fmt.Fprintln(stderr, "🚀 Starting MCP server...")
		fmt.Fprintln(stderr, "   The server will communicate via stdio")
		fmt.Fprintln(stderr, "   Press Ctrl+C to stop")

		ctx := setupSignalHandler()
		app.logger.Info("mcp server starting")

		server := mcp.NewServer(app.history, Version)
		defer func() { _ = server.Stop() }()
		if err := server.Start(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	},
}
