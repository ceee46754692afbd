// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server over the query layer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/trainload/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout; logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "trainload": {
        "command": "trainload",
        "args": ["mcp"],
        "env": { "DATABASE_URL": "sqlite:///home/me/.local/share/trainload/trainload.db" }
      }
    }
  }

AVAILABLE TOOLS:

  list_activities      Activities in a period or date range
  daily_stress         Daily stress scores
  weekly_speed_zones   Running km per speed zone, last 10 weeks
  list_sleep           Nightly sleep summaries
  range_summary        Distance, sessions, effort minutes and stress

AVAILABLE RESOURCES:

  trainload://zones     Zone boundaries and weights
  trainload://summary   This week's totals`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(queries, version)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		logger.Debug("mcp server starting", "version", version)
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
