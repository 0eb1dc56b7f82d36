package main

import (
	"github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/stepwise/internal/app"
	mcptools "github.com/felixgeelhaar/stepwise/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server for AI agent integration.

Available tools:
  - stepwise_status   Show each step and the active run
  - stepwise_apply    Apply every pending step (requires confirm=true)
  - stepwise_resume   Continue an interrupted run
  - stepwise_stop     Stop the active run

Examples:
  stepwise mcp                     # Start stdio MCP server
  stepwise mcp --http :8080        # Start HTTP MCP server
  stepwise mcp --plan setup.yaml   # Use a specific plan by default`,
	RunE: runMCP,
}

var mcpHTTP string

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "stepwise",
		Version: version,
	})

	mcptools.RegisterAll(srv, cfg, mcptools.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
	}, app.WithLogger(newLogger(cfg)))

	if mcpHTTP != "" {
		return mcp.ServeHTTP(ctx, srv, mcpHTTP)
	}
	return mcp.ServeStdio(ctx, srv)
}
