package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tubechat/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run MCP server for TubeChat",
	Long: `Run a Model Context Protocol (MCP) server that exposes TubeChat as tools.

The MCP server provides two tools:
- summarize_video: fetch, summarize, and cache a YouTube video
- ask_video: answer a question about the session's last video

Summaries and conversation history are stored in the same database the
other transports use.

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  tubechat mcp

  # Run MCP server with HTTP transport on port 8080
  tubechat mcp --transport=http --port=8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyModelFlag(cmd); err != nil {
			return err
		}
		if err := internal.ValidateAPIRequirements(config); err != nil {
			return err
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "http" {
			return fmt.Errorf("unknown transport %q (valid: stdio, http)", transport)
		}

		ctx := cmd.Context()
		app, err := internal.NewApp(ctx, config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		mcpServer := internal.NewMCPServer(app.Session(), config.DefaultLanguage)

		if transport == "http" {
			logger.Info("starting MCP server", "transport", "http", "port", port)
		} else {
			logger.Info("starting MCP server", "transport", "stdio")
		}

		// Blocks until the context is cancelled.
		return mcpServer.Start(ctx, transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	mcpCmd.Flags().StringP("model", "m", "", "OpenAI model to use")
	rootCmd.AddCommand(mcpCmd)
}
