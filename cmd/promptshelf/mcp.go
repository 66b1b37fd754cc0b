package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/mcpserver"
	"github.com/jackzampolin/promptshelf/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the prompt engine over MCP on stdio",
	Long: `Serve the prompt engine to an agent over the Model Context Protocol.

The command opens the configured override store directly (no HTTP server)
and speaks MCP on stdin/stdout. Logs go to stderr.

Tools: list_prompts, get_prompt, resolve_blocks, prompt_history,
build_composition, update_prompt. Every catalog composition is also
offered as an MCP prompt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		h, err := getHome()
		if err != nil {
			return err
		}
		cfgMgr, err := loadConfig(h)
		if err != nil {
			return err
		}
		logger := newLogger(cfgMgr.Get())

		srv, err := server.New(server.Config{
			Home:          h,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		if err := srv.Init(ctx); err != nil {
			return err
		}
		defer srv.Close()

		mcpSrv, err := mcpserver.New(srv.Services, logger)
		if err != nil {
			return err
		}
		return mcpSrv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
