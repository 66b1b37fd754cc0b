package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptshelf/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the promptshelf server",
	Long: `Start the promptshelf HTTP server.

The override store is chosen by storage.backend in the config:
  sqlite  - embedded database at storage.sqlite_path (default)
  defra   - DefraDB, started in Docker unless defra.url is set
  memory  - in process, edits are lost on shutdown

Editing the config file while the server runs reloads the catalog.

The server provides:
  - /health       - Basic server health check
  - /ready        - Readiness check (includes the override store)
  - /api/...      - Prompt, block, library and composition endpoints
  - /swagger      - API documentation

Examples:
  promptshelf serve                    # Start on default port 8080
  promptshelf serve --port 3000        # Start on custom port
  promptshelf serve --host 0.0.0.0     # Bind to all interfaces`,
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
		if used := cfgMgr.ConfigFileUsed(); used != "" {
			logger.Info("loaded config", "path", used)
			cfgMgr.WatchConfig()
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			Home:          h,
			ConfigManager: cfgMgr,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")

	rootCmd.AddCommand(serveCmd)
}
