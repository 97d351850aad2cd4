package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/shiftparse/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shiftparse server",
	Long: `Start the shiftparse HTTP server.

The server holds one extraction session: one upload is processed at a time
and the last successful schedule stays available until it is cleared or
replaced. Prompt overrides in the config file are reloaded on change.

The server provides:
  - /health                      - Basic server health check
  - /status                      - Service and session state
  - /api/schedules/extract       - Upload a PDF roster (multipart)
  - /api/schedules/current       - Current schedule (GET, DELETE)
  - /api/schedules/current/xlsx  - Current schedule as a spreadsheet
  - /swagger                     - API documentation

Examples:
  shiftparse serve                    # Start on the configured port (default 8080)
  shiftparse serve --port 3000        # Start on custom port
  shiftparse serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, h, err := loadConfig()
		if err != nil {
			return err
		}
		c := mgr.Get()
		logger := newLogger(c)

		if err := h.EnsureExists(); err != nil {
			return err
		}

		host, port := c.Server.Host, c.Server.Port
		if cmd.Flags().Changed("host") {
			host = serveHost
		}
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: mgr,
			Resolver:      newResolver(c, logger),
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		if mgr.ConfigFile() != "" {
			mgr.WatchConfig()
			logger.Info("watching config file", "path", mgr.ConfigFile())
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
