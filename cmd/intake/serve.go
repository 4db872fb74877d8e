package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brotwerk/intake/internal/config"
	"github.com/brotwerk/intake/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake server",
	Long: `Start the intake HTTP server.

The server provides:
  - /health and /status checks
  - /api/v1/images/extract      - Extract orders from a photographed slip
  - /api/v1/transcripts/extract - Extract orders from transcribed text
  - /api/v1/audio/extract       - Transcribe a recording and extract orders
  - /api/v1/prompt-config       - Read or replace the extraction prompt

Configuration is hot-reloaded: edits to the config file update the
provider registry without a restart.

Examples:
  intake serve                   # Start on default port 8080
  intake serve --port 3000       # Start on custom port
  intake serve --host 0.0.0.0    # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfgMgr.WatchConfig()

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
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
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")

	rootCmd.AddCommand(serveCmd)
}
