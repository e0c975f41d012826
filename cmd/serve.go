package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nordlys-media/veracity/internal/bootstrap"
	"github.com/nordlys-media/veracity/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP server",
	Long: `Serve starts the HTTP server with the analysis endpoint, health and
readiness checks, and Prometheus metrics. The server runs until interrupted
and shuts down gracefully.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	comps, err := bootstrap.NewHTTPComponents(cfg, logger)
	if err != nil {
		return fmt.Errorf("assemble components: %w", err)
	}

	if err := comps.Server.RunWithGracefulShutdown(cmd.Context()); err != nil {
		logger.Error("Server exited with error", logging.Error(err))
		return err
	}
	return nil
}
