package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/serverboard"
	"github.com/jpalmerr/serverboard/config"
)

const (
	shutdownTimeout = 10 * time.Second
)

// newServeCmd starts the serverboard dashboard server.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start the serverboard dashboard server.

The server will:
  - Load configuration from the specified YAML file (or the defaults)
  - Serve the dashboard UI on the configured port
  - Load the server list from the backend
  - Reload it every refresh_interval, if set

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  serverboard serve -c config.yaml
  serverboard serve --api-url http://backend:8080 --port 8000`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "dashboard port (overrides config)")
	cmd.Flags().String("title", "", "dashboard title (overrides config)")
	cmd.Flags().Duration("refresh", 0, "auto-refresh interval, 0 disables (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("title") {
		cfg.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("refresh") {
		d, _ := cmd.Flags().GetDuration("refresh")
		cfg.RefreshInterval = config.Duration(d)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg.Log, os.Stderr)

	logger.Info("config loaded",
		"api_url", cfg.API.URL,
		"timeout", cfg.API.Timeout.Duration().String(),
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"refresh_interval", cfg.RefreshInterval.Duration().String(),
	)

	client, err := config.BuildClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}
	defer client.Close()

	d, err := serverboard.New(client, config.DashboardOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, d, logger)
}

// serve runs the dashboard until ctx is cancelled, bounding the wait for a
// graceful shutdown.
func serve(ctx context.Context, d *serverboard.Dashboard, logger *slog.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
