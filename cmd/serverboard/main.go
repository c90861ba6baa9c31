// Package main is the entry point for the serverboard CLI.
//
// Serverboard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach,
// plus one-shot commands that drive the backend from a terminal.
//
// Usage:
//
//	serverboard serve -c config.yaml      # Start the dashboard
//	serverboard validate -c config.yaml   # Validate configuration
//	serverboard list --status up          # Print the server table
//	serverboard ping 192.168.1.160        # Ping one server
//	serverboard save --name db --ip 10.0.0.5
//	serverboard delete 4
//	serverboard report --format xls -o servers.xls
//	serverboard version                   # Show version info
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/serverboard/config"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "serverboard",
		Short: "A dashboard for a server-management backend",
		Long: `Serverboard is a web dashboard for a server-management REST backend.

It lists servers, pings them to refresh their status, filters them by
status, creates and deletes them, and exports the table as a report.
Every state change is pushed to the browser with Server-Sent Events.

Quick start:
  1. Point it at the backend: export SERVERBOARD_API_URL=http://localhost:8080
  2. Run: serverboard serve
  3. Open http://localhost:4200 in your browser

Example config:
  title: Server Manager
  port: 4200
  refresh_interval: 30s
  api:
    url: ${SERVERBOARD_API_URL:-http://localhost:8080}
    timeout: 5s`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "path to config file")
	flags.String("api-url", "", "backend base URL (overrides config)")
	flags.Duration("timeout", 0, "per-request backend timeout (overrides config)")
	flags.StringSlice("env-file", nil, "dotenv files to load before reading config")

	root.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newValidateCmd(),
		newListCmd(),
		newPingCmd(),
		newSaveCmd(),
		newDeleteCmd(),
		newReportCmd(),
	)
	return root
}

// newVersionCmd prints version information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of this serverboard binary.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "serverboard %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
		},
	}
}

// loadConfig reads the config named by --config (or the defaults), after
// loading any --env-file, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	var cfg *config.Config
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
		if url, ok := os.LookupEnv("SERVERBOARD_API_URL"); ok && url != "" {
			cfg.API.URL = url
		}
	}

	if cmd.Flags().Changed("api-url") {
		cfg.API.URL, _ = cmd.Flags().GetString("api-url")
	}
	if cmd.Flags().Changed("timeout") {
		d, _ := cmd.Flags().GetDuration("timeout")
		cfg.API.Timeout = config.Duration(d)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the CLI logger on w in the configured format.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// commandTimeout bounds one-shot commands: a request plus the initial load.
func commandTimeout(cfg *config.Config) time.Duration {
	return 2*cfg.API.Timeout.Duration() + time.Second
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}
