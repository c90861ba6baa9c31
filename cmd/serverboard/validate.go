package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCmd validates a config file without starting the server.
func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file",
		Long: `Validate a serverboard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  serverboard validate -c config.yaml
  serverboard validate --config /etc/serverboard/config.yaml`,
		RunE: runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	if path, _ := cmd.Flags().GetString("config"); path == "" {
		return errors.New(`required flag "config" not set`)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	refresh := "disabled"
	if d := cfg.RefreshInterval.Duration(); d > 0 {
		refresh = d.String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:            %s\n", cfg.Title)
	fmt.Fprintf(out, "  Port:             %d\n", cfg.Port)
	fmt.Fprintf(out, "  API URL:          %s\n", cfg.API.URL)
	fmt.Fprintf(out, "  API timeout:      %s\n", cfg.API.Timeout.Duration())
	fmt.Fprintf(out, "  Refresh interval: %s\n", refresh)
	fmt.Fprintf(out, "  Headers:          %d\n", len(cfg.API.Headers))

	return nil
}
