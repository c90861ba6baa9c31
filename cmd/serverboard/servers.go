package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/serverboard"
	"github.com/jpalmerr/serverboard/config"
)

// session is one loaded view-model for a one-shot command.
type session struct {
	cfg    *config.Config
	client *serverboard.Client
	app    *serverboard.App
	ctx    context.Context
	cancel context.CancelFunc
}

// openSession builds a client and view-model and loads the server list,
// the same way the dashboard does on start.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	// one-shot commands keep stderr quiet unless debugging
	logCfg := cfg.Log
	if logCfg.SlogLevel() > slog.LevelDebug {
		logCfg.Level = "warn"
	}
	logger := newLogger(logCfg, cmd.ErrOrStderr())

	client, err := config.BuildClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	app, err := serverboard.NewApp(client, serverboard.WithAppLogger(logger))
	if err != nil {
		client.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout(cfg))
	s := &session{cfg: cfg, client: client, app: app, ctx: ctx, cancel: cancel}

	if err := app.Load(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to load servers: %w", err)
	}
	return s, nil
}

func (s *session) Close() {
	s.cancel()
	s.client.Close()
}

// applyStatus filters the session's view by the --status flag.
func (s *session) applyStatus(cmd *cobra.Command) error {
	raw, _ := cmd.Flags().GetString("status")
	status, err := serverboard.ParseStatus(raw)
	if err != nil {
		return err
	}
	return s.app.FilterServers(status)
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the server table",
		Long: `Fetch the server list and print it.

Example:
  serverboard list
  serverboard list --status up
  serverboard list --status SERVER_DOWN --format csv`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
	cmd.Flags().String("status", "ALL", "filter by status: up, down or all")
	cmd.Flags().String("format", "table", "output format: table, csv or xls")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	rawFormat, _ := cmd.Flags().GetString("format")
	format, err := serverboard.ParseReportFormat(rawFormat)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.applyStatus(cmd); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := s.app.Report(out, format, s.cfg.Title); err != nil {
		return err
	}
	if format == serverboard.ReportTable {
		if state := s.app.State(); state.AppData != nil && state.AppData.Message != "" {
			fmt.Fprintln(out, state.AppData.Message)
		}
	}
	return nil
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping <ip-address>",
		Short: "Ping a server and print its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ip := args[0]
			if err := s.app.PingServer(s.ctx, ip); err != nil {
				return fmt.Errorf("ping %s: %w", ip, err)
			}

			state := s.app.State()
			for _, sv := range state.AppData.Data.Servers {
				if sv.IPAddress == ip {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", sv.Name, sv.IPAddress, sv.Status.Label())
				}
			}
			if state.AppData.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), state.AppData.Message)
			}
			return nil
		},
	}
}

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a server record",
		Long: `Create a server record on the backend.

Example:
  serverboard save --name "Red Hat Enterprise Linux" --ip 192.168.1.14 \
    --memory "64 GB" --type "Mail Server" --status up`,
		Args: cobra.NoArgs,
		RunE: runSave,
	}
	cmd.Flags().String("name", "", "server name (required)")
	cmd.Flags().String("ip", "", "IP address (required)")
	cmd.Flags().String("memory", "", "memory description, e.g. \"16 GB\"")
	cmd.Flags().String("type", "", "server type, e.g. \"Dell Tower\"")
	cmd.Flags().String("image-url", "", "image shown in the dashboard")
	cmd.Flags().String("status", "down", "initial status: up or down")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("ip")
	return cmd
}

func runSave(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	rawStatus, _ := flags.GetString("status")
	status, err := serverboard.ParseStatus(rawStatus)
	if err != nil {
		return err
	}
	if status == serverboard.StatusAll {
		return fmt.Errorf("status must be up or down, got %q", rawStatus)
	}

	server := serverboard.Server{Status: status}
	server.Name, _ = flags.GetString("name")
	server.IPAddress, _ = flags.GetString("ip")
	server.Memory, _ = flags.GetString("memory")
	server.Type, _ = flags.GetString("type")
	server.ImageURL, _ = flags.GetString("image-url")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	saved, err := s.app.SaveServer(s.ctx, server)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved server %d: %s (%s) %s\n", saved.ID, saved.Name, saved.IPAddress, saved.Status.Label())
	return nil
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a server record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("server id must be an integer, got %q", args[0])
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.app.DeleteServer(s.ctx, id); err != nil {
				return fmt.Errorf("delete %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted server %d\n", id)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the server table",
		Long: `Export the server table as CSV, an Excel-readable .xls file, or a
plain-text table.

Without --output the report is written to stdout.

Example:
  serverboard report --format xls -o servers.xls
  serverboard report --status down`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}
	cmd.Flags().String("format", "csv", "report format: csv, xls or table")
	cmd.Flags().StringP("output", "o", "", "file to write (default stdout)")
	cmd.Flags().String("status", "ALL", "filter by status: up, down or all")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	rawFormat, _ := cmd.Flags().GetString("format")
	format, err := serverboard.ParseReportFormat(rawFormat)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.applyStatus(cmd); err != nil {
		return err
	}

	write := func(w io.Writer) error {
		if err := s.app.Report(w, format, s.cfg.Title); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	if err := writeReportFile(path, write); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d servers to %s\n", len(s.app.DisplayedServers()), path)
	return nil
}

// writeReportFile creates path and fills it with write. The file is closed
// before returning so a failed flush is reported.
func writeReportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}
