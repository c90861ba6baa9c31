package serverboard

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// appConfig holds mutable state during App construction.
type appConfig struct {
	logger    *slog.Logger
	callbacks []func(ViewState)
}

// AppOption configures an [App] during construction.
type AppOption func(*appConfig) error

// WithAppLogger sets the logger for view-model events.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithAppLogger(logger *slog.Logger) AppOption {
	return func(cfg *appConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStateCallback registers a function called on every view transition.
//
// Multiple callbacks may be registered; they execute in registration order.
// Callbacks are invoked synchronously and in transition order, so they must
// be non-blocking and must not call [App] actions. Panics within callbacks
// are recovered and logged.
//
// Example:
//
//	app, err := serverboard.NewApp(client,
//	    serverboard.WithStateCallback(func(v serverboard.ViewState) {
//	        if v.State.DataState == serverboard.DataStateError {
//	            log.Printf("dashboard error: %s", v.State.Error)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithStateCallback(cb func(ViewState)) AppOption {
	return func(cfg *appConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}

// dashboardConfig holds mutable state during Dashboard construction.
type dashboardConfig struct {
	title           string
	port            int
	refreshInterval time.Duration
	logger          *slog.Logger
}

// Option configures a [Dashboard] during construction.
//
// Built-in options: [WithPort], [WithTitle], [WithRefreshInterval],
// [WithLogger].
type Option func(*dashboardConfig) error

// WithPort sets the HTTP port for the dashboard server. Defaults to 4200.
//
// Returns an error if the port is outside 1-65535.
func WithPort(port int) Option {
	return func(cfg *dashboardConfig) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port must be between 1 and 65535, got %d", port)
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and header.
//
// If not specified, defaults to "Server Manager".
func WithTitle(title string) Option {
	return func(cfg *dashboardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithRefreshInterval reloads the server list periodically with
// [App.Reload], which keeps the active status filter and does not blank the
// table.
//
// Zero disables auto-refresh, which is the default. A reload never overlaps
// the previous one; ticks that arrive mid-reload are skipped.
//
// Returns an error if the duration is negative or below one second.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *dashboardConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		if d > 0 && d < time.Second {
			return fmt.Errorf("refresh interval must be at least 1s, got %s", d)
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the dashboard.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *dashboardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
