package serverboard

import (
	"errors"
	"log/slog"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	timeout time.Duration
	headers map[string]string
	logger  *slog.Logger
}

// ClientOption configures a [Client] during construction.
type ClientOption func(*clientConfig) error

// WithRequestTimeout sets the per-request timeout. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithRequestHeaders adds HTTP headers sent with every backend request.
//
// Arguments are key-value pairs:
//
//	serverboard.WithRequestHeaders("Authorization", "Bearer token")
//
// Returns an error if an odd number of arguments is given or a key is empty.
func WithRequestHeaders(kv ...string) ClientOption {
	return func(cfg *clientConfig) error {
		if len(kv)%2 != 0 {
			return errors.New("headers must be key-value pairs")
		}
		for i := 0; i < len(kv); i += 2 {
			if kv[i] == "" {
				return errors.New("header key cannot be empty")
			}
			cfg.headers[kv[i]] = kv[i+1]
		}
		return nil
	}
}

// WithClientLogger sets the logger used for request logging.
// Responses are logged at debug level, failures at warn.
//
// Returns an error if the logger is nil.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
