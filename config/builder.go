package config

import (
	"log/slog"
	"sort"

	"github.com/jpalmerr/serverboard"
)

// BuildClient converts the api section into a backend [serverboard.Client].
func BuildClient(cfg *Config, logger *slog.Logger) (*serverboard.Client, error) {
	opts := []serverboard.ClientOption{
		serverboard.WithRequestTimeout(cfg.API.Timeout.Duration()),
	}
	if len(cfg.API.Headers) > 0 {
		opts = append(opts, serverboard.WithRequestHeaders(mapToKeyValuePairs(cfg.API.Headers)...))
	}
	if logger != nil {
		opts = append(opts, serverboard.WithClientLogger(logger))
	}
	return serverboard.NewClient(cfg.API.URL, opts...)
}

// DashboardOptions converts the dashboard settings into SDK options.
func DashboardOptions(cfg *Config, logger *slog.Logger) []serverboard.Option {
	opts := []serverboard.Option{
		serverboard.WithPort(cfg.Port),
		serverboard.WithTitle(cfg.Title),
		serverboard.WithRefreshInterval(cfg.RefreshInterval.Duration()),
	}
	if logger != nil {
		opts = append(opts, serverboard.WithLogger(logger))
	}
	return opts
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
