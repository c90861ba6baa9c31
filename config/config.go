// Package config provides YAML configuration parsing for serverboard.
//
// This package enables running serverboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Server Manager
//	port: 4200
//	refresh_interval: 30s
//
//	api:
//	  url: ${SERVERBOARD_API_URL:-http://localhost:8080}
//	  timeout: 5s
//	  headers:
//	    Authorization: Bearer ${API_TOKEN}
//
//	log:
//	  level: info
//	  format: json
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort    = 4200
	defaultTitle   = "Server Manager"
	defaultAPIURL  = "http://localhost:8080"
	defaultTimeout = 10 * time.Second

	// minRefreshInterval keeps auto-refresh from hammering the backend.
	minRefreshInterval = 1 * time.Second
)

// Config is the root configuration structure for serverboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML, or [Default] when no
// file is given.
type Config struct {
	// Title is the dashboard title. Defaults to "Server Manager" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 4200.
	Port int `yaml:"port"`

	// RefreshInterval reloads the server list periodically.
	// Accepts duration strings like "30s" or "1m". Zero disables it.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// API configures the server-management backend.
	API APIConfig `yaml:"api"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`
}

// APIConfig locates the server-management backend.
type APIConfig struct {
	// URL is the backend base URL. Defaults to http://localhost:8080.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Timeout bounds each backend request. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `yaml:"level"`

	// Format is json or text. Defaults to json.
	Format string `yaml:"format"`
}

// SlogLevel returns the configured level as a [slog.Level].
func (l LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// LoadEnvFiles loads KEY=VALUE pairs from dotenv files into the process
// environment so they are visible to ${VAR} substitution. Variables that
// are already set are not overridden.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Title, API.URL and header values.
// Defaults are applied for Title, Port (4200), API.URL, API.Timeout (10s)
// and Log (info, json).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = defaultTitle
	}
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.API.URL == "" {
		c.API.URL = defaultAPIURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = Duration(defaultTimeout)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks a configuration that was built or modified in code.
func (c *Config) Validate() error {
	return c.expandAndValidate()
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	title, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = title

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if d := c.RefreshInterval.Duration(); d != 0 {
		if d < 0 {
			return fmt.Errorf("refresh_interval cannot be negative, got %s", d)
		}
		if d < minRefreshInterval {
			return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, d)
		}
	}

	expanded, err := expandEnvVars(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: %w", err)
	}
	c.API.URL = expanded

	parsedURL, err := url.Parse(c.API.URL)
	if err != nil {
		return fmt.Errorf("api.url: invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("api.url: url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("api.url: url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("api.url: url must have a host")
	}

	if c.API.Timeout.Duration() < 0 {
		return fmt.Errorf("api.timeout cannot be negative, got %s", c.API.Timeout.Duration())
	}
	if c.API.Timeout.Duration() < time.Second {
		return fmt.Errorf("api.timeout must be at least 1s, got %s", c.API.Timeout.Duration())
	}

	for k, v := range c.API.Headers {
		if strings.TrimSpace(k) == "" {
			return errors.New("api.headers: header name cannot be empty")
		}
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("api.headers[%s]: %w", k, err)
		}
		c.API.Headers[k] = expanded
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}
