package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/serverboard/internal/mockapi"
)

// execute runs the CLI with args and returns captured stdout and stderr.
func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// startBackend serves the in-memory backend and returns its URL.
func startBackend(t *testing.T, pinger mockapi.Pinger) (string, *mockapi.Backend) {
	t.Helper()

	backend := mockapi.New(mockapi.DefaultServers(), pinger, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return srv.URL, backend
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, context.Background(), "version")
	require.NoError(t, err)

	assert.Contains(t, out, "serverboard dev")
	assert.Contains(t, out, "commit: none")
	assert.Contains(t, out, "built:  unknown")
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "api:\n  url: http://from-file:8080\n  timeout: 5s\n")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--api-url", "http://from-flag:9090", "--timeout", "3s"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:9090", cfg.API.URL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout.Duration())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	envPath := writeFile(t, ".env", "SB_CLI_BACKEND=http://dotenv-host:8080\n")
	cfgPath := writeFile(t, "config.yaml", "api:\n  url: ${SB_CLI_BACKEND}\n")

	// registered so t.Setenv restores the variable after the test
	t.Setenv("SB_CLI_BACKEND", "")
	require.NoError(t, os.Unsetenv("SB_CLI_BACKEND"))

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--env-file", envPath}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv-host:8080", cfg.API.URL)
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--api-url", "ftp://nope"}))

	_, err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
