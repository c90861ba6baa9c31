package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysDown(string) bool { return false }

func TestListCmd_Table(t *testing.T) {
	url, _ := startBackend(t, nil)

	out, _, err := execute(t, context.Background(), "list", "--api-url", url)
	require.NoError(t, err)

	for _, name := range []string{"Ubuntu Linux", "Fedora Linux", "MS 2008", "Red Hat Enterprise Linux"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Servers filtered by ALL status")
}

func TestListCmd_StatusCSV(t *testing.T) {
	url, _ := startBackend(t, nil)

	out, _, err := execute(t, context.Background(), "list", "--api-url", url, "--status", "down", "--format", "csv")
	require.NoError(t, err)

	want := "ID,Name,IP Address,Memory,Type,Status\n" +
		"2,Fedora Linux,192.168.1.58,16 GB,Dell Tower,SERVER DOWN\n" +
		"4,Red Hat Enterprise Linux,192.168.1.14,64 GB,Mail Server,SERVER DOWN\n"
	assert.Equal(t, want, out)
}

func TestListCmd_InvalidStatus(t *testing.T) {
	url, _ := startBackend(t, nil)

	_, _, err := execute(t, context.Background(), "list", "--api-url", url, "--status", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestListCmd_BackendUnreachable(t *testing.T) {
	_, _, err := execute(t, context.Background(), "list", "--api-url", "http://127.0.0.1:1", "--timeout", "1s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load servers")
	assert.Contains(t, err.Error(), "an error occurred - error code: 0")
}

func TestPingCmd(t *testing.T) {
	url, backend := startBackend(t, alwaysDown)

	out, _, err := execute(t, context.Background(), "ping", "192.168.1.160", "--api-url", url)
	require.NoError(t, err)

	assert.Contains(t, out, "Ubuntu Linux (192.168.1.160): SERVER DOWN")
	assert.Contains(t, out, "Ping failed")
	assert.Equal(t, "SERVER_DOWN", backend.Servers()[0].Status)
}

func TestPingCmd_Unknown(t *testing.T) {
	url, _ := startBackend(t, nil)

	_, _, err := execute(t, context.Background(), "ping", "10.9.9.9", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error code: 404")
}

func TestSaveCmd(t *testing.T) {
	url, backend := startBackend(t, nil)

	out, _, err := execute(t, context.Background(), "save",
		"--api-url", url,
		"--name", "Debian",
		"--ip", "10.0.0.5",
		"--memory", "8 GB",
		"--type", "Raspberry Pi",
		"--status", "up",
	)
	require.NoError(t, err)

	assert.Equal(t, "Saved server 5: Debian (10.0.0.5) SERVER UP\n", out)
	require.Len(t, backend.Servers(), 5)
	assert.Equal(t, "Raspberry Pi", backend.Servers()[4].Type)
}

func TestSaveCmd_Validation(t *testing.T) {
	url, _ := startBackend(t, nil)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing ip", []string{"--name", "x"}, `"ip"`},
		{"status all", []string{"--name", "x", "--ip", "10.0.0.9", "--status", "all"}, "status must be up or down"},
		{"duplicate ip", []string{"--name", "x", "--ip", "192.168.1.160"}, "error code: 409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"save", "--api-url", url}, tt.args...)
			_, _, err := execute(t, context.Background(), args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDeleteCmd(t *testing.T) {
	url, backend := startBackend(t, nil)

	out, _, err := execute(t, context.Background(), "delete", "2", "--api-url", url)
	require.NoError(t, err)

	assert.Equal(t, "Deleted server 2\n", out)
	assert.Len(t, backend.Servers(), 3)
}

func TestDeleteCmd_Errors(t *testing.T) {
	url, _ := startBackend(t, nil)

	_, _, err := execute(t, context.Background(), "delete", "abc", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")

	_, _, err = execute(t, context.Background(), "delete", "42", "--api-url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error code: 404")
}

func TestReportCmd_File(t *testing.T) {
	url, _ := startBackend(t, nil)
	path := filepath.Join(t.TempDir(), "servers.xls")

	_, stderr, err := execute(t, context.Background(), "report", "--api-url", url, "--format", "xls", "-o", path, "--status", "up")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Wrote 2 servers to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "<table")
	assert.Contains(t, content, "Ubuntu Linux")
	assert.NotContains(t, content, "Fedora Linux")
}

func TestReportCmd_Stdout(t *testing.T) {
	url, _ := startBackend(t, nil)

	out, _, err := execute(t, context.Background(), "report", "--api-url", url)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "ID,Name,IP Address,Memory,Type,Status", lines[0])
}

func TestWriteReportFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes and closes", func(t *testing.T) {
		path := filepath.Join(dir, "ok.csv")
		err := writeReportFile(path, func(w io.Writer) error {
			_, err := io.WriteString(w, "ID\n")
			return err
		})
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ID\n", string(data))
	})

	t.Run("close error is returned", func(t *testing.T) {
		path := filepath.Join(dir, "closed.csv")
		err := writeReportFile(path, func(w io.Writer) error {
			// closing early makes the final Close fail
			return w.(*os.File).Close()
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to close report file")
	})

	t.Run("write error is returned", func(t *testing.T) {
		path := filepath.Join(dir, "failed.csv")
		err := writeReportFile(path, func(io.Writer) error {
			return errors.New("disk full")
		})
		require.EqualError(t, err, "disk full")
	})

	t.Run("create error", func(t *testing.T) {
		err := writeReportFile(filepath.Join(dir, "missing", "r.csv"), func(io.Writer) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create report file")
	})
}

func TestReportCmd_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, context.Background(), "report", "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown report format")
}
