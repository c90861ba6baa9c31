package mockapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jpalmerr/serverboard/internal/api"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBackend(t *testing.T, pinger Pinger) (*Backend, *api.Client) {
	t.Helper()
	b := New(DefaultServers(), pinger, testLogger())
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	c, err := api.NewClient(srv.URL, 2*time.Second, nil, testLogger())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(c.Close)
	return b, c
}

func TestBackend_List(t *testing.T) {
	_, c := newTestBackend(t, nil)

	resp, err := c.Servers(context.Background())
	if err != nil {
		t.Fatalf("Servers() error = %v", err)
	}
	if diff := cmp.Diff(DefaultServers(), resp.Data.Servers); diff != "" {
		t.Errorf("Servers mismatch (-want +got):\n%s", diff)
	}
	if resp.StatusCode != http.StatusOK || resp.Message != "Servers retrieved" {
		t.Errorf("envelope = %d %q", resp.StatusCode, resp.Message)
	}
}

func TestBackend_SaveAssignsID(t *testing.T) {
	b, c := newTestBackend(t, nil)

	resp, err := c.Save(context.Background(), api.Server{Name: "db", IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if resp.Data.Server.ID != 5 {
		t.Errorf("ID = %d, want 5", resp.Data.Server.ID)
	}
	if resp.Data.Server.Status != statusDown {
		t.Errorf("Status = %q, want %q", resp.Data.Server.Status, statusDown)
	}
	if got := len(b.Servers()); got != 5 {
		t.Errorf("len(Servers()) = %d, want 5", got)
	}
}

func TestBackend_SaveRejects(t *testing.T) {
	_, c := newTestBackend(t, nil)

	tests := []struct {
		name   string
		server api.Server
		code   int
	}{
		{"missing name", api.Server{IPAddress: "10.0.0.1"}, http.StatusBadRequest},
		{"duplicate ip", api.Server{Name: "dup", IPAddress: "192.168.1.160"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Save(context.Background(), tt.server)
			var apiErr *api.Error
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.code {
				t.Errorf("Save() error = %v, want status %d", err, tt.code)
			}
		})
	}
}

func TestBackend_PingUpdatesStatus(t *testing.T) {
	b, c := newTestBackend(t, func(string) bool { return false })

	resp, err := c.Ping(context.Background(), "192.168.1.160")
	if err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if resp.Data.Server.Status != statusDown || resp.Message != "Ping failed" {
		t.Errorf("Ping() = %q %q", resp.Data.Server.Status, resp.Message)
	}
	if got := b.Servers()[0].Status; got != statusDown {
		t.Errorf("stored status = %q, want %q", got, statusDown)
	}
}

func TestBackend_PingUnknown(t *testing.T) {
	_, c := newTestBackend(t, nil)

	_, err := c.Ping(context.Background(), "10.9.9.9")
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Ping() error = %v, want 404", err)
	}
}

func TestBackend_Delete(t *testing.T) {
	b, c := newTestBackend(t, nil)

	resp, err := c.Delete(context.Background(), 2)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if resp.Data.Deleted == nil || !*resp.Data.Deleted {
		t.Error("Deleted flag not set")
	}
	for _, s := range b.Servers() {
		if s.ID == 2 {
			t.Error("server 2 still stored after delete")
		}
	}

	_, err = c.Delete(context.Background(), 2)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("second Delete() error = %v, want 404", err)
	}
}

func TestRandomPinger_Bounds(t *testing.T) {
	never := RandomPinger(0)
	always := RandomPinger(1)
	for i := 0; i < 20; i++ {
		if never("x") {
			t.Fatal("RandomPinger(0) reported up")
		}
		if !always("x") {
			t.Fatal("RandomPinger(1) reported down")
		}
	}
}
