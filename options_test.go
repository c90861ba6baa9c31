package serverboard

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	d, err := New(&fakeService{}, WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.Port() != 4200 {
		t.Errorf("Port() = %v, want %v", d.Port(), 4200)
	}
	if d.title != "Server Manager" {
		t.Errorf("title = %q, want %q", d.title, "Server Manager")
	}
	if d.refreshInterval != 0 {
		t.Errorf("refreshInterval = %v, want 0", d.refreshInterval)
	}
}

func TestNew_NilService(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected error, got nil")
	}
}

func TestWithPort(t *testing.T) {
	d, err := New(&fakeService{}, WithPort(9090))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.Port() != 9090 {
		t.Errorf("Port() = %v, want %v", d.Port(), 9090)
	}
}

func TestWithPort_Invalid(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 65536},
		{"way too high", 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeService{}, WithPort(tt.port))
			if err == nil {
				t.Errorf("New() expected error for port %v, got nil", tt.port)
			}
		})
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"minimum", 1},
		{"maximum", 65535},
		{"angular default", 4200},
		{"common alt", 8080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(&fakeService{}, WithPort(tt.port))
			if err != nil {
				t.Fatalf("New() unexpected error for port %v: %v", tt.port, err)
			}
			if d.Port() != tt.port {
				t.Errorf("Port() = %v, want %v", d.Port(), tt.port)
			}
		})
	}
}

func TestWithRefreshInterval(t *testing.T) {
	d, err := New(&fakeService{}, WithRefreshInterval(30*time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.refreshInterval != 30*time.Second {
		t.Errorf("refreshInterval = %v, want %v", d.refreshInterval, 30*time.Second)
	}
}

func TestWithRefreshInterval_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
	}{
		{"negative", -time.Second},
		{"sub-second", 500 * time.Millisecond},
		{"one nanosecond", time.Nanosecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeService{}, WithRefreshInterval(tt.interval))
			if err == nil {
				t.Errorf("New() expected error for interval %v, got nil", tt.interval)
			}
		})
	}
}

func TestWithRefreshInterval_ZeroDisables(t *testing.T) {
	d, err := New(&fakeService{}, WithRefreshInterval(0))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if d.refreshInterval != 0 {
		t.Errorf("refreshInterval = %v, want 0", d.refreshInterval)
	}
}

func TestWithLogger_Nil(t *testing.T) {
	_, err := New(&fakeService{}, WithLogger(nil))
	if err == nil {
		t.Fatal("New() expected error for nil logger, got nil")
	}
	if !strings.Contains(err.Error(), "logger cannot be nil") {
		t.Errorf("New() error = %v, want error containing 'logger cannot be nil'", err)
	}
}

func TestWithAppLogger_Nil(t *testing.T) {
	_, err := NewApp(&fakeService{}, WithAppLogger(nil))
	if err == nil {
		t.Error("NewApp() expected error for nil logger, got nil")
	}
}

func TestWithStateCallback_NilIgnored(t *testing.T) {
	app, err := NewApp(&fakeService{}, WithStateCallback(nil))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	if len(app.callbacks) != 0 {
		t.Errorf("len(callbacks) = %d, want 0", len(app.callbacks))
	}
}

func TestWithTitle(t *testing.T) {
	d, err := New(&fakeService{}, WithTitle("Custom Dashboard"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.title != "Custom Dashboard" {
		t.Errorf("title = %q, want %q", d.title, "Custom Dashboard")
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     ClientOption
		wantErr bool
	}{
		{"timeout", WithRequestTimeout(time.Second), false},
		{"zero timeout", WithRequestTimeout(0), true},
		{"headers", WithRequestHeaders("Authorization", "Bearer token"), false},
		{"odd headers", WithRequestHeaders("Authorization"), true},
		{"empty header key", WithRequestHeaders("", "value"), true},
		{"logger", WithClientLogger(testLogger()), false},
		{"nil logger", WithClientLogger(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient("http://localhost:8080", tt.opt)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
