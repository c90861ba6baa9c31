// Package mockapi implements the server-management REST backend in memory.
//
// It backs the example programs and the CLI tests, so the dashboard can be
// exercised without the real backend. Records live only for the lifetime of
// the process.
package mockapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/serverboard/internal/api"
)

const (
	statusUp   = "SERVER_UP"
	statusDown = "SERVER_DOWN"
)

// Pinger decides whether a ping of ipAddress succeeds.
type Pinger func(ipAddress string) bool

// RandomPinger succeeds with probability upRatio.
func RandomPinger(upRatio float64) Pinger {
	return func(string) bool {
		return rand.Float64() < upRatio
	}
}

// Backend is an in-memory server-management API.
//
// Backend is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	servers []api.Server
	nextID  int64
	pinger  Pinger
	latency time.Duration
	logger  *slog.Logger
}

// New creates a Backend seeded with servers. A nil pinger always reports
// the server as up.
func New(servers []api.Server, pinger Pinger, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if pinger == nil {
		pinger = func(string) bool { return true }
	}

	b := &Backend{
		servers: append([]api.Server(nil), servers...),
		pinger:  pinger,
		logger:  logger,
	}
	for _, s := range servers {
		if s.ID > b.nextID {
			b.nextID = s.ID
		}
	}
	return b
}

// SetLatency makes every request wait d before answering, so loading
// states are visible in the dashboard.
func (b *Backend) SetLatency(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latency = d
}

// Servers returns a copy of the stored records.
func (b *Backend) Servers() []api.Server {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]api.Server(nil), b.servers...)
}

// Handler returns the REST routes:
//   - GET /server/list
//   - POST /server/save
//   - GET /server/ping/{ip}
//   - DELETE /server/{id}
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /server/list", b.handleList)
	mux.HandleFunc("POST /server/save", b.handleSave)
	mux.HandleFunc("GET /server/ping/{ip}", b.handlePing)
	mux.HandleFunc("DELETE /server/{id}", b.handleDelete)
	return b.withLatency(mux)
}

func (b *Backend) withLatency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		d := b.latency
		b.mu.Unlock()
		if d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	servers := b.Servers()
	b.respond(w, http.StatusOK, "Servers retrieved", api.Data{Servers: servers})
}

func (b *Backend) handleSave(w http.ResponseWriter, r *http.Request) {
	var in api.Server
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		b.fail(w, http.StatusBadRequest, "invalid server payload", err)
		return
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.IPAddress) == "" {
		b.fail(w, http.StatusBadRequest, "name and ipAddress are required", nil)
		return
	}
	if in.Status == "" {
		in.Status = statusDown
	}

	b.mu.Lock()
	for _, s := range b.servers {
		if s.IPAddress == in.IPAddress {
			b.mu.Unlock()
			b.fail(w, http.StatusConflict, fmt.Sprintf("server with ip %s already exists", in.IPAddress), nil)
			return
		}
	}
	b.nextID++
	in.ID = b.nextID
	b.servers = append(b.servers, in)
	b.mu.Unlock()

	b.logger.Info("server saved", "server_id", in.ID, "ip_address", in.IPAddress)
	b.respond(w, http.StatusCreated, "Server created", api.Data{Server: &in})
}

func (b *Backend) handlePing(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	up := b.pinger(ip)

	b.mu.Lock()
	idx := -1
	for i, s := range b.servers {
		if s.IPAddress == ip {
			idx = i
			break
		}
	}
	if idx < 0 {
		b.mu.Unlock()
		b.fail(w, http.StatusNotFound, fmt.Sprintf("no server with ip %s", ip), nil)
		return
	}
	old := b.servers[idx].Status
	if up {
		b.servers[idx].Status = statusUp
	} else {
		b.servers[idx].Status = statusDown
	}
	server := b.servers[idx]
	b.mu.Unlock()

	if old != server.Status {
		b.logger.Info("status change", "ip_address", ip, "from", old, "to", server.Status)
	}

	msg := "Ping success"
	if !up {
		msg = "Ping failed"
	}
	b.respond(w, http.StatusOK, msg, api.Data{Server: &server})
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		b.fail(w, http.StatusBadRequest, "server id must be an integer", err)
		return
	}

	b.mu.Lock()
	found := false
	kept := b.servers[:0]
	for _, s := range b.servers {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	b.servers = kept
	b.mu.Unlock()

	if !found {
		b.fail(w, http.StatusNotFound, fmt.Sprintf("no server with id %d", id), nil)
		return
	}

	deleted := true
	b.logger.Info("server deleted", "server_id", id)
	b.respond(w, http.StatusOK, "Server deleted", api.Data{Deleted: &deleted})
}

func (b *Backend) respond(w http.ResponseWriter, status int, msg string, data api.Data) {
	b.write(w, api.Response{
		TimeStamp:  time.Now().UTC().Format(time.RFC3339),
		StatusCode: status,
		Status:     http.StatusText(status),
		Message:    msg,
		Data:       data,
	})
}

func (b *Backend) fail(w http.ResponseWriter, status int, reason string, err error) {
	resp := api.Response{
		TimeStamp:  time.Now().UTC().Format(time.RFC3339),
		StatusCode: status,
		Status:     http.StatusText(status),
		Reason:     reason,
	}
	if err != nil {
		resp.DeveloperMessage = err.Error()
	}
	b.write(w, resp)
}

func (b *Backend) write(w http.ResponseWriter, resp api.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("failed to write response", "error", err)
	}
}

// DefaultServers is a small fleet for demos.
func DefaultServers() []api.Server {
	return []api.Server{
		{ID: 1, IPAddress: "192.168.1.160", Name: "Ubuntu Linux", Memory: "16 GB", Type: "Personal PC", ImageURL: "https://picsum.photos/seed/server1/64", Status: statusUp},
		{ID: 2, IPAddress: "192.168.1.58", Name: "Fedora Linux", Memory: "16 GB", Type: "Dell Tower", ImageURL: "https://picsum.photos/seed/server2/64", Status: statusDown},
		{ID: 3, IPAddress: "192.168.1.21", Name: "MS 2008", Memory: "32 GB", Type: "Web Server", ImageURL: "https://picsum.photos/seed/server3/64", Status: statusUp},
		{ID: 4, IPAddress: "192.168.1.14", Name: "Red Hat Enterprise Linux", Memory: "64 GB", Type: "Mail Server", ImageURL: "https://picsum.photos/seed/server4/64", Status: statusDown},
	}
}
