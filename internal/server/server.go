package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/serverboard/internal/report"
	"github.com/jpalmerr/serverboard/internal/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Server Manager"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"

	// maxSaveBodySize bounds the JSON body accepted by the save endpoint.
	maxSaveBodySize = 64 << 10
)

var (
	// ErrBadRequest marks action errors caused by invalid input (HTTP 400).
	ErrBadRequest = errors.New("bad request")

	// ErrConflict marks action errors caused by the view-model's current
	// state, such as a save already in flight (HTTP 409).
	ErrConflict = errors.New("conflict")
)

// Actions are the view-model operations the dashboard page can trigger.
//
// Every action publishes its state transitions to the [store.Store] the
// server streams from; the HTTP response only reports success or failure.
// Errors wrapping [ErrBadRequest] or [ErrConflict] map to 400 and 409, any
// other error is treated as a backend failure (502).
type Actions interface {
	Refresh(ctx context.Context) error
	Ping(ctx context.Context, ipAddress string) error
	Filter(ctx context.Context, status string) error
	Save(ctx context.Context, server store.Server) (store.Server, error)
	Delete(ctx context.Context, id int64) error

	// Displayed returns the rows a report exports. It falls back to the
	// last loaded list while the view is loading or showing an error.
	Displayed() []store.Server
}

// Server handles HTTP requests for the dashboard page and its API.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	actions    Actions
	port       int
	httpServer *http.Server
	assets     fs.FS
	title      string
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store holding the latest view snapshot
//   - actions: View-model operations triggered by the page
//   - port: TCP port to listen on
//   - assets: Embedded filesystem containing dashboard assets (may be nil)
//   - title: Dashboard title (defaults to "Server Manager" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, actions Actions, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	return &Server{
		store:   st,
		actions: actions,
		port:    port,
		assets:  assets,
		title:   title,
		logger:  logger,
	}
}

// Handler returns the request router.
//
// Routes:
//   - GET /: dashboard page
//   - GET /api/state: latest view snapshot as JSON
//   - GET /api/sse: Server-Sent Events stream of view snapshots
//   - POST /api/servers/refresh: reload the server list
//   - POST /api/servers/ping/{ip}: ping one server
//   - POST /api/servers/filter?status=: filter the displayed servers
//   - POST /api/servers: save a new server (JSON body)
//   - DELETE /api/servers/{id}: delete a server
//   - GET /api/report?format=csv|xls|table: export the displayed servers
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/sse", s.handleSSE)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("POST /api/servers/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/servers/ping/{ip}", s.handlePing)
	mux.HandleFunc("POST /api/servers/filter", s.handleFilter)
	mux.HandleFunc("POST /api/servers", s.handleSave)
	mux.HandleFunc("DELETE /api/servers/{id}", s.handleDelete)

	if s.assets != nil {
		mux.HandleFunc("GET /{$}", s.handleDashboard)
	}
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleState returns the latest view snapshot as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	view, _ := s.store.Current()
	w.Header().Set("Cache-Control", "no-cache")
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.finishAction(w, "refresh", s.actions.Refresh(r.Context()))
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	s.finishAction(w, "ping", s.actions.Ping(r.Context(), ip))
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		s.writeError(w, http.StatusBadRequest, "status query parameter is required")
		return
	}
	s.finishAction(w, "filter", s.actions.Filter(r.Context(), status))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var in store.Server
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSaveBodySize))
	if err := dec.Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid server payload: "+err.Error())
		return
	}

	saved, err := s.actions.Save(r.Context(), in)
	if err != nil {
		s.finishAction(w, "save", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "server id must be an integer")
		return
	}
	s.finishAction(w, "delete", s.actions.Delete(r.Context(), id))
}

// handleReport exports the displayed servers.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	servers := s.actions.Displayed()
	rows := make([]report.Row, len(servers))
	for i, sv := range servers {
		rows[i] = report.Row{
			ID:        sv.ID,
			Name:      sv.Name,
			IPAddress: sv.IPAddress,
			Memory:    sv.Memory,
			Type:      sv.Type,
			Status:    sv.Status,
		}
	}

	title := s.title
	if title == "" {
		title = defaultTitle
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	if err := report.Write(w, format, title+" Report", rows); err != nil {
		s.logger.Error("failed to write report", "format", format, "error", err)
	}
}

// finishAction answers an action request with the resulting view, or with
// the error mapped to an HTTP status.
func (s *Server) finishAction(w http.ResponseWriter, action string, err error) {
	if err == nil {
		view, _ := s.store.Current()
		s.writeJSON(w, http.StatusOK, view)
		return
	}

	status := http.StatusBadGateway
	switch {
	case errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	default:
		s.logger.Warn("dashboard action failed", "action", action, "error", err.Error())
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleSSE streams view snapshots via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// subscribe before reading the current view so no transition is lost
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	var lastVersion uint64
	if view, ok := s.store.Current(); ok {
		data, err := json.Marshal(view)
		if err == nil {
			if err := writeAndFlush(data); err != nil {
				return
			}
			lastVersion = view.Version
		}
	}

	for {
		select {
		case view, ok := <-ch:
			if !ok {
				return
			}
			// already sent as the initial snapshot
			if view.Version != 0 && view.Version <= lastVersion {
				continue
			}
			data, err := json.Marshal(view)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}
			lastVersion = view.Version

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
