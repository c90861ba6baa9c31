package serverboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/serverboard/dashboard"
	"github.com/jpalmerr/serverboard/internal/refresh"
	"github.com/jpalmerr/serverboard/internal/server"
	"github.com/jpalmerr/serverboard/internal/store"
)

const (
	defaultPort  = 4200
	defaultTitle = "Server Manager"
)

// Dashboard serves an [App] to browsers.
//
// Dashboard renders the view-model as a web page, streams every view
// transition to connected browsers over Server-Sent Events, and exposes the
// view-model's actions as JSON endpoints the page calls. It is created with
// [New] and run with [Dashboard.Start].
//
// The typical lifecycle is:
//
//	client, _ := serverboard.NewClient("http://localhost:8080")
//	d, err := serverboard.New(client, serverboard.WithPort(4200))
//	if err != nil {
//	    slog.Error("failed to create dashboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	d.Start(ctx) // blocks until context cancelled
type Dashboard struct {
	app             *App
	store           *store.MemoryStore
	title           string
	port            int
	refreshInterval time.Duration
	logger          *slog.Logger
}

// New creates a [Dashboard] whose view-model is backed by service.
//
// Defaults:
//   - Port: 4200
//   - Title: "Server Manager"
//   - Auto-refresh: disabled
func New(service Service, opts ...Option) (*Dashboard, error) {
	cfg := &dashboardConfig{
		port:  defaultPort,
		title: defaultTitle,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dashboard{
		store:           store.NewMemoryStore(),
		title:           cfg.title,
		port:            cfg.port,
		refreshInterval: cfg.refreshInterval,
		logger:          logger,
	}

	app, err := NewApp(service,
		WithAppLogger(logger),
		WithStateCallback(d.publish),
	)
	if err != nil {
		return nil, err
	}
	d.app = app
	d.publish(app.View())

	return d, nil
}

// App returns the view-model driven by the dashboard.
func (d *Dashboard) App() *App {
	return d.app
}

// Port returns the configured HTTP port.
func (d *Dashboard) Port() int {
	return d.port
}

// Start loads the server list and serves the dashboard.
//
// Start is a blocking call that runs until ctx is cancelled. The HTTP
// server is started first so browsers see the loading state, then the
// initial load is issued. A failed initial load is shown in the page and
// does not stop the dashboard.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (d *Dashboard) Start(ctx context.Context) error {
	d.logger.Info("dashboard starting", "title", d.title)
	d.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", d.port))

	if ctx.Err() != nil {
		return nil
	}

	httpServer := server.NewServer(d.store, dashboardActions{app: d.app}, d.port, dashboard.Assets, d.title, d.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := d.app.Load(ctx); err != nil {
		d.logger.Warn("initial load failed", "error", err.Error())
	}

	var scheduler *refresh.Scheduler
	if d.refreshInterval > 0 {
		d.logger.Info("auto-refresh configured", "interval", d.refreshInterval.String())
		scheduler = refresh.NewScheduler(d.refreshInterval, d.app.Reload, d.logger)
		scheduler.Start(ctx)
	}

	<-ctx.Done()
	if scheduler != nil {
		scheduler.Stop()
	}
	d.logger.Info("dashboard stopped")
	return nil
}

// publish mirrors a view transition into the store.
func (d *Dashboard) publish(view ViewState) {
	d.store.Update(viewToStore(view))
}

func viewToStore(view ViewState) store.View {
	out := store.View{
		DataState: view.State.DataState.String(),
		Pinging:   view.Pinging,
		Saving:    view.Saving,
		Filter:    view.Filter.String(),
	}
	if view.State.Error != "" {
		msg := view.State.Error
		out.Error = &msg
	}
	if data := view.State.AppData; data != nil {
		out.Message = data.Message
		out.Servers = make([]store.Server, len(data.Data.Servers))
		for i, s := range data.Data.Servers {
			out.Servers[i] = serverToStore(s)
		}
	}
	return out
}

func serverToStore(s Server) store.Server {
	return store.Server{
		ID:        s.ID,
		IPAddress: s.IPAddress,
		Name:      s.Name,
		Memory:    s.Memory,
		Type:      s.Type,
		ImageURL:  s.ImageURL,
		Status:    s.Status.String(),
	}
}

// dashboardActions adapts an App to the HTTP server's action interface.
type dashboardActions struct {
	app *App
}

func (x dashboardActions) Refresh(ctx context.Context) error {
	return x.app.Load(ctx)
}

func (x dashboardActions) Ping(ctx context.Context, ipAddress string) error {
	return classify(x.app.PingServer(ctx, ipAddress))
}

func (x dashboardActions) Filter(_ context.Context, status string) error {
	st, err := ParseStatus(status)
	if err != nil {
		return fmt.Errorf("%w: %w", server.ErrBadRequest, err)
	}
	return classify(x.app.FilterServers(st))
}

func (x dashboardActions) Save(ctx context.Context, s store.Server) (store.Server, error) {
	saved, err := x.app.SaveServer(ctx, Server{
		IPAddress: s.IPAddress,
		Name:      s.Name,
		Memory:    s.Memory,
		Type:      s.Type,
		ImageURL:  s.ImageURL,
		Status:    Status(s.Status),
	})
	if err != nil {
		return store.Server{}, classify(err)
	}
	return serverToStore(*saved), nil
}

func (x dashboardActions) Delete(ctx context.Context, id int64) error {
	return classify(x.app.DeleteServer(ctx, id))
}

func (x dashboardActions) Displayed() []store.Server {
	servers := x.app.DisplayedServers()
	out := make([]store.Server, len(servers))
	for i, s := range servers {
		out[i] = serverToStore(s)
	}
	return out
}

// classify tags view-model errors with the HTTP semantics the server maps
// them to. Backend failures pass through unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidServer):
		return fmt.Errorf("%w: %w", server.ErrBadRequest, err)
	case errors.Is(err, ErrSaveInProgress), errors.Is(err, ErrNotLoaded):
		return fmt.Errorf("%w: %w", server.ErrConflict, err)
	default:
		return err
	}
}
