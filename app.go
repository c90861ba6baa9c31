package serverboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotLoaded is returned by actions that work on the server list
	// before [App.Load] has succeeded once.
	ErrNotLoaded = errors.New("server list has not been loaded")

	// ErrSaveInProgress is returned by [App.SaveServer] while another save
	// is still waiting for the backend.
	ErrSaveInProgress = errors.New("a save is already in progress")

	// ErrInvalidServer is returned by [App.SaveServer] for records missing
	// required fields.
	ErrInvalidServer = errors.New("invalid server")
)

// ViewState is everything the view renders: the [AppState] plus the
// per-row ping indicator and the save-form indicator.
type ViewState struct {
	State AppState

	// Pinging is the IP address whose ping is in flight, or empty.
	Pinging string

	// Saving reports whether a save is in flight.
	Saving bool

	// Filter is the status filter applied to the displayed rows.
	// [StatusAll] when every server is shown.
	Filter Status
}

// App is the dashboard view-model.
//
// App invokes a [Service] for each user action and folds the outcome into
// an [AppState]: [DataStateLoading] while the list is first fetched,
// [DataStateLoaded] with the data to render, or [DataStateError] with the
// failure message. It keeps the last authoritative server list in memory
// and mutates it locally after ping, save and delete so the view never has
// to reload the whole list.
//
// Each action issues at most one request at a time: concurrent identical
// calls to [App.Load], [App.PingServer] or [App.DeleteServer] share the
// in-flight request, and [App.SaveServer] refuses to start a second save.
//
// App is safe for concurrent use.
type App struct {
	service   Service
	logger    *slog.Logger
	callbacks []func(ViewState)
	flight    singleflight.Group

	// pubMu serialises transitions so callbacks observe them in order.
	pubMu sync.Mutex

	mu      sync.Mutex
	state   AppState
	data    *Response
	pinging string
	saving  bool
	filter  Status
}

// NewApp creates an [App] backed by service.
//
// The initial state is [DataStateLoading] with no data; call [App.Load]
// to fetch the server list.
func NewApp(service Service, opts ...AppOption) (*App, error) {
	if service == nil {
		return nil, errors.New("service cannot be nil")
	}

	cfg := &appConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		service:   service,
		logger:    logger,
		callbacks: cfg.callbacks,
		state:     AppState{DataState: DataStateLoading},
		filter:    StatusAll,
	}, nil
}

// State returns a copy of the current [AppState].
func (a *App) State() AppState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneState(a.state)
}

// View returns a copy of the current [ViewState].
func (a *App) View() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

// Data returns a copy of the last authoritative server list, or nil if
// nothing has been loaded.
func (a *App) Data() *Response {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data.Clone()
}

// Pinging returns the IP address whose ping is in flight, or "".
func (a *App) Pinging() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pinging
}

// Saving reports whether a save is in flight.
func (a *App) Saving() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saving
}

// Load fetches the server list.
//
// The view moves to [DataStateLoading], then to [DataStateLoaded] with the
// backend response, or to [DataStateError] if the request fails. A failed
// load keeps any previously loaded list for later actions.
func (a *App) Load(ctx context.Context) error {
	_, err, shared := a.flight.Do("load", func() (any, error) {
		a.transition(func() bool {
			a.state = AppState{DataState: DataStateLoading}
			return true
		})

		resp, err := a.service.Servers(ctx)
		if err != nil {
			a.fail(err)
			return nil, err
		}

		a.transition(func() bool {
			a.data = resp.Clone()
			a.showAll()
			return true
		})
		return nil, nil
	})
	if shared {
		a.logger.Debug("load joined in-flight request")
	}
	return err
}

// Reload fetches the server list without leaving the current view.
//
// Unlike [App.Load] the view does not pass through [DataStateLoading]: the
// rows on screen stay until the new list arrives, and the active status
// filter is applied to it. A failed reload moves the view to
// [DataStateError] and keeps the previous list. The auto-refresh scheduler
// uses Reload.
func (a *App) Reload(ctx context.Context) error {
	_, err, shared := a.flight.Do("reload", func() (any, error) {
		resp, err := a.service.Servers(ctx)
		if err != nil {
			a.fail(err)
			return nil, err
		}

		a.transition(func() bool {
			a.data = resp.Clone()
			a.applyFilter()
			return true
		})
		return nil, nil
	})
	if shared {
		a.logger.Debug("reload joined in-flight request")
	}
	return err
}

// PingServer pings the server at ipAddress and updates its row.
//
// While the ping is in flight the view stays loaded with the current list
// and [App.Pinging] reports the address. On success the server with the
// returned id is replaced in the list; on failure the view moves to
// [DataStateError]. Either way the ping indicator is cleared.
func (a *App) PingServer(ctx context.Context, ipAddress string) error {
	if strings.TrimSpace(ipAddress) == "" {
		return errors.New("ip address cannot be empty")
	}

	_, err, _ := a.flight.Do("ping:"+ipAddress, func() (any, error) {
		var missing bool
		a.transition(func() bool {
			if a.data == nil {
				missing = true
				a.state = errorState(ErrNotLoaded)
				return true
			}
			a.pinging = ipAddress
			a.showAll()
			return true
		})
		if missing {
			return nil, ErrNotLoaded
		}

		resp, err := a.service.Ping(ctx, ipAddress)
		if err == nil && (resp == nil || resp.Data.Server == nil) {
			err = fmt.Errorf("ping of %s returned no server", ipAddress)
		}
		if err != nil {
			a.transition(func() bool {
				a.clearPinging(ipAddress)
				a.state = errorState(err)
				return true
			})
			a.logger.Warn("ping failed", "ip_address", ipAddress, "error", err.Error())
			return nil, err
		}

		pinged := *resp.Data.Server
		a.transition(func() bool {
			if !replaceServer(a.data.Data.Servers, pinged) {
				a.logger.Warn("pinged server not in list", "ip_address", ipAddress, "server_id", pinged.ID)
			}
			if resp.Message != "" {
				a.data.Message = resp.Message
			}
			a.clearPinging(ipAddress)
			a.showAll()
			return true
		})
		a.logger.Info("server pinged", "ip_address", ipAddress, "status", pinged.Status)
		return nil, nil
	})
	return err
}

// FilterServers shows only servers with the given status.
//
// Filtering happens locally on the loaded list; the list itself is left
// untouched, so filtering by [StatusAll] afterwards shows everything again.
// The filter stays active across [App.Reload]. Load, ping, save and delete
// show the whole list again.
func (a *App) FilterServers(status Status) error {
	var data *Response
	a.transition(func() bool {
		if a.data == nil {
			a.state = errorState(ErrNotLoaded)
			return true
		}
		data = a.data.Clone()
		a.showAll()
		return true
	})
	if data == nil {
		return ErrNotLoaded
	}

	filtered, err := FilterServers(status, data)
	if err != nil {
		a.fail(err)
		return err
	}

	a.transition(func() bool {
		a.filter = status
		a.state = AppState{DataState: DataStateLoaded, AppData: filtered}
		return true
	})
	return nil
}

// SaveServer creates a new server record and returns it as stored.
//
// Name and IPAddress are required; an empty Status defaults to
// [StatusDown]. The saved server is prepended to the list. Only one save
// may be in flight: a concurrent call fails with [ErrSaveInProgress]
// without touching the view.
func (a *App) SaveServer(ctx context.Context, server Server) (*Server, error) {
	if err := validateServer(&server); err != nil {
		return nil, err
	}

	var busy, missing bool
	a.transition(func() bool {
		if a.saving {
			busy = true
			return false
		}
		if a.data == nil {
			missing = true
			a.state = errorState(ErrNotLoaded)
			return true
		}
		a.saving = true
		a.showAll()
		return true
	})
	if busy {
		return nil, ErrSaveInProgress
	}
	if missing {
		return nil, ErrNotLoaded
	}

	resp, err := a.service.Save(ctx, server)
	if err == nil && (resp == nil || resp.Data.Server == nil) {
		err = errors.New("save returned no server")
	}
	if err != nil {
		a.transition(func() bool {
			a.saving = false
			a.state = errorState(err)
			return true
		})
		a.logger.Warn("save failed", "name", server.Name, "error", err.Error())
		return nil, err
	}

	saved := *resp.Data.Server
	a.transition(func() bool {
		next := resp.Clone()
		next.Data = ResponseData{Servers: append([]Server{saved}, a.data.Data.Servers...)}
		a.data = next
		a.saving = false
		a.showAll()
		return true
	})
	a.logger.Info("server saved", "server_id", saved.ID, "name", saved.Name)
	return &saved, nil
}

// DeleteServer deletes the server with the given id and removes it from
// the list.
func (a *App) DeleteServer(ctx context.Context, id int64) error {
	_, err, _ := a.flight.Do("delete:"+strconv.FormatInt(id, 10), func() (any, error) {
		var missing bool
		a.transition(func() bool {
			if a.data == nil {
				missing = true
				a.state = errorState(ErrNotLoaded)
				return true
			}
			a.showAll()
			return true
		})
		if missing {
			return nil, ErrNotLoaded
		}

		resp, err := a.service.Delete(ctx, id)
		if err != nil {
			a.fail(err)
			a.logger.Warn("delete failed", "server_id", id, "error", err.Error())
			return nil, err
		}

		a.transition(func() bool {
			next := resp.Clone()
			if next == nil {
				next = &Response{}
			}
			next.Data = ResponseData{Servers: removeServer(a.data.Data.Servers, id)}
			a.data = next
			a.showAll()
			return true
		})
		a.logger.Info("server deleted", "server_id", id)
		return nil, nil
	})
	return err
}

// DisplayedServers returns the rows the view currently shows: the filtered
// list after [App.FilterServers], otherwise the loaded list.
func (a *App) DisplayedServers() []Server {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.DataState == DataStateLoaded && a.state.AppData != nil {
		return copyServers(a.state.AppData.Data.Servers)
	}
	if a.data != nil {
		return copyServers(a.data.Data.Servers)
	}
	return nil
}

// transition applies fn under the state lock and, if fn returns true,
// delivers the resulting view to callbacks. Transitions are delivered in
// the order they were applied.
func (a *App) transition(fn func() bool) {
	a.pubMu.Lock()
	defer a.pubMu.Unlock()

	a.mu.Lock()
	publish := fn()
	view := a.viewLocked()
	a.mu.Unlock()

	if !publish {
		return
	}

	a.logger.Debug("state transition",
		"data_state", view.State.DataState,
		"pinging", view.Pinging,
		"saving", view.Saving,
	)
	for _, cb := range a.callbacks {
		a.invokeCallbackSafe(cb, view)
	}
}

// fail moves the view to the error state.
func (a *App) fail(err error) {
	a.transition(func() bool {
		a.state = errorState(err)
		return true
	})
}

// showAll displays the whole loaded list and drops the filter; a.mu must be
// held.
func (a *App) showAll() {
	a.filter = StatusAll
	a.state = loadedState(a.data)
}

// applyFilter displays the loaded list through the active filter; a.mu must
// be held.
func (a *App) applyFilter() {
	if a.filter == StatusAll {
		a.showAll()
		return
	}
	filtered, err := FilterServers(a.filter, a.data)
	if err != nil {
		a.showAll()
		return
	}
	a.state = AppState{DataState: DataStateLoaded, AppData: filtered}
}

func (a *App) clearPinging(ipAddress string) {
	if a.pinging == ipAddress {
		a.pinging = ""
	}
}

// viewLocked builds a ViewState; a.mu must be held.
func (a *App) viewLocked() ViewState {
	return ViewState{
		State:   cloneState(a.state),
		Pinging: a.pinging,
		Saving:  a.saving,
		Filter:  a.filter,
	}
}

// invokeCallbackSafe calls a state callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func (a *App) invokeCallbackSafe(cb func(ViewState), view ViewState) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("state callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(view)
}

func loadedState(data *Response) AppState {
	return AppState{DataState: DataStateLoaded, AppData: data.Clone()}
}

func errorState(err error) AppState {
	return AppState{DataState: DataStateError, Error: err.Error()}
}

func cloneState(s AppState) AppState {
	s.AppData = s.AppData.Clone()
	return s
}

// replaceServer overwrites the entry with the same id. Reports whether one
// was found.
func replaceServer(servers []Server, updated Server) bool {
	for i := range servers {
		if servers[i].ID == updated.ID {
			servers[i] = updated
			return true
		}
	}
	return false
}

// removeServer returns a new slice without the server with the given id.
func removeServer(servers []Server, id int64) []Server {
	out := make([]Server, 0, len(servers))
	for _, s := range servers {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func validateServer(s *Server) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidServer)
	}
	if strings.TrimSpace(s.IPAddress) == "" {
		return fmt.Errorf("%w: ip address is required", ErrInvalidServer)
	}
	switch s.Status {
	case "":
		s.Status = StatusDown
	case StatusUp, StatusDown:
	default:
		return fmt.Errorf("%w: status must be %s or %s, got %q", ErrInvalidServer, StatusUp, StatusDown, s.Status)
	}
	return nil
}
