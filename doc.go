// Package serverboard provides a web dashboard for a server-management
// REST backend.
//
// The backend stores server records (address, name, memory, type, image
// and an UP/DOWN status) and can ping a server to refresh its status.
// Serverboard lists those records, pings them, filters them by status,
// creates and deletes them, and exports them as a report.
//
// # Quick Start
//
// Point a client at the backend and start the dashboard with graceful
// shutdown:
//
//	client, _ := serverboard.NewClient("http://localhost:8080")
//	d, _ := serverboard.New(client)
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	d.Start(ctx) // blocks until context is cancelled
//
// # View-model
//
// [App] is the view-model behind the page and can be used without the
// dashboard. Every action moves it through the [AppState] lifecycle:
//
//   - [DataStateLoading]: the server list is being fetched
//   - [DataStateLoaded]: AppData holds the response to render
//   - [DataStateError]: Error holds the failure message
//
// Transitions are delivered to callbacks registered with
// [WithStateCallback], in the order they happen.
//
// # Configuration
//
// Serverboard uses the functional options pattern for configuration:
//
//	d, err := serverboard.New(client,
//	    serverboard.WithPort(4200),
//	    serverboard.WithTitle("Server Manager"),
//	    serverboard.WithRefreshInterval(30 * time.Second),
//	)
//
// # Architecture
//
// Serverboard consists of several internal packages (under internal/):
//
//   - internal/api: REST client for the backend
//   - internal/store: In-memory view snapshot with pub/sub for real-time updates
//   - internal/refresh: Periodic reload scheduler
//   - internal/report: CSV, XLS and terminal table export
//   - internal/server: HTTP server with JSON actions and Server-Sent Events
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package serverboard
