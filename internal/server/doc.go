// Package server provides the HTTP server for the serverboard dashboard.
//
// This package is internal to serverboard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS page at "/"
//   - View snapshot: JSON at "/api/state"
//   - Server-Sent Events: every view transition at "/api/sse"
//   - Actions: refresh, ping, filter, save and delete under "/api/servers"
//   - Report export: "/api/report" in csv, xls or table format
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the serverboard library should not need to interact with this
// package directly. The server is started by [serverboard.Dashboard.Start].
package server
