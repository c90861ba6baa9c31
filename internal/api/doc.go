// Package api provides the HTTP client for the server-management REST backend.
//
// This package is internal to serverboard and handles all wire concerns:
//
//   - [Client]: HTTP client wrapper with per-request timeouts and size limits
//   - [Response]: The backend's response envelope
//   - [Server]: Wire representation of a managed server
//   - [Error]: Failure surfaced to callers, carrying the HTTP status code
//
// Users of the serverboard library should not need to interact with this
// package directly. Requests are made through [serverboard.Client].
package api
