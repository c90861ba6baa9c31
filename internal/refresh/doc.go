// Package refresh provides the periodic reload loop for the dashboard.
//
// This package is internal to serverboard. A [Scheduler] calls a refresh
// function on a fixed interval and never runs two refreshes at once: a tick
// that arrives while the previous refresh is still in flight is skipped.
package refresh
