package serverboard

import (
	"fmt"
	"strings"
)

// Status is the reachability state of a managed server.
//
// [StatusUp] and [StatusDown] are the values the backend reports for a
// server. [StatusAll] is only meaningful as a filter and matches every server.
type Status string

const (
	// StatusUp indicates the last ping reached the server.
	StatusUp Status = "SERVER_UP"

	// StatusDown indicates the last ping failed.
	StatusDown Status = "SERVER_DOWN"

	// StatusAll selects every server when filtering.
	StatusAll Status = "ALL"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Label returns the human-readable form used in messages, e.g. "SERVER UP".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// ParseStatus converts user input into a [Status].
//
// The canonical values are accepted case-insensitively, as are the short
// forms "up", "down" and "all".
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SERVER_UP", "UP":
		return StatusUp, nil
	case "SERVER_DOWN", "DOWN":
		return StatusDown, nil
	case "ALL":
		return StatusAll, nil
	default:
		return "", fmt.Errorf("unknown status %q (expected SERVER_UP, SERVER_DOWN or ALL)", s)
	}
}

// DataState describes where the view-model is in its request lifecycle.
type DataState string

const (
	// DataStateLoading is shown while the initial server list is fetched.
	DataStateLoading DataState = "LOADING_STATE"

	// DataStateLoaded means AppData holds a response to render.
	DataStateLoaded DataState = "LOADED_STATE"

	// DataStateError means the last action failed; Error holds the message.
	DataStateError DataState = "ERROR_STATE"
)

// String returns the string representation of the data state.
func (d DataState) String() string {
	return string(d)
}
