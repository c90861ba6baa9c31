package store

import "time"

// Server is the storage representation of a managed server, shaped for the
// dashboard's JSON API.
type Server struct {
	ID        int64  `json:"id"`
	IPAddress string `json:"ipAddress"`
	Name      string `json:"name"`
	Memory    string `json:"memory"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl"`
	Status    string `json:"status"`
}

// View is one snapshot of the dashboard view-model.
//
// View is decoupled from the public serverboard types so the JSON served to
// browsers can evolve independently of the SDK.
type View struct {
	// DataState is one of LOADING_STATE, LOADED_STATE or ERROR_STATE.
	DataState string `json:"dataState"`

	// Message is the backend's message for the data on screen.
	Message string `json:"message,omitempty"`

	// Servers are the rows currently displayed.
	Servers []Server `json:"servers"`

	// Error contains the error message when DataState is ERROR_STATE.
	Error *string `json:"error"`

	// Pinging is the IP address of the server being pinged, if any.
	Pinging string `json:"pinging,omitempty"`

	// Saving reports whether a new server is being saved.
	Saving bool `json:"saving"`

	// Filter is the status filter applied to Servers, or empty.
	Filter string `json:"filter,omitempty"`

	// Version increases by one on every update. Assigned by the store.
	Version uint64 `json:"version"`

	// UpdatedAt is the time the snapshot was stored. Assigned by the store.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the interface for storing and subscribing to view snapshots.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows real-time updates to be pushed to connected clients
// (e.g., via Server-Sent Events).
type Store interface {
	// Update replaces the current view and notifies all subscribers.
	// Subscribers observe updates in the order Update was called.
	Update(view View)

	// Current returns the latest view. The second value is false if no view
	// has been stored yet.
	Current() (View, bool)

	// Subscribe returns a channel that receives view updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan View

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan View)
}
