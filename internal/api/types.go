package api

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is the cause of an [Error] whose response body
// exceeded the client's size limit.
var ErrResponseTooLarge = errors.New("response too large")

// Server is the wire representation of a managed server.
type Server struct {
	ID        int64  `json:"id"`
	IPAddress string `json:"ipAddress"`
	Name      string `json:"name"`
	Memory    string `json:"memory"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl"`
	Status    string `json:"status"`
}

// Data is the payload section of a [Response].
//
// Which fields are populated depends on the call: list fills Servers,
// save and ping fill Server, delete fills Deleted.
type Data struct {
	Servers []Server `json:"servers,omitempty"`
	Server  *Server  `json:"server,omitempty"`
	Deleted *bool    `json:"deleted,omitempty"`
}

// Response is the envelope every backend endpoint returns.
type Response struct {
	TimeStamp        string `json:"timeStamp,omitempty"`
	StatusCode       int    `json:"statusCode"`
	Status           string `json:"status,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Message          string `json:"message,omitempty"`
	DeveloperMessage string `json:"developerMessage,omitempty"`
	Data             Data   `json:"data"`
}

// Error is returned for any request that did not produce a 2xx response.
//
// StatusCode is zero when no response was received (connection refused,
// timeout, cancelled context). Err holds the underlying cause when there is one.
type Error struct {
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("an error occurred - error code: %d", e.StatusCode)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}
