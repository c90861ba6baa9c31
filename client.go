package serverboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jpalmerr/serverboard/internal/api"
)

const defaultRequestTimeout = 10 * time.Second

// DefaultAPIURL is the backend location used when none is configured.
const DefaultAPIURL = "http://localhost:8080"

// Service is the set of backend calls the view-model depends on.
//
// [Client] is the production implementation. Tests and embedders may supply
// their own.
type Service interface {
	// Servers fetches every server record.
	Servers(ctx context.Context) (*Response, error)

	// Save creates a server record and returns it in Data.Server.
	Save(ctx context.Context, server Server) (*Response, error)

	// Ping pings the server at ipAddress and returns it, with its refreshed
	// status, in Data.Server.
	Ping(ctx context.Context, ipAddress string) (*Response, error)

	// Delete removes the server with the given id.
	Delete(ctx context.Context, id int64) (*Response, error)
}

// APIError is returned by [Client] when the backend cannot be reached or
// answers with a non-2xx status.
//
// Its message has the form "an error occurred - error code: 500". StatusCode
// is zero when no response was received.
type APIError struct {
	StatusCode int
	err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("an error occurred - error code: %d", e.StatusCode)
}

// Unwrap returns the underlying transport or decoding error, if any.
func (e *APIError) Unwrap() error {
	return e.err
}

// Client talks to the server-management REST backend.
//
// Client is safe for concurrent use. Create it with [NewClient].
type Client struct {
	api *api.Client
}

// NewClient creates a [Client] for the backend at baseURL.
//
// baseURL must include a scheme, e.g. "http://localhost:8080". Options are
// applied in order; see [WithRequestTimeout], [WithRequestHeaders] and
// [WithClientLogger].
//
// Example:
//
//	client, err := serverboard.NewClient("http://localhost:8080",
//	    serverboard.WithRequestTimeout(5 * time.Second),
//	)
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultRequestTimeout,
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	c, err := api.NewClient(baseURL, cfg.timeout, cfg.headers, cfg.logger)
	if err != nil {
		return nil, err
	}
	return &Client{api: c}, nil
}

// Servers implements [Service].
func (c *Client) Servers(ctx context.Context) (*Response, error) {
	return wrap(c.api.Servers(ctx))
}

// Save implements [Service].
func (c *Client) Save(ctx context.Context, server Server) (*Response, error) {
	return wrap(c.api.Save(ctx, serverToAPI(server)))
}

// Ping implements [Service].
func (c *Client) Ping(ctx context.Context, ipAddress string) (*Response, error) {
	return wrap(c.api.Ping(ctx, ipAddress))
}

// Delete implements [Service].
func (c *Client) Delete(ctx context.Context, id int64) (*Response, error) {
	return wrap(c.api.Delete(ctx, id))
}

// Filter narrows resp to servers with the given status without contacting
// the backend. See [FilterServers].
func (c *Client) Filter(status Status, resp *Response) (*Response, error) {
	return FilterServers(status, resp)
}

// Close releases idle connections. The client stays usable.
func (c *Client) Close() {
	c.api.Close()
}

// wrap converts internal results to their public form.
func wrap(resp *api.Response, err error) (*Response, error) {
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, &APIError{StatusCode: apiErr.StatusCode, err: apiErr.Err}
		}
		return nil, err
	}
	return responseFromAPI(resp), nil
}
