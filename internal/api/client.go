package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; the dashboard talks to a single backend host
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// RequestIDHeader carries a per-request id so backend logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client for the server-management backend.
//
// Client uses per-request timeouts via context rather than a global timeout.
// Response bodies are limited to 1MB to prevent memory issues.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewClient creates a new [Client] for the backend rooted at baseURL.
//
// The headers are sent with every request. The timeout bounds each request
// individually. A nil logger falls back to [slog.Default].
func NewClient(baseURL string, timeout time.Duration, headers map[string]string, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Servers fetches the full server list.
func (c *Client) Servers(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/server/list", nil)
}

// Save creates a new server record.
func (c *Client) Save(ctx context.Context, server Server) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/server/save", server)
}

// Ping asks the backend to ping the server at ipAddress and returns the
// server with its refreshed status.
func (c *Client) Ping(ctx context.Context, ipAddress string) (*Response, error) {
	return c.do(ctx, http.MethodGet, "/server/ping/"+url.PathEscape(ipAddress), nil)
}

// Delete removes the server with the given id.
func (c *Client) Delete(ctx context.Context, id int64) (*Response, error) {
	return c.do(ctx, http.MethodDelete, "/server/"+strconv.FormatInt(id, 10), nil)
}

// do performs a request and decodes the response envelope.
//
// Every failure is reported as an [*Error] so callers surface a uniform
// message regardless of where the request broke down.
func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	requestID := uuid.NewString()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Err: fmt.Errorf("failed to encode request body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err.Error(),
		)
		return nil, &Error{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(raw) > maxResponseBodySize {
		c.logger.Warn("backend response too large",
			"method", method,
			"path", path,
			"request_id", requestID,
			"limit_bytes", maxResponseBodySize,
		)
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: body exceeds %d bytes", ErrResponseTooLarge, maxResponseBodySize)}
	}

	logAttrs := []any{
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"request_id", requestID,
		"latency_ms", time.Since(start).Milliseconds(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("backend returned error status", append(logAttrs, "body", string(raw))...)
		return nil, &Error{StatusCode: resp.StatusCode}
	}

	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	c.logger.Debug("backend response", append(logAttrs, "message", decoded.Message)...)
	return &decoded, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
