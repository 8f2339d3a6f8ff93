package statusupdate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

const (
	defaultTimeout             = 10 * time.Second
	defaultMaxIdleConnsPerHost = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

var (
	// ErrTransport wraps network failures, timeouts and cancellations.
	ErrTransport = errors.New("status update request failed")

	// ErrMalformedResponse is returned when the server answers with a body
	// that is not a status change result.
	ErrMalformedResponse = errors.New("malformed status update response")
)

// Result is the server's answer to a status change.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Updater sends a single status change for a task.
//
// A returned error means no usable answer was received; a rejected change is
// reported as a Result with Success false and a nil error.
type Updater interface {
	UpdateStatus(ctx context.Context, taskID, status string) (Result, error)
}

// Client posts status changes to a HostPulse server.
//
// Client uses a per-request timeout via context. Response bodies are limited
// to 1MB.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	timeout    time.Duration
}

// ClientOption configures a [Client].
type ClientOption func(*Client) error

// WithHTTPClient replaces the underlying HTTP client, e.g. to share a cookie jar.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithTokenSource sets where the CSRF token sent with each request comes from.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) error {
		c.tokens = ts
		return nil
	}
}

// WithTimeout sets the per-request timeout. Defaults to 10 seconds.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		c.timeout = d
		return nil
	}
}

// NewClient creates a [Client] for the server at baseURL.
//
// Returns an error if baseURL is not an absolute http or https URL or any
// option is invalid.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("base url must include a host")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// UpdateStatus implements [Updater] by posting {"status": status} to
// /tasks/{taskID}/status/.
//
// The response body is decoded whatever the HTTP status code, since the
// server reports rejections (including CSRF failures) as JSON results.
func (c *Client) UpdateStatus(ctx context.Context, taskID, status string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + "/tasks/" + url.PathEscape(taskID) + "/status/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set(CSRFHeader, token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}

	return decodeResult(body, resp.StatusCode)
}

// decodeResult requires a JSON object with a boolean "success" field.
func decodeResult(body []byte, statusCode int) (Result, error) {
	var raw struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Result{}, fmt.Errorf("%w (http %d): %w", ErrMalformedResponse, statusCode, err)
	}
	if raw.Success == nil {
		return Result{}, fmt.Errorf("%w (http %d): missing success field", ErrMalformedResponse, statusCode)
	}
	return Result{Success: *raw.Success, Message: raw.Message}, nil
}

// Close closes idle connections held by the client's transport.
//
// Safe to call multiple times; the client remains usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
