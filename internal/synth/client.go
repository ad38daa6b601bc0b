package synth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/oakwood-commons/filterbar/pkg/logger"
)

// RequestIDHeader carries the id generated for each synthesis call.
const RequestIDHeader = "X-Request-Id"

// DefaultTimeout bounds a single synthesis call.
const DefaultTimeout = 30 * time.Second

// Client posts synthesis requests to an HTTP endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// NewClient creates a client for the endpoint at url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// URL returns the endpoint address.
func (c *Client) URL() string { return c.url }

// Synthesize posts req and decodes the answer. Non-2xx answers become a
// *StatusError carrying the body's error text.
func (c *Client) Synthesize(ctx context.Context, req Request) (*Response, error) {
	id := uuid.NewString()
	lgr := logger.FromContext(ctx).WithValues("request_id", id, "url", c.url)

	if req.CurrentPath == nil {
		req.CurrentPath = []int{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding AI request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, id)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DefaultFailureMessage, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DefaultFailureMessage, err)
	}
	lgr.V(1).Info("AI response received", "status", httpResp.StatusCode, "duration", time.Since(start).String())

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		return nil, &StatusError{Code: httpResp.StatusCode, Message: payload.Error}
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &resp, nil
}
