package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"influencer-stats/internal/observability"
)

// StatusError is returned for any non-2xx upstream response. There is no
// retry: the first bad status fails the call.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream HTTP %d", e.Status)
}

// Client is the shared GET client for the proxy APIs. Requests carry the
// proxy credential headers; by default no timeout is imposed.
type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets an overall request timeout. The default is none.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a proxy API client for one host.
func NewClient(host, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		host:       host,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the proxy host this client targets.
func (c *Client) Host() string {
	return c.host
}

// GetJSON performs a single GET and decodes the body into out. Any non-2xx
// status yields a StatusError immediately.
func (c *Client) GetJSON(ctx context.Context, rawURL, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observability.RecordUpstreamLatency(c.host, endpoint, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
