package httpclient

import (
	"net/http"
	"time"
)

// Client defines an interface for making HTTP requests
// This allows for easy mocking and testing of HTTP calls
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps the standard http.Client
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a new HTTP client with the given request timeout.
// A non-positive timeout falls back to 30 seconds.
func NewStandardClient(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StandardHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// NewFromHTTPClient adapts an existing *http.Client (httptest servers, custom transports)
func NewFromHTTPClient(c *http.Client) Client {
	return &StandardHTTPClient{client: c}
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
