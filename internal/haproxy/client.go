package haproxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned by Fetch when the stats endpoint answers with a
// non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("haproxy stats %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client fetches the stats report from HAProxy's stats page.
type Client struct {
	url        string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient returns a Client for url. Basic auth is sent when user is not
// empty. A nil httpClient gets a client with a 10s timeout.
func NewClient(url, user, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		url:        url,
		user:       user,
		password:   password,
		httpClient: httpClient,
	}
}

// URL returns the stats endpoint.
func (c *Client) URL() string {
	return c.url
}

// Fetch downloads and parses one report.
func (c *Client) Fetch(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}

	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch haproxy stats: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &StatusError{URL: c.url, StatusCode: res.StatusCode}
	}

	rows, err := ParseReport(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse haproxy stats: %w", err)
	}

	return rows, nil
}
