package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"savewise/pkg/errors"
)

const maxErrorBody = 512

// APIError represents a non-2xx PostgREST response
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the client
type Option func(*client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.httpClient.Timeout = d }
}

// client talks to the PostgREST endpoint of a Supabase project
type client struct {
	restURL    string
	key        string
	httpClient *http.Client
}

func newClient(projectURL, key string, opts ...Option) *client {
	c := &client{
		restURL:    strings.TrimRight(projectURL, "/") + "/rest/v1",
		key:        key,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request. body is JSON-encoded when non-nil; the response is
// decoded into dest when dest is non-nil and the body is not empty.
func (c *client) do(ctx context.Context, method, table string, query url.Values, body, dest any, prefer string) error {
	fullURL := c.restURL + "/" + table
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(data)
		if len(bodyStr) > maxErrorBody {
			bodyStr = bodyStr[:maxErrorBody]
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr}
		if resp.StatusCode >= 500 {
			return errors.Wrap(errors.ErrUnavailable, apiErr.Error())
		}
		return apiErr
	}

	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
