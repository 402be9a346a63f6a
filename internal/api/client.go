// Package api is a typed client for the Lingomate backend REST API. Every
// request carries a bearer token when one is available; responses use the
// backend's standard success/data/message envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// TokenSource supplies the current access token, or "" when logged out.
type TokenSource interface {
	AccessToken() string
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func() string

func (f TokenSourceFunc) AccessToken() string { return f() }

// Client talks to the Lingomate backend.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTokenSource sets the bearer-token supplier.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  log.WithPrefix("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// do executes a request with JSON body handling and returns the decoded
// envelope. The raw envelope is returned even on application-level failure so
// callers can inspect message/code.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	env := Envelope{Raw: respBody}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil {
			if resp.StatusCode >= 300 {
				return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
			}
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		return &env, &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	c.logger.Debug("request completed", "method", method, "path", path, "status", resp.StatusCode)
	return &env, nil
}

// decode unwraps an envelope's data field into out.
func decode(env *Envelope, out any) error {
	if env == nil || len(env.Data) == 0 {
		return fmt.Errorf("empty response data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	env, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(env, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	env, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(env, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	env, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(env, out)
}

func (c *Client) delete(ctx context.Context, path string, body any) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, body)
	return err
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}
