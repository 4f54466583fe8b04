// Package api implements the HTTP client for the CodePrep platform API.
//
// Every endpoint speaks the same JSON envelope: a `success` flag, an
// optional `data` payload and a human-readable `message`. The client
// inspects the body's success flag before trusting the HTTP status, and
// normalizes transport failures and application failures into *Error
// values whose Error() string is suitable for inline display.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// GenericErrorMessage is shown when a failure carries no usable message
// from the server (network failure, unparseable body, empty message).
const GenericErrorMessage = "Something went wrong. Please try again."

// Error is an application-level failure reported by the platform API.
type Error struct {
	// Status is the HTTP status code of the response, 0 for transport
	// failures that produced no response.
	Status int
	// Message is the display string, taken from the response body's
	// `message` field when present.
	Message string
	// Fallback is true when Message did not come from the response body.
	Fallback bool
}

func (e *Error) Error() string {
	return e.Message
}

// Display normalizes any error into the string a component should render
// inline next to the affected UI region.
func Display(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}

// TokenFunc supplies the current bearer token, or "" when anonymous.
type TokenFunc func() string

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenFunc
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetTokenFunc installs the session token source. Safe to leave unset for
// anonymous browsing.
func (c *Client) SetTokenFunc(fn TokenFunc) {
	c.token = fn
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// envelope is the platform's standard response wrapper. Endpoints that
// return extra top-level fields (username-check, code run, submission
// lists) are decoded a second time from the raw body.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Message: GenericErrorMessage, Fallback: true}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: GenericErrorMessage, Fallback: true}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Status: resp.StatusCode, Message: GenericErrorMessage, Fallback: true}
	}

	// The body's success flag wins over the HTTP status.
	if env.Success != nil && !*env.Success {
		msg := env.Message
		fallback := false
		if msg == "" {
			msg = GenericErrorMessage
			fallback = true
		}
		return &Error{Status: resp.StatusCode, Message: msg, Fallback: fallback}
	}
	if env.Success == nil && resp.StatusCode >= 400 {
		msg := env.Message
		fallback := false
		if msg == "" {
			msg = GenericErrorMessage
			fallback = true
		}
		return &Error{Status: resp.StatusCode, Message: msg, Fallback: fallback}
	}

	if out == nil {
		return nil
	}

	// Most endpoints nest their payload under `data`; the rest (availability
	// checks, run results, submission lists) put fields at the top level.
	payload := raw
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		payload = env.Data
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
