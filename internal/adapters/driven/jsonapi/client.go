// Package jsonapi is the small JSON-over-HTTP client shared by the
// embedding and rerank adapters.
package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// StatusError is a non-2xx response.
type StatusError struct {
	Service string
	Status  int
	Body    string
	cause   error
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Body)
}

// Unwrap returns the error the client was built with, so callers can
// match the failure with errors.Is.
func (e *StatusError) Unwrap() error { return e.cause }

// Client posts and gets JSON documents relative to a base URL. Transport
// failures and error statuses wrap Unavailable.
type Client struct {
	Service     string
	BaseURL     string
	Header      http.Header
	Unavailable error

	http *http.Client
}

// New returns a client with the given request timeout.
func New(service, baseURL string, timeout time.Duration, unavailable error) *Client {
	return &Client{
		Service:     service,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Header:      make(http.Header),
		Unavailable: unavailable,
		http:        &http.Client{Timeout: timeout},
	}
}

// Post sends in as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encoding request: %w", c.Service, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// Get requests path and decodes the response into out, which may be nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, http.NoBody, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Service, err)
	}
	for k, v := range c.Header {
		req.Header[k] = v
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s: %v: %w", c.Service, err, c.Unavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Service: c.Service,
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(msg)),
			cause:   c.Unavailable,
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", c.Service, err)
	}
	return nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

// Float32s narrows a JSON vector.
func Float32s(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
