package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/litdb/litdb/internal/logger"
)

// maxErrorBody bounds how much of an error response is kept for logging.
const maxErrorBody = 512

// EmptyEnvelope is the body returned in place of a failed request. It
// decodes as a listing with no results and no next cursor, so pagination
// loops end cleanly.
var EmptyEnvelope = json.RawMessage(`{"meta":{"next_cursor":null},"results":[]}`)

// Response is the outcome of Get.
type Response struct {
	// Body is the JSON body, or EmptyEnvelope when OK is false.
	Body json.RawMessage

	// StatusCode is the last HTTP status seen, 0 for transport failures.
	StatusCode int

	// Attempts is the number of requests made.
	Attempts int

	// OK is true when a 2xx response was received.
	OK bool

	// Err is the last failure when OK is false. Status failures are
	// *APIError.
	Err error
}

// Client is a rate-limited, retrying OpenAlex HTTP client.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *RateLimiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client. Zero config fields take defaults.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: NewRateLimiter(cfg.Rate),
		sleep:   sleepContext,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Get fetches rawURL with params. It never returns an error: a request that
// cannot be completed returns EmptyEnvelope with OK set to false, after
// logging the status and URL.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) Response {
	target, err := c.buildURL(rawURL, params)
	if err != nil {
		logger.Warn("openalex: bad url %s: %v", rawURL, err)
		return Response{Body: EmptyEnvelope, Err: err}
	}

	resp := Response{Body: EmptyEnvelope}
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn("openalex: %s abandoned: %v", target, err)
			resp.Err = err
			return resp
		}

		resp.Attempts = attempt
		body, status, retryAfter, err := c.do(ctx, target)
		resp.StatusCode = status
		resp.Err = err

		switch {
		case err == nil:
			resp.Body = body
			resp.OK = true
			return resp
		case ctx.Err() != nil:
			logger.Warn("openalex: %s abandoned: %v", target, ctx.Err())
			resp.Err = ctx.Err()
			return resp
		case status != 0 && !IsRetryable(status):
			logger.Warn("openalex: %v", err)
			return resp
		}

		if attempt == c.cfg.MaxAttempts {
			logger.Warn("openalex: giving up after %d attempts: %v", attempt, err)
			return resp
		}

		wait := c.backoff(attempt)
		if retryAfter > wait {
			wait = retryAfter
		}
		if status == http.StatusTooManyRequests {
			c.limiter.RecordRetryAfter(retryAfter)
		}
		logger.Debug("openalex: attempt %d for %s failed (%v), retrying in %s", attempt, target, err, wait)
		if err := c.sleep(ctx, wait); err != nil {
			logger.Warn("openalex: %s abandoned: %v", target, err)
			resp.Err = err
			return resp
		}
	}
	return resp
}

// do performs one request. A non-nil error with a non-zero status is an
// *APIError; with a zero status it is a transport failure.
func (c *Client) do(ctx context.Context, target string) (json.RawMessage, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("request %s: %w", target, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, res.StatusCode, parseRetryAfter(res), &APIError{
			StatusCode: res.StatusCode,
			Message:    string(msg),
			URL:        target,
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read %s: %w", target, err)
	}
	if !json.Valid(body) {
		return nil, res.StatusCode, 0, &APIError{StatusCode: res.StatusCode, Message: "invalid JSON body", URL: target}
	}
	return body, res.StatusCode, 0, nil
}

// backoff returns base * 2^(attempt-1).
func (c *Client) backoff(attempt int) time.Duration {
	return c.cfg.BackoffBase << (attempt - 1)
}

// buildURL merges params and the credential defaults into rawURL's query.
func (c *Client) buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("url must be absolute")
	}

	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.cfg.Email != "" && q.Get("mailto") == "" {
		q.Set("mailto", c.cfg.Email)
	}
	if c.cfg.APIKey != "" && q.Get("api_key") == "" {
		q.Set("api_key", c.cfg.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
