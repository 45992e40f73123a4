package openalex

import (
	"net/http"
	"time"

	"github.com/litdb/litdb/internal/core/domain"
)

const (
	// DefaultBaseURL is the public OpenAlex API.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 180 * time.Second

	// DefaultMaxAttempts is the total number of attempts per request,
	// including the first.
	DefaultMaxAttempts = 5

	// DefaultBackoffBase is the wait before the second attempt. Each later
	// wait doubles.
	DefaultBackoffBase = 2 * time.Second

	// DefaultPerPage is the page size for cursor pagination (the API maximum).
	DefaultPerPage = 200
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the API root.
	BaseURL string

	// Email is sent as mailto for the polite pool.
	Email string

	// APIKey is sent as api_key when set.
	APIKey string

	// Rate is the maximum requests per second across all callers.
	Rate float64

	// PerPage is the page size for listings.
	PerPage int

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxAttempts bounds retries.
	MaxAttempts int

	// BackoffBase is the first retry wait.
	BackoffBase time.Duration

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Rate:        domain.DefaultRequestRate,
		PerPage:     DefaultPerPage,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
	}
}

// ConfigFromSettings builds a Config from application settings.
func ConfigFromSettings(s domain.OpenAlexSettings) Config {
	cfg := DefaultConfig()
	cfg.Email = s.Email
	cfg.APIKey = s.APIKey
	if s.Rate > 0 {
		cfg.Rate = s.Rate
	}
	return cfg
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Rate <= 0 {
		c.Rate = d.Rate
	}
	if c.PerPage <= 0 {
		c.PerPage = d.PerPage
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = d.BackoffBase
	}
	return c
}
