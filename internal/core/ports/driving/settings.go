package driving

import "github.com/litdb/litdb/internal/core/domain"

// SettingsService reads and writes application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Save persists settings.
	Save(settings *domain.Settings) error

	// Set parses and stores a single dotted key, e.g. "openalex.email".
	Set(key, value string) error

	// Unset removes a stored key so its default applies.
	Unset(key string) error

	// Keys returns every recognised key, sorted.
	Keys() []string

	// Validate checks the embedding configuration is usable.
	Validate() error
}
