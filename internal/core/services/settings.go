package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

type settingKind int

const (
	kindString settingKind = iota
	kindSecret
	kindCount
	kindRate
	kindProvider
)

// setting binds one dotted key to a field of domain.Settings.
type setting struct {
	kind settingKind
	get  func(*domain.Settings) any
	set  func(*domain.Settings, any)
}

func stringField(kind settingKind, field func(*domain.Settings) *string) setting {
	return setting{
		kind: kind,
		get:  func(s *domain.Settings) any { return *field(s) },
		set:  func(s *domain.Settings, v any) { *field(s) = v.(string) },
	}
}

func countField(field func(*domain.Settings) *int) setting {
	return setting{
		kind: kindCount,
		get:  func(s *domain.Settings) any { return *field(s) },
		set:  func(s *domain.Settings, v any) { *field(s) = v.(int) },
	}
}

var settingKeys = map[string]setting{
	"embedding.provider": {
		kind: kindProvider,
		get:  func(s *domain.Settings) any { return s.Embedding.Provider.String() },
		set:  func(s *domain.Settings, v any) { s.Embedding.Provider = domain.AIProvider(v.(string)) },
	},
	"embedding.model":         stringField(kindString, func(s *domain.Settings) *string { return &s.Embedding.Model }),
	"embedding.base_url":      stringField(kindString, func(s *domain.Settings) *string { return &s.Embedding.BaseURL }),
	"embedding.api_key":       stringField(kindSecret, func(s *domain.Settings) *string { return &s.Embedding.APIKey }),
	"embedding.dimensions":    countField(func(s *domain.Settings) *int { return &s.Embedding.Dimensions }),
	"embedding.chunk_size":    countField(func(s *domain.Settings) *int { return &s.Embedding.ChunkSize }),
	"embedding.chunk_overlap": countField(func(s *domain.Settings) *int { return &s.Embedding.ChunkOverlap }),
	"rerank.base_url":         stringField(kindString, func(s *domain.Settings) *string { return &s.Rerank.BaseURL }),
	"rerank.model":            stringField(kindString, func(s *domain.Settings) *string { return &s.Rerank.Model }),
	"openalex.email":          stringField(kindString, func(s *domain.Settings) *string { return &s.OpenAlex.Email }),
	"openalex.api_key":        stringField(kindSecret, func(s *domain.Settings) *string { return &s.OpenAlex.APIKey }),
	"openalex.citation_count_trigger": countField(func(s *domain.Settings) *int {
		return &s.OpenAlex.CitationCountTrigger
	}),
	"openalex.rate": {
		kind: kindRate,
		get:  func(s *domain.Settings) any { return s.OpenAlex.Rate },
		set:  func(s *domain.Settings, v any) { s.OpenAlex.Rate = v.(float64) },
	},
}

// SettingsService maps the flat config file onto domain.Settings.
type SettingsService struct {
	store driven.ConfigStore
}

// NewSettingsService creates a settings service over store.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{store: store}
}

// Get starts from the defaults and applies every stored value that has
// the right type. The model defaults per provider when unset.
func (s *SettingsService) Get() (*domain.Settings, error) {
	out := domain.DefaultSettings()
	for key, b := range settingKeys {
		raw, ok := s.store.Get(key)
		if !ok {
			continue
		}
		if v, ok := coerce(b.kind, raw); ok {
			b.set(&out, v)
		}
	}
	if _, ok := s.store.Get("embedding.model"); !ok {
		out.Embedding.Model = domain.DefaultEmbeddingModels()[out.Embedding.Provider]
	}
	return &out, nil
}

// Save writes every field. Empty secrets are removed rather than stored.
func (s *SettingsService) Save(in *domain.Settings) error {
	for key, b := range settingKeys {
		v := b.get(in)
		if b.kind == kindSecret && v == "" {
			s.store.Delete(key)
			continue
		}
		s.store.Set(key, v)
	}
	return s.save()
}

// Set parses value for key and persists it.
func (s *SettingsService) Set(key, value string) error {
	b, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	v, err := parse(b.kind, key, value)
	if err != nil {
		return err
	}
	s.store.Set(key, v)
	return s.save()
}

// Unset removes key so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingKeys[key]; !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	s.store.Delete(key)
	return s.save()
}

// Keys returns every recognised key, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the embedding provider and the chunk window.
func (s *SettingsService) Validate() error {
	cur, err := s.Get()
	if err != nil {
		return err
	}
	emb := cur.Embedding
	if !emb.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured: %w", emb.Provider, domain.ErrEmbeddingUnavailable)
	}
	if emb.ChunkOverlap >= emb.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d: %w",
			emb.ChunkOverlap, emb.ChunkSize, domain.ErrInvalidInput)
	}
	return nil
}

func (s *SettingsService) save() error {
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("writing %s: %w", s.store.Path(), err)
	}
	return nil
}

// parse reads a command-line value.
func parse(kind settingKind, key, value string) (any, error) {
	switch kind {
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("invalid embedding provider %q: %w", value, domain.ErrInvalidInput)
		}
	case kindCount:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer: %w", key, domain.ErrInvalidInput)
		}
		return n, nil
	case kindRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("%s must be a positive number: %w", key, domain.ErrInvalidInput)
		}
		return f, nil
	}
	return value, nil
}

// coerce converts a stored value. TOML gives int64 for integers; values
// set in this process are int. Zero counts and unknown providers fall
// back to the defaults.
func coerce(kind settingKind, raw any) (any, bool) {
	switch kind {
	case kindString, kindSecret:
		s, ok := raw.(string)
		return s, ok
	case kindProvider:
		s, ok := raw.(string)
		return s, ok && domain.AIProvider(s).IsValid()
	case kindCount:
		var n int
		switch v := raw.(type) {
		case int:
			n = v
		case int64:
			n = int(v)
		case float64:
			n = int(v)
		default:
			return nil, false
		}
		return n, n > 0
	case kindRate:
		var f float64
		switch v := raw.(type) {
		case float64:
			f = v
		case int64:
			f = float64(v)
		case int:
			f = float64(v)
		default:
			return nil, false
		}
		return f, f > 0
	}
	return nil, false
}
