package memory

import (
	"maps"
	"sync"

	"github.com/litdb/litdb/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Saves are counted for tests.
type ConfigStore struct {
	mu     sync.Mutex
	values map[string]any
	saved  map[string]any
	saves  int
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

func (s *ConfigStore) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Save snapshots the current values.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = maps.Clone(s.values)
	s.saves++
	return nil
}

// Saved returns the values at the last Save and how many saves ran.
func (s *ConfigStore) Saved() (map[string]any, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.saved), s.saves
}

func (s *ConfigStore) Path() string { return ":memory:" }
