package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/litdb/litdb/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFile is the settings file inside the database directory.
const ConfigFile = "litdb.toml"

// ConfigStore reads litdb.toml once and rewrites it on Save. Tables are
// flattened to dotted keys in memory.
type ConfigStore struct {
	mu   sync.Mutex
	path string
	flat map[string]any
}

// NewConfigStore opens root/litdb.toml, creating root if needed. A missing
// file is an empty configuration.
func NewConfigStore(root string) (*ConfigStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", root, err)
	}
	s := &ConfigStore{path: filepath.Join(root, ConfigFile), flat: map[string]any{}}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, err
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	flatten(doc, "", s.flat)
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.flat[key]
	return v, ok
}

func (s *ConfigStore) Set(key string, value any) {
	s.mu.Lock()
	s.flat[key] = value
	s.mu.Unlock()
}

func (s *ConfigStore) Delete(key string) {
	s.mu.Lock()
	delete(s.flat, key)
	s.mu.Unlock()
}

// Save writes the file through a temporary sibling so a failed write
// leaves the old settings in place. The file holds API keys and is
// private to the user.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(nest(s.flat))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".litdb-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *ConfigStore) Path() string { return s.path }

// Keys returns the stored keys, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.flat))
	for k := range s.flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flatten copies nested tables into out under dotted keys.
func flatten(doc map[string]any, prefix string, out map[string]any) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(table, key, out)
			continue
		}
		out[key] = v
	}
}

// nest rebuilds tables from dotted keys.
func nest(flat map[string]any) map[string]any {
	doc := make(map[string]any)
	for key, v := range flat {
		parts := strings.Split(key, ".")
		table := doc
		for _, p := range parts[:len(parts)-1] {
			next, ok := table[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				table[p] = next
			}
			table = next
		}
		table[parts[len(parts)-1]] = v
	}
	return doc
}
