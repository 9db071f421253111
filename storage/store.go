package storage

import (
	"errors"
	"os"
	"sort"
	"sync"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Store is the save-data key space shared by characters and scripted events.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemStore is an in-memory Store that can be persisted as YAML.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]any)}
}

func (s *MemStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemStore) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bool reads key as a boolean flag; missing or non-bool values are false.
func Bool(s Store, key string) bool {
	if s == nil {
		return false
	}
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Float reads key as a number.
func Float(s Store, key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Load reads a YAML save file. A missing file yields an empty store.
func Load(path string) (*MemStore, error) {
	s := NewMemStore()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, oops.In("storage").With("path", path).Wrapf(err, "read save")
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, oops.In("storage").With("path", path).Wrapf(err, "parse save")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	return s, nil
}

// Save writes the store to path as YAML.
func (s *MemStore) Save(path string) error {
	s.mu.RLock()
	data, err := yaml.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return oops.In("storage").Wrapf(err, "marshal save")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oops.In("storage").With("path", path).Wrapf(err, "write save")
	}
	return nil
}
