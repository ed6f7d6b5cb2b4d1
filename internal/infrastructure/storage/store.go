package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a persistent string key-value store.
// A Store with no backing path keeps flags in memory only.
type Store struct {
	mu    sync.RWMutex
	path  string
	flags map[string]string
}

// Open loads or creates a store backed by the given file.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		flags: make(map[string]string),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flag store: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.flags); err != nil {
		return nil, fmt.Errorf("failed to parse flag store: %w", err)
	}
	return s, nil
}

// NewMemory creates a store with no backing file.
func NewMemory() *Store {
	return &Store{flags: make(map[string]string)}
}

// Get returns the value for a key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.flags[key]
	return v, ok
}

// GetBool reports whether the key holds the string "true".
func (s *Store) GetBool(key string) bool {
	v, ok := s.Get(key)
	return ok && v == "true"
}

// Set stores a value and persists the store.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = value
	return s.persistLocked()
}

// SetBool stores a boolean as the strings "true"/"false".
func (s *Store) SetBool(key string, v bool) error {
	if v {
		return s.Set(key, "true")
	}
	return s.Set(key, "false")
}

// Delete removes a key. Removing an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flags[key]; !ok {
		return nil
	}
	delete(s.flags, key)
	return s.persistLocked()
}

// Keys returns a snapshot of all stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.flags))
	for k := range s.flags {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored flags.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flags)
}

// persistLocked writes the store to disk. Callers must hold the write lock.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.flags, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal flag store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write flag store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace flag store: %w", err)
	}
	return nil
}
