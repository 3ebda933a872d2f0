// Package memory is an in-process state.KV. A store built with NewFromFiles
// also writes every value back to its directory, one file per key.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a mutex-guarded map of keys to serialized values.
type Store struct {
	mu     sync.Mutex
	values map[string]string
	saves  int
	dir    string // empty: values are not written anywhere
}

func New(seed map[string]string) *Store {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &Store{values: values}
}

// NewFromFiles seeds the store from files in base named after the keys
// (for example base/categories) and writes later saves back there. Missing
// or unreadable files are skipped.
func NewFromFiles(base string, keys ...string) *Store {
	seed := make(map[string]string)
	for _, key := range keys {
		b, err := os.ReadFile(filepath.Join(base, key))
		if err != nil {
			continue
		}
		v := strings.TrimSpace(string(b))
		if v == "" {
			continue
		}
		seed[key] = v
	}
	s := New(seed)
	s.dir = base
	return s
}

// Load returns the value stored under key.
func (s *Store) Load(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Save stores value under key, replacing any previous value. File-backed
// stores write the file first and keep the old value if that fails.
func (s *Store) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dir != "" {
		if err := writeFile(s.dir, key, value); err != nil {
			return err
		}
	}
	s.values[key] = value
	s.saves++
	return nil
}

// Saves reports how many writes the store has received.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// writeFile atomically replaces base/key via a temp file and rename.
func writeFile(base, key, value string) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(base, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(value + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(base, key)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
