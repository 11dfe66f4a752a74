package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// entry mirrors the on-disk format: a null release_date records a lookup that
// found nothing, so the name is never queried again.
type entry struct {
	ReleaseDate *string `json:"release_date"`
}

// Store is a persistent map from normalized game name to release date.
// It is loaded fully into memory on open and rewritten after every update.
// Single-process, single-goroutine use.
type Store struct {
	path    string
	entries map[string]entry
}

// Open loads the cache file at path. A missing file yields an empty cache;
// a malformed file is an error so a corrupt cache is never silently dropped.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]entry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("failed to parse cache file %s: %w", path, err)
	}
	return s, nil
}

// NormalizeKey maps a display name to its cache key. "Game A", "game a" and
// " Game A " all collide to the same entry.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the cached release date for name. hit reports whether the
// name has an entry at all; date is empty for a cached "no result".
func (s *Store) Lookup(name string) (date string, hit bool) {
	e, ok := s.entries[NormalizeKey(name)]
	if !ok {
		return "", false
	}
	if e.ReleaseDate == nil {
		return "", true
	}
	return *e.ReleaseDate, true
}

// Put records a resolution for name and persists the cache. An empty date
// stores the "no result" sentinel.
func (s *Store) Put(name string, date string) error {
	e := entry{}
	if date != "" {
		d := date
		e.ReleaseDate = &d
	}
	s.entries[NormalizeKey(name)] = e
	return s.save()
}

// Len returns the number of cached names
func (s *Store) Len() int {
	return len(s.entries)
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	// Write to a temp file first so an interrupted save never truncates the
	// existing cache.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
