// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/wneessen/weather-forecast/internal/forecast"
)

const fileSuffix = ".forecast"

// Store is a key/value store for cache records. Load returns an empty string and no error if
// no record exists for the key.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, text string) error
}

// Persist encodes the forecast set and stores it under its city key.
func Persist(ctx context.Context, store Store, set forecast.Set) error {
	if err := store.Save(ctx, set.City, Encode(set)); err != nil {
		return fmt.Errorf("failed to persist forecast for %q: %w", set.City, err)
	}
	return nil
}

// Restore loads and decodes the record stored under key.
func Restore(ctx context.Context, store Store, key string) (forecast.Set, error) {
	text, err := store.Load(ctx, key)
	if err != nil {
		return forecast.Set{}, fmt.Errorf("failed to load forecast for %q: %w", key, err)
	}
	return Decode(text)
}

// FileStore keeps one file per key in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cache directory must not be empty")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Load(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cache file: %w", err)
	}
	return string(data), nil
}

// Save writes the record to a temporary file and renames it into place, so readers only ever
// see complete records.
func (s *FileStore) Save(ctx context.Context, key, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err = os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*"+fileSuffix)
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary cache file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temporary cache file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary cache file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}

// path maps a key to a file name inside the store directory. Keys are escaped, so every key
// maps to a distinct file and no key can leave the directory.
func (s *FileStore) path(key string) (string, error) {
	if key == "" {
		return "", errors.New("cache key must not be empty")
	}
	return filepath.Join(s.dir, url.PathEscape(key)+fileSuffix), nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[key], nil
}

func (s *MemoryStore) Save(_ context.Context, key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = text
	return nil
}
