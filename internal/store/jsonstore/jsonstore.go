package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/model"
)

// JSON-backed rate cache. Single file, human-readable, portable.
// Writes go through a temp file and a rename so a crash never leaves half a
// document behind.

// DefaultFileName is used when no path is configured.
const DefaultFileName = "rates.json"

// Store keeps the last known rates in one JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a Store writing to path. An empty path resolves to
// DefaultFileName under the user cache directory.
func New(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &Store{path: path}, nil
}

// DefaultPath is <user cache dir>/fxlist/rates.json.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("user cache dir: %w", err)
	}
	return filepath.Join(dir, "fxlist", DefaultFileName), nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the cached rates. A missing file is an empty cache, not an error.
func (s *Store) Load(ctx context.Context) ([]model.Currency, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Currency{}, nil
		}
		return nil, fmt.Errorf("%w: read file: %w", apperrors.ErrCache, err)
	}
	var records []model.Currency
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %w", apperrors.ErrCache, err)
	}
	if records == nil {
		records = []model.Currency{}
	}
	return records, nil
}

// Save replaces the cached rates.
func (s *Store) Save(ctx context.Context, records []model.Currency) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %w", apperrors.ErrCache, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".rates-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", apperrors.ErrCache, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write file: %w", apperrors.ErrCache, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close file: %w", apperrors.ErrCache, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: rename: %w", apperrors.ErrCache, err)
	}
	return nil
}

// Clear deletes the cache file. Clearing an absent cache is fine.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: remove: %w", apperrors.ErrCache, err)
	}
	return nil
}

// Describe names the backend for humans.
func (s *Store) Describe() string { return "file " + s.path }
