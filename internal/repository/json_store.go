package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileStore keeps a collection as a single JSON array document on
// disk, e.g. ./localDB/trains.json. Every SaveAll rewrites the whole file
// through a temp file and rename, so a crash mid-write leaves the previous
// document in place.
type JSONFileStore[T any] struct {
	mu   sync.Mutex
	path string
}

// NewJSONFileStore returns a store backed by path. The file and its
// directory are created on the first SaveAll.
func NewJSONFileStore[T any](path string) *JSONFileStore[T] {
	return &JSONFileStore[T]{path: path}
}

// Path returns the backing file path.
func (s *JSONFileStore[T]) Path() string { return s.path }

// LoadAll reads the document. A missing or empty file is an empty collection.
func (s *JSONFileStore[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	out, err := decodeCollection[T](data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return out, nil
}

// SaveAll atomically replaces the document with records.
func (s *JSONFileStore[T]) SaveAll(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeCollection(records)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// The temp file must live in the same directory for rename to be atomic.
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", s.path, err)
	}

	success = true
	return nil
}
