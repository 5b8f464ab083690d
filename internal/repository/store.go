package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
)

// RecordStore persists one whole collection at a time. LoadAll returns an
// empty slice, not an error, when nothing has been stored yet. SaveAll
// replaces the stored collection atomically: a reader sees either the old
// or the new collection, never a mix.
type RecordStore[T any] interface {
	LoadAll(ctx context.Context) ([]T, error)
	SaveAll(ctx context.Context, records []T) error
}

// MemoryStore is a RecordStore kept in process memory. It stores the JSON
// encoding so callers never share slices with the store, matching what a
// file or database backend would do.
type MemoryStore[T any] struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{}
}

// LoadAll decodes the last saved collection.
func (s *MemoryStore[T]) LoadAll(_ context.Context) ([]T, error) {
	s.mu.Lock()
	data := s.data
	s.mu.Unlock()
	return decodeCollection[T](data)
}

// SaveAll replaces the collection.
func (s *MemoryStore[T]) SaveAll(_ context.Context, records []T) error {
	data, err := encodeCollection(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// encodeCollection marshals records as a JSON array; nil becomes [].
func encodeCollection[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// decodeCollection treats empty or whitespace-only input as an empty
// collection.
func decodeCollection[T any](data []byte) ([]T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
