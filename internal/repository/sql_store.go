package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/train-seat-reservation/internal/database"
)

// SQLStore keeps a collection as one row of the record_collections table.
// SaveAll overwrites the row with a single upsert statement, so the
// collection is replaced atomically just like the JSON file backend.
type SQLStore[T any] struct {
	db      *sql.DB
	dialect database.Dialect
	name    string
}

// NewSQLStore returns a store for the named collection (e.g. "trains").
func NewSQLStore[T any](db *sql.DB, dialect database.Dialect, name string) *SQLStore[T] {
	return &SQLStore[T]{db: db, dialect: dialect, name: name}
}

// LoadAll returns the stored collection or an empty slice when the row
// does not exist yet.
func (s *SQLStore[T]) LoadAll(ctx context.Context) ([]T, error) {
	q := `SELECT body FROM record_collections WHERE name = ?`
	if s.dialect == database.Postgres {
		q = `SELECT body FROM record_collections WHERE name = $1`
	}
	var body string
	err := s.db.QueryRowContext(ctx, q, s.name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("loading collection %s: %w", s.name, err)
	}
	out, err := decodeCollection[T]([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w", s.name, err)
	}
	return out, nil
}

// SaveAll replaces the stored collection.
func (s *SQLStore[T]) SaveAll(ctx context.Context, records []T) error {
	body, err := encodeCollection(records)
	if err != nil {
		return fmt.Errorf("encoding collection %s: %w", s.name, err)
	}
	var q string
	switch s.dialect {
	case database.Postgres:
		q = `INSERT INTO record_collections (name, body, updated_at) VALUES ($1, $2, NOW())
		     ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`
	default:
		q = `INSERT INTO record_collections (name, body) VALUES (?, ?)
		     ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = CURRENT_TIMESTAMP`
	}
	if _, err := s.db.ExecContext(ctx, q, s.name, string(body)); err != nil {
		return fmt.Errorf("saving collection %s: %w", s.name, err)
	}
	return nil
}
