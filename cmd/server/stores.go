package main

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/iliyamo/train-seat-reservation/internal/config"
	"github.com/iliyamo/train-seat-reservation/internal/database"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
)

type stores struct {
	trains repository.RecordStore[model.Train]
	users  repository.RecordStore[model.User]
	db     *sql.DB
}

func (s *stores) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// openStores builds the record stores for cfg.StoreBackend.
func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return &stores{
			trains: repository.NewMemoryStore[model.Train](),
			users:  repository.NewMemoryStore[model.User](),
		}, nil
	case config.BackendMySQL, config.BackendPostgres:
		dialect := database.Dialect(cfg.StoreBackend)
		db, err := database.Open(dialect, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, db, dialect); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			trains: repository.NewSQLStore[model.Train](db, dialect, "trains"),
			users:  repository.NewSQLStore[model.User](db, dialect, "users"),
			db:     db,
		}, nil
	case config.BackendFile:
		return &stores{
			trains: repository.NewJSONFileStore[model.Train](filepath.Join(cfg.DataDir, "trains.json")),
			users:  repository.NewJSONFileStore[model.User](filepath.Join(cfg.DataDir, "users.json")),
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
