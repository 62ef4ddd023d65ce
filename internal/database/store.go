package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spotnere/admin-api/internal/config"
	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/internal/storage/postgres"
	"github.com/spotnere/admin-api/internal/storage/sqlite"
)

// Backend is a store that can also be seeded
type Backend interface {
	storage.Store
	storage.Seeder
}

// Open connects the store selected by cfg.DatabaseDriver
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := postgres.New(db, cfg.LockTimeout)
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
			slog.Info("Database schema migrated")
		}
		return store, nil

	case config.DriverSQLite:
		store, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}
