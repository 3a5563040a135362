package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/soundscape/internal/config"
)

// Open connects the configured storage and applies migrations. The
// returned func releases it.
func Open(ctx context.Context, cfg config.StorageConfig) (Repository, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.Postgres.DSN()
		database, err := New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected", "driver", cfg.Driver)

		if err := RunMigrations(ctx, dsn); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		return NewRegionRepository(database), database.Close, nil

	case config.DriverSQLite:
		repo, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		slog.Info("database opened", "driver", cfg.Driver, "path", cfg.SQLitePath)
		return repo, func() { _ = repo.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}
