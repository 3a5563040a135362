package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	_ "modernc.org/sqlite"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
)

// SQLiteRepository stores regions in an embedded SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating when missing) the database at path and
// applies migrations. ":memory:" keeps everything in memory.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path == "" {
		return nil, errors.New("empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// один писатель; для :memory: каждое соединение видело бы свою базу
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := migrate(ctx, sqlDB, "sqlite3", "sqlite"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteRepository{db: sqlDB}, nil
}

func initPragmas(ctx context.Context, sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("applying %s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

const upsertRegionSQLite = `INSERT INTO regions (id, name, creator, world, min_x, min_y, min_z, max_x, max_y, max_z, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, description = excluded.description`

// Save inserts r or updates its name and description.
func (s *SQLiteRepository) Save(ctx context.Context, reg region.Region) error {
	vol := reg.Volume()
	_, err := s.db.ExecContext(ctx, upsertRegionSQLite,
		reg.ID().String(), reg.Name(), reg.Creator().String(), reg.World(),
		vol.Min.X, vol.Min.Y, vol.Min.Z,
		vol.Max.X, vol.Max.Y, vol.Max.Z,
		reg.Description(), reg.CreatedAt().UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("saving region %s: %w", reg.Name(), region.ErrAlreadyExists)
		}
		return fmt.Errorf("saving region %s: %w", reg.Name(), err)
	}
	return nil
}

// Delete removes r.
func (s *SQLiteRepository) Delete(ctx context.Context, reg region.Region) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, reg.ID().String()); err != nil {
		return fmt.Errorf("deleting region %s: %w", reg.Name(), err)
	}
	return nil
}

// LoadAll loads every region.
func (s *SQLiteRepository) LoadAll(ctx context.Context) ([]*region.Region, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, creator, world, min_x, min_y, min_z, max_x, max_y, max_z, description, created_at
		FROM regions
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("loading regions: %w", err)
	}
	defer rows.Close()

	var regions []*region.Region
	for rows.Next() {
		var (
			rawID, rawCreator string
			name, world       string
			minX, minY, minZ  int32
			maxX, maxY, maxZ  int32
			description       string
			createdAt         int64
		)
		if err := rows.Scan(&rawID, &name, &rawCreator, &world, &minX, &minY, &minZ, &maxX, &maxY, &maxZ, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning region row: %w", err)
		}
		id, err := uuid.FromString(rawID)
		if err != nil {
			return nil, fmt.Errorf("region id %q: %w", rawID, err)
		}
		creator, err := uuid.FromString(rawCreator)
		if err != nil {
			return nil, fmt.Errorf("region %s creator %q: %w", name, rawCreator, err)
		}

		vol := region.NewVolume(model.BlockPos{X: minX, Y: minY, Z: minZ}, model.BlockPos{X: maxX, Y: maxY, Z: maxZ})
		regions = append(regions, region.Restore(id, name, creator, world, vol, description, time.UnixMilli(createdAt).UTC()))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating region rows: %w", err)
	}
	return regions, nil
}
