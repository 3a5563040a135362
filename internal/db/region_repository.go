package db

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
)

// RegionRepository stores regions in PostgreSQL.
type RegionRepository struct {
	db *DB
}

// NewRegionRepository creates a new region repository.
func NewRegionRepository(db *DB) *RegionRepository {
	return &RegionRepository{db: db}
}

const upsertRegion = `INSERT INTO regions (id, name, creator, world, min_x, min_y, min_z, max_x, max_y, max_z, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`

// Save inserts r or updates its name and description. Volume, world and
// creator never change after creation.
func (r *RegionRepository) Save(ctx context.Context, reg region.Region) error {
	vol := reg.Volume()
	_, err := r.db.pool.Exec(ctx, upsertRegion,
		reg.ID(), reg.Name(), reg.Creator(), reg.World(),
		vol.Min.X, vol.Min.Y, vol.Min.Z,
		vol.Max.X, vol.Max.Y, vol.Max.Z,
		reg.Description(), reg.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("saving region %s: %w", reg.Name(), region.ErrAlreadyExists)
		}
		return fmt.Errorf("saving region %s: %w", reg.Name(), err)
	}
	return nil
}

// Delete removes r. Deleting a missing row is not an error.
func (r *RegionRepository) Delete(ctx context.Context, reg region.Region) error {
	if _, err := r.db.pool.Exec(ctx, `DELETE FROM regions WHERE id = $1`, reg.ID()); err != nil {
		return fmt.Errorf("deleting region %s: %w", reg.Name(), err)
	}
	return nil
}

// LoadAll loads every region.
func (r *RegionRepository) LoadAll(ctx context.Context) ([]*region.Region, error) {
	query := `
		SELECT id, name, creator, world, min_x, min_y, min_z, max_x, max_y, max_z, description, created_at
		FROM regions
		ORDER BY created_at
	`

	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading regions: %w", err)
	}
	defer rows.Close()

	var regions []*region.Region
	for rows.Next() {
		var (
			id, creator      uuid.UUID
			name, world      string
			minX, minY, minZ int32
			maxX, maxY, maxZ int32
			description      string
			createdAt        time.Time
		)
		if err := rows.Scan(&id, &name, &creator, &world, &minX, &minY, &minZ, &maxX, &maxY, &maxZ, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning region row: %w", err)
		}

		vol := region.NewVolume(model.BlockPos{X: minX, Y: minY, Z: minZ}, model.BlockPos{X: maxX, Y: maxY, Z: maxZ})
		regions = append(regions, region.Restore(id, name, creator, world, vol, description, createdAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating region rows: %w", err)
	}

	return regions, nil
}
