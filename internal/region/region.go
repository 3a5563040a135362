// Package region implements player-defined sound regions: named, owned,
// axis-aligned volumes that trigger sounds on enter, leave and loop.
package region

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
)

// Console is the owner id of regions created by a non-player.
var Console = uuid.Nil

// Region is a named, owned volume in one world.
// ID, creator, world, volume and creation time never change; name and
// description change only through Store.
type Region struct {
	id          uuid.UUID
	name        string
	creator     uuid.UUID
	world       string
	volume      Volume
	description string
	createdAt   time.Time
}

// Restore rebuilds a Region loaded from persistence. Validation is the
// caller's business: persisted regions were validated on creation.
func Restore(id uuid.UUID, name string, creator uuid.UUID, world string, vol Volume, description string, createdAt time.Time) *Region {
	return &Region{
		id:          id,
		name:        name,
		creator:     creator,
		world:       world,
		volume:      NewVolume(vol.Min, vol.Max),
		description: description,
		createdAt:   createdAt,
	}
}

func (r *Region) ID() uuid.UUID        { return r.id }
func (r *Region) Name() string         { return r.name }
func (r *Region) Creator() uuid.UUID   { return r.creator }
func (r *Region) World() string        { return r.world }
func (r *Region) Volume() Volume       { return r.volume }
func (r *Region) Description() string  { return r.description }
func (r *Region) CreatedAt() time.Time { return r.createdAt }

// OwnedByConsole reports whether the region has no player owner.
func (r *Region) OwnedByConsole() bool { return r.creator == Console }

// Contains reports whether loc is inside the region, world included.
func (r *Region) Contains(loc model.Location) bool {
	return loc.World == r.world && r.volume.Contains(loc)
}

// MinCorner returns the lowest corner as a Location (used for teleport).
func (r *Region) MinCorner() model.Location {
	m := r.volume.Min
	return model.NewLocation(r.world, float64(m.X), float64(m.Y), float64(m.Z), 0)
}

// Snapshot returns a detached copy, safe to hand to another goroutine.
func (r *Region) Snapshot() Region {
	return *r
}

// Border returns points along the 12 outer edges of the region, one per
// block, corners included once. The order is stable for a given volume.
func (r *Region) Border() []model.Location {
	v := r.volume
	x0, y0, z0 := float64(v.Min.X), float64(v.Min.Y), float64(v.Min.Z)
	x1, y1, z1 := float64(v.Max.X)+1, float64(v.Max.Y)+1, float64(v.Max.Z)+1

	seen := make(map[[3]float64]struct{})
	var points []model.Location
	add := func(x, y, z float64) {
		key := [3]float64{x, y, z}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		points = append(points, model.NewLocation(r.world, x, y, z, 0))
	}

	for _, y := range []float64{y0, y1} {
		for _, z := range []float64{z0, z1} {
			for x := x0; x <= x1; x++ {
				add(x, y, z)
			}
		}
	}
	for _, x := range []float64{x0, x1} {
		for _, z := range []float64{z0, z1} {
			for y := y0; y <= y1; y++ {
				add(x, y, z)
			}
		}
	}
	for _, x := range []float64{x0, x1} {
		for _, y := range []float64{y0, y1} {
			for z := z0; z <= z1; z++ {
				add(x, y, z)
			}
		}
	}

	return points
}
