package region

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/model"
)

func testRegion(min, max model.BlockPos) *Region {
	return Restore(uuid.Must(uuid.NewV4()), "Test", u1, "world", NewVolume(min, max), "", time.Unix(0, 0))
}

func TestRegion_BorderSingleBlock(t *testing.T) {
	r := testRegion(model.BlockPos{X: 3, Y: 64, Z: -2}, model.BlockPos{X: 3, Y: 64, Z: -2})

	points := r.Border()
	require.Len(t, points, 8, "one block has only its corners")
}

func TestRegion_BorderPointsLieOnEdges(t *testing.T) {
	tests := []struct {
		name     string
		min, max model.BlockPos
	}{
		{"cube", model.BlockPos{}, model.BlockPos{X: 2, Y: 2, Z: 2}},
		{"flat", model.BlockPos{X: -5, Y: 10, Z: -5}, model.BlockPos{X: 5, Y: 10, Z: 0}},
		{"column", model.BlockPos{X: 1, Y: 0, Z: 1}, model.BlockPos{X: 1, Y: 20, Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRegion(tt.min, tt.max)
			points := r.Border()

			dx := int(tt.max.X-tt.min.X) + 1
			dy := int(tt.max.Y-tt.min.Y) + 1
			dz := int(tt.max.Z-tt.min.Z) + 1
			assert.Len(t, points, 4*(dx+dy+dz)-4)

			x0, y0, z0 := float64(tt.min.X), float64(tt.min.Y), float64(tt.min.Z)
			x1, y1, z1 := float64(tt.max.X)+1, float64(tt.max.Y)+1, float64(tt.max.Z)+1
			onFace := func(v, lo, hi float64) bool { return v == lo || v == hi }

			seen := make(map[model.Location]bool)
			for _, p := range points {
				assert.Equal(t, "world", p.World)
				assert.False(t, seen[p], "duplicate point %v", p)
				seen[p] = true

				faces := 0
				for _, f := range []bool{onFace(p.X, x0, x1), onFace(p.Y, y0, y1), onFace(p.Z, z0, z1)} {
					if f {
						faces++
					}
				}
				assert.GreaterOrEqual(t, faces, 2, "point %v is not on an edge", p)
			}
		})
	}
}

func TestRegion_BorderIsDeterministic(t *testing.T) {
	r := testRegion(model.BlockPos{}, model.BlockPos{X: 4, Y: 3, Z: 2})
	assert.Equal(t, r.Border(), r.Border())
}

func TestRegion_ContainsChecksWorld(t *testing.T) {
	r := testRegion(model.BlockPos{}, model.BlockPos{X: 10, Y: 10, Z: 10})

	assert.True(t, r.Contains(model.NewLocation("world", 5, 5, 5, 0)))
	assert.False(t, r.Contains(model.NewLocation("world_the_end", 5, 5, 5, 0)))
}

func TestRegion_MinCornerAndSnapshot(t *testing.T) {
	r := testRegion(model.BlockPos{X: 9, Y: 1, Z: 9}, model.BlockPos{X: -1, Y: 5, Z: 2})

	assert.Equal(t, model.NewLocation("world", -1, 1, 2, 0), r.MinCorner())

	snap := r.Snapshot()
	r.name = "Changed"
	assert.Equal(t, "Test", snap.Name(), "snapshot is detached")
}
