package region

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/soundscape/internal/model"
)

func TestNewVolume_Normalizes(t *testing.T) {
	v := NewVolume(model.BlockPos{X: 10, Y: -5, Z: 3}, model.BlockPos{X: -2, Y: 7, Z: 3})

	assert.Equal(t, model.BlockPos{X: -2, Y: -5, Z: 3}, v.Min)
	assert.Equal(t, model.BlockPos{X: 10, Y: 7, Z: 3}, v.Max)
}

func TestVolume_Area(t *testing.T) {
	tests := []struct {
		name string
		a, b model.BlockPos
		want int64
	}{
		{"cube", model.BlockPos{}, model.BlockPos{X: 10, Y: 10, Z: 10}, 1000},
		{"flat", model.BlockPos{}, model.BlockPos{X: 10, Y: 0, Z: 10}, 0},
		{"reversed", model.BlockPos{X: 5, Y: 5, Z: 5}, model.BlockPos{X: 0, Y: 0, Z: 0}, 125},
		{"negative", model.BlockPos{X: -3, Y: -3, Z: -3}, model.BlockPos{X: 2, Y: 2, Z: 2}, 125},
		// 2^66 не влезает в int64
		{"overflow", model.BlockPos{}, model.BlockPos{X: 1 << 22, Y: 1 << 22, Z: 1 << 22}, math.MaxInt64},
		{"full_range", model.BlockPos{X: math.MinInt32, Y: math.MinInt32, Z: math.MinInt32},
			model.BlockPos{X: math.MaxInt32, Y: math.MaxInt32, Z: math.MaxInt32}, math.MaxInt64},
		{"fits", model.BlockPos{}, model.BlockPos{X: 1 << 20, Y: 1 << 20, Z: 1 << 20}, 1 << 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewVolume(tt.a, tt.b).Area())
		})
	}
}

func TestVolume_Contains(t *testing.T) {
	v := NewVolume(model.BlockPos{X: 0, Y: 0, Z: 0}, model.BlockPos{X: 10, Y: 10, Z: 10})

	assert.True(t, v.Contains(model.NewLocation("world", 0, 0, 0, 0)))
	assert.True(t, v.Contains(model.NewLocation("world", 10.99, 10.5, 10.01, 0)), "max block is inclusive")
	assert.False(t, v.Contains(model.NewLocation("world", 11, 5, 5, 0)))
	assert.False(t, v.Contains(model.NewLocation("world", -0.01, 5, 5, 0)))
}

func TestVolume_IntersectsAgreesWithVoxelWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomBox := func() Volume {
		p := func() model.BlockPos {
			return model.BlockPos{
				X: int32(rng.Intn(20) - 10),
				Y: int32(rng.Intn(20) - 10),
				Z: int32(rng.Intn(20) - 10),
			}
		}
		return NewVolume(p(), p())
	}

	for i := 0; i < 500; i++ {
		a, b := randomBox(), randomBox()
		voxel := a.OverlapsVoxels(b)
		assert.Equal(t, voxel, a.Intersects(b), "a=%+v b=%+v", a, b)
		assert.Equal(t, voxel, b.OverlapsVoxels(a), "overlap must be symmetric: a=%+v b=%+v", a, b)
	}
}

func TestVolume_TouchingFacesOverlap(t *testing.T) {
	a := NewVolume(model.BlockPos{}, model.BlockPos{X: 10, Y: 10, Z: 10})
	b := NewVolume(model.BlockPos{X: 10, Y: 0, Z: 0}, model.BlockPos{X: 20, Y: 10, Z: 10})
	c := NewVolume(model.BlockPos{X: 11, Y: 0, Z: 0}, model.BlockPos{X: 20, Y: 10, Z: 10})

	assert.True(t, a.Intersects(b), "shared block column overlaps")
	assert.False(t, a.Intersects(c))
}
