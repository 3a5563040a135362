package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name  string
		world string
		x     float64
		y     float64
		z     float64
		yaw   float32
		want  Location
	}{
		{
			name:  "zero values",
			world: "world",
			want:  Location{World: "world"},
		},
		{
			name:  "positive coordinates",
			world: "world",
			x:     100, y: 64, z: 300, yaw: 90,
			want: Location{World: "world", X: 100, Y: 64, Z: 300, Yaw: 90},
		},
		{
			name:  "negative coordinates",
			world: "world_nether",
			x:     -100.5, y: -20, z: -300.25, yaw: -180,
			want: Location{World: "world_nether", X: -100.5, Y: -20, Z: -300.25, Yaw: -180},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLocation(tt.world, tt.x, tt.y, tt.z, tt.yaw)
			if got != tt.want {
				t.Errorf("NewLocation() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocation_Immutable(t *testing.T) {
	loc := NewLocation("world", 1, 2, 3, 0)

	moved := loc.WithCoordinates(4, 5, 6)
	turned := loc.WithYaw(45)

	assert.Equal(t, NewLocation("world", 1, 2, 3, 0), loc, "original must not change")
	assert.Equal(t, NewLocation("world", 4, 5, 6, 0), moved)
	assert.Equal(t, float32(45), turned.Yaw)
}

func TestLocation_DistanceSquared(t *testing.T) {
	a := NewLocation("world", 0, 0, 0, 0)
	b := NewLocation("world", 3, 4, 12, 0)

	assert.Equal(t, 169.0, a.DistanceSquared(b))
	assert.Equal(t, 169.0, b.DistanceSquared(a))
	assert.Zero(t, a.DistanceSquared(a))
}

func TestLocation_Block(t *testing.T) {
	tests := []struct {
		loc  Location
		want BlockPos
	}{
		{NewLocation("w", 0.9, 64.1, 0.0, 0), BlockPos{0, 64, 0}},
		{NewLocation("w", -0.1, 0, -1.0, 0), BlockPos{-1, 0, -1}},
		{NewLocation("w", -1.5, -0.5, 10.99, 0), BlockPos{-2, -1, 10}},
		{NewLocation("w", 1e12, -1e12, math.NaN(), 0), BlockPos{math.MaxInt32, math.MinInt32, 0}},
		{NewLocation("w", math.Inf(1), math.Inf(-1), 2147483647.5, 0), BlockPos{math.MaxInt32, math.MinInt32, math.MaxInt32}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.loc.Block(), "Block(%v)", tt.loc)
	}
}

func TestFacingAndRight(t *testing.T) {
	const eps = 1e-9

	tests := []struct {
		name   string
		yaw    float32
		facing Vec3
		right  Vec3
	}{
		{"south", 0, Vec3{X: 0, Z: 1}, Vec3{X: -1, Z: 0}},
		{"west", 90, Vec3{X: -1, Z: 0}, Vec3{X: 0, Z: -1}},
		{"north", 180, Vec3{X: 0, Z: -1}, Vec3{X: 1, Z: 0}},
		{"east", -90, Vec3{X: 1, Z: 0}, Vec3{X: 0, Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Facing(tt.yaw)
			r := Right(tt.yaw)

			assert.InDelta(t, tt.facing.X, f.X, eps)
			assert.InDelta(t, tt.facing.Z, f.Z, eps)
			assert.InDelta(t, tt.right.X, r.X, eps)
			assert.InDelta(t, tt.right.Z, r.Z, eps)
			assert.Zero(t, f.Y)
			assert.Zero(t, r.Y)
		})
	}
}
