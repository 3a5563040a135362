package region

import (
	"math"
	"math/bits"

	"github.com/udisondev/soundscape/internal/model"
)

// Volume is an axis-aligned box of blocks, both corners inclusive.
// Invariant: Min.X <= Max.X, Min.Y <= Max.Y, Min.Z <= Max.Z.
type Volume struct {
	Min model.BlockPos
	Max model.BlockPos
}

// NewVolume builds a Volume from two arbitrary corners, swapping
// coordinates per axis so that Min <= Max.
func NewVolume(a, b model.BlockPos) Volume {
	lo, hi := a, b
	if lo.X > hi.X {
		lo.X, hi.X = hi.X, lo.X
	}
	if lo.Y > hi.Y {
		lo.Y, hi.Y = hi.Y, lo.Y
	}
	if lo.Z > hi.Z {
		lo.Z, hi.Z = hi.Z, lo.Z
	}
	return Volume{Min: lo, Max: hi}
}

// Area returns Δx·Δy·Δz of the corners. This is the quantity the area
// quota is checked against, so a one-block-thick slab has area 0.
// A product that does not fit in int64 saturates at math.MaxInt64.
func (v Volume) Area() int64 {
	dx := uint64(int64(v.Max.X) - int64(v.Min.X))
	dy := uint64(int64(v.Max.Y) - int64(v.Min.Y))
	dz := uint64(int64(v.Max.Z) - int64(v.Min.Z))

	hi, xy := bits.Mul64(dx, dy)
	if hi != 0 {
		return math.MaxInt64
	}
	hi, xyz := bits.Mul64(xy, dz)
	if hi != 0 || xyz > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(xyz)
}

// ContainsBlock reports whether block p is inside the box.
func (v Volume) ContainsBlock(p model.BlockPos) bool {
	return p.X >= v.Min.X && p.X <= v.Max.X &&
		p.Y >= v.Min.Y && p.Y <= v.Max.Y &&
		p.Z >= v.Min.Z && p.Z <= v.Max.Z
}

// Contains reports whether the block under point loc is inside the box.
// The world is not checked here.
func (v Volume) Contains(loc model.Location) bool {
	return v.ContainsBlock(loc.Block())
}

// Intersects is the O(1) AABB test. For boxes it agrees with
// OverlapsVoxels.
func (v Volume) Intersects(o Volume) bool {
	return v.Min.X <= o.Max.X && v.Max.X >= o.Min.X &&
		v.Min.Y <= o.Max.Y && v.Max.Y >= o.Min.Y &&
		v.Min.Z <= o.Max.Z && v.Max.Z >= o.Min.Z
}

// OverlapsVoxels walks every block of v in unit steps and reports
// whether any of them lies inside o. Kept as the reference check for
// non-box shapes; the walk is bounded by the area quota.
func (v Volume) OverlapsVoxels(o Volume) bool {
	for x := int64(v.Min.X); x <= int64(v.Max.X); x++ {
		for y := int64(v.Min.Y); y <= int64(v.Max.Y); y++ {
			for z := int64(v.Min.Z); z <= int64(v.Max.Z); z++ {
				if o.ContainsBlock(model.BlockPos{X: int32(x), Y: int32(y), Z: int32(z)}) {
					return true
				}
			}
		}
	}
	return false
}
