package model

import (
	"fmt"
	"math"
)

// Location представляет точку в мире с направлением взгляда.
// Value type, передаётся по значению (immutable).
//
// Оси: X восток, Y вверх, Z юг. Yaw в градусах: 0 смотрит на +Z,
// 90 смотрит на -X (как у клиента игры).
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(world string, x, y, z float64, yaw float32) Location {
	return Location{World: world, X: x, Y: y, Z: z, Yaw: yaw}
}

// WithYaw возвращает новый Location с обновлённым направлением (immutable pattern).
func (l Location) WithYaw(yaw float32) Location {
	l.Yaw = yaw
	return l
}

// WithCoordinates возвращает новый Location с обновлёнными координатами (immutable pattern).
func (l Location) WithCoordinates(x, y, z float64) Location {
	l.X = x
	l.Y = y
	l.Z = z
	return l
}

// Add смещает точку на вектор v.
func (l Location) Add(v Vec3) Location {
	l.X += v.X
	l.Y += v.Y
	l.Z += v.Z
	return l
}

// DistanceSquared возвращает квадрат расстояния до другой точки (без sqrt для производительности).
// Мир не учитывается, вызывающий сам проверяет совпадение миров.
func (l Location) DistanceSquared(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Block returns the block that contains this point. Coordinates outside
// the int32 range are clamped to it, NaN maps to 0.
func (l Location) Block() BlockPos {
	return BlockPos{
		X: blockCoord(l.X),
		Y: blockCoord(l.Y),
		Z: blockCoord(l.Z),
	}
}

func blockCoord(v float64) int32 {
	f := math.Floor(v)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%.2f, %.2f, %.2f)", l.World, l.X, l.Y, l.Z)
}

// BlockPos is an integer block coordinate.
type BlockPos struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// Center returns the centre of the block as a Location in world.
func (b BlockPos) Center(world string) Location {
	return Location{World: world, X: float64(b.X) + 0.5, Y: float64(b.Y) + 0.5, Z: float64(b.Z) + 0.5}
}

// Vec3 is a displacement in world units.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Scale multiplies every component by k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Up is the world up vector.
var Up = Vec3{Y: 1}

// Facing returns the horizontal unit vector the yaw looks along.
func Facing(yaw float32) Vec3 {
	rad := float64(yaw) * math.Pi / 180
	return Vec3{X: -math.Sin(rad), Z: math.Cos(rad)}
}

// Right returns the horizontal unit vector pointing to the right of yaw.
func Right(yaw float32) Vec3 {
	rad := float64(yaw) * math.Pi / 180
	return Vec3{X: -math.Cos(rad), Z: -math.Sin(rad)}
}
