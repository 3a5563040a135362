// Package sound describes configured sounds and decides who hears them.
package sound

import (
	"fmt"
	"strings"

	"github.com/udisondev/soundscape/internal/model"
)

// Radius values below zero select a scope instead of a distance.
const (
	RadiusSelf   = 0
	RadiusServer = -1
	RadiusWorld  = -2
)

// Direction is an axis of a listener-relative offset.
type Direction int

const (
	FrontBack Direction = iota
	LeftRight
	UpDown
)

func (d Direction) String() string {
	switch d {
	case FrontBack:
		return "FRONT_BACK"
	case LeftRight:
		return "LEFT_RIGHT"
	case UpDown:
		return "UP_DOWN"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts FRONT_BACK, LEFT_RIGHT and UP_DOWN in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FRONT_BACK":
		return FrontBack, nil
	case "LEFT_RIGHT":
		return LeftRight, nil
	case "UP_DOWN":
		return UpDown, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

// Offset is a displacement relative to the listener's facing.
//
// Знаки:
//   - FrontBack > 0: за спиной слушателя, < 0: перед ним;
//   - LeftRight > 0: справа от слушателя;
//   - UpDown > 0: вверх.
type Offset struct {
	FrontBack float64
	LeftRight float64
	UpDown    float64
}

// IsZero reports whether the offset moves nothing.
func (o Offset) IsZero() bool {
	return o == Offset{}
}

// Set returns o with axis d set to v.
func (o Offset) Set(d Direction, v float64) Offset {
	switch d {
	case FrontBack:
		o.FrontBack = v
	case LeftRight:
		o.LeftRight = v
	case UpDown:
		o.UpDown = v
	}
	return o
}

// Apply moves origin by the offset as seen by a listener looking at yaw.
func (o Offset) Apply(origin model.Location, yaw float32) model.Location {
	if o.IsZero() {
		return origin
	}
	back := model.Facing(yaw).Scale(-o.FrontBack)
	right := model.Right(yaw).Scale(o.LeftRight)
	up := model.Up.Scale(o.UpDown)
	return origin.Add(back).Add(right).Add(up)
}

// Options control who may trigger a sound event and who hears it.
// Options is comparable; == compares every field.
type Options struct {
	IgnoresDisabled bool
	// PermissionRequired gates the trigger. Empty means none.
	PermissionRequired string
	// PermissionToListen gates the audience. Empty means none.
	PermissionToListen string
	// Radius: > 0 distance in blocks, RadiusSelf, RadiusServer or RadiusWorld.
	Radius float64
	Offset Offset
}

// RadiusSquared is Radius² for a positive radius and Radius otherwise.
func (o Options) RadiusSquared() float64 {
	if o.Radius > 0 {
		return o.Radius * o.Radius
	}
	return o.Radius
}

// Normalized trims permissions so blank strings mean "none".
func (o Options) Normalized() Options {
	o.PermissionRequired = strings.TrimSpace(o.PermissionRequired)
	o.PermissionToListen = strings.TrimSpace(o.PermissionToListen)
	return o
}

func (o Options) String() string {
	return fmt.Sprintf("Options{ignoresDisabled=%t, permissionRequired=%q, permissionToListen=%q, radius=%g, offset=%+v}",
		o.IgnoresDisabled, o.PermissionRequired, o.PermissionToListen, o.Radius, o.Offset)
}
