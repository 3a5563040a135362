package sound

import (
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
)

// Playback is one sound delivered to one listener.
type Playback struct {
	Listener uuid.UUID
	SoundID  string
	Volume   float32
	Pitch    float32
	Category string
	Location model.Location
}

// Output receives playbacks. Implementations must not block the caller.
type Output interface {
	Play(p Playback)
}

// Stopper is implemented by outputs that can stop a sound already playing.
type Stopper interface {
	Stop(listener uuid.UUID, soundID, category string)
}

// Colour of border particles, components in [0, 1].
type Colour struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// BorderRenderer is implemented by outputs that can draw region borders.
type BorderRenderer interface {
	ShowBorder(listener uuid.UUID, points []model.Location, colour Colour)
}

// Deliver sends e to every target.
func Deliver(out Output, e Event, targets []Target) {
	for _, t := range targets {
		out.Play(Playback{
			Listener: t.Listener.ID(),
			SoundID:  e.SoundID,
			Volume:   e.Volume,
			Pitch:    e.Pitch,
			Category: e.CategoryOrDefault(),
			Location: t.Location,
		})
	}
}

// LogOutput writes playbacks to slog. Used when no platform is attached.
type LogOutput struct {
	Logger *slog.Logger
}

func (o LogOutput) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o LogOutput) Play(p Playback) {
	o.logger().Debug("play",
		"listener", p.Listener,
		"sound", p.SoundID,
		"volume", p.Volume,
		"pitch", p.Pitch,
		"category", p.Category,
		"location", p.Location.String(),
	)
}

func (o LogOutput) Stop(listener uuid.UUID, soundID, category string) {
	o.logger().Debug("stop", "listener", listener, "sound", soundID, "category", category)
}

func (o LogOutput) ShowBorder(listener uuid.UUID, points []model.Location, colour Colour) {
	o.logger().Debug("border", "listener", listener, "points", len(points), "colour", colour)
}
