package engine

import (
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/schedule"
	"github.com/udisondev/soundscape/internal/sound"
)

// ShowBorders draws the borders of regions to viewer for the configured
// showing time, refreshing every border period. Each border takes a slot
// of the border throttle until it expires or the viewer disconnects.
// Returns how many borders are shown.
func (e *Engine) ShowBorders(viewer uuid.UUID, regions []*region.Region) int {
	renderer, ok := e.out.(sound.BorderRenderer)
	if !ok || len(regions) == 0 {
		return 0
	}

	shown := 0
	for _, r := range regions {
		release, ok := e.borders.Acquire()
		if !ok {
			slog.Debug("border throttled", "region", r.Name(), "showing", e.borders.Showing())
			break
		}

		// один регион: цвет по умолчанию
		var colour sound.Colour
		if len(regions) > 1 {
			colour = RegionColour(r.ID())
		}
		points := r.Border()

		refresh := e.sched.Every(0, e.cfg.BorderPeriod, func() {
			renderer.ShowBorder(viewer, points, colour)
		}, schedule.InGroups(listenerKey(viewer)), schedule.OnDone(release))
		e.sched.After(e.cfg.BorderShowingTime, func() {
			refresh.Cancel()
		}, schedule.InGroups(listenerKey(viewer)))

		shown++
	}
	return shown
}

// RegionColour derives a stable particle colour from a region id.
func RegionColour(id uuid.UUID) sound.Colour {
	return sound.Colour{
		R: float64(id[0]) / 255,
		G: float64(id[1]) / 255,
		B: float64(id[2]) / 255,
	}
}
