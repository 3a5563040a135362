package command

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
)

// RegionView is a read-only copy of a region.
type RegionView struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Owner       uuid.UUID      `json:"owner"`
	Console     bool           `json:"console"`
	World       string         `json:"world"`
	Min         model.BlockPos `json:"min"`
	Max         model.BlockPos `json:"max"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

// View copies r.
func View(r *region.Region) RegionView {
	vol := r.Volume()
	return RegionView{
		ID:          r.ID(),
		Name:        r.Name(),
		Owner:       r.Creator(),
		Console:     r.OwnedByConsole(),
		World:       r.World(),
		Min:         vol.Min,
		Max:         vol.Max,
		Description: r.Description(),
		CreatedAt:   r.CreatedAt(),
	}
}

func views(rs []*region.Region) []RegionView {
	out := make([]RegionView, len(rs))
	for i, r := range rs {
		out[i] = View(r)
	}
	return out
}

type CreateResult struct {
	Region RegionView `json:"region"`
}

// DeleteResult: the deletion waits for confirmation.
type DeleteResult struct {
	Region      RegionView `json:"region"`
	Description string     `json:"description"`
	Superseded  string     `json:"superseded,omitempty"`
}

type RenameResult struct {
	OldName string     `json:"old_name"`
	Region  RegionView `json:"region"`
}

type InfoResult struct {
	Regions []RegionView `json:"regions"`
	Borders int          `json:"borders"`
}

type ListResult struct {
	Regions    []RegionView `json:"regions"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	HasNext    bool         `json:"has_next"`
}

type TeleportResult struct {
	Region      RegionView     `json:"region"`
	Destination model.Location `json:"destination"`
}

type SelectResult struct {
	Corner   string         `json:"corner"`
	Location model.Location `json:"location"`
	Block    model.BlockPos `json:"block"`
}

type ConfirmResult struct {
	Description string `json:"description"`
}

type SoundListResult struct {
	Sounds     []string `json:"sounds"`
	Page       int      `json:"page"`
	TotalPages int      `json:"total_pages"`
	HasNext    bool     `json:"has_next"`
}

type ToggleResult struct {
	Enabled bool `json:"enabled"`
}
