package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/confirm"
	"github.com/udisondev/soundscape/internal/engine"
	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/paging"
	"github.com/udisondev/soundscape/internal/region"
)

// RegionsPerPage is the page size of region lists.
const RegionsPerPage = 5

// DefaultDescription is given to regions created without one.
const DefaultDescription = "A sound playing region."

// Options configure a Handler.
type Options struct {
	SoundsPerPage      int
	DefaultDescription string
}

// Handler executes commands against the engine. Every method except
// AwaitCreate runs on the tick goroutine.
type Handler struct {
	eng  *engine.Engine
	opts Options
}

// NewHandler creates a handler for eng.
func NewHandler(eng *engine.Engine, opts Options) *Handler {
	if opts.SoundsPerPage < 1 {
		opts.SoundsPerPage = 1
	}
	if opts.DefaultDescription == "" {
		opts.DefaultDescription = DefaultDescription
	}
	return &Handler{eng: eng, opts: opts}
}

// Create creates a region from the actor's selected corners.
func (h *Handler) Create(ctx context.Context, a Actor, name, description string) (CreateResult, error) {
	if err := a.requireRegion(PermCreate); err != nil {
		return CreateResult{}, err
	}
	first, second, ok := h.eng.Selections().Get(a.ID)
	if !ok {
		return CreateResult{}, ErrNotSelected
	}
	return h.create(ctx, a, first, second, name, description)
}

// AwaitCreate waits until the actor has selected both corners and then
// creates the region on the tick goroutine. It must run on its own
// goroutine; the wait ends with ctx.
func (h *Handler) AwaitCreate(ctx context.Context, a Actor, name, description string) (CreateResult, error) {
	if err := a.requireRegion(PermCreate); err != nil {
		return CreateResult{}, err
	}
	first, second, err := h.eng.Selections().Await(ctx, a.ID)
	if err != nil {
		return CreateResult{}, fmt.Errorf("awaiting selection: %w", err)
	}

	var res CreateResult
	err = h.eng.Call(ctx, func() error {
		var err error
		res, err = h.create(ctx, a, first, second, name, description)
		return err
	})
	return res, err
}

func (h *Handler) create(ctx context.Context, a Actor, first, second model.Location, name, description string) (CreateResult, error) {
	description = strings.TrimSpace(description)
	if description == "" || !a.HasPermission(PermDescription) {
		description = h.opts.DefaultDescription
	}

	r, err := h.eng.Store().Create(ctx, region.CreateRequest{
		Name:        name,
		First:       first,
		Second:      second,
		Creator:     a.ID,
		Description: description,
		Bypass: region.Bypass{
			// консоль не ограничена количеством регионов
			Quota:   a.IsConsole() || a.HasPermission(PermUnlimitedRegions),
			Area:    a.HasPermission(PermUnlimitedArea),
			Overlap: a.HasPermission(PermOverlap),
		},
	})
	if r == nil {
		return CreateResult{}, err
	}

	h.eng.Selections().Clear(a.ID)
	return CreateResult{Region: View(r)}, err
}

// Delete asks for confirmation to delete a region.
func (h *Handler) Delete(ctx context.Context, a Actor, token string) (DeleteResult, error) {
	if err := a.requireRegion(PermRemove); err != nil {
		return DeleteResult{}, err
	}
	r, err := h.find(a, token, PermRemoveOthers)
	if err != nil {
		return DeleteResult{}, err
	}

	ctx = context.WithoutCancel(ctx)
	name := r.Name()
	desc := fmt.Sprintf("delete region %s", name)
	replaced, ok := h.eng.Confirms().Add(a.ID,
		confirm.Token{Kind: confirm.KindRegionDelete, Key: r.ID().String()},
		desc,
		func() error {
			err := h.eng.Store().Delete(ctx, r)
			var persistErr *region.PersistenceError
			if err != nil && !errors.As(err, &persistErr) {
				return err
			}
			h.eng.ForgetRegion(r.ID())
			return err
		})

	res := DeleteResult{Region: View(r), Description: desc}
	if ok {
		res.Superseded = replaced.Description
	}
	return res, nil
}

// Rename renames a region. Renaming to the literally same token is
// reported as ErrSameName before any lookup.
func (h *Handler) Rename(ctx context.Context, a Actor, token, newName string) (RenameResult, error) {
	if err := a.requireRegion(PermRename); err != nil {
		return RenameResult{}, err
	}
	if token == newName {
		return RenameResult{}, ErrSameName
	}
	r, err := h.find(a, token, PermRenameOthers)
	if err != nil {
		return RenameResult{}, err
	}

	old := r.Name()
	if err := h.eng.Store().Rename(ctx, r, newName); err != nil {
		var persistErr *region.PersistenceError
		if !errors.As(err, &persistErr) {
			return RenameResult{}, err
		}
		return RenameResult{OldName: old, Region: View(r)}, err
	}
	return RenameResult{OldName: old, Region: View(r)}, nil
}

// Info describes one region, or every region at the player's location
// when token is empty, and shows their borders to a player.
func (h *Handler) Info(a Actor, token string) (InfoResult, error) {
	if err := a.requireRegion(PermInfo); err != nil {
		return InfoResult{}, err
	}

	var regions []*region.Region
	switch {
	case token != "":
		r, err := h.find(a, token, "")
		if err != nil {
			return InfoResult{}, err
		}
		regions = []*region.Region{r}
	case a.IsConsole():
		return InfoResult{}, ErrNotAPlayer
	default:
		regions = h.eng.Store().RegionsContaining(a.Player.Location())
		if len(regions) == 0 {
			return InfoResult{}, ErrNoRegions
		}
	}

	res := InfoResult{Regions: views(regions)}
	if !a.IsConsole() {
		res.Borders = h.eng.ShowBorders(a.ID, regions)
	}
	return res, nil
}

// List pages the regions of owner. A nil owner lists the actor's own
// regions; the console owns console regions.
func (h *Handler) List(a Actor, owner *uuid.UUID, page int) (ListResult, error) {
	if err := a.requireRegion(PermList); err != nil {
		return ListResult{}, err
	}
	target := a.ID
	if owner != nil && *owner != a.ID {
		if err := a.require(PermListOthers); err != nil {
			return ListResult{}, err
		}
		target = *owner
	}

	regions := h.eng.Store().OwnedBy(target)
	if len(regions) == 0 {
		return ListResult{}, ErrNoRegions
	}
	p, err := paging.Get(regions, RegionsPerPage, page)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Regions:    views(p.Items),
		Page:       p.Number,
		TotalPages: p.Total,
		HasNext:    p.HasNext(),
	}, nil
}

// Teleport returns where a player teleporting to a region lands: its
// minimum corner. The platform moves the player and reports the move.
func (h *Handler) Teleport(a Actor, token string) (TeleportResult, error) {
	if a.IsConsole() {
		return TeleportResult{}, ErrNotAPlayer
	}
	if err := a.requireRegion(PermTeleport); err != nil {
		return TeleportResult{}, err
	}
	r, err := h.find(a, token, PermTeleportOthers)
	if err != nil {
		return TeleportResult{}, err
	}
	dest := r.MinCorner().WithYaw(a.Player.Location().Yaw)
	return TeleportResult{Region: View(r), Destination: dest}, nil
}

// SetPosition stores a selection corner. A nil loc uses the player's
// location; the console must pass one.
func (h *Handler) SetPosition(a Actor, corner region.Corner, loc *model.Location) (SelectResult, error) {
	if err := a.requireRegion(PermSelect); err != nil {
		return SelectResult{}, err
	}
	var at model.Location
	switch {
	case loc != nil:
		at = *loc
	case a.IsConsole():
		return SelectResult{}, ErrNotAPlayer
	default:
		at = a.Player.Location()
	}
	if at.World == "" {
		return SelectResult{}, fmt.Errorf("%w: world is empty", ErrBadArgument)
	}

	h.eng.Selections().Set(a.ID, corner, at)
	return SelectResult{Corner: CornerName(corner), Location: at, Block: at.Block()}, nil
}

// SetDescription replaces a region's description.
func (h *Handler) SetDescription(ctx context.Context, a Actor, token, description string) (RegionView, error) {
	if err := a.requireRegion(PermDescription); err != nil {
		return RegionView{}, err
	}
	r, err := h.find(a, token, PermDescriptionOthers)
	if err != nil {
		return RegionView{}, err
	}
	err = h.eng.Store().SetDescription(ctx, r, strings.TrimSpace(description))
	var persistErr *region.PersistenceError
	if err != nil && !errors.As(err, &persistErr) {
		return RegionView{}, err
	}
	return View(r), err
}

// Confirm runs the actor's pending action.
func (h *Handler) Confirm(a Actor) (ConfirmResult, error) {
	p, err := h.eng.Confirms().Confirm(a.ID)
	if errors.Is(err, confirm.ErrNothingPending) {
		return ConfirmResult{}, err
	}
	if err != nil {
		slog.Warn("confirmed action failed", "actor", a.ID, "action", p.Description, "error", err)
	}
	return ConfirmResult{Description: p.Description}, err
}

// Pending lists the actor's pending confirmations.
func (h *Handler) Pending(a Actor) []string {
	var out []string
	for _, p := range h.eng.Confirms().List(a.ID) {
		out = append(out, p.Description)
	}
	return out
}

// SoundList pages the sound catalogue.
func (h *Handler) SoundList(a Actor, page int) (SoundListResult, error) {
	if err := a.require(PermSoundList); err != nil {
		return SoundListResult{}, err
	}
	p, err := h.eng.Pages().Page(h.opts.SoundsPerPage, page)
	if err != nil {
		return SoundListResult{}, err
	}
	return SoundListResult{
		Sounds:     p.Items,
		Page:       p.Number,
		TotalPages: p.Total,
		HasNext:    p.HasNext(),
	}, nil
}

// Toggle switches a player's sounds. enable == nil flips them.
func (h *Handler) Toggle(a Actor, enable *bool) (ToggleResult, error) {
	if a.IsConsole() {
		return ToggleResult{}, ErrNotAPlayer
	}
	if err := a.require(PermToggle); err != nil {
		return ToggleResult{}, err
	}
	on, err := h.eng.Toggle(a.ID, enable)
	return ToggleResult{Enabled: on}, err
}

// find resolves token. Regions of other owners are visible with
// othersPerm; an empty othersPerm makes every region visible.
func (h *Handler) find(a Actor, token, othersPerm string) (*region.Region, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: region name or id required", ErrBadArgument)
	}
	bypass := othersPerm == "" || a.HasPermission(othersPerm)
	return h.eng.Store().FindByNameOrID(token, a.ID, bypass)
}

// ParseCorner reads p1/p2 and their aliases.
func ParseCorner(s string) (region.Corner, error) {
	switch strings.ToLower(s) {
	case "p1", "pone", "one", "position1", "positionone", "firstposition", "first":
		return region.First, nil
	case "p2", "ptwo", "two", "position2", "positiontwo", "secondposition", "second":
		return region.Second, nil
	}
	return 0, fmt.Errorf("%w: corner %q", ErrBadArgument, s)
}

// CornerName is the inverse of ParseCorner.
func CornerName(c region.Corner) string {
	if c == region.First {
		return "p1"
	}
	return "p2"
}
