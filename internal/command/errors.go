package command

import (
	"errors"
	"fmt"

	"github.com/udisondev/soundscape/internal/confirm"
	"github.com/udisondev/soundscape/internal/engine"
	"github.com/udisondev/soundscape/internal/paging"
	"github.com/udisondev/soundscape/internal/region"
)

var (
	ErrNotAPlayer  = errors.New("command needs a player")
	ErrNotSelected = errors.New("both corners must be selected")
	ErrNoRegions   = errors.New("no regions")
	ErrSameName    = errors.New("new name is the current name")
	ErrBadArgument = errors.New("invalid argument")
)

// PermissionError is returned when the actor lacks a permission.
type PermissionError struct {
	Permission string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("missing permission %s", e.Permission)
}

// ErrorKind maps an error to the short snake_case kind sent to clients.
func ErrorKind(err error) string {
	var (
		regionErr  *region.Error
		permErr    *PermissionError
		persistErr *region.PersistenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &regionErr):
		return regionErr.Kind.String()
	case errors.As(err, &permErr):
		return "no_permission"
	case errors.As(err, &persistErr):
		return "persistence"
	case errors.Is(err, confirm.ErrNothingPending):
		return "nothing_pending"
	case errors.Is(err, paging.ErrOutOfRange):
		return "page_out_of_range"
	case errors.Is(err, ErrNotAPlayer):
		return "not_a_player"
	case errors.Is(err, ErrNotSelected):
		return "not_selected"
	case errors.Is(err, ErrNoRegions):
		return "no_regions"
	case errors.Is(err, ErrSameName):
		return "same"
	case errors.Is(err, ErrBadArgument):
		return "bad_argument"
	case errors.Is(err, engine.ErrUnknownPlayer):
		return "unknown_player"
	case errors.Is(err, engine.ErrUnknownTrigger):
		return "unknown_trigger"
	case errors.Is(err, engine.ErrStopped):
		return "stopped"
	}
	return "internal"
}
