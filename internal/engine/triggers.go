package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/session"
	"github.com/udisondev/soundscape/internal/trigger"
)

var (
	ErrUnknownPlayer  = errors.New("player is not connected")
	ErrUnknownTrigger = errors.New("trigger is not configured or disabled")
)

// WakeUpTime is the world time before which leaving a bed counts as
// waking up.
const WakeUpTime = 300

// Cause tells why a listener moved.
type Cause int

const (
	CauseMove     Cause = iota // walking, portals and other non-command moves
	CauseTeleport              // a teleport command
)

// ParseCause parses "move" or "teleport".
func ParseCause(s string) (Cause, error) {
	switch s {
	case "", "move":
		return CauseMove, nil
	case "teleport":
		return CauseTeleport, nil
	}
	return CauseMove, fmt.Errorf("unknown move cause %q", s)
}

// Join registers p, plays the join sound and enters the regions at p's
// location.
func (e *Engine) Join(p *session.Player) {
	if old, ok := e.players.Get(p.ID()); ok && old != p {
		e.disconnect(old.ID())
	}
	e.players.Join(p)
	e.playSource(trigger.Join, "", p, false)
	e.updateRegions(p)
}

// Quit plays the quit sound and drops everything bound to the listener:
// scheduled sounds, loops, borders, the pending confirmation and the
// region selection.
func (e *Engine) Quit(id uuid.UUID) error {
	p, ok := e.players.Get(id)
	if !ok {
		return ErrUnknownPlayer
	}
	e.disconnect(id)
	// звук выхода ещё слышит сам игрок
	e.playSource(trigger.Quit, "", p, false)
	e.players.Leave(id)
	return nil
}

func (e *Engine) disconnect(id uuid.UUID) {
	n := e.sched.CancelGroup(listenerKey(id))
	delete(e.inside, id)
	e.confirms.Clear(id)
	e.selections.Clear(id)
	if n > 0 {
		slog.Debug("listener tasks cancelled", "id", id, "count", n)
	}
}

// Move moves the listener. A cancelled move leaves the listener where it
// was and fires no region sounds. Teleport commands play the world change
// and teleport sounds.
func (e *Engine) Move(id uuid.UUID, to model.Location, cause Cause, cancelled bool) error {
	p, ok := e.players.Get(id)
	if !ok {
		return ErrUnknownPlayer
	}

	from := p.Location()
	if !cancelled {
		p.SetLocation(to)
		e.updateRegions(p)
	}
	if cause != CauseTeleport {
		return nil
	}

	if wc, ok := e.registry.Source(trigger.WorldChange); ok && from.World != to.World && wc.Default.ShouldPlay(cancelled) {
		e.play(wc.Default, p.Location(), p)
		if wc.PreventTeleportSound {
			return nil
		}
	}
	e.playSource(trigger.Teleport, "", p, cancelled)
	return nil
}

// Chat plays the chat sounds matching message.
func (e *Engine) Chat(id uuid.UUID, message string, cancelled bool) (int, error) {
	return e.criteriaTrigger(trigger.Chat, id, message, cancelled)
}

// Command plays the command sounds matching the command line.
func (e *Engine) Command(id uuid.UUID, line string, cancelled bool) (int, error) {
	return e.criteriaTrigger(trigger.Command, id, line, cancelled)
}

// InventoryClick plays the sounds matching the clicked item.
func (e *Engine) InventoryClick(id uuid.UUID, item string, cancelled bool) (int, error) {
	return e.criteriaTrigger(trigger.InventoryClick, id, item, cancelled)
}

func (e *Engine) criteriaTrigger(name trigger.Name, id uuid.UUID, subject string, cancelled bool) (int, error) {
	p, ok := e.players.Get(id)
	if !ok {
		return 0, ErrUnknownPlayer
	}
	return e.playSource(name, subject, p, cancelled), nil
}

// BedLeave plays the bed leave sound and, early in the world's day, the
// wake up sound.
func (e *Engine) BedLeave(id uuid.UUID, worldTime int64) (int, error) {
	p, ok := e.players.Get(id)
	if !ok {
		return 0, ErrUnknownPlayer
	}
	n := e.playSource(trigger.BedLeave, "", p, false)
	if worldTime < WakeUpTime {
		n += e.playSource(trigger.WakeUp, "", p, false)
	}
	return n, nil
}

// Trigger plays a named source. actor may be uuid.Nil; at overrides the
// origin, which otherwise is the actor's location.
func (e *Engine) Trigger(name string, actor uuid.UUID, at *model.Location, cancelled bool) (int, error) {
	src, ok := e.registry.Source(trigger.Name(name))
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}

	var p *session.Player
	if actor != uuid.Nil {
		if p, ok = e.players.Get(actor); !ok {
			return 0, ErrUnknownPlayer
		}
	}

	var origin model.Location
	switch {
	case at != nil:
		origin = *at
	case p != nil:
		origin = p.Location()
	default:
		return 0, errors.New("trigger without actor needs a location")
	}

	sounds := src.Select("", cancelled)
	for _, rs := range sounds {
		e.play(rs, origin, p)
	}
	return len(sounds), nil
}

// Toggle switches the listener's sounds. enable == nil flips them.
func (e *Engine) Toggle(id uuid.UUID, enable *bool) (bool, error) {
	if _, ok := e.players.Get(id); !ok {
		return false, ErrUnknownPlayer
	}
	on := e.players.Toggle(id, enable)
	slog.Debug("sounds toggled", "id", id, "enabled", on)
	return on, nil
}

// playSource plays what the named source selects for subject at the
// actor's location. Returns the number of rich sounds played.
func (e *Engine) playSource(name trigger.Name, subject string, actor *session.Player, cancelled bool) int {
	src, ok := e.registry.Source(name)
	if !ok {
		return 0
	}
	sounds := src.Select(subject, cancelled)
	for _, rs := range sounds {
		e.play(rs, actor.Location(), actor)
	}
	return len(sounds)
}
