package sound

import (
	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
)

// Listener is a connected player as the resolver sees it.
type Listener interface {
	ID() uuid.UUID
	Location() model.Location
	HasPermission(perm string) bool
	SoundsEnabled() bool
}

// Target is a listener together with where the sound plays for it.
type Target struct {
	Listener Listener
	Location model.Location
}

// Resolver computes the audience of a sound event. Not safe for
// concurrent use; it lives on the tick goroutine.
type Resolver struct {
	blacklist map[string]struct{}
}

// NewResolver creates a resolver that never plays in the given worlds.
func NewResolver(worldBlacklist []string) *Resolver {
	r := &Resolver{}
	r.SetBlacklist(worldBlacklist)
	return r
}

// SetBlacklist replaces the blacklisted worlds.
func (r *Resolver) SetBlacklist(worlds []string) {
	bl := make(map[string]struct{}, len(worlds))
	for _, w := range worlds {
		bl[w] = struct{}{}
	}
	r.blacklist = bl
}

// Blacklisted reports whether sounds never play in world.
func (r *Resolver) Blacklisted(world string) bool {
	_, ok := r.blacklist[world]
	return ok
}

// Resolve returns who hears a sound triggered at origin.
//
// actor may be nil for triggers without an actor. listeners is the set of
// connected listeners; the actor only counts as connected if it is in it.
func (r *Resolver) Resolve(origin model.Location, actor Listener, opts Options, listeners []Listener) []Target {
	opts = opts.Normalized()

	// Без актора проверка PermissionRequired пропускается.
	actorAuthorized := false
	if opts.PermissionRequired != "" && actor != nil {
		if !actor.HasPermission(opts.PermissionRequired) {
			return nil
		}
		actorAuthorized = true
	}

	if r.Blacklisted(origin.World) {
		return nil
	}

	if !opts.IgnoresDisabled {
		listeners = enabledOnly(listeners)
	}

	candidates := r.candidates(origin, actor, opts, listeners)
	if len(candidates) == 0 {
		return nil
	}

	targets := make([]Target, 0, len(candidates))
	for _, l := range candidates {
		if opts.PermissionToListen != "" && !l.HasPermission(opts.PermissionToListen) {
			isActor := actor != nil && l.ID() == actor.ID()
			if !(isActor && actorAuthorized) {
				continue
			}
		}
		targets = append(targets, Target{
			Listener: l,
			Location: opts.Offset.Apply(origin, l.Location().Yaw),
		})
	}
	return targets
}

func (r *Resolver) candidates(origin model.Location, actor Listener, opts Options, listeners []Listener) []Listener {
	switch {
	case opts.Radius > 0:
		rs := opts.RadiusSquared()
		var out []Listener
		for _, l := range listeners {
			loc := l.Location()
			if loc.World == origin.World && loc.DistanceSquared(origin) <= rs {
				out = append(out, l)
			}
		}
		return out

	case opts.Radius == RadiusServer:
		return listeners

	case opts.Radius == RadiusWorld:
		var out []Listener
		for _, l := range listeners {
			if l.Location().World == origin.World {
				out = append(out, l)
			}
		}
		return out

	default:
		// RadiusSelf и прочие отрицательные значения: только актор.
		if actor == nil {
			return nil
		}
		for _, l := range listeners {
			if l.ID() == actor.ID() {
				return []Listener{l}
			}
		}
		return nil
	}
}

func enabledOnly(listeners []Listener) []Listener {
	out := make([]Listener, 0, len(listeners))
	for _, l := range listeners {
		if l.SoundsEnabled() {
			out = append(out, l)
		}
	}
	return out
}
