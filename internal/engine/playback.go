package engine

import (
	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/schedule"
	"github.com/udisondev/soundscape/internal/session"
	"github.com/udisondev/soundscape/internal/sound"
)

// Scheduler group keys.
type (
	// every task bound to a connected listener
	listenerKey uuid.UUID
	// every task bound to the current sound configuration
	soundsKey struct{}
)

// play plays every event of rs triggered at origin by actor. Events
// without delay are delivered now; delayed events resolve their audience
// when they fire, from the origin captured here.
func (e *Engine) play(rs *sound.RichSound, origin model.Location, actor *session.Player, groups ...schedule.Key) {
	for _, ev := range rs.Events {
		if ev.Delay == 0 {
			e.deliver(ev, origin, actor)
			continue
		}

		keys := make([]schedule.Key, 0, len(groups)+2)
		keys = append(keys, soundsKey{})
		if actor != nil {
			keys = append(keys, listenerKey(actor.ID()))
		}
		keys = append(keys, groups...)

		e.sched.After(ev.Delay, func() {
			e.deliver(ev, origin, actor)
		}, schedule.InGroups(keys...))
	}
}

func (e *Engine) deliver(ev sound.Event, origin model.Location, actor *session.Player) {
	// nil *Player в интерфейсе не равен nil
	var listener sound.Listener
	if actor != nil {
		listener = actor
	}
	targets := e.resolver.Resolve(origin, listener, ev.Options, e.players.Listeners())
	sound.Deliver(e.out, ev, targets)
}

// stopSounds asks the output to stop every sound of rs for listener.
// Outputs that cannot stop sounds ignore it.
func (e *Engine) stopSounds(listener uuid.UUID, rs *sound.RichSound) {
	stopper, ok := e.out.(sound.Stopper)
	if !ok {
		return
	}
	type stopKey struct{ id, category string }
	seen := make(map[stopKey]struct{}, len(rs.Events))
	for _, ev := range rs.Events {
		k := stopKey{ev.SoundID, ev.CategoryOrDefault()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		stopper.Stop(listener, k.id, k.category)
	}
}
