package engine

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/schedule"
	"github.com/udisondev/soundscape/internal/session"
	"github.com/udisondev/soundscape/internal/sound"
	"github.com/udisondev/soundscape/internal/trigger"
)

// presence is a listener standing in a region.
type presence struct {
	region *region.Region
	sounds *trigger.RegionSounds // nil when the region has no sounds
	loop   *schedule.Task

	enterKey presenceKey
	loopKey  presenceKey
}

// presenceKey groups the delayed events of one stay in a region; gen
// separates a stay from the next one.
type presenceKey struct {
	player uuid.UUID
	region uuid.UUID
	gen    uint64
	loop   bool
}

// Inside returns the regions player is standing in, ordered by name.
func (e *Engine) Inside(player uuid.UUID) []*region.Region {
	var out []*region.Region
	for _, pr := range e.inside[player] {
		out = append(out, pr.region)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name()) < strings.ToLower(out[j].Name())
	})
	return out
}

// updateRegions compares the regions at p's location with the ones p was
// in and fires enter and leave sounds.
func (e *Engine) updateRegions(p *session.Player) {
	current := e.store.RegionsContaining(p.Location())

	inside := e.inside[p.ID()]
	if inside == nil {
		if len(current) == 0 {
			return
		}
		inside = make(map[uuid.UUID]*presence)
		e.inside[p.ID()] = inside
	}

	seen := make(map[uuid.UUID]struct{}, len(current))
	for _, r := range current {
		seen[r.ID()] = struct{}{}
	}

	var left []*presence
	for id, pr := range inside {
		if _, ok := seen[id]; !ok {
			left = append(left, pr)
			delete(inside, id)
		}
	}
	sort.Slice(left, func(i, j int) bool {
		return strings.ToLower(left[i].region.Name()) < strings.ToLower(left[j].region.Name())
	})
	for _, pr := range left {
		e.leaveRegion(p, pr)
	}

	for _, r := range current {
		if _, ok := inside[r.ID()]; !ok {
			inside[r.ID()] = e.enterRegion(p, r)
		}
	}

	if len(inside) == 0 {
		delete(e.inside, p.ID())
	}
}

func (e *Engine) enterRegion(p *session.Player, r *region.Region) *presence {
	e.gen++
	pr := &presence{
		region:   r,
		enterKey: presenceKey{player: p.ID(), region: r.ID(), gen: e.gen},
		loopKey:  presenceKey{player: p.ID(), region: r.ID(), gen: e.gen, loop: true},
	}
	pr.sounds, _ = e.registry.ForRegion(r)

	slog.Debug("region entered", "player", p.Name(), "region", r.Name())

	if pr.sounds == nil {
		return pr
	}
	if pr.sounds.PlaysEnter(false) {
		e.play(pr.sounds.Enter, p.Location(), p, pr.enterKey)
	}
	e.startLoop(p, pr)
	return pr
}

// startLoop starts the loop of pr if it has one. Reports whether it did.
func (e *Engine) startLoop(p *session.Player, pr *presence) bool {
	if pr.sounds == nil || !pr.sounds.Loop.ShouldPlay(false) {
		return false
	}
	loop := pr.sounds.Loop
	key := pr.loopKey
	pr.loop = e.sched.Every(pr.sounds.LoopDelay, pr.sounds.LoopPeriod, func() {
		e.play(loop, p.Location(), p, key)
	}, schedule.InGroups(listenerKey(p.ID()), soundsKey{}, key))
	return true
}

func (e *Engine) leaveRegion(p *session.Player, pr *presence) {
	if pr.loop != nil {
		pr.loop.Cancel()
	}

	slog.Debug("region left", "player", p.Name(), "region", pr.region.Name())

	// удалённый регион молча забывается
	if _, exists := e.store.Get(pr.region.ID()); !exists {
		e.sched.CancelGroup(pr.enterKey)
		e.sched.CancelGroup(pr.loopKey)
		return
	}
	if pr.sounds == nil {
		return
	}

	if pr.sounds.Leave.ShouldPlay(false) {
		e.play(pr.sounds.Leave, p.Location(), p)
	}
	e.stopOnExit(p.ID(), pr.enterKey, pr.sounds.EnterStop, pr.sounds.Enter)
	e.stopOnExit(p.ID(), pr.loopKey, pr.sounds.LoopStop, pr.sounds.Loop)
}

// stopOnExit cancels the pending events of one stay and stops its sounds
// after the configured grace delay. The task survives Reload: sounds
// already started still have to stop. It dies with the listener.
func (e *Engine) stopOnExit(player uuid.UUID, key presenceKey, policy trigger.StopOnExit, rs *sound.RichSound) {
	if !policy.Enabled || rs == nil || !rs.Enabled {
		return
	}
	e.sched.After(policy.Delay, func() {
		e.sched.CancelGroup(key)
		e.stopSounds(player, rs)
	}, schedule.InGroups(listenerKey(player)))
}

// ForgetRegion drops every presence in the region with id without
// playing leave sounds. Called after a region is deleted.
func (e *Engine) ForgetRegion(id uuid.UUID) int {
	n := 0
	for pid, inside := range e.inside {
		pr, ok := inside[id]
		if !ok {
			continue
		}
		if pr.loop != nil {
			pr.loop.Cancel()
		}
		e.sched.CancelGroup(pr.enterKey)
		e.sched.CancelGroup(pr.loopKey)
		delete(inside, id)
		if len(inside) == 0 {
			delete(e.inside, pid)
		}
		n++
	}
	return n
}
