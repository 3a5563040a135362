package region

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
)

// Corner selects one of the two diagonal corners of a selection.
type Corner int

const (
	First Corner = iota
	Second
)

// Selections holds the corner points actors pick before creating a region.
// Safe for concurrent use: corners are set on the tick goroutine while a
// creation worker may be waiting in Await.
type Selections struct {
	mu      sync.Mutex
	byActor map[uuid.UUID]*selection
}

type selection struct {
	corners [2]*model.Location
	waiters []chan [2]model.Location
}

// NewSelections creates an empty selection table.
func NewSelections() *Selections {
	return &Selections{byActor: make(map[uuid.UUID]*selection)}
}

// Set stores a corner for actor and wakes waiters once both are known.
func (s *Selections) Set(actor uuid.UUID, c Corner, loc model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.byActor[actor]
	if sel == nil {
		sel = &selection{}
		s.byActor[actor] = sel
	}
	sel.corners[c] = &loc

	pair, ok := sel.pair()
	if !ok {
		return
	}
	for _, w := range sel.waiters {
		w <- pair
	}
	sel.waiters = nil
}

// Get returns both corners when they are set.
func (s *Selections) Get(actor uuid.UUID) (first, second model.Location, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.byActor[actor]
	if sel == nil {
		return model.Location{}, model.Location{}, false
	}
	pair, ok := sel.pair()
	return pair[0], pair[1], ok
}

// Clear forgets the corners of actor. Pending Await calls keep waiting
// until their context ends.
func (s *Selections) Clear(actor uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.byActor[actor]
	if sel == nil {
		return
	}
	if len(sel.waiters) == 0 {
		delete(s.byActor, actor)
		return
	}
	sel.corners = [2]*model.Location{}
}

// Await blocks until actor has both corners or ctx ends. It must not be
// called from the tick goroutine.
func (s *Selections) Await(ctx context.Context, actor uuid.UUID) (first, second model.Location, err error) {
	s.mu.Lock()
	sel := s.byActor[actor]
	if sel == nil {
		sel = &selection{}
		s.byActor[actor] = sel
	}
	if pair, ok := sel.pair(); ok {
		s.mu.Unlock()
		return pair[0], pair[1], nil
	}
	ch := make(chan [2]model.Location, 1)
	sel.waiters = append(sel.waiters, ch)
	s.mu.Unlock()

	select {
	case pair := <-ch:
		return pair[0], pair[1], nil
	case <-ctx.Done():
		s.dropWaiter(actor, ch)
		return model.Location{}, model.Location{}, ctx.Err()
	}
}

func (s *Selections) dropWaiter(actor uuid.UUID, ch chan [2]model.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.byActor[actor]
	if sel == nil {
		return
	}
	for i, w := range sel.waiters {
		if w == ch {
			sel.waiters = append(sel.waiters[:i], sel.waiters[i+1:]...)
			break
		}
	}
	if len(sel.waiters) == 0 && sel.corners[First] == nil && sel.corners[Second] == nil {
		delete(s.byActor, actor)
	}
}

func (sel *selection) pair() ([2]model.Location, bool) {
	if sel.corners[First] == nil || sel.corners[Second] == nil {
		return [2]model.Location{}, false
	}
	return [2]model.Location{*sel.corners[First], *sel.corners[Second]}, true
}
