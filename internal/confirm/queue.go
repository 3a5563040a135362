// Package confirm gates destructive actions behind a second confirmation.
package confirm

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gofrs/uuid/v5"
)

// ErrNothingPending is returned by Confirm when the actor has no pending action.
var ErrNothingPending = errors.New("nothing pending confirmation")

// Kind is the kind of action waiting for confirmation.
type Kind string

const (
	KindRegionDelete Kind = "region_delete"
	KindRegionRename Kind = "region_rename"
	KindUninstall    Kind = "uninstall"
)

// Token identifies a pending action by value, e.g. {KindRegionDelete, regionID}.
type Token struct {
	Kind Kind
	Key  string
}

// Pending is an action waiting for the actor's confirmation.
type Pending struct {
	Token       Token
	Description string
	Action      func() error
}

// Queue holds at most one pending action per actor.
type Queue struct {
	mu      sync.Mutex
	pending map[uuid.UUID]Pending
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[uuid.UUID]Pending)}
}

// Add sets the pending action of actor, replacing any previous one. The
// replaced entry is returned so the caller can tell the actor about it.
func (q *Queue) Add(actor uuid.UUID, token Token, description string, action func() error) (replaced Pending, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	replaced, ok = q.pending[actor]
	q.pending[actor] = Pending{Token: token, Description: description, Action: action}
	if ok {
		slog.Debug("pending confirmation superseded",
			"actor", actor,
			"old", replaced.Token,
			"new", token)
	}
	return replaced, ok
}

// Confirm removes the pending action of actor and runs it. The entry is
// removed before the action runs, so an action that fails is not retried
// by a second Confirm.
func (q *Queue) Confirm(actor uuid.UUID) (Pending, error) {
	q.mu.Lock()
	p, ok := q.pending[actor]
	if ok {
		delete(q.pending, actor)
	}
	q.mu.Unlock()

	if !ok {
		return Pending{}, ErrNothingPending
	}
	if p.Action == nil {
		return p, nil
	}
	return p, p.Action()
}

// Get returns the pending action of actor for display.
func (q *Queue) Get(actor uuid.UUID) (Pending, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.pending[actor]
	return p, ok
}

// List returns the pending actions of actor for display: zero or one.
func (q *Queue) List(actor uuid.UUID) []Pending {
	if p, ok := q.Get(actor); ok {
		return []Pending{p}
	}
	return nil
}

// Clear drops the pending action of actor, e.g. when the session ends.
func (q *Queue) Clear(actor uuid.UUID) {
	q.mu.Lock()
	delete(q.pending, actor)
	q.mu.Unlock()
}

// Len returns the number of actors with a pending action.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
