package session

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/sound"
)

// Table is the set of connected players. The sound toggle of a player
// outlives the session.
type Table struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*Player
	toggles map[uuid.UUID]bool // false: sounds disabled

	enableOnLogin bool
}

// NewTable creates an empty table. With enableOnLogin a player that
// disabled sounds gets them back on the next join.
func NewTable(enableOnLogin bool) *Table {
	return &Table{
		players:       make(map[uuid.UUID]*Player),
		toggles:       make(map[uuid.UUID]bool),
		enableOnLogin: enableOnLogin,
	}
}

// SetEnableOnLogin changes the login policy after a reload.
func (t *Table) SetEnableOnLogin(v bool) {
	t.mu.Lock()
	t.enableOnLogin = v
	t.mu.Unlock()
}

// Join adds p, replacing a stale session with the same id.
func (t *Table) Join(p *Player) {
	t.mu.Lock()
	defer t.mu.Unlock()

	enabled, known := t.toggles[p.id]
	if t.enableOnLogin || !known {
		enabled = true
	}
	t.toggles[p.id] = enabled
	p.setSoundsEnabled(enabled)
	t.players[p.id] = p

	slog.Info("player joined", "player", p.name, "id", p.id, "sounds", enabled)
}

// Leave removes the player and returns it.
func (t *Table) Leave(id uuid.UUID) (*Player, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.players[id]
	if !ok {
		return nil, false
	}
	delete(t.players, id)
	slog.Info("player left", "player", p.name, "id", id)
	return p, true
}

// Get returns a connected player.
func (t *Table) Get(id uuid.UUID) (*Player, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.players[id]
	return p, ok
}

// Toggle flips or sets the sound state of a player. enable == nil flips.
// Returns the new state.
func (t *Table) Toggle(id uuid.UUID, enable *bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, known := t.toggles[id]
	if !known {
		cur = true
	}
	next := !cur
	if enable != nil {
		next = *enable
	}
	t.toggles[id] = next
	if p, ok := t.players[id]; ok {
		p.setSoundsEnabled(next)
	}
	return next
}

// Players returns connected players ordered by id.
func (t *Table) Players() []*Player {
	t.mu.RLock()
	out := make([]*Player, 0, len(t.players))
	for _, p := range t.players {
		out = append(out, p)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].id.String() < out[j].id.String()
	})
	return out
}

// Listeners returns connected players as sound listeners.
func (t *Table) Listeners() []sound.Listener {
	players := t.Players()
	out := make([]sound.Listener, len(players))
	for i, p := range players {
		out[i] = p
	}
	return out
}

// Len returns the number of connected players.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.players)
}
