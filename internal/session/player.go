// Package session tracks listeners connected through the bridge.
package session

import (
	"strings"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
)

// WildcardPermission grants every permission.
const WildcardPermission = "*"

// Player is a connected listener.
type Player struct {
	id   uuid.UUID
	name string

	mu          sync.RWMutex
	location    model.Location
	permissions map[string]struct{}
	enabled     bool
}

// NewPlayer creates a player at loc with the given permissions.
func NewPlayer(id uuid.UUID, name string, loc model.Location, permissions []string) *Player {
	p := &Player{
		id:       id,
		name:     name,
		location: loc,
		enabled:  true,
	}
	p.SetPermissions(permissions)
	return p
}

func (p *Player) ID() uuid.UUID { return p.id }
func (p *Player) Name() string  { return p.name }

// Location returns the current location.
func (p *Player) Location() model.Location {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// SetLocation moves the player and returns where it was.
func (p *Player) SetLocation(loc model.Location) model.Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.location
	p.location = loc
	return old
}

// HasPermission reports whether the player holds perm. Permissions are
// case-insensitive; "*" grants all, "a.b.*" grants everything under "a.b.".
func (p *Player) HasPermission(perm string) bool {
	perm = strings.ToLower(perm)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.permissions[WildcardPermission]; ok {
		return true
	}
	if _, ok := p.permissions[perm]; ok {
		return true
	}
	for i := len(perm) - 1; i > 0; i-- {
		if perm[i] != '.' {
			continue
		}
		if _, ok := p.permissions[perm[:i+1]+"*"]; ok {
			return true
		}
	}
	return false
}

// SetPermissions replaces the permission set.
func (p *Player) SetPermissions(perms []string) {
	set := make(map[string]struct{}, len(perms))
	for _, perm := range perms {
		if perm = strings.ToLower(strings.TrimSpace(perm)); perm != "" {
			set[perm] = struct{}{}
		}
	}
	p.mu.Lock()
	p.permissions = set
	p.mu.Unlock()
}

// SoundsEnabled reports whether the player wants to hear sounds.
func (p *Player) SoundsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

func (p *Player) setSoundsEnabled(v bool) {
	p.mu.Lock()
	p.enabled = v
	p.mu.Unlock()
}
