// Package command is the region and sound command surface. Every
// operation returns a typed result the transport renders; nothing here
// formats text.
package command

import (
	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/session"
)

// Permissions checked by the commands.
const (
	PermRegion            = "playmoresounds.region"
	PermCreate            = "playmoresounds.region.create"
	PermUnlimitedArea     = "playmoresounds.region.create.unlimited.area"
	PermUnlimitedRegions  = "playmoresounds.region.create.unlimited.regions"
	PermOverlap           = "playmoresounds.region.select.overlap"
	PermSelect            = "playmoresounds.region.select.command"
	PermDescription       = "playmoresounds.region.description"
	PermDescriptionOthers = "playmoresounds.region.description.others"
	PermInfo              = "playmoresounds.region.info"
	PermList              = "playmoresounds.region.list"
	PermListOthers        = "playmoresounds.region.list.others"
	PermRemove            = "playmoresounds.region.remove"
	PermRemoveOthers      = "playmoresounds.region.remove.others"
	PermRename            = "playmoresounds.region.rename"
	PermRenameOthers      = "playmoresounds.region.rename.others"
	PermTeleport          = "playmoresounds.region.teleport"
	PermTeleportOthers    = "playmoresounds.region.teleport.others"
	PermSoundList         = "playmoresounds.list"
	PermToggle            = "playmoresounds.toggle"
)

// Actor runs a command: a connected player or the console.
type Actor struct {
	ID     uuid.UUID
	Player *session.Player // nil for the console
}

// Console is the server console. It holds every permission and owns the
// regions it creates.
func Console() Actor {
	return Actor{ID: region.Console}
}

// PlayerActor wraps a connected player.
func PlayerActor(p *session.Player) Actor {
	return Actor{ID: p.ID(), Player: p}
}

func (a Actor) IsConsole() bool { return a.Player == nil }

// HasPermission reports whether the actor holds perm.
func (a Actor) HasPermission(perm string) bool {
	if a.Player == nil {
		return true
	}
	return a.Player.HasPermission(perm)
}

func (a Actor) require(perm string) error {
	if !a.HasPermission(perm) {
		return &PermissionError{Permission: perm}
	}
	return nil
}

// requireRegion checks the region command permission and then perm.
func (a Actor) requireRegion(perm string) error {
	if err := a.require(PermRegion); err != nil {
		return err
	}
	return a.require(perm)
}
