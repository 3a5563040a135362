// Package bridge connects game platforms to the engine over websocket.
// Platforms report player events as JSON frames and receive play, stop
// and border frames for the listeners they own.
package bridge

import (
	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/sound"
)

// Inbound frame types.
const (
	TypeHello          = "hello"
	TypeJoin           = "join"
	TypeQuit           = "quit"
	TypeMove           = "move"
	TypePermissions    = "permissions"
	TypeChat           = "chat"
	TypeCommand        = "command"
	TypeInventoryClick = "inventory_click"
	TypeBedLeave       = "bed_leave"
	TypeTrigger        = "trigger"
	TypeToggle         = "toggle"
	TypeSelect         = "select"
	TypeRegion         = "region"
	TypeConfirm        = "confirm"
	TypeSounds         = "sounds"
)

// Outbound frame types.
const (
	TypePlay   = "play"
	TypeStop   = "stop"
	TypeBorder = "border"
	TypeReply  = "reply"
)

// Region operations of a TypeRegion frame.
const (
	OpCreate         = "create"
	OpDelete         = "delete"
	OpRename         = "rename"
	OpInfo           = "info"
	OpList           = "list"
	OpTeleport       = "teleport"
	OpSetPosition    = "set_position"
	OpSetDescription = "set_description"
)

// Inbound is any frame a platform sends. Only the fields of its type are
// set. A nil Player on a command frame means the console.
type Inbound struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`

	// hello
	Token string `json:"token,omitempty"`

	Player      uuid.UUID       `json:"player"`
	Name        string          `json:"name,omitempty"` // join: player name, trigger: trigger name
	Location    *model.Location `json:"location,omitempty"`
	Permissions []string        `json:"permissions,omitempty"`

	Cause     string `json:"cause,omitempty"` // move|teleport
	Cancelled bool   `json:"cancelled,omitempty"`
	Text      string `json:"text,omitempty"` // chat message, command line, clicked item
	WorldTime int64  `json:"world_time,omitempty"`
	Enabled   *bool  `json:"enabled,omitempty"`

	Op          string     `json:"op,omitempty"`
	Region      string     `json:"region,omitempty"`
	NewName     string     `json:"new_name,omitempty"`
	Description string     `json:"description,omitempty"`
	Corner      string     `json:"corner,omitempty"`
	Owner       *uuid.UUID `json:"owner,omitempty"`
	Page        int        `json:"page,omitempty"`
	// create: wait for the selection instead of failing without one
	Wait bool `json:"wait,omitempty"`
}

// PlayFrame asks the platform to play a sound to a listener.
type PlayFrame struct {
	Type     string         `json:"type"`
	Listener uuid.UUID      `json:"listener"`
	Sound    string         `json:"sound"`
	Category string         `json:"category"`
	Volume   float32        `json:"volume"`
	Pitch    float32        `json:"pitch"`
	Location model.Location `json:"location"`
}

// StopFrame asks the platform to stop a sound.
type StopFrame struct {
	Type     string    `json:"type"`
	Listener uuid.UUID `json:"listener"`
	Sound    string    `json:"sound"`
	Category string    `json:"category,omitempty"`
}

// BorderFrame draws region border particles for a listener.
type BorderFrame struct {
	Type     string           `json:"type"`
	Listener uuid.UUID        `json:"listener"`
	Points   []model.Location `json:"points"`
	Colour   sound.Colour     `json:"colour"`
}

// Reply answers a frame that carried a request id.
type Reply struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Played is the payload of event frames.
type Played struct {
	Sounds int `json:"sounds"`
}
