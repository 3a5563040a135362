package session

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/sound"
)

var _ sound.Listener = (*Player)(nil)

func newPlayer(perms ...string) *Player {
	return NewPlayer(uuid.Must(uuid.NewV4()), "Steve", model.NewLocation("world", 0, 64, 0, 0), perms)
}

func TestPlayer_HasPermission(t *testing.T) {
	tests := []struct {
		name  string
		perms []string
		check string
		want  bool
	}{
		{"exact", []string{"playmoresounds.region.create"}, "playmoresounds.region.create", true},
		{"case-insensitive", []string{"PlayMoreSounds.Region.Create"}, "playmoresounds.region.CREATE", true},
		{"missing", []string{"playmoresounds.region.create"}, "playmoresounds.region.remove", false},
		{"wildcard", []string{"*"}, "anything.at.all", true},
		{"subtree", []string{"playmoresounds.region.*"}, "playmoresounds.region.create.unlimited.area", true},
		{"subtree does not match sibling", []string{"playmoresounds.region.*"}, "playmoresounds.list", false},
		{"blank ignored", []string{"  "}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newPlayer(tt.perms...).HasPermission(tt.check))
		})
	}
}

func TestPlayer_SetLocationReturnsOld(t *testing.T) {
	p := newPlayer()
	next := model.NewLocation("world", 5, 64, 5, 90)

	old := p.SetLocation(next)
	assert.Equal(t, model.NewLocation("world", 0, 64, 0, 0), old)
	assert.Equal(t, next, p.Location())
}

func TestTable_JoinLeave(t *testing.T) {
	tbl := NewTable(false)
	a, b := newPlayer(), newPlayer()

	tbl.Join(a)
	tbl.Join(b)
	assert.Equal(t, 2, tbl.Len())
	assert.Len(t, tbl.Listeners(), 2)

	got, ok := tbl.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	left, ok := tbl.Leave(a.ID())
	require.True(t, ok)
	assert.Same(t, a, left)
	_, ok = tbl.Leave(a.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_ToggleSurvivesRejoin(t *testing.T) {
	tbl := NewTable(false)
	p := newPlayer()
	tbl.Join(p)
	require.True(t, p.SoundsEnabled())

	assert.False(t, tbl.Toggle(p.ID(), nil))
	assert.False(t, p.SoundsEnabled())

	tbl.Leave(p.ID())
	again := NewPlayer(p.ID(), "Steve", p.Location(), nil)
	tbl.Join(again)
	assert.False(t, again.SoundsEnabled(), "toggle persists across sessions")

	on := true
	assert.True(t, tbl.Toggle(p.ID(), &on))
	assert.True(t, again.SoundsEnabled())
}

func TestTable_EnableOnLogin(t *testing.T) {
	tbl := NewTable(true)
	p := newPlayer()
	tbl.Join(p)
	tbl.Toggle(p.ID(), nil)
	tbl.Leave(p.ID())

	again := NewPlayer(p.ID(), "Steve", p.Location(), nil)
	tbl.Join(again)
	assert.True(t, again.SoundsEnabled())
}
