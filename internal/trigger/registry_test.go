package trigger

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/config"
	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/sound"
)

func rich(enabled bool, id string) config.RichSoundConfig {
	return config.RichSoundConfig{
		Enabled: enabled,
		Events:  []config.EventConfig{{Sound: id, Volume: 1, Pitch: 1}},
	}
}

func names(rs []*sound.RichSound) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func TestBuild_SourcesAndEnabled(t *testing.T) {
	reg, err := Build(config.Sounds{
		Triggers: map[string]config.RichSoundConfig{
			"join":         rich(true, "a"),
			"quit":         rich(false, "b"),
			"world_change": {Enabled: true, PreventTeleportSound: true, Events: []config.EventConfig{{Sound: "c"}}},
		},
		Criteria: map[string][]config.CriterionConfig{
			"command": {{Rule: "StartsWith[/spawn]", Sound: rich(true, "d")}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []Name{Command, Join, WorldChange}, reg.Enabled())

	_, ok := reg.Source(Quit)
	assert.False(t, ok, "disabled source is not offered")
	_, ok = reg.Source(Chat)
	assert.False(t, ok)

	wc, ok := reg.Source(WorldChange)
	require.True(t, ok)
	assert.True(t, wc.PreventTeleportSound)

	cmd, ok := reg.Source(Command)
	require.True(t, ok)
	assert.Nil(t, cmd.Default)
	assert.Equal(t, []string{"command #1"}, names(cmd.Select("/spawn", false)))
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(config.Sounds{
		Criteria: map[string][]config.CriterionConfig{
			"chat": {{Rule: "Sounds[x]", Sound: rich(true, "a")}},
		},
	})
	assert.ErrorContains(t, err, "chat #1")
}

func chatSource(t *testing.T, rules ...config.CriterionConfig) *SoundSource {
	t.Helper()
	reg, err := Build(config.Sounds{
		Triggers: map[string]config.RichSoundConfig{"chat": rich(true, "default")},
		Criteria: map[string][]config.CriterionConfig{"chat": rules},
	})
	require.NoError(t, err)
	src, ok := reg.Source(Chat)
	require.True(t, ok)
	return src
}

func TestSelect_DefaultOnlyWhenNothingMatches(t *testing.T) {
	src := chatSource(t, config.CriterionConfig{Rule: "Contains[hello]", Sound: rich(true, "hi")})

	assert.Equal(t, []string{"chat"}, names(src.Select("good bye", false)))
	assert.Equal(t, []string{"chat #1", "chat"}, names(src.Select("hello there", false)))
}

func TestSelect_PreventDefaultAndOthers(t *testing.T) {
	src := chatSource(t,
		config.CriterionConfig{Category: "Equals Exactly", Literal: "gg", PreventDefault: true, Sound: rich(true, "gg")},
		config.CriterionConfig{Rule: "Contains[gg]", PreventOthers: true, Sound: rich(true, "word")},
		config.CriterionConfig{Rule: "Any", Sound: rich(true, "any")},
	)

	assert.Equal(t, []string{"chat #1", "chat #2"}, names(src.Select("gg", false)))
	assert.Equal(t, []string{"chat #2", "chat"}, names(src.Select("GG", false)), "equals exactly is case-sensitive")
	assert.Equal(t, []string{"chat #3", "chat"}, names(src.Select("nothing", false)))
}

func TestSelect_Cancelled(t *testing.T) {
	cancellable := rich(true, "c")
	cancellable.Cancellable = true
	src := chatSource(t,
		config.CriterionConfig{Rule: "Any", Sound: cancellable, PreventDefault: true},
	)

	assert.Equal(t, []string{"chat"}, names(src.Select("x", true)),
		"a cancellable criterion that does not play does not prevent the default")
}

func TestForRegion(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	spawn := region.Restore(id, "Spawn", region.Console, "world",
		region.NewVolume(model.BlockPos{}, model.BlockPos{X: 1, Y: 1, Z: 1}), "", time.Now())
	other := region.Restore(uuid.Must(uuid.NewV4()), "Other", region.Console, "world",
		region.NewVolume(model.BlockPos{}, model.BlockPos{X: 1, Y: 1, Z: 1}), "", time.Now())

	loop := config.LoopConfig{RichSoundConfig: rich(true, "loop"), Period: 100, PreventEnterSound: true}
	loop.StopOnExit = config.StopOnExitConfig{Enabled: true, Delay: 20}

	reg, err := Build(config.Sounds{Regions: map[string]config.RegionSoundsConfig{
		"spawn":     {Enter: rich(true, "enter"), Loop: loop},
		id.String(): {Leave: rich(true, "by-id")},
		"OTHER":     {Enter: rich(true, "other")},
	}})
	require.NoError(t, err)

	rs, ok := reg.ForRegion(spawn)
	require.True(t, ok)
	assert.Equal(t, "by-id", rs.Leave.Events[0].SoundID, "id wins over name")

	rs, ok = reg.ForRegion(other)
	require.True(t, ok)
	assert.True(t, rs.PlaysEnter(false))

	reg, err = Build(config.Sounds{Regions: map[string]config.RegionSoundsConfig{
		"spawn": {Enter: rich(true, "enter"), Loop: loop},
	}})
	require.NoError(t, err)
	rs, ok = reg.ForRegion(spawn)
	require.True(t, ok)
	assert.False(t, rs.PlaysEnter(false), "loop suppresses enter")
	assert.Equal(t, StopOnExit{Enabled: true, Delay: 20}, rs.LoopStop)
	assert.Equal(t, int64(100), rs.LoopPeriod)
}

func TestBuild_LoopNeedsPeriod(t *testing.T) {
	_, err := Build(config.Sounds{Regions: map[string]config.RegionSoundsConfig{
		"spawn": {Loop: config.LoopConfig{RichSoundConfig: rich(true, "loop")}},
	}})
	assert.ErrorContains(t, err, "period must be positive")
}
