package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/sound"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadServer_OverridesDefaults(t *testing.T) {
	path := writeFile(t, "server.yaml", `
log_level: debug
port: 9000
tick_rate: 10
bridge:
  auth_secret: s3cret
  write_timeout: 2s
database:
  driver: postgres
  postgres:
    host: db
    port: 5433
regions:
  max_regions: 8
  border:
    max_showing_borders: 3
world_blacklist: [world_nether]
enable_sounds_on_login: true
`)

	cfg, err := LoadServer(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 100*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, "s3cret", cfg.Bridge.AuthSecret)
	assert.Equal(t, 2*time.Second, cfg.Bridge.WriteTimeout)
	assert.Equal(t, 256, cfg.Bridge.SendQueueSize, "untouched keys keep defaults")
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://soundscape:soundscape@db:5433/soundscape?sslmode=disable", cfg.Database.Postgres.DSN())
	assert.Equal(t, 8, cfg.Regions.MaxRegions)
	assert.Equal(t, int64(15625), cfg.Regions.MaxArea)
	assert.Equal(t, 3, cfg.Regions.Border.MaxShowingBorders)
	assert.Equal(t, int64(140), cfg.Regions.Border.ShowingTime)
	assert.Equal(t, []string{"world_nether"}, cfg.WorldBlacklist)
	assert.True(t, cfg.EnableSoundsOnLogin)
}

func TestLoadServer_BadYAML(t *testing.T) {
	_, err := LoadServer(writeFile(t, "server.yaml", "port: [oops"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestServer_Validate(t *testing.T) {
	cfg := DefaultServer()
	cfg.TickRate = 0
	cfg.Database.Driver = "mysql"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick_rate")
	assert.Contains(t, err.Error(), "database.driver")
}

const soundsYAML = `
triggers:
  join:
    enabled: true
    events:
      - sound: ENTITY_PLAYER_LEVELUP
        volume: 1
        pitch: 1.5
        options:
          radius: -1
          permission_required: "  "
          relative_location:
            front_back: 2
            up_down: 1
            sideways: 9
  world_change:
    enabled: true
    prevent_teleport_sound: true
    events:
      - sound: BLOCK_PORTAL_TRAVEL
        delay: 10
criteria:
  chat:
    - category: Equals Exactly
      literal: gg
      prevent_default: true
      sound:
        enabled: true
        events:
          - sound: UI_TOAST_CHALLENGE_COMPLETE
    - rule: Contains[hello,hi]
      prevent_others: true
      sound:
        enabled: true
        events:
          - sound: ENTITY_VILLAGER_YES
regions:
  Spawn:
    enter:
      enabled: true
      stop_on_exit:
        enabled: true
        delay: 20
      events:
        - sound: MUSIC_DISC_CAT
    loop:
      enabled: true
      delay: 5
      period: 100
      prevent_enter_sound: true
      events:
        - sound: BLOCK_NOTE_BLOCK_BASS
catalogue: [AMBIENT_CAVE, ENTITY_PLAYER_LEVELUP]
`

func TestLoadSounds(t *testing.T) {
	cfg, err := LoadSounds(writeFile(t, "sounds.yaml", soundsYAML))
	require.NoError(t, err)

	join, err := cfg.Triggers["join"].RichSound("join")
	require.NoError(t, err)
	require.Len(t, join.Events, 1)
	e := join.Events[0]
	assert.Equal(t, "ENTITY_PLAYER_LEVELUP", e.SoundID)
	assert.Equal(t, float32(1.5), e.Pitch)
	assert.Equal(t, sound.Options{
		Radius: sound.RadiusServer,
		Offset: sound.Offset{FrontBack: 2, UpDown: 1},
	}, e.Options, "blank permission is dropped, unknown axis ignored")

	assert.True(t, cfg.Triggers["world_change"].PreventTeleportSound)

	chat := cfg.Criteria["chat"]
	require.Len(t, chat, 2)
	assert.Equal(t, "Equals Exactly", chat[0].Category)
	assert.True(t, chat[0].PreventDefault)
	assert.True(t, chat[1].PreventOthers)

	spawn := cfg.Regions["Spawn"]
	assert.True(t, spawn.Enter.StopOnExit.Enabled)
	assert.Equal(t, int64(20), spawn.Enter.StopOnExit.Delay)
	assert.Equal(t, int64(100), spawn.Loop.Period)
	assert.Equal(t, int64(5), spawn.Loop.Delay)
	assert.True(t, spawn.Loop.PreventEnterSound)
	assert.True(t, spawn.Loop.Enabled, "inline fields decode")

	assert.Equal(t, []string{
		"AMBIENT_CAVE",
		"BLOCK_NOTE_BLOCK_BASS",
		"BLOCK_PORTAL_TRAVEL",
		"ENTITY_PLAYER_LEVELUP",
		"ENTITY_VILLAGER_YES",
		"MUSIC_DISC_CAT",
		"UI_TOAST_CHALLENGE_COMPLETE",
	}, cfg.SoundIDs())
}

func TestLoadSounds_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadSounds(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Contains(t, cfg.Triggers, "join")
	require.NoError(t, cfg.Validate())
}

func TestLoadSounds_Invalid(t *testing.T) {
	_, err := LoadSounds(writeFile(t, "sounds.yaml", `
triggers:
  join:
    enabled: true
    events:
      - volume: 1
regions:
  Spawn:
    loop:
      enabled: true
      period: 0
criteria:
  chat:
    - sound:
        enabled: true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sound id is empty")
	assert.Contains(t, err.Error(), "period must be positive")
	assert.Contains(t, err.Error(), "rule or category required")
}
