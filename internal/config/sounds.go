package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/soundscape/internal/sound"
)

// Sounds is the content of sounds.yaml.
type Sounds struct {
	// Triggers by name: join, quit, teleport, world_change, chat, command,
	// inventory_click, bed_leave, wake_up or any custom name.
	Triggers map[string]RichSoundConfig `yaml:"triggers"`

	// Criteria rules by source: chat, command, inventory_click.
	Criteria map[string][]CriterionConfig `yaml:"criteria"`

	// Region sounds by region name or id.
	Regions map[string]RegionSoundsConfig `yaml:"regions"`

	// Extra sound ids listed by the catalogue besides the configured ones.
	Catalogue []string `yaml:"catalogue"`
}

// RichSoundConfig is a RichSound in YAML form.
type RichSoundConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Cancellable bool          `yaml:"cancellable"`
	Events      []EventConfig `yaml:"events"`

	StopOnExit StopOnExitConfig `yaml:"stop_on_exit"`

	// world_change only
	PreventTeleportSound bool `yaml:"prevent_teleport_sound"`
}

// StopOnExitConfig stops a region sound some ticks after the listener leaves.
type StopOnExitConfig struct {
	Enabled bool  `yaml:"enabled"`
	Delay   int64 `yaml:"delay"` // ticks
}

// EventConfig is one sound event.
type EventConfig struct {
	Sound    string        `yaml:"sound"`
	Volume   float32       `yaml:"volume"`
	Pitch    float32       `yaml:"pitch"`
	Delay    int64         `yaml:"delay"` // ticks
	Category string        `yaml:"category"`
	Options  OptionsConfig `yaml:"options"`
}

// OptionsConfig is sound.Options in YAML form.
type OptionsConfig struct {
	IgnoresDisabled    bool    `yaml:"ignores_disabled"`
	PermissionRequired string  `yaml:"permission_required"`
	PermissionToListen string  `yaml:"permission_to_listen"`
	Radius             float64 `yaml:"radius"`
	// Keys FRONT_BACK, LEFT_RIGHT, UP_DOWN in any case; unknown keys are ignored.
	RelativeLocation map[string]float64 `yaml:"relative_location"`
}

// CriterionConfig is one criteria rule with its sound.
//
// Either Rule (Contains[a,b], Any, ...) or Category plus Literal
// ("Equals Exactly", "gg") must be set.
type CriterionConfig struct {
	Rule     string `yaml:"rule"`
	Category string `yaml:"category"`
	Literal  string `yaml:"literal"`

	// Skip the default sound of the source when this rule plays.
	PreventDefault bool `yaml:"prevent_default"`
	// Stop evaluating later rules when this rule plays.
	PreventOthers bool `yaml:"prevent_others"`

	Sound RichSoundConfig `yaml:"sound"`
}

// RegionSoundsConfig holds the sounds of one region.
type RegionSoundsConfig struct {
	Enter RichSoundConfig `yaml:"enter"`
	Leave RichSoundConfig `yaml:"leave"`
	Loop  LoopConfig      `yaml:"loop"`
}

// LoopConfig is a sound repeated while the listener stays in the region.
type LoopConfig struct {
	RichSoundConfig `yaml:",inline"`

	Delay             int64 `yaml:"delay"`  // ticks before the first play
	Period            int64 `yaml:"period"` // ticks between plays
	PreventEnterSound bool  `yaml:"prevent_enter_sound"`
}

// DefaultSounds returns a small working configuration.
func DefaultSounds() Sounds {
	pling := func(id string, radius float64) RichSoundConfig {
		return RichSoundConfig{
			Enabled: true,
			Events: []EventConfig{{
				Sound:   id,
				Volume:  1,
				Pitch:   1,
				Options: OptionsConfig{Radius: radius},
			}},
		}
	}

	return Sounds{
		Triggers: map[string]RichSoundConfig{
			"join":     pling("ENTITY_PLAYER_LEVELUP", sound.RadiusServer),
			"quit":     pling("BLOCK_WOODEN_DOOR_CLOSE", sound.RadiusServer),
			"teleport": pling("ENTITY_ENDERMAN_TELEPORT", 0),
			"chat":     pling("ENTITY_ITEM_PICKUP", 0),
		},
	}
}

// LoadSounds loads sounds config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSounds(path string) (Sounds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSounds(), nil
		}
		return Sounds{}, fmt.Errorf("reading sounds %s: %w", path, err)
	}

	var cfg Sounds
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Sounds{}, fmt.Errorf("parsing sounds %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Sounds{}, fmt.Errorf("validating sounds %s: %w", path, err)
	}

	return cfg, nil
}

// Validate converts every configured sound and reports all errors.
func (s Sounds) Validate() error {
	var errs []error
	for name, rs := range s.Triggers {
		if _, err := rs.RichSound(name); err != nil {
			errs = append(errs, err)
		}
	}
	for source, rules := range s.Criteria {
		for i, c := range rules {
			if c.Rule == "" && c.Category == "" {
				errs = append(errs, fmt.Errorf("criteria %s #%d: rule or category required", source, i+1))
			}
			if _, err := c.Sound.RichSound(fmt.Sprintf("%s #%d", source, i+1)); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for region, rc := range s.Regions {
		if _, err := rc.Enter.RichSound(region + " enter"); err != nil {
			errs = append(errs, err)
		}
		if _, err := rc.Leave.RichSound(region + " leave"); err != nil {
			errs = append(errs, err)
		}
		if _, err := rc.Loop.RichSound(region + " loop"); err != nil {
			errs = append(errs, err)
		}
		if rc.Loop.Enabled && rc.Loop.Period < 1 {
			errs = append(errs, fmt.Errorf("region %s loop: period must be positive", region))
		}
	}
	return errors.Join(errs...)
}

// SoundIDs returns every sound id used by the config plus the catalogue,
// sorted and without duplicates.
func (s Sounds) SoundIDs() []string {
	seen := make(map[string]struct{})
	add := func(rs RichSoundConfig) {
		for _, e := range rs.Events {
			if e.Sound != "" {
				seen[e.Sound] = struct{}{}
			}
		}
	}
	for _, rs := range s.Triggers {
		add(rs)
	}
	for _, rules := range s.Criteria {
		for _, c := range rules {
			add(c.Sound)
		}
	}
	for _, rc := range s.Regions {
		add(rc.Enter)
		add(rc.Leave)
		add(rc.Loop.RichSoundConfig)
	}
	for _, id := range s.Catalogue {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RichSound converts the config to a sound.RichSound named name.
func (c RichSoundConfig) RichSound(name string) (*sound.RichSound, error) {
	rs := &sound.RichSound{
		Name:        name,
		Enabled:     c.Enabled,
		Cancellable: c.Cancellable,
		Events:      make([]sound.Event, 0, len(c.Events)),
	}
	for _, ec := range c.Events {
		rs.Events = append(rs.Events, sound.Event{
			SoundID:  ec.Sound,
			Volume:   ec.Volume,
			Pitch:    ec.Pitch,
			Delay:    ec.Delay,
			Options:  ec.Options.Options(),
			Category: ec.Category,
		})
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Options converts the config to sound.Options.
func (o OptionsConfig) Options() sound.Options {
	opts := sound.Options{
		IgnoresDisabled:    o.IgnoresDisabled,
		PermissionRequired: strings.TrimSpace(o.PermissionRequired),
		PermissionToListen: strings.TrimSpace(o.PermissionToListen),
		Radius:             o.Radius,
	}
	for key, v := range o.RelativeLocation {
		if d, err := sound.ParseDirection(key); err == nil {
			opts.Offset = opts.Offset.Set(d, v)
		}
	}
	return opts
}
