// Package trigger holds the configured sound sources and decides which
// rich sounds a trigger plays.
package trigger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/udisondev/soundscape/internal/config"
	"github.com/udisondev/soundscape/internal/criteria"
	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/sound"
)

// Name identifies a trigger source.
type Name string

const (
	Join           Name = "join"
	Quit           Name = "quit"
	Teleport       Name = "teleport"
	WorldChange    Name = "world_change"
	Chat           Name = "chat"
	Command        Name = "command"
	InventoryClick Name = "inventory_click"
	BedLeave       Name = "bed_leave"
	WakeUp         Name = "wake_up"
)

// Source is something that can raise sounds. Dispatchers consult
// IsEnabled instead of registering and unregistering handlers.
type Source interface {
	Name() Name
	IsEnabled() bool
}

// Criterion is a matching rule with the sound it plays.
type Criterion struct {
	Rule           criteria.Rule
	Sound          *sound.RichSound
	PreventDefault bool
	PreventOthers  bool
}

// SoundSource is a trigger with a default sound and optional criteria.
type SoundSource struct {
	name     Name
	Default  *sound.RichSound
	Criteria []Criterion

	// PreventTeleportSound: a world change sound suppresses the teleport sound.
	PreventTeleportSound bool
}

func (s *SoundSource) Name() Name { return s.name }

// IsEnabled reports whether any sound of the source can play.
func (s *SoundSource) IsEnabled() bool {
	if s == nil {
		return false
	}
	if s.Default != nil && s.Default.Enabled {
		return true
	}
	for _, c := range s.Criteria {
		if c.Sound.Enabled {
			return true
		}
	}
	return false
}

// Select returns the sounds to play for subject, criteria first in
// configured order, the default sound last.
func (s *SoundSource) Select(subject string, cancelled bool) []*sound.RichSound {
	if s == nil {
		return nil
	}
	var out []*sound.RichSound
	playDefault := true

	for _, c := range s.Criteria {
		if !c.Rule.Match(subject) || !c.Sound.ShouldPlay(cancelled) {
			continue
		}
		out = append(out, c.Sound)
		if c.PreventDefault {
			playDefault = false
		}
		if c.PreventOthers {
			break
		}
	}

	if playDefault && s.Default.ShouldPlay(cancelled) {
		out = append(out, s.Default)
	}
	return out
}

// StopOnExit stops a region sound Delay ticks after the listener leaves.
type StopOnExit struct {
	Enabled bool
	Delay   int64
}

// RegionSounds are the sounds bound to one region.
type RegionSounds struct {
	Enter     *sound.RichSound
	EnterStop StopOnExit
	Leave     *sound.RichSound

	Loop              *sound.RichSound
	LoopDelay         int64
	LoopPeriod        int64
	LoopStop          StopOnExit
	PreventEnterSound bool
}

// PlaysEnter reports whether the enter sound plays; a running loop may
// suppress it.
func (rs *RegionSounds) PlaysEnter(cancelled bool) bool {
	if rs.PreventEnterSound && rs.Loop.ShouldPlay(cancelled) {
		return false
	}
	return rs.Enter.ShouldPlay(cancelled)
}

// Registry is the immutable result of loading sounds.yaml. A reload
// builds a new Registry.
type Registry struct {
	sources map[Name]*SoundSource
	regions map[string]*RegionSounds // lower-cased region name or id
}

// Build converts the sounds config.
func Build(cfg config.Sounds) (*Registry, error) {
	r := &Registry{
		sources: make(map[Name]*SoundSource),
		regions: make(map[string]*RegionSounds),
	}
	var errs []error

	for key, rc := range cfg.Triggers {
		name := Name(key)
		rs, err := rc.RichSound(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		src := r.source(name)
		src.Default = rs
		src.PreventTeleportSound = rc.PreventTeleportSound
	}

	for key, rules := range cfg.Criteria {
		src := r.source(Name(key))
		for i, cc := range rules {
			c, err := buildCriterion(key, i, cc)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			src.Criteria = append(src.Criteria, c)
		}
	}

	for key, rc := range cfg.Regions {
		rs, err := buildRegionSounds(key, rc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.regions[strings.ToLower(key)] = rs
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) source(name Name) *SoundSource {
	src, ok := r.sources[name]
	if !ok {
		src = &SoundSource{name: name}
		r.sources[name] = src
	}
	return src
}

func buildCriterion(source string, i int, cc config.CriterionConfig) (Criterion, error) {
	label := fmt.Sprintf("%s #%d", source, i+1)

	var rule criteria.Rule
	var err error
	if cc.Rule != "" {
		rule, err = criteria.Parse(cc.Rule)
	} else {
		rule, err = criteria.ForCategory(cc.Category, cc.Literal)
	}
	if err != nil {
		return Criterion{}, fmt.Errorf("criteria %s: %w", label, err)
	}

	rs, err := cc.Sound.RichSound(label)
	if err != nil {
		return Criterion{}, err
	}
	return Criterion{
		Rule:           rule,
		Sound:          rs,
		PreventDefault: cc.PreventDefault,
		PreventOthers:  cc.PreventOthers,
	}, nil
}

func buildRegionSounds(key string, rc config.RegionSoundsConfig) (*RegionSounds, error) {
	enter, err := rc.Enter.RichSound(key + " enter")
	if err != nil {
		return nil, err
	}
	leave, err := rc.Leave.RichSound(key + " leave")
	if err != nil {
		return nil, err
	}
	loop, err := rc.Loop.RichSound(key + " loop")
	if err != nil {
		return nil, err
	}
	period := rc.Loop.Period
	if loop.Enabled && period < 1 {
		return nil, fmt.Errorf("region %s loop: period must be positive", key)
	}
	return &RegionSounds{
		Enter:             enter,
		EnterStop:         StopOnExit(rc.Enter.StopOnExit),
		Leave:             leave,
		Loop:              loop,
		LoopDelay:         rc.Loop.Delay,
		LoopPeriod:        period,
		LoopStop:          StopOnExit(rc.Loop.StopOnExit),
		PreventEnterSound: rc.Loop.PreventEnterSound,
	}, nil
}

// Source returns the source called name if it is enabled.
func (r *Registry) Source(name Name) (*SoundSource, bool) {
	src, ok := r.sources[name]
	if !ok || !src.IsEnabled() {
		return nil, false
	}
	return src, true
}

// Enabled lists the enabled sources, sorted.
func (r *Registry) Enabled() []Name {
	var out []Name
	for name, src := range r.sources {
		if src.IsEnabled() {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForRegion returns the sounds of reg, looked up by id and then by name.
func (r *Registry) ForRegion(reg *region.Region) (*RegionSounds, bool) {
	if rs, ok := r.regions[strings.ToLower(reg.ID().String())]; ok {
		return rs, true
	}
	rs, ok := r.regions[strings.ToLower(reg.Name())]
	return rs, ok
}
