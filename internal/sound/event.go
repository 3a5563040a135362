package sound

import (
	"errors"
	"fmt"
)

// DefaultCategory is used when an event has no category.
const DefaultCategory = "master"

// Event is one configured sound: what to play, how loud and after how
// many ticks.
type Event struct {
	SoundID  string
	Volume   float32
	Pitch    float32
	Delay    int64 // ticks, >= 0
	Options  Options
	Category string
}

// Validate checks the event is playable.
func (e Event) Validate() error {
	if e.SoundID == "" {
		return errors.New("sound id is empty")
	}
	if e.Delay < 0 {
		return fmt.Errorf("sound %s: negative delay %d", e.SoundID, e.Delay)
	}
	if e.Volume < 0 {
		return fmt.Errorf("sound %s: negative volume %g", e.SoundID, e.Volume)
	}
	return nil
}

// CategoryOrDefault returns the category, DefaultCategory if unset.
func (e Event) CategoryOrDefault() string {
	if e.Category == "" {
		return DefaultCategory
	}
	return e.Category
}

// RichSound is a named bundle of events played together. Event order is
// the configured order; events with a delay fire later on their own.
type RichSound struct {
	Name        string
	Enabled     bool
	Cancellable bool
	Events      []Event
}

// ShouldPlay reports whether the sound plays for a trigger that another
// handler may have cancelled.
func (rs *RichSound) ShouldPlay(cancelled bool) bool {
	if rs == nil || !rs.Enabled {
		return false
	}
	return !cancelled || !rs.Cancellable
}

// Validate checks every event.
func (rs *RichSound) Validate() error {
	var errs []error
	for i, e := range rs.Events {
		if err := e.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s event %d: %w", rs.Name, i+1, err))
		}
	}
	return errors.Join(errs...)
}

// SoundIDs returns the distinct sound ids used by rs.
func (rs *RichSound) SoundIDs() []string {
	seen := make(map[string]struct{}, len(rs.Events))
	ids := make([]string, 0, len(rs.Events))
	for _, e := range rs.Events {
		if _, ok := seen[e.SoundID]; ok {
			continue
		}
		seen[e.SoundID] = struct{}{}
		ids = append(ids, e.SoundID)
	}
	return ids
}
