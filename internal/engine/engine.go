// Package engine runs the tick loop that owns regions, playback
// scheduling and audience resolution.
//
// Every exported method that is not documented as goroutine-safe must run
// on the tick goroutine, i.e. inside a closure passed to Do or Call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/config"
	"github.com/udisondev/soundscape/internal/confirm"
	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/schedule"
	"github.com/udisondev/soundscape/internal/session"
	"github.com/udisondev/soundscape/internal/sound"
	"github.com/udisondev/soundscape/internal/trigger"
)

// ErrStopped is returned by Call once Run has returned.
var ErrStopped = errors.New("engine stopped")

// Config is the engine part of the server configuration.
type Config struct {
	TickInterval        time.Duration
	InboxSize           int
	WorldBlacklist      []string
	EnableSoundsOnLogin bool

	MaxShowingBorders int
	BorderShowingTime int64 // ticks
	BorderPeriod      int64 // ticks
}

// ConfigFromServer extracts the engine settings from the server config.
func ConfigFromServer(s config.Server) Config {
	return Config{
		TickInterval:        s.TickInterval(),
		InboxSize:           1024,
		WorldBlacklist:      s.WorldBlacklist,
		EnableSoundsOnLogin: s.EnableSoundsOnLogin,
		MaxShowingBorders:   s.Regions.Border.MaxShowingBorders,
		BorderShowingTime:   s.Regions.Border.ShowingTime,
		BorderPeriod:        s.Regions.Border.Period,
	}
}

// Engine is the single logical thread of the sound system.
type Engine struct {
	cfg Config

	store      *region.Store
	sched      *schedule.Scheduler
	players    *session.Table
	confirms   *confirm.Queue
	selections *region.Selections
	borders    *region.BorderThrottle
	resolver   *sound.Resolver
	pages      *sound.NamePages
	out        sound.Output

	registry *trigger.Registry
	inside   map[uuid.UUID]map[uuid.UUID]*presence // player → region → presence
	gen      uint64

	inbox chan func()
	done  chan struct{}
}

// New creates an engine over store playing through out.
func New(cfg Config, store *region.Store, sounds config.Sounds, out sound.Output) (*Engine, error) {
	reg, err := trigger.Build(sounds)
	if err != nil {
		return nil, fmt.Errorf("building sound registry: %w", err)
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}
	if cfg.InboxSize < 1 {
		cfg.InboxSize = 1
	}
	if cfg.BorderPeriod < 1 {
		cfg.BorderPeriod = 1
	}
	if out == nil {
		out = sound.LogOutput{}
	}

	return &Engine{
		cfg:        cfg,
		store:      store,
		sched:      schedule.New(),
		players:    session.NewTable(cfg.EnableSoundsOnLogin),
		confirms:   confirm.NewQueue(),
		selections: region.NewSelections(),
		borders:    region.NewBorderThrottle(cfg.MaxShowingBorders),
		resolver:   sound.NewResolver(cfg.WorldBlacklist),
		pages:      sound.NewNamePages(sounds.SoundIDs()),
		out:        out,
		registry:   reg,
		inside:     make(map[uuid.UUID]map[uuid.UUID]*presence),
		inbox:      make(chan func(), cfg.InboxSize),
		done:       make(chan struct{}),
	}, nil
}

// Goroutine-safe accessors.

func (e *Engine) Store() *region.Store            { return e.store }
func (e *Engine) Players() *session.Table         { return e.players }
func (e *Engine) Confirms() *confirm.Queue        { return e.confirms }
func (e *Engine) Selections() *region.Selections  { return e.selections }
func (e *Engine) Borders() *region.BorderThrottle { return e.borders }
func (e *Engine) Scheduler() *schedule.Scheduler  { return e.sched }
func (e *Engine) Pages() *sound.NamePages         { return e.pages }
func (e *Engine) Output() sound.Output            { return e.out }
func (e *Engine) Done() <-chan struct{}           { return e.done }

// Registry returns the current sound registry. Tick goroutine only.
func (e *Engine) Registry() *trigger.Registry { return e.registry }

// Run drives the scheduler and executes queued work until ctx is done.
// Everything scheduled is cancelled on the way out.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	defer close(e.done)

	slog.Info("engine started", "tick", e.cfg.TickInterval, "regions", e.store.Len())

	for {
		select {
		case <-ctx.Done():
			n := e.sched.CancelAll()
			slog.Info("engine stopping", "cancelled_tasks", n)
			return ctx.Err()

		case fn := <-e.inbox:
			e.exec(fn)

		case <-ticker.C:
			e.sched.Tick()
		}
	}
}

func (e *Engine) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("engine task panicked", "panic", r)
		}
	}()
	fn()
}

// Do queues fn for the tick goroutine. It blocks while the inbox is full
// and reports false if the engine has stopped. Goroutine-safe.
func (e *Engine) Do(fn func()) bool {
	select {
	case <-e.done:
		return false
	default:
	}
	select {
	case e.inbox <- fn:
		return true
	case <-e.done:
		return false
	}
}

// Call runs fn on the tick goroutine and waits for its result.
// Goroutine-safe; must not be called from the tick goroutine itself.
//
// If ctx ends before fn starts, fn never runs and Call returns ctx.Err().
// Once fn has started Call waits for it, so the returned error is always
// the outcome of what actually happened.
func (e *Engine) Call(ctx context.Context, fn func() error) error {
	const (
		callPending int32 = iota
		callRunning
		callAbandoned
	)
	var state atomic.Int32
	result := make(chan error, 1)
	task := func() {
		if !state.CompareAndSwap(callPending, callRunning) {
			return
		}
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("engine call panicked: %v", r)
			}
			result <- err
		}()
		err = fn()
	}

	select {
	case <-e.done:
		return ErrStopped
	default:
	}
	select {
	case e.inbox <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		if state.CompareAndSwap(callPending, callAbandoned) {
			return ctx.Err()
		}
	case <-e.done:
		if state.CompareAndSwap(callPending, callAbandoned) {
			return ErrStopped
		}
	}
	// fn уже выполняется на тике: ждём настоящий результат
	return <-result
}

// Reload swaps the sound configuration. Pending sound tasks bound to the
// old configuration are cancelled and loops of listeners standing in
// regions restart with the new one. On error nothing changes.
func (e *Engine) Reload(sounds config.Sounds) error {
	reg, err := trigger.Build(sounds)
	if err != nil {
		return fmt.Errorf("building sound registry: %w", err)
	}

	cancelled := e.sched.CancelGroup(soundsKey{})
	e.registry = reg
	e.pages.Reset(sounds.SoundIDs())

	restarted := 0
	for pid, regions := range e.inside {
		p, ok := e.players.Get(pid)
		if !ok {
			delete(e.inside, pid)
			continue
		}
		for _, pr := range regions {
			pr.sounds, _ = reg.ForRegion(pr.region)
			pr.loop = nil
			if e.startLoop(p, pr) {
				restarted++
			}
		}
	}

	slog.Info("sounds reloaded",
		"sources", len(reg.Enabled()),
		"cancelled_tasks", cancelled,
		"restarted_loops", restarted)
	return nil
}

// Reconfigure applies the reloadable settings of cfg: the world
// blacklist, border limits and timing, and the login toggle policy.
// TickInterval and InboxSize only take effect on restart. Tick goroutine
// only.
func (e *Engine) Reconfigure(cfg Config) {
	if cfg.BorderPeriod < 1 {
		cfg.BorderPeriod = 1
	}
	e.cfg.WorldBlacklist = cfg.WorldBlacklist
	e.cfg.EnableSoundsOnLogin = cfg.EnableSoundsOnLogin
	e.cfg.MaxShowingBorders = cfg.MaxShowingBorders
	e.cfg.BorderShowingTime = cfg.BorderShowingTime
	e.cfg.BorderPeriod = cfg.BorderPeriod

	e.resolver.SetBlacklist(cfg.WorldBlacklist)
	e.borders.SetMax(cfg.MaxShowingBorders)
	e.players.SetEnableOnLogin(cfg.EnableSoundsOnLogin)

	slog.Info("engine reconfigured",
		"world_blacklist", cfg.WorldBlacklist,
		"max_showing_borders", cfg.MaxShowingBorders,
		"border_showing_time", cfg.BorderShowingTime,
		"border_period", cfg.BorderPeriod)
}

// Disable clears caches and cancels everything scheduled. The engine
// stays usable.
func (e *Engine) Disable() {
	n := e.sched.CancelAll()
	e.pages.Clear()
	clear(e.inside)
	slog.Info("engine disabled", "cancelled_tasks", n)
}
