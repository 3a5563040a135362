// Package schedule runs delayed and periodic callbacks on a tick timeline.
//
// The scheduler does not own a clock: the caller advances it once per
// simulation tick, so every callback runs on the caller's goroutine.
package schedule

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sync"
)

// State of a scheduled task.
//
//	Pending → Fired (one-shot) → Completed
//	Pending → Looping → ... → Cancelled
//	Pending|Looping → Cancelled
type State int

const (
	Pending State = iota
	Fired
	Looping
	Cancelled
	Completed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fired:
		return "fired"
	case Looping:
		return "looping"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Key names a group of tasks for bulk cancellation. Keys must be comparable.
type Key any

// Option configures a task at scheduling time.
type Option func(*Task)

// InGroups adds the task to groups; CancelGroup cancels all of them at once.
func InGroups(keys ...Key) Option {
	return func(t *Task) {
		t.groups = append(t.groups, keys...)
	}
}

// OnDone registers fn to run exactly once when the task is cancelled or
// completes, whichever happens first.
func OnDone(fn func()) Option {
	return func(t *Task) {
		t.onDone = append(t.onDone, fn)
	}
}

// Task is a handle to a scheduled callback.
type Task struct {
	sched *Scheduler
	seq   uint64

	fn     func()
	period int64 // 0 means one-shot
	groups []Key
	onDone []func()

	// due и index принадлежат очереди планировщика (под Scheduler.mu).
	due   int64
	index int

	mu    sync.Mutex
	state State
	fired int
}

// State returns the current state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// FireCount returns how many times the callback ran.
func (t *Task) FireCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}

// Done reports whether the task reached a terminal state.
func (t *Task) Done() bool {
	s := t.State()
	return s == Cancelled || s == Completed
}

// Cancel stops the task. Once Cancel returns the callback will not start
// again. Cancelling a finished task is a no-op; the result reports whether
// this call cancelled it.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != Pending && t.state != Looping {
		t.mu.Unlock()
		return false
	}
	t.state = Cancelled
	t.mu.Unlock()

	t.sched.forget(t)
	t.finish()
	return true
}

func (t *Task) finish() {
	for _, fn := range t.onDone {
		fn()
	}
}

// Scheduler keeps tasks ordered by due tick.
type Scheduler struct {
	mu     sync.Mutex
	now    int64
	seq    uint64
	queue  taskQueue
	live   map[*Task]struct{}
	groups map[Key]map[*Task]struct{}
}

// New creates a scheduler at tick 0.
func New() *Scheduler {
	return &Scheduler{
		live:   make(map[*Task]struct{}),
		groups: make(map[Key]map[*Task]struct{}),
	}
}

// Now returns the last tick passed to Advance.
func (s *Scheduler) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After runs fn once, delay ticks from now. A delay of 0 fires on the next
// Advance, which may be the current tick.
func (s *Scheduler) After(delay int64, fn func(), opts ...Option) *Task {
	return s.schedule(delay, 0, fn, opts)
}

// Every runs fn after delay ticks and then every period ticks until the
// task is cancelled. period < 1 counts as 1.
func (s *Scheduler) Every(delay, period int64, fn func(), opts ...Option) *Task {
	if period < 1 {
		period = 1
	}
	return s.schedule(delay, period, fn, opts)
}

func (s *Scheduler) schedule(delay, period int64, fn func(), opts []Option) *Task {
	if delay < 0 {
		delay = 0
	}
	t := &Task{fn: fn, period: period}
	for _, o := range opts {
		o(t)
	}

	s.mu.Lock()
	s.seq++
	t.sched = s
	t.seq = s.seq
	t.due = s.now + delay
	heap.Push(&s.queue, t)
	s.live[t] = struct{}{}
	for _, k := range t.groups {
		g := s.groups[k]
		if g == nil {
			g = make(map[*Task]struct{})
			s.groups[k] = g
		}
		g[t] = struct{}{}
	}
	s.mu.Unlock()

	return t
}

// Advance moves the timeline to tick and fires every task due at or before
// it, in (due, scheduling order). Loops that fell behind catch up.
func (s *Scheduler) Advance(tick int64) {
	s.mu.Lock()
	if tick > s.now {
		s.now = tick
	}
	s.mu.Unlock()

	for {
		t := s.popDue(tick)
		if t == nil {
			return
		}
		s.fire(t)
	}
}

// Tick advances by one tick.
func (s *Scheduler) Tick() {
	s.Advance(s.Now() + 1)
}

func (s *Scheduler) popDue(tick int64) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.queue.Len() > 0 {
		t := s.queue[0]
		if t.due > tick {
			return nil
		}
		heap.Pop(&s.queue)
		if _, ok := s.live[t]; ok {
			return t
		}
	}
	return nil
}

func (s *Scheduler) fire(t *Task) {
	t.mu.Lock()
	switch t.state {
	case Pending, Looping:
	default:
		t.mu.Unlock()
		return
	}
	if t.period > 0 {
		t.state = Looping
	} else {
		t.state = Fired
	}
	t.fired++
	t.mu.Unlock()

	s.run(t)

	t.mu.Lock()
	if t.state == Cancelled {
		t.mu.Unlock()
		return
	}
	if t.period == 0 {
		t.state = Completed
		t.mu.Unlock()
		s.forget(t)
		t.finish()
		return
	}
	t.mu.Unlock()

	s.mu.Lock()
	if _, ok := s.live[t]; ok {
		t.due += t.period
		heap.Push(&s.queue, t)
	}
	s.mu.Unlock()
}

func (s *Scheduler) run(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled task panicked", "seq", t.seq, "panic", r)
		}
	}()
	t.fn()
}

// forget drops t from the live set and its groups. The heap entry is
// discarded lazily.
func (s *Scheduler) forget(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.live, t)
	for _, k := range t.groups {
		if g := s.groups[k]; g != nil {
			delete(g, t)
			if len(g) == 0 {
				delete(s.groups, k)
			}
		}
	}
}

// CancelGroup cancels every live task in the group and returns how many
// were cancelled.
func (s *Scheduler) CancelGroup(key Key) int {
	s.mu.Lock()
	g := s.groups[key]
	tasks := make([]*Task, 0, len(g))
	for t := range g {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	n := 0
	for _, t := range tasks {
		if t.Cancel() {
			n++
		}
	}
	return n
}

// GroupLen returns the number of live tasks in the group.
func (s *Scheduler) GroupLen(key Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups[key])
}

// CancelAll cancels every live task, e.g. on shutdown or reload.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	tasks := make([]*Task, 0, len(s.live))
	for t := range s.live {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	n := 0
	for _, t := range tasks {
		if t.Cancel() {
			n++
		}
	}
	if n > 0 {
		slog.Debug("scheduled tasks cancelled", "count", n)
	}
	return n
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// taskQueue is a min-heap by (due, seq).
type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
