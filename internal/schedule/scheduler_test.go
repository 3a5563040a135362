package schedule

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run advances s through ticks from..to inclusive, calling before(tick)
// ahead of each Advance.
func run(s *Scheduler, from, to int64, before func(tick int64)) {
	for tick := from; tick <= to; tick++ {
		if before != nil {
			before(tick)
		}
		s.Advance(tick)
	}
}

func TestAfter_FiresOnceAtDueTick(t *testing.T) {
	s := New()
	var fired []int64
	task := s.After(5, func() { fired = append(fired, s.Now()) })

	run(s, 0, 20, nil)

	assert.Equal(t, []int64{5}, fired)
	assert.Equal(t, Completed, task.State())
	assert.Equal(t, 1, task.FireCount())
	assert.Zero(t, s.Len())
}

func TestAfter_ZeroDelayFiresOnCurrentTick(t *testing.T) {
	s := New()
	s.Advance(7)

	fired := false
	s.After(0, func() { fired = true })
	s.Advance(7)

	assert.True(t, fired)
}

func TestEvery_CancelledAt250(t *testing.T) {
	for _, delay := range []int64{0, 3, 40} {
		s := New()
		var fired []int64
		task := s.Every(delay, 100, func() { fired = append(fired, s.Now()) })

		run(s, 0, 600, func(tick int64) {
			if tick == 250 {
				task.Cancel()
			}
		})

		assert.Equal(t, []int64{delay, delay + 100, delay + 200}, fired, "delay %d", delay)
		assert.Equal(t, Cancelled, task.State())
	}
}

func TestEvery_CancelAtTick250FromZero(t *testing.T) {
	s := New()
	var fired []int64
	task := s.Every(0, 100, func() { fired = append(fired, s.Now()) })

	run(s, 0, 1000, func(tick int64) {
		if tick == 250 {
			task.Cancel()
		}
	})

	assert.Equal(t, []int64{0, 100, 200}, fired)
}

func TestCancel_IsIdempotent(t *testing.T) {
	s := New()
	done := 0
	task := s.After(10, func() { t.Fatal("cancelled task fired") }, OnDone(func() { done++ }))

	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel())
	assert.False(t, task.Cancel())
	run(s, 0, 20, nil)

	assert.Equal(t, 1, done)
	assert.Equal(t, Cancelled, task.State())
}

func TestCancel_AfterFireIsNoop(t *testing.T) {
	s := New()
	done := 0
	task := s.After(1, func() {}, OnDone(func() { done++ }))
	run(s, 0, 2, nil)

	assert.False(t, task.Cancel())
	assert.Equal(t, Completed, task.State())
	assert.Equal(t, 1, done)
}

func TestLoop_CanCancelItself(t *testing.T) {
	s := New()
	var task *Task
	count := 0
	task = s.Every(0, 1, func() {
		count++
		if count == 3 {
			task.Cancel()
		}
	})

	run(s, 0, 10, nil)
	assert.Equal(t, 3, count)
	assert.True(t, task.Done())
}

func TestOrderWithinTick(t *testing.T) {
	s := New()
	var order []string
	s.After(2, func() { order = append(order, "b") })
	s.After(1, func() { order = append(order, "a") })
	s.After(2, func() { order = append(order, "c") })

	s.Advance(5)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestLoop_CatchesUp(t *testing.T) {
	s := New()
	n := 0
	s.Every(0, 2, func() { n++ })

	s.Advance(10)
	assert.Equal(t, 6, n, "ticks 0,2,4,6,8,10")
}

type listenerKey string

func TestCancelGroup(t *testing.T) {
	s := New()
	fired := map[string]int{}
	inc := func(name string) func() { return func() { fired[name]++ } }

	s.After(5, inc("a1"), InGroups(listenerKey("alice")))
	s.Every(0, 1, inc("a2"), InGroups(listenerKey("alice"), "loops"))
	s.After(5, inc("b1"), InGroups(listenerKey("bob")))

	assert.Equal(t, 2, s.GroupLen(listenerKey("alice")))

	s.Advance(0)
	assert.Equal(t, 2, s.CancelGroup(listenerKey("alice")))
	assert.Zero(t, s.CancelGroup(listenerKey("alice")))
	assert.Zero(t, s.GroupLen("loops"))

	s.Advance(10)
	assert.Equal(t, map[string]int{"a2": 1, "b1": 1}, fired)
}

func TestCancelAll(t *testing.T) {
	s := New()
	s.After(1, func() { t.Fatal("fired") })
	s.Every(1, 1, func() { t.Fatal("fired") })

	assert.Equal(t, 2, s.CancelAll())
	s.Advance(5)
	assert.Zero(t, s.Len())
}

func TestPanickingTaskDoesNotStopTimeline(t *testing.T) {
	s := New()
	ok := false
	s.After(0, func() { panic("boom") })
	s.After(0, func() { ok = true })

	require.NotPanics(t, func() { s.Advance(0) })
	assert.True(t, ok)
}

func TestConcurrentCancelDuringAdvance(t *testing.T) {
	s := New()
	tasks := make([]*Task, 100)
	for i := range tasks {
		tasks[i] = s.Every(0, 1, func() {})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, task := range tasks {
			task.Cancel()
		}
	}()
	for tick := int64(0); tick < 50; tick++ {
		s.Advance(tick)
	}
	wg.Wait()

	for _, task := range tasks {
		assert.Equal(t, Cancelled, task.State())
	}
	assert.Zero(t, s.Len())
}
