package region

import (
	"sync"
	"sync/atomic"
)

// BorderThrottle bounds the number of borders shown at the same time.
type BorderThrottle struct {
	showing atomic.Int32
	max     atomic.Int32
}

// NewBorderThrottle creates a throttle allowing max concurrent borders.
func NewBorderThrottle(max int) *BorderThrottle {
	t := &BorderThrottle{}
	t.max.Store(int32(max))
	return t
}

// SetMax changes the limit. Borders already shown are not affected.
func (t *BorderThrottle) SetMax(max int) {
	t.max.Store(int32(max))
}

// Acquire reserves a slot. The returned release is safe to call any
// number of times from any goroutine; only the first call frees the slot.
func (t *BorderThrottle) Acquire() (release func(), ok bool) {
	for {
		cur := t.showing.Load()
		if cur >= t.max.Load() {
			return nil, false
		}
		if t.showing.CompareAndSwap(cur, cur+1) {
			break
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { t.showing.Add(-1) })
	}, true
}

// Showing returns the number of borders currently shown.
func (t *BorderThrottle) Showing() int {
	return int(t.showing.Load())
}
