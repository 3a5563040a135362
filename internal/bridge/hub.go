package bridge

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/sound"
)

// Hub routes engine output to the connection that owns each listener.
// It implements sound.Output, sound.Stopper and sound.BorderRenderer and
// never blocks: frames for a full connection are dropped.
type Hub struct {
	mu     sync.RWMutex
	owners map[uuid.UUID]*conn

	dropped atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{owners: make(map[uuid.UUID]*conn)}
}

// Dropped returns how many frames were dropped since start.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) own(listener uuid.UUID, c *conn) {
	h.mu.Lock()
	h.owners[listener] = c
	h.mu.Unlock()
}

func (h *Hub) disown(listener uuid.UUID, c *conn) {
	h.mu.Lock()
	if h.owners[listener] == c {
		delete(h.owners, listener)
	}
	h.mu.Unlock()
}

// release forgets every listener of c and returns them.
func (h *Hub) release(c *conn) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	var ids []uuid.UUID
	for id, owner := range h.owners {
		if owner == c {
			ids = append(ids, id)
			delete(h.owners, id)
		}
	}
	return ids
}

func (h *Hub) owner(listener uuid.UUID) *conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.owners[listener]
}

func (h *Hub) Play(p sound.Playback) {
	h.route(p.Listener, PlayFrame{
		Type:     TypePlay,
		Listener: p.Listener,
		Sound:    p.SoundID,
		Category: p.Category,
		Volume:   p.Volume,
		Pitch:    p.Pitch,
		Location: p.Location,
	})
}

func (h *Hub) Stop(listener uuid.UUID, soundID, category string) {
	h.route(listener, StopFrame{Type: TypeStop, Listener: listener, Sound: soundID, Category: category})
}

func (h *Hub) ShowBorder(listener uuid.UUID, points []model.Location, colour sound.Colour) {
	h.route(listener, BorderFrame{Type: TypeBorder, Listener: listener, Points: points, Colour: colour})
}

func (h *Hub) route(listener uuid.UUID, frame any) {
	c := h.owner(listener)
	if c == nil {
		return
	}
	if !c.send(frame) {
		h.dropped.Add(1)
	}
}

// conn is one platform connection. Frames are queued to out and written
// by the connection's writer goroutine.
type conn struct {
	id  string
	out chan []byte

	mu     sync.Mutex
	closed bool
}

func newConn(id string, queue int) *conn {
	if queue < 1 {
		queue = 1
	}
	return &conn{id: id, out: make(chan []byte, queue)}
}

// send encodes v and queues it. Returns false when the frame was dropped.
func (c *conn) send(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding bridge frame", "conn", c.id, "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.out <- b:
		return true
	default:
		slog.Warn("bridge send queue full, frame dropped", "conn", c.id)
		return false
	}
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
}
