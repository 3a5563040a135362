package db

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/udisondev/soundscape/internal/region"
)

var (
	ErrWriterFull   = errors.New("persistence queue is full")
	ErrWriterClosed = errors.New("persistence writer is closed")
)

// DefaultWriteTimeout bounds a single repository call.
const DefaultWriteTimeout = 5 * time.Second

type writeOp struct {
	delete bool
	region region.Region
}

// AsyncWriter is a region.Persister that hands writes to a background
// goroutine so the tick goroutine never waits on the database. Writes are
// applied in submission order; failures are logged.
type AsyncWriter struct {
	repo    region.Persister
	timeout time.Duration

	mu     sync.RWMutex
	ch     chan writeOp
	closed bool
	wg     sync.WaitGroup

	// onError is called from the writer goroutine; tests hook it.
	onError func(op string, r region.Region, err error)
}

// NewAsyncWriter starts a writer with a queue of size entries.
func NewAsyncWriter(repo region.Persister, size int) *AsyncWriter {
	if size < 1 {
		size = 1
	}
	w := &AsyncWriter{
		repo:    repo,
		timeout: DefaultWriteTimeout,
		ch:      make(chan writeOp, size),
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop()
	}()
	return w
}

// Save queues r for saving. It fails only when the queue is full or closed.
func (w *AsyncWriter) Save(_ context.Context, r region.Region) error {
	return w.enqueue(writeOp{region: r})
}

// Delete queues r for deletion.
func (w *AsyncWriter) Delete(_ context.Context, r region.Region) error {
	return w.enqueue(writeOp{delete: true, region: r})
}

func (w *AsyncWriter) enqueue(op writeOp) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrWriterClosed
	}
	select {
	case w.ch <- op:
		return nil
	default:
		return ErrWriterFull
	}
}

// Close stops accepting writes and waits until the queue is drained.
func (w *AsyncWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ch)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *AsyncWriter) loop() {
	for op := range w.ch {
		w.apply(op)
	}
}

func (w *AsyncWriter) apply(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	name := "save"
	var err error
	if op.delete {
		name = "delete"
		err = w.repo.Delete(ctx, op.region)
	} else {
		err = w.repo.Save(ctx, op.region)
	}
	if err == nil {
		return
	}

	slog.Error("region persistence failed",
		"op", name,
		"region", op.region.Name(),
		"id", op.region.ID(),
		"error", err)
	if w.onError != nil {
		w.onError(name, op.region, err)
	}
}
