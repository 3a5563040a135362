package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/testutil"
)

type fakePersister struct {
	mu    sync.Mutex
	ops   []string
	fail  error
	block chan struct{}
}

func (f *fakePersister) record(op string, r region.Region) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op+":"+r.Name())
	return f.fail
}

func (f *fakePersister) Save(_ context.Context, r region.Region) error   { return f.record("save", r) }
func (f *fakePersister) Delete(_ context.Context, r region.Region) error { return f.record("delete", r) }

func (f *fakePersister) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

func TestAsyncWriter_KeepsOrderAndDrainsOnClose(t *testing.T) {
	repo := &fakePersister{}
	w := NewAsyncWriter(repo, 16)

	a := sampleRegion()
	b := region.Restore(a.ID(), "Renamed", a.Creator(), a.World(), a.Volume(), "", a.CreatedAt())

	require.NoError(t, w.Save(context.Background(), *a))
	require.NoError(t, w.Save(context.Background(), *b))
	require.NoError(t, w.Delete(context.Background(), *b))
	w.Close()

	assert.Equal(t, []string{"save:Spawn", "save:Renamed", "delete:Renamed"}, repo.recorded())
	assert.ErrorIs(t, w.Save(context.Background(), *a), ErrWriterClosed)

	w.Close() // повторный Close безопасен
}

func TestAsyncWriter_Full(t *testing.T) {
	repo := &fakePersister{block: make(chan struct{})}
	w := NewAsyncWriter(repo, 1)
	r := *sampleRegion()

	// первая запись может уже быть у горутины, поэтому заполняем с запасом
	var full error
	for range 3 {
		if err := w.Save(context.Background(), r); err != nil {
			full = err
			break
		}
	}
	assert.ErrorIs(t, full, ErrWriterFull)

	close(repo.block)
	w.Close()
}

func TestAsyncWriter_ReportsFailures(t *testing.T) {
	repo := &fakePersister{fail: testutil.ErrSimulated}
	w := NewAsyncWriter(repo, 4)

	var (
		mu     sync.Mutex
		failed []string
	)
	w.onError = func(op string, r region.Region, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, op+":"+r.Name()+":"+err.Error())
	}

	require.NoError(t, w.Delete(context.Background(), *sampleRegion()))
	w.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"delete:Spawn:" + testutil.ErrSimulated.Error()}, failed)
}

func TestAsyncWriter_WithStore(t *testing.T) {
	repo := &fakePersister{}
	w := NewAsyncWriter(repo, 8)
	store := region.NewStore(region.DefaultLimits(), w)

	r, err := store.Create(context.Background(), region.CreateRequest{
		Name:    "Spawn",
		First:   sampleRegion().MinCorner(),
		Second:  sampleRegion().MinCorner(),
		Creator: region.Console,
	})
	require.NoError(t, err)
	require.NoError(t, store.Rename(context.Background(), r, "Hub"))
	require.NoError(t, store.Delete(context.Background(), r))
	w.Close()

	assert.Equal(t, []string{"save:Spawn", "save:Hub", "delete:Hub"}, repo.recorded())
}
