package confirm

import (
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var actor = uuid.Must(uuid.FromString("5f1e2b8a-3c4d-4e5f-8a6b-7c8d9e0f1a2b"))

func TestQueue_AddTwiceKeepsOnlySecond(t *testing.T) {
	q := NewQueue()
	var ran []string

	q.Add(actor, Token{KindRegionDelete, "r1"}, "delete r1", func() error { ran = append(ran, "first"); return nil })
	replaced, ok := q.Add(actor, Token{KindRegionDelete, "r2"}, "delete r2", func() error { ran = append(ran, "second"); return nil })

	require.True(t, ok)
	assert.Equal(t, Token{KindRegionDelete, "r1"}, replaced.Token)
	require.Len(t, q.List(actor), 1)
	assert.Equal(t, "delete r2", q.List(actor)[0].Description)

	p, err := q.Confirm(actor)
	require.NoError(t, err)
	assert.Equal(t, Token{KindRegionDelete, "r2"}, p.Token)
	assert.Equal(t, []string{"second"}, ran)

	_, err = q.Confirm(actor)
	require.ErrorIs(t, err, ErrNothingPending)
	assert.Equal(t, []string{"second"}, ran, "confirm runs the action once")
}

func TestQueue_ConfirmWithoutPending(t *testing.T) {
	q := NewQueue()

	_, err := q.Confirm(actor)
	require.ErrorIs(t, err, ErrNothingPending)
	assert.Empty(t, q.List(actor))
}

func TestQueue_ActionErrorIsReturnedAndEntryRemoved(t *testing.T) {
	q := NewQueue()
	boom := errors.New("boom")
	q.Add(actor, Token{KindUninstall, ""}, "uninstall", func() error { return boom })

	_, err := q.Confirm(actor)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, q.Len())
}

func TestQueue_ActorsAreIndependent(t *testing.T) {
	q := NewQueue()
	other := uuid.Must(uuid.NewV4())

	q.Add(actor, Token{KindRegionDelete, "a"}, "a", nil)
	q.Add(other, Token{KindRegionDelete, "b"}, "b", nil)
	assert.Equal(t, 2, q.Len())

	q.Clear(actor)
	_, ok := q.Get(actor)
	assert.False(t, ok)
	_, ok = q.Get(other)
	assert.True(t, ok)
}

func TestToken_IsComparedByValue(t *testing.T) {
	a := Token{Kind: KindRegionDelete, Key: "0f6c"}
	b := Token{Kind: KindRegionDelete, Key: "0f6c"}
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Token{Kind: KindRegionRename, Key: "0f6c"})
}
