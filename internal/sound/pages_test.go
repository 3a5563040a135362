package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/paging"
)

func TestNamePages(t *testing.T) {
	np := NewNamePages([]string{"c", "a", "b", "a", "d"})

	p, err := np.Page(3, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, p.Items)
	assert.Equal(t, 2, p.Total)

	p, err = np.Page(3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, p.Items)

	_, err = np.Page(3, 3)
	require.ErrorIs(t, err, paging.ErrOutOfRange)

	_, err = np.Page(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, np.cached())

	np.Clear()
	assert.Zero(t, np.cached())

	p, err = np.Page(10, 1)
	require.NoError(t, err)
	assert.Len(t, p.Items, 4, "clear keeps the catalogue")
}

func TestNamePages_Reset(t *testing.T) {
	np := NewNamePages([]string{"old"})
	_, err := np.Page(10, 1)
	require.NoError(t, err)

	np.Reset([]string{"new1", "new2"})
	p, err := np.Page(10, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"new1", "new2"}, p.Items)
}
