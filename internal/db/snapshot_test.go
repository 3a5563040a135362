package db

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	a := sampleRegion()
	b := region.Restore(uuid.Must(uuid.NewV4()), "Cave", region.Console, "world_nether",
		region.NewVolume(model.BlockPos{X: 10, Y: 5, Z: 10}, model.BlockPos{X: 0, Y: 0, Z: 0}),
		"", a.CreatedAt())

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, []*region.Region{a, b}))

	header, got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, header.Version)
	assert.Equal(t, 2, header.Regions)
	require.Len(t, got, 2)

	assert.Equal(t, a.ID(), got[0].ID())
	assert.Equal(t, a.Name(), got[0].Name())
	assert.Equal(t, a.Creator(), got[0].Creator())
	assert.Equal(t, a.Volume(), got[0].Volume())
	assert.Equal(t, a.Description(), got[0].Description())
	assert.True(t, a.CreatedAt().Equal(got[0].CreatedAt()))
	assert.Equal(t, b.ID(), got[1].ID())
	assert.True(t, got[1].OwnedByConsole())
	assert.Equal(t, model.BlockPos{X: 0, Y: 0, Z: 0}, got[1].Volume().Min)
	assert.Equal(t, model.BlockPos{X: 10, Y: 5, Z: 10}, got[1].Volume().Max)
}

func TestSnapshot_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, nil))

	header, got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Zero(t, header.Regions)
	assert.Empty(t, got)
}

func TestSnapshot_Rejects(t *testing.T) {
	compressed := func(t *testing.T, text string) *bytes.Buffer {
		t.Helper()
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		_, err = enc.Write([]byte(text))
		require.NoError(t, err)
		require.NoError(t, enc.Close())
		return &buf
	}

	tests := []struct {
		name string
		body string
	}{
		{"version", `{"version":9,"regions":0}` + "\n"},
		{"count", `{"version":1,"regions":2}` + "\n" + `{"id":"` + uuid.Must(uuid.NewV4()).String() + `","name":"A"}` + "\n"},
		{"no_name", `{"version":1,"regions":1}` + "\n" + `{"id":"` + uuid.Must(uuid.NewV4()).String() + `"}` + "\n"},
		{"garbage", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadSnapshot(compressed(t, tt.body))
			assert.ErrorIs(t, err, ErrBadSnapshot)
		})
	}

	_, _, err := ReadSnapshot(bytes.NewBufferString("plain text"))
	assert.Error(t, err)
}

func TestImportRegions_SkipsTakenNames(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "regions.db"))
	require.NoError(t, err)
	defer repo.Close()

	existing := sampleRegion()
	require.NoError(t, repo.Save(ctx, *existing))

	clash := region.Restore(uuid.Must(uuid.NewV4()), "spawn", region.Console, "world",
		existing.Volume(), "", existing.CreatedAt())
	fresh := region.Restore(uuid.Must(uuid.NewV4()), "Lake", region.Console, "world",
		existing.Volume(), "", existing.CreatedAt())

	saved, skipped, err := ImportRegions(ctx, repo, []*region.Region{existing, clash, fresh})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, []string{"spawn"}, skipped)

	all, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
