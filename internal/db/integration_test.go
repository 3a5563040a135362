package db

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/udisondev/soundscape/internal/model"
	"github.com/udisondev/soundscape/internal/region"
	"github.com/udisondev/soundscape/internal/testutil"
)

type postgresSuite struct {
	suite.Suite
	db   *DB
	repo *RegionRepository
}

func TestPostgres(t *testing.T) {
	suite.Run(t, new(postgresSuite))
}

func (s *postgresSuite) SetupSuite() {
	pool := testutil.SetupTestDB(s.T())
	s.db = NewWithPool(pool)
	s.repo = NewRegionRepository(s.db)
}

func (s *postgresSuite) SetupTest() {
	_, err := s.db.pool.Exec(context.Background(), `TRUNCATE regions`)
	s.Require().NoError(err)
}

func (s *postgresSuite) TestSaveLoadDelete() {
	ctx := context.Background()
	r := sampleRegion()

	s.Require().NoError(s.repo.Save(ctx, *r))
	renamed := region.Restore(r.ID(), "Hub", r.Creator(), r.World(), r.Volume(), "new", r.CreatedAt())
	s.Require().NoError(s.repo.Save(ctx, *renamed))

	loaded, err := s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal("Hub", loaded[0].Name())
	s.Equal("new", loaded[0].Description())
	s.Equal(r.Volume(), loaded[0].Volume())
	s.True(r.CreatedAt().Equal(loaded[0].CreatedAt()))

	s.Require().NoError(s.repo.Delete(ctx, *r))
	loaded, err = s.repo.LoadAll(ctx)
	s.Require().NoError(err)
	s.Empty(loaded)
}

func (s *postgresSuite) TestNameUniqueIgnoringCase() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, *sampleRegion()))

	other := region.Restore(uuid.Must(uuid.NewV4()), "spawn", region.Console, "world",
		region.NewVolume(model.BlockPos{}, model.BlockPos{X: 1, Y: 1, Z: 1}), "", time.Now())
	s.ErrorIs(s.repo.Save(ctx, *other), region.ErrAlreadyExists)
}

func TestPostgres_StoreThroughWriter(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := NewRegionRepository(NewWithPool(pool))
	w := NewAsyncWriter(repo, 8)

	store := region.NewStore(region.DefaultLimits(), w)
	_, err := store.Create(context.Background(), region.CreateRequest{
		Name:    "Spawn",
		First:   model.NewLocation("world", 0, 0, 0, 0),
		Second:  model.NewLocation("world", 5, 5, 5, 0),
		Creator: region.Console,
	})
	require.NoError(t, err)
	w.Close()

	loaded, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Spawn", loaded[0].Name())
}
