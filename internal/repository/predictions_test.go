package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comfortlab/comfortcast/internal/domain"
	"github.com/comfortlab/comfortcast/internal/repository"
)

func newRepository(t *testing.T) *repository.PredictionRepository {
	t.Helper()
	db, err := repository.Open(repository.Config{
		Driver: "sqlite",
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&repository.Prediction{}))
	t.Cleanup(func() { _ = repository.Close(db) })
	return repository.NewPredictionRepository(db)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := repository.Open(repository.Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestUpsert_InsertThenOverwrite(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)

	first := []repository.Prediction{
		{
			PredictionDatetime: at,
			StationID:          "108",
			ComfortScore:       60,
			Temperature:        domain.Float(17.2),
			Region:             "central",
			ModelName:          "heuristic-v1",
		},
	}
	require.NoError(t, repo.Upsert(ctx, first))

	// Re-scoring the same (datetime, station) pair overwrites instead of
	// inserting a duplicate.
	second := []repository.Prediction{
		{
			PredictionDatetime: at,
			StationID:          "108",
			ComfortScore:       72.5,
			Temperature:        domain.Float(18.0),
			Region:             "central",
			ModelName:          "heuristic-v1",
		},
	}
	require.NoError(t, repo.Upsert(ctx, second))

	n, err := repo.CountSince(ctx, at.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	latest, err := repo.LatestForStation(ctx, "108")
	require.NoError(t, err)
	assert.Equal(t, 72.5, latest.ComfortScore)
	assert.Equal(t, 18.0, *latest.Temperature)
}

func TestUpsert_EmptyBatch(t *testing.T) {
	repo := newRepository(t)
	assert.NoError(t, repo.Upsert(context.Background(), nil))
}

func TestLatestForStation(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	batch := []repository.Prediction{
		{PredictionDatetime: base, StationID: "108", ComfortScore: 50},
		{PredictionDatetime: base.Add(time.Hour), StationID: "108", ComfortScore: 55},
		{PredictionDatetime: base.Add(2 * time.Hour), StationID: "112", ComfortScore: 40},
	}
	require.NoError(t, repo.Upsert(ctx, batch))

	latest, err := repo.LatestForStation(ctx, "108")
	require.NoError(t, err)
	assert.Equal(t, 55.0, latest.ComfortScore)

	_, err = repo.LatestForStation(ctx, "999")
	assert.Error(t, err)
}

func TestCountSince(t *testing.T) {
	repo := newRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	batch := []repository.Prediction{
		{PredictionDatetime: base, StationID: "108", ComfortScore: 50},
		{PredictionDatetime: base.Add(24 * time.Hour), StationID: "108", ComfortScore: 55},
	}
	require.NoError(t, repo.Upsert(ctx, batch))

	n, err := repo.CountSince(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
