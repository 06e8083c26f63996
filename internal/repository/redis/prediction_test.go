package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/testsupport"
	"savewise/pkg/errors"
)

func newTestRepository(t *testing.T) *PredictionRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := testsupport.LoadDatabaseConfigsFromEnv(t).Redis
	client := testsupport.NewRedisClient(t, cfg)
	return NewPredictionRepository(client, cfg.PredictionsKey)
}

func TestPredictionRepository_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Latest(ctx)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	first := testsupport.NewProfileFixture().WithIncome(1000).RecordAt(base)
	second := testsupport.NewProfileFixture().WithIncome(2000).RecordAt(base.Add(time.Hour))

	s1, err := repo.Create(ctx, &first)
	require.NoError(t, err)
	s2, err := repo.Create(ctx, &second)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Empty(t, first.ID, "caller record must not be mutated")

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, s2.ID, records[0].ID)
	assert.Equal(t, 2000.0, records[0].Input.Income)
	assert.Equal(t, s1.ID, records[1].ID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, s2.ID, latest.ID)

	require.NoError(t, repo.Delete(ctx, s2.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, s2.ID), errors.ErrNotFound))

	records, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, s1.ID, records[0].ID)

	assert.NoError(t, repo.Ping(ctx))
}

func TestPredictionRepository_OrdersByTimestamp(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	later := testsupport.NewProfileFixture().WithIncome(2000).RecordAt(base.Add(time.Minute))
	earlier := testsupport.NewProfileFixture().WithIncome(1000).RecordAt(base)

	sLater, err := repo.Create(ctx, &later)
	require.NoError(t, err)
	sEarlier, err := repo.Create(ctx, &earlier)
	require.NoError(t, err)

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, sLater.ID, records[0].ID)
	assert.Equal(t, sEarlier.ID, records[1].ID)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, sLater.ID, latest.ID)
}
