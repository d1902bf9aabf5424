package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A summary computed before a write must not be served once the write's
// invalidation has run, even if it reaches Redis afterwards.
func TestWeeklyStoreAfterInvalidateIsIgnored(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewWeeklyService(
		repository.NewUserRepository(db),
		repository.NewDailyActivityRepository(db),
		repository.NewManualEntryRepository(db),
		rdb, time.Minute, nil,
	)
	s.SetClock(func() time.Time { return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) })

	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	_, to := s.Window()

	staleKey, ok := s.cacheKey(ctx, alice.ID, to)
	require.True(t, ok)

	s.Invalidate(ctx, alice.ID)
	s.store(ctx, staleKey, &models.WeeklySummary{TotalCalories: 999})

	summary, err := s.Summary(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalCalories)
}
