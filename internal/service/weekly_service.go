package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// WeeklyWindowDays is how many days before today the weekly window reaches back
const WeeklyWindowDays = 7

// WeeklyService computes the trailing weekly activity summary
type WeeklyService struct {
	userRepo   *repository.UserRepository
	dailyRepo  *repository.DailyActivityRepository
	manualRepo *repository.ManualEntryRepository
	redis      *redis.Client // nil disables caching
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewWeeklyService creates a new WeeklyService. redisClient may be nil.
func NewWeeklyService(
	userRepo *repository.UserRepository,
	dailyRepo *repository.DailyActivityRepository,
	manualRepo *repository.ManualEntryRepository,
	redisClient *redis.Client,
	ttl time.Duration,
	logger *zap.Logger,
) *WeeklyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyService{
		userRepo:   userRepo,
		dailyRepo:  dailyRepo,
		manualRepo: manualRepo,
		redis:      redisClient,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// SetClock replaces the source of the current date
func (s *WeeklyService) SetClock(now func() time.Time) {
	s.now = now
}

// Window returns the inclusive date range [today-7, today]
func (s *WeeklyService) Window() (models.Date, models.Date) {
	today := models.NewDate(s.now())
	return today.AddDays(-WeeklyWindowDays), today
}

// Summary returns the weekly summary for a user
func (s *WeeklyService) Summary(ctx context.Context, userID uint) (*models.WeeklySummary, error) {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrUserNotFound
	}

	from, to := s.Window()
	key, cacheable := s.cacheKey(ctx, userID, to)

	if cacheable {
		if summary, ok := s.cached(ctx, key); ok {
			return summary, nil
		}
	}

	daily, err := s.dailyRepo.GetByUserIDInRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily activities: %w", err)
	}
	manual, err := s.manualRepo.GetByUserIDInRange(userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load manual entries: %w", err)
	}

	summary := Summarize(daily, manual)
	if cacheable {
		s.store(ctx, key, summary)
	}
	return summary, nil
}

// Invalidate retires every cached summary of a user by bumping the user's
// cache generation. A summary computed before the bump is stored under the
// old generation and never read again.
func (s *WeeklyService) Invalidate(ctx context.Context, userID uint) {
	if s == nil || s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, weeklyGenerationKey(userID)).Err(); err != nil {
		s.logger.Warn("weekly_cache_invalidate_failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

// Summarize aggregates the rows of one window. Steps and distance are
// averaged over daily rows only; the calorie average is weighted by the
// combined row count of both tables.
func Summarize(daily []models.DailyActivity, manual []models.ManualEntry) *models.WeeklySummary {
	summary := &models.WeeklySummary{}

	var steps int
	var distance float64
	var calories int
	for _, a := range daily {
		steps += a.Steps
		distance += a.Distance
		calories += a.Calories
	}
	for _, e := range manual {
		calories += e.Calories
	}

	if n := len(daily); n > 0 {
		summary.AverageSteps = float64(steps) / float64(n)
		summary.AverageDistance = distance / float64(n)
	}

	summary.TotalCalories = calories
	if n := len(daily) + len(manual); n > 0 {
		summary.AverageCalories = float64(calories) / float64(n)
	}

	return summary
}

func (s *WeeklyService) cached(ctx context.Context, key string) (*models.WeeklySummary, bool) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("weekly_cache_get_failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var summary models.WeeklySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		s.logger.Warn("weekly_cache_corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &summary, true
}

func (s *WeeklyService) store(ctx context.Context, key string, summary *models.WeeklySummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("weekly_cache_set_failed", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey returns the summary key for the user's current generation. The
// second result is false when caching is off or the generation is unreadable.
func (s *WeeklyService) cacheKey(ctx context.Context, userID uint, windowEnd models.Date) (string, bool) {
	if s.redis == nil {
		return "", false
	}

	gen, err := s.redis.Get(ctx, weeklyGenerationKey(userID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("weekly_cache_generation_failed", zap.Uint("user_id", userID), zap.Error(err))
		return "", false
	}
	return weeklyCacheKey(userID, windowEnd, gen), true
}

func weeklyCacheKey(userID uint, windowEnd models.Date, gen int64) string {
	return fmt.Sprintf("weekly:%d:%s:%d", userID, windowEnd, gen)
}

func weeklyGenerationKey(userID uint) string {
	return fmt.Sprintf("weekly:gen:%d", userID)
}
