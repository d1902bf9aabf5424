package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
	"github.com/fittracker-api/internal/service"
	"github.com/fittracker-api/internal/testutil"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events map[uint][]models.ActivityEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[uint][]models.ActivityEvent)}
}

func (p *recordingPublisher) Publish(userID uint, event models.ActivityEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[userID] = append(p.events[userID], event)
}

func (p *recordingPublisher) types(userID uint) []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events[userID]))
	for _, e := range p.events[userID] {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	users     *repository.UserRepository
	daily     *repository.DailyActivityRepository
	manual    *repository.ManualEntryRepository
	weekly    *service.WeeklyService
	events    *recordingPublisher
	userSvc   *service.UserService
	dailySvc  *service.DailyActivityService
	manualSvc *service.ManualEntryService
	ctx       context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRedis(t, nil)
}

// newCachedFixture backs the weekly cache with an in-process Redis
func newCachedFixture(t *testing.T) (*fixture, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return newFixtureWithRedis(t, rdb), mr
}

func newFixtureWithRedis(t *testing.T, rdb *redis.Client) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	f := &fixture{
		db:     db,
		users:  repository.NewUserRepository(db),
		daily:  repository.NewDailyActivityRepository(db),
		manual: repository.NewManualEntryRepository(db),
		events: newRecordingPublisher(),
		ctx:    context.Background(),
	}
	f.weekly = service.NewWeeklyService(f.users, f.daily, f.manual, rdb, time.Minute, nil)
	f.weekly.SetClock(func() time.Time {
		return time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)
	})
	f.userSvc = service.NewUserService(f.users, f.weekly)
	f.dailySvc = service.NewDailyActivityService(f.daily, f.users, f.weekly, f.events)
	f.manualSvc = service.NewManualEntryService(f.manual, f.users, f.weekly, f.events)
	return f
}

func intPtr(v int) *int                  { return &v }
func floatPtr(v float64) *float64        { return &v }
func strPtr(v string) *string            { return &v }
func uintPtr(v uint) *uint               { return &v }
func datePtr(d models.Date) *models.Date { return &d }
