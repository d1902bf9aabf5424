package service

import (
	"context"
	"fmt"

	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
)

// DailyActivityService handles daily activity operations
type DailyActivityService struct {
	activityRepo *repository.DailyActivityRepository
	userRepo     *repository.UserRepository
	weekly       *WeeklyService
	events       EventPublisher
}

// NewDailyActivityService creates a new DailyActivityService. events may be nil.
func NewDailyActivityService(
	activityRepo *repository.DailyActivityRepository,
	userRepo *repository.UserRepository,
	weekly *WeeklyService,
	events EventPublisher,
) *DailyActivityService {
	if events == nil {
		events = noopPublisher{}
	}
	return &DailyActivityService{
		activityRepo: activityRepo,
		userRepo:     userRepo,
		weekly:       weekly,
		events:       events,
	}
}

// CreateDailyActivityRequest is the full daily activity payload, used by POST and PUT
type CreateDailyActivityRequest struct {
	User     uint         `json:"user" binding:"required"`
	Date     *models.Date `json:"date" binding:"required"`
	Steps    *int         `json:"steps" binding:"required,min=0,max=100000"`
	Distance *float64     `json:"distance" binding:"required,min=0,max=1000000"`
	Calories *int         `json:"calories" binding:"required,min=0,max=10000"`
}

// UpdateDailyActivityRequest is the partial daily activity payload used by PATCH
type UpdateDailyActivityRequest struct {
	User     *uint        `json:"user" binding:"omitempty,min=1"`
	Date     *models.Date `json:"date"`
	Steps    *int         `json:"steps" binding:"omitempty,min=0,max=100000"`
	Distance *float64     `json:"distance" binding:"omitempty,min=0,max=1000000"`
	Calories *int         `json:"calories" binding:"omitempty,min=0,max=10000"`
}

// Create records a daily activity for an existing user
func (s *DailyActivityService) Create(ctx context.Context, req *CreateDailyActivityRequest) (*models.DailyActivity, error) {
	if err := s.checkUser(req.User); err != nil {
		return nil, err
	}

	activity := &models.DailyActivity{
		UserID:   req.User,
		Date:     *req.Date,
		Steps:    *req.Steps,
		Distance: *req.Distance,
		Calories: *req.Calories,
	}
	if err := s.activityRepo.Create(activity); err != nil {
		return nil, fmt.Errorf("failed to create daily activity: %w", err)
	}

	s.changed(ctx, activity.UserID, models.EventDailyActivityCreated, activity)
	return activity, nil
}

// List returns daily activities matching the filter
func (s *DailyActivityService) List(filter repository.DailyActivityFilter) ([]models.DailyActivity, error) {
	return s.activityRepo.List(filter)
}

// ListByUser returns every daily activity owned by a user
func (s *DailyActivityService) ListByUser(userID uint) ([]models.DailyActivity, error) {
	return s.activityRepo.GetByUserID(userID)
}

// Get returns a daily activity by ID
func (s *DailyActivityService) Get(id uint) (*models.DailyActivity, error) {
	return s.activityRepo.GetByID(id)
}

// Update applies the non-nil fields of req to a daily activity
func (s *DailyActivityService) Update(ctx context.Context, id uint, req *UpdateDailyActivityRequest) (*models.DailyActivity, error) {
	activity, err := s.activityRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	previousOwner := activity.UserID

	if req.User != nil && *req.User != activity.UserID {
		if err := s.checkUser(*req.User); err != nil {
			return nil, err
		}
		activity.UserID = *req.User
	}
	if req.Date != nil {
		activity.Date = *req.Date
	}
	if req.Steps != nil {
		activity.Steps = *req.Steps
	}
	if req.Distance != nil {
		activity.Distance = *req.Distance
	}
	if req.Calories != nil {
		activity.Calories = *req.Calories
	}

	if err := s.activityRepo.Update(activity); err != nil {
		return nil, fmt.Errorf("failed to update daily activity: %w", err)
	}

	if previousOwner != activity.UserID {
		s.changed(ctx, previousOwner, models.EventDailyActivityDeleted, models.DeletedRecord{ID: activity.ID})
	}
	s.changed(ctx, activity.UserID, models.EventDailyActivityUpdated, activity)
	return activity, nil
}

// Replace overwrites every field of a daily activity
func (s *DailyActivityService) Replace(ctx context.Context, id uint, req *CreateDailyActivityRequest) (*models.DailyActivity, error) {
	return s.Update(ctx, id, &UpdateDailyActivityRequest{
		User:     &req.User,
		Date:     req.Date,
		Steps:    req.Steps,
		Distance: req.Distance,
		Calories: req.Calories,
	})
}

// Delete removes a daily activity
func (s *DailyActivityService) Delete(ctx context.Context, id uint) error {
	activity, err := s.activityRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.activityRepo.Delete(id); err != nil {
		return err
	}

	s.changed(ctx, activity.UserID, models.EventDailyActivityDeleted, models.DeletedRecord{ID: activity.ID})
	return nil
}

func (s *DailyActivityService) checkUser(userID uint) error {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return err
	}
	if !exists {
		return FieldErrors{"user": {fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", userID)}}
	}
	return nil
}

func (s *DailyActivityService) changed(ctx context.Context, userID uint, eventType models.EventType, data interface{}) {
	s.weekly.Invalidate(ctx, userID)
	s.events.Publish(userID, models.ActivityEvent{Type: eventType, Data: data})
}
