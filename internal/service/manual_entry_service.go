package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fittracker-api/internal/models"
	"github.com/fittracker-api/internal/repository"
)

// ManualEntryService handles manual exercise entry operations
type ManualEntryService struct {
	entryRepo *repository.ManualEntryRepository
	userRepo  *repository.UserRepository
	weekly    *WeeklyService
	events    EventPublisher
}

// NewManualEntryService creates a new ManualEntryService. events may be nil.
func NewManualEntryService(
	entryRepo *repository.ManualEntryRepository,
	userRepo *repository.UserRepository,
	weekly *WeeklyService,
	events EventPublisher,
) *ManualEntryService {
	if events == nil {
		events = noopPublisher{}
	}
	return &ManualEntryService{
		entryRepo: entryRepo,
		userRepo:  userRepo,
		weekly:    weekly,
		events:    events,
	}
}

// CreateManualEntryRequest is the full manual entry payload, used by POST and PUT
type CreateManualEntryRequest struct {
	User     uint         `json:"user" binding:"required"`
	Date     *models.Date `json:"date" binding:"required"`
	Activity string       `json:"activity" binding:"required,min=2,max=50"`
	Duration *int         `json:"duration" binding:"omitempty,min=0,max=1440"`
	Calories *int         `json:"calories" binding:"required,min=0,max=5000"`
}

// UpdateManualEntryRequest is the partial manual entry payload used by PATCH
type UpdateManualEntryRequest struct {
	User     *uint        `json:"user" binding:"omitempty,min=1"`
	Date     *models.Date `json:"date"`
	Activity *string      `json:"activity" binding:"omitempty,min=2,max=50"`
	Duration *int         `json:"duration" binding:"omitempty,min=0,max=1440"`
	Calories *int         `json:"calories" binding:"omitempty,min=0,max=5000"`
}

// Create records a manual entry for an existing user
func (s *ManualEntryService) Create(ctx context.Context, req *CreateManualEntryRequest) (*models.ManualEntry, error) {
	if err := s.checkUser(req.User); err != nil {
		return nil, err
	}

	entry := &models.ManualEntry{
		UserID:   req.User,
		Date:     *req.Date,
		Activity: strings.TrimSpace(req.Activity),
		Calories: *req.Calories,
	}
	if req.Duration != nil {
		entry.Duration = *req.Duration
	}
	if err := s.entryRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to create manual entry: %w", err)
	}

	s.changed(ctx, entry.UserID, models.EventManualEntryCreated, entry)
	return entry, nil
}

// List returns manual entries matching the filter
func (s *ManualEntryService) List(filter repository.ManualEntryFilter) ([]models.ManualEntry, error) {
	return s.entryRepo.List(filter)
}

// ListByUser returns every manual entry owned by a user
func (s *ManualEntryService) ListByUser(userID uint) ([]models.ManualEntry, error) {
	return s.entryRepo.GetByUserID(userID)
}

// Get returns a manual entry by ID
func (s *ManualEntryService) Get(id uint) (*models.ManualEntry, error) {
	return s.entryRepo.GetByID(id)
}

// Update applies the non-nil fields of req to a manual entry
func (s *ManualEntryService) Update(ctx context.Context, id uint, req *UpdateManualEntryRequest) (*models.ManualEntry, error) {
	entry, err := s.entryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	previousOwner := entry.UserID

	if req.User != nil && *req.User != entry.UserID {
		if err := s.checkUser(*req.User); err != nil {
			return nil, err
		}
		entry.UserID = *req.User
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.Activity != nil {
		entry.Activity = strings.TrimSpace(*req.Activity)
	}
	if req.Duration != nil {
		entry.Duration = *req.Duration
	}
	if req.Calories != nil {
		entry.Calories = *req.Calories
	}

	if err := s.entryRepo.Update(entry); err != nil {
		return nil, fmt.Errorf("failed to update manual entry: %w", err)
	}

	if previousOwner != entry.UserID {
		s.changed(ctx, previousOwner, models.EventManualEntryDeleted, models.DeletedRecord{ID: entry.ID})
	}
	s.changed(ctx, entry.UserID, models.EventManualEntryUpdated, entry)
	return entry, nil
}

// Replace overwrites every field of a manual entry. A missing duration resets it to 0.
func (s *ManualEntryService) Replace(ctx context.Context, id uint, req *CreateManualEntryRequest) (*models.ManualEntry, error) {
	duration := 0
	if req.Duration != nil {
		duration = *req.Duration
	}
	return s.Update(ctx, id, &UpdateManualEntryRequest{
		User:     &req.User,
		Date:     req.Date,
		Activity: &req.Activity,
		Duration: &duration,
		Calories: req.Calories,
	})
}

// Delete removes a manual entry
func (s *ManualEntryService) Delete(ctx context.Context, id uint) error {
	entry, err := s.entryRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.entryRepo.Delete(id); err != nil {
		return err
	}

	s.changed(ctx, entry.UserID, models.EventManualEntryDeleted, models.DeletedRecord{ID: entry.ID})
	return nil
}

func (s *ManualEntryService) checkUser(userID uint) error {
	exists, err := s.userRepo.Exists(userID)
	if err != nil {
		return err
	}
	if !exists {
		return FieldErrors{"user": {fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", userID)}}
	}
	return nil
}

func (s *ManualEntryService) changed(ctx context.Context, userID uint, eventType models.EventType, data interface{}) {
	s.weekly.Invalidate(ctx, userID)
	s.events.Publish(userID, models.ActivityEvent{Type: eventType, Data: data})
}
