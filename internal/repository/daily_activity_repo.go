package repository

import (
	"errors"

	"github.com/fittracker-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrDailyActivityNotFound = errors.New("daily activity not found")
)

// DailyActivityFilter narrows a daily activity listing. Nil fields are ignored.
type DailyActivityFilter struct {
	UserID *uint
	Date   *models.Date
	From   *models.Date
	To     *models.Date
}

// DailyActivityRepository handles daily activity data access
type DailyActivityRepository struct {
	db *gorm.DB
}

// NewDailyActivityRepository creates a new DailyActivityRepository
func NewDailyActivityRepository(db *gorm.DB) *DailyActivityRepository {
	return &DailyActivityRepository{db: db}
}

// Create creates a new daily activity
func (r *DailyActivityRepository) Create(activity *models.DailyActivity) error {
	return r.db.Create(activity).Error
}

// GetByID retrieves a daily activity by ID
func (r *DailyActivityRepository) GetByID(id uint) (*models.DailyActivity, error) {
	var activity models.DailyActivity
	result := r.db.First(&activity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDailyActivityNotFound
		}
		return nil, result.Error
	}
	return &activity, nil
}

// List retrieves daily activities matching the filter
func (r *DailyActivityRepository) List(filter DailyActivityFilter) ([]models.DailyActivity, error) {
	query := r.db.Model(&models.DailyActivity{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}

	activities := make([]models.DailyActivity, 0)
	if err := query.Order("date ASC, id ASC").Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// GetByUserID retrieves all daily activities for a user
func (r *DailyActivityRepository) GetByUserID(userID uint) ([]models.DailyActivity, error) {
	return r.List(DailyActivityFilter{UserID: &userID})
}

// GetByUserIDInRange retrieves a user's daily activities with from <= date <= to
func (r *DailyActivityRepository) GetByUserIDInRange(userID uint, from, to models.Date) ([]models.DailyActivity, error) {
	return r.List(DailyActivityFilter{UserID: &userID, From: &from, To: &to})
}

// Update updates a daily activity
func (r *DailyActivityRepository) Update(activity *models.DailyActivity) error {
	return r.db.Save(activity).Error
}

// Delete deletes a daily activity
func (r *DailyActivityRepository) Delete(id uint) error {
	result := r.db.Delete(&models.DailyActivity{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDailyActivityNotFound
	}
	return nil
}
