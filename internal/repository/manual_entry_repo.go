package repository

import (
	"errors"

	"github.com/fittracker-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrManualEntryNotFound = errors.New("manual entry not found")
)

// ManualEntryFilter narrows a manual entry listing. Nil fields are ignored.
type ManualEntryFilter struct {
	UserID   *uint
	Date     *models.Date
	From     *models.Date
	To       *models.Date
	Activity *string
}

// ManualEntryRepository handles manual entry data access
type ManualEntryRepository struct {
	db *gorm.DB
}

// NewManualEntryRepository creates a new ManualEntryRepository
func NewManualEntryRepository(db *gorm.DB) *ManualEntryRepository {
	return &ManualEntryRepository{db: db}
}

// Create creates a new manual entry
func (r *ManualEntryRepository) Create(entry *models.ManualEntry) error {
	return r.db.Create(entry).Error
}

// GetByID retrieves a manual entry by ID
func (r *ManualEntryRepository) GetByID(id uint) (*models.ManualEntry, error) {
	var entry models.ManualEntry
	result := r.db.First(&entry, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrManualEntryNotFound
		}
		return nil, result.Error
	}
	return &entry, nil
}

// List retrieves manual entries matching the filter
func (r *ManualEntryRepository) List(filter ManualEntryFilter) ([]models.ManualEntry, error) {
	query := r.db.Model(&models.ManualEntry{})
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
	if filter.Activity != nil {
		query = query.Where("LOWER(activity) = LOWER(?)", *filter.Activity)
	}

	entries := make([]models.ManualEntry, 0)
	if err := query.Order("date ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByUserID retrieves all manual entries for a user
func (r *ManualEntryRepository) GetByUserID(userID uint) ([]models.ManualEntry, error) {
	return r.List(ManualEntryFilter{UserID: &userID})
}

// GetByUserIDInRange retrieves a user's manual entries with from <= date <= to
func (r *ManualEntryRepository) GetByUserIDInRange(userID uint, from, to models.Date) ([]models.ManualEntry, error) {
	return r.List(ManualEntryFilter{UserID: &userID, From: &from, To: &to})
}

// Update updates a manual entry
func (r *ManualEntryRepository) Update(entry *models.ManualEntry) error {
	return r.db.Save(entry).Error
}

// Delete deletes a manual entry
func (r *ManualEntryRepository) Delete(id uint) error {
	result := r.db.Delete(&models.ManualEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrManualEntryNotFound
	}
	return nil
}
