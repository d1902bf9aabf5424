package models

import (
	"time"
)

// ManualEntry is an exercise session logged by hand
type ManualEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_manual_entries_user_date;not null" json:"user"`
	Date      Date      `gorm:"index:idx_manual_entries_user_date;not null" json:"date"`
	Activity  string    `gorm:"size:50;not null" json:"activity"`
	Duration  int       `gorm:"not null;default:0" json:"duration"` // minutes
	Calories  int       `gorm:"not null;default:0" json:"calories"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for ManualEntry model
func (ManualEntry) TableName() string {
	return "manual_entries"
}
