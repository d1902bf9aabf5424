package models

import (
	"time"
)

// DailyActivity holds the passively tracked totals of one user for one day.
// Several rows may exist for the same (user, date).
type DailyActivity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_daily_activities_user_date;not null" json:"user"`
	Date      Date      `gorm:"index:idx_daily_activities_user_date;not null" json:"date"`
	Steps     int       `gorm:"not null;default:0" json:"steps"`
	Distance  float64   `gorm:"not null;default:0" json:"distance"`
	Calories  int       `gorm:"not null;default:0" json:"calories"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for DailyActivity model
func (DailyActivity) TableName() string {
	return "daily_activities"
}
