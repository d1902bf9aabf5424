package models

import (
	"time"
)

// DefaultStepGoal is the daily step goal assigned when none is given
const DefaultStepGoal = 10000

// Gender values accepted on the profile
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "O"
)

// User represents a registered user and their fitness profile
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:100;not null" json:"email"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	Age          *int      `json:"age"`
	Height       *int      `json:"height"`
	Weight       *int      `json:"weight"`
	Gender       *string   `gorm:"size:1" json:"gender"`
	StepGoal     int       `gorm:"not null;default:10000" json:"step_goal"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	DailyActivities []DailyActivity `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ManualEntries   []ManualEntry   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
