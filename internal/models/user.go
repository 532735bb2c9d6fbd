package models

import "time"

// User is an agency team member.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AgencyID  uint      `gorm:"not null;index" json:"agency_id"`
	Agency    Agency    `gorm:"foreignKey:AgencyID" json:"-"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `gorm:"size:20;default:'member'" json:"role"` // owner, member
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
