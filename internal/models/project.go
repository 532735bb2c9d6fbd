package models

import (
	"time"

	"github.com/oharel/agencyhub/internal/money"
)

// ProjectStatus is the project lifecycle state.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// Project groups tasks and time entries under a client engagement.
type Project struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	AgencyID    uint          `gorm:"not null;index" json:"agency_id"`
	ClientID    uint          `gorm:"not null;index" json:"client_id"`
	Client      Client        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      ProjectStatus `gorm:"size:20;default:'active'" json:"status"`
	Budget      money.Amount  `json:"budget,omitempty"` // minor units
	StartDate   *time.Time    `json:"start_date,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
