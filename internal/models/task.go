package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task is a unit of project work, optionally assigned to a team member.
type Task struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	AgencyID    uint         `gorm:"not null;index" json:"agency_id"`
	ProjectID   uint         `gorm:"not null;index" json:"project_id"`
	Project     Project      `gorm:"foreignKey:ProjectID" json:"-"`
	AssigneeID  *uint        `gorm:"index" json:"assignee_id,omitempty"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Status      TaskStatus   `gorm:"size:20;default:'todo'" json:"status"`
	Priority    TaskPriority `gorm:"size:10;default:'medium'" json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TimeEntry records minutes worked against a project (and optionally a task).
type TimeEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AgencyID  uint      `gorm:"not null;index" json:"agency_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	TaskID    *uint     `gorm:"index" json:"task_id,omitempty"`
	Minutes   int       `gorm:"not null" json:"minutes"`
	Billable  bool      `gorm:"default:true" json:"billable"`
	Note      string    `json:"note,omitempty"`
	WorkedOn  time.Time `gorm:"not null" json:"worked_on"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
