package models

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

type Project struct {
	Base

	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Priority    TaskPriority  `gorm:"type:varchar(20);not null;default:MEDIUM" json:"priority"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null" json:"status"`

	StartDate *time.Time `json:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	CreatorID string `gorm:"type:varchar(36);index" json:"creator_id"`
	Creator   User   `json:"creator,omitempty"`

	Assignees []User `gorm:"many2many:project_assignees" json:"assignees,omitempty"`
	Tasks     []Task `json:"tasks,omitempty"`
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}
