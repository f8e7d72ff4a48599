package models

import "time"

type TaskStatus string
type TaskPriority string

const (
	StatusNew         TaskStatus = "NEW"
	StatusInProgress  TaskStatus = "IN_PROGRESS"
	StatusUnderReview TaskStatus = "UNDER_REVIEW"
	StatusCompleted   TaskStatus = "COMPLETED"

	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// TaskStatuses lists statuses in board order.
var TaskStatuses = []TaskStatus{StatusNew, StatusInProgress, StatusUnderReview, StatusCompleted}

type Task struct {
	Base

	Title          string       `gorm:"size:255;not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null" json:"priority"`
	Status         TaskStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Classification string       `gorm:"size:50;not null;default:OTHER" json:"classification"`

	DueDate     *time.Time `gorm:"index" json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatorID  string  `gorm:"type:varchar(36);index" json:"creator_id"`
	Creator    User    `json:"creator,omitempty"`
	AssigneeID *string `gorm:"type:varchar(36);index" json:"assignee_id,omitempty"`
	Assignee   *User   `json:"assignee,omitempty"`
	ProjectID  *string `gorm:"type:varchar(36);index" json:"project_id,omitempty"`

	Comments []Comment     `json:"comments,omitempty"`
	Notes    []ManagerNote `json:"notes,omitempty"`
}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// IsAssignedTo reports whether userID is the task's current assignee.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// Comment is a free-text remark on a task.
type Comment struct {
	Base
	Content  string `gorm:"type:text;not null" json:"content"`
	TaskID   string `gorm:"type:varchar(36);index;not null" json:"task_id"`
	AuthorID string `gorm:"type:varchar(36);not null" json:"author_id"`
	Author   User   `json:"author,omitempty"`
}

// ManagerNote is a private manager remark attached to a task.
type ManagerNote struct {
	Base
	Content string `gorm:"type:text;not null" json:"content"`
	TaskID  string `gorm:"type:varchar(36);index;not null" json:"task_id"`
}
