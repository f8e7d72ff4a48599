package service

import (
	"time"

	"team-tracker/internal/activity"
	"team-tracker/internal/models"
)

type CreateTaskRequest struct {
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Priority       models.TaskPriority `json:"priority"`
	Classification string              `json:"classification"`
	DueDate        *time.Time          `json:"due_date"`
	AssigneeID     string              `json:"assignee_id"`
	ProjectID      string              `json:"project_id"`
}

// UpdateTaskRequest carries a partial edit; nil fields are left alone.
// An empty AssigneeID unassigns the task.
type UpdateTaskRequest struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	Priority       *models.TaskPriority `json:"priority"`
	Status         *models.TaskStatus   `json:"status"`
	Classification *string              `json:"classification"`
	DueDate        *time.Time           `json:"due_date"`
	ClearDueDate   bool                 `json:"clear_due_date"`
	AssigneeID     *string              `json:"assignee_id"`
}

type TaskFilter struct {
	Status     models.TaskStatus
	AssigneeID string
	ProjectID  string
	Search     string
}

type CreateProjectRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	StartDate   *time.Time          `json:"start_date"`
	DueDate     *time.Time          `json:"due_date"`
	AssigneeIDs []string            `json:"assignee_ids"`
}

type UpdateProjectRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Priority    *models.TaskPriority  `json:"priority"`
	Status      *models.ProjectStatus `json:"status"`
	StartDate   *time.Time            `json:"start_date"`
	DueDate     *time.Time            `json:"due_date"`
}

type CreateRequestRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsUrgent    bool       `json:"is_urgent"`
	DueDate     *time.Time `json:"due_date"`
}

// Decision is a manager's verdict on a pending request.
type Decision struct {
	Status  models.RequestStatus `json:"status"`
	Comment string               `json:"comment"`
}

type PersonCount struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Count  int64  `json:"count"`
}

type DashboardSummary struct {
	CountsByStatus   map[models.TaskStatus]int64 `json:"counts_by_status"`
	CountsByPerson   []PersonCount               `json:"counts_by_person,omitempty"`
	Upcoming         []models.Task               `json:"upcoming"`
	Overdue          []models.Task               `json:"overdue"`
	NeedsReview      []models.Task               `json:"needs_review,omitempty"`
	UpcomingDays     int                         `json:"upcoming_days"`
}

// HistoryView is the filtered, grouped timeline for one viewer.
type HistoryView struct {
	Groups  []activity.LogGroup `json:"groups"`
	Total   int                 `json:"total"`
	Stats   *activity.Stats     `json:"stats,omitempty"`
	Members []models.User       `json:"members,omitempty"`
}

type UserProfile struct {
	User             models.User          `json:"user"`
	AssignedTasks    []models.Task        `json:"assigned_tasks"`
	AssignedProjects []models.Project     `json:"assigned_projects"`
	Activity         []models.ActivityLog `json:"activity"`
}
