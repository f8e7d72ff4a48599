package service

import (
	"context"
	"fmt"
	"time"

	"team-tracker/internal/models"
)

const DefaultUpcomingDays = 7

type DashboardService struct {
	Deps
}

// IsOverdue reports whether an open task is past its due date at now.
func IsOverdue(t models.Task, now time.Time) bool {
	if t.DueDate == nil || t.Status == models.StatusCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// UpcomingDeadlines returns open tasks due within the next days days.
func (s *DashboardService) UpcomingDeadlines(ctx context.Context, days int) ([]models.Task, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	now := s.Now().UTC()

	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Where("due_date >= ? AND due_date <= ?", now, now.AddDate(0, 0, days)).
		Where("status <> ?", models.StatusCompleted).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming deadlines: %w", err)
	}
	return tasks, nil
}

func (s *DashboardService) OverdueTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Where("due_date < ?", s.Now().UTC()).
		Where("status <> ?", models.StatusCompleted).
		Order("due_date ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("overdue tasks: %w", err)
	}
	return tasks, nil
}

func (s *DashboardService) TasksNeedingReview(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := s.DB.WithContext(ctx).
		Preload("Assignee").
		Preload("Creator").
		Where("status = ?", models.StatusUnderReview).
		Order("updated_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("tasks needing review: %w", err)
	}
	return tasks, nil
}

// CountsByStatus returns a count for every status, zero included.
func (s *DashboardService) CountsByStatus(ctx context.Context) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}

	counts := make(map[models.TaskStatus]int64, len(models.TaskStatuses))
	for _, st := range models.TaskStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// CountsByPerson returns the number of open tasks assigned to each user.
func (s *DashboardService) CountsByPerson(ctx context.Context) ([]PersonCount, error) {
	var out []PersonCount
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Select("users.id AS user_id, users.name AS name, COUNT(tasks.id) AS count").
		Joins("LEFT JOIN tasks ON tasks.assignee_id = users.id AND tasks.status <> ?", models.StatusCompleted).
		Group("users.id, users.name").
		Order("users.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by person: %w", err)
	}
	return out, nil
}

// Summary assembles the dashboard. Members get their own workload only;
// team-wide figures are manager-only.
func (s *DashboardService) Summary(ctx context.Context, actor *models.User, days int) (*DashboardSummary, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	counts, err := s.CountsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.UpcomingDeadlines(ctx, days)
	if err != nil {
		return nil, err
	}
	overdue, err := s.OverdueTasks(ctx)
	if err != nil {
		return nil, err
	}

	sum := &DashboardSummary{
		CountsByStatus: counts,
		Upcoming:       upcoming,
		Overdue:        overdue,
		UpcomingDays:   days,
	}
	if !actor.IsManager() {
		sum.Upcoming = assignedTo(upcoming, actor.ID)
		sum.Overdue = assignedTo(overdue, actor.ID)
		return sum, nil
	}

	if sum.CountsByPerson, err = s.CountsByPerson(ctx); err != nil {
		return nil, err
	}
	if sum.NeedsReview, err = s.TasksNeedingReview(ctx); err != nil {
		return nil, err
	}
	return sum, nil
}

func assignedTo(tasks []models.Task, userID string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsAssignedTo(userID) {
			out = append(out, t)
		}
	}
	return out
}
