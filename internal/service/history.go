package service

import (
	"context"
	"fmt"

	"team-tracker/internal/activity"
	"team-tracker/internal/models"
)

// HistoryService reads the activity log on behalf of a viewer.
type HistoryService struct {
	Deps
	aggregator *activity.Aggregator
}

// Entries returns the log rows actor may see, newest first. Managers see
// everything; members see rows they wrote plus rows on tasks assigned to them.
func (s *HistoryService) Entries(ctx context.Context, actor *models.User, f activity.Filter) ([]models.ActivityLog, error) {
	q := activity.Query{}
	if !actor.IsManager() {
		var taskIDs []string
		if err := s.DB.WithContext(ctx).Model(&models.Task{}).
			Where("assignee_id = ?", actor.ID).
			Pluck("id", &taskIDs).Error; err != nil {
			return nil, fmt.Errorf("load assigned tasks: %w", err)
		}
		q.Visible = &activity.Visibility{UserID: actor.ID, TaskIDs: taskIDs}
	}

	entries, err := s.Store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return f.Apply(entries), nil
}

// View builds the grouped timeline. Stats and the member list are only
// included for managers.
func (s *HistoryService) View(ctx context.Context, actor *models.User, f activity.Filter) (*HistoryView, error) {
	entries, err := s.Entries(ctx, actor, f)
	if err != nil {
		return nil, err
	}

	view := &HistoryView{
		Groups: activity.Group(entries),
		Total:  len(entries),
	}
	if actor.IsManager() {
		stats := s.Stats(ctx)
		view.Stats = &stats
		if err := s.DB.WithContext(ctx).Order("name ASC").Find(&view.Members).Error; err != nil {
			return nil, fmt.Errorf("load team members: %w", err)
		}
	}
	return view, nil
}

// Stats aggregates the configured window. It never fails; see activity.Aggregator.
func (s *HistoryService) Stats(ctx context.Context) activity.Stats {
	return s.aggregator.Compute(ctx, s.HistoryWindowDays)
}

// Profile returns one user's history page. Members may only open their own.
func (s *HistoryService) Profile(ctx context.Context, actor *models.User, userID string) (*UserProfile, error) {
	if !actor.IsManager() && actor.ID != userID {
		return nil, ErrForbidden
	}

	var u models.User
	if err := s.DB.WithContext(ctx).Unscoped().First(&u, "id = ?", userID).Error; err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	p := &UserProfile{User: u}

	err := s.DB.WithContext(ctx).
		Preload("Creator").
		Where("assignee_id = ?", userID).
		Order("created_at DESC").
		Find(&p.AssignedTasks).Error
	if err != nil {
		return nil, fmt.Errorf("load assigned tasks: %w", err)
	}

	err = s.DB.WithContext(ctx).
		Joins("JOIN project_assignees ON project_assignees.project_id = projects.id").
		Where("project_assignees.user_id = ?", userID).
		Order("projects.created_at DESC").
		Find(&p.AssignedProjects).Error
	if err != nil {
		return nil, fmt.Errorf("load assigned projects: %w", err)
	}

	if p.Activity, err = s.Store.Find(ctx, activity.Query{UserID: userID}); err != nil {
		return nil, err
	}
	return p, nil
}
