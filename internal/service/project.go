package service

import (
	"context"
	"fmt"
	"strings"

	"team-tracker/internal/activity"
	"team-tracker/internal/models"

	"gorm.io/gorm"
)

// ProjectService manages projects and their member lists. All mutations are
// manager-only.
type ProjectService struct {
	Deps
}

func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.DB.WithContext(ctx).
		Preload("Assignees").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Assignees").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Tasks.Assignee").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, lookupErr(err, "project", id)
	}
	return &p, nil
}

func (s *ProjectService) find(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "project", id)
	}
	return &p, nil
}

func (s *ProjectService) Create(ctx context.Context, actor *models.User, req CreateProjectRequest) (*models.Project, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, invalid("invalid priority %q", priority)
	}

	var members []models.User
	if len(req.AssigneeIDs) > 0 {
		if err := s.DB.WithContext(ctx).Where("id IN ?", req.AssigneeIDs).Find(&members).Error; err != nil {
			return nil, fmt.Errorf("load project members: %w", err)
		}
		if len(members) != len(uniq(req.AssigneeIDs)) {
			return nil, invalid("one or more assignees do not exist")
		}
	}

	project := models.Project{
		Title:       title,
		Description: req.Description,
		Priority:    priority,
		Status:      models.ProjectActive,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		CreatorID:   actor.ID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Assignees", "Creator").Create(&project).Error; err != nil {
			return err
		}
		if len(members) > 0 {
			return tx.Model(&project).Association("Assignees").Append(&members)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	project.Assignees = members

	s.record(ctx, actor, models.ActionCreateProject, models.EntityProject, project.ID, project.Title)
	return &project, nil
}

// Update applies a partial edit and writes one UPDATE_PROJECT row per field
// that actually changed.
func (s *ProjectService) Update(ctx context.Context, actor *models.User, id string, req UpdateProjectRequest) (*models.Project, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes []activity.Change
	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		if title != project.Title {
			changes = append(changes, activity.Change{Field: "title", OldValue: project.Title, NewValue: title})
			updates["title"] = title
		}
	}
	if req.Description != nil && *req.Description != project.Description {
		changes = append(changes, activity.Change{Field: "description", OldValue: project.Description, NewValue: *req.Description})
		updates["description"] = *req.Description
	}
	if req.Priority != nil && *req.Priority != project.Priority {
		if !req.Priority.Valid() {
			return nil, invalid("invalid priority %q", *req.Priority)
		}
		changes = append(changes, activity.Change{Field: "priority", OldValue: string(project.Priority), NewValue: string(*req.Priority)})
		updates["priority"] = *req.Priority
	}
	if req.Status != nil && *req.Status != project.Status {
		if !req.Status.Valid() {
			return nil, invalid("invalid status %q", *req.Status)
		}
		changes = append(changes, activity.Change{Field: "status", OldValue: string(project.Status), NewValue: string(*req.Status)})
		updates["status"] = *req.Status
	}
	if req.StartDate != nil && !sameTime(project.StartDate, req.StartDate) {
		changes = append(changes, activity.Change{Field: "start_date", OldValue: formatDate(project.StartDate), NewValue: formatDate(req.StartDate)})
		updates["start_date"] = *req.StartDate
	}
	if req.DueDate != nil && !sameTime(project.DueDate, req.DueDate) {
		changes = append(changes, activity.Change{Field: "due_date", OldValue: formatDate(project.DueDate), NewValue: formatDate(req.DueDate)})
		updates["due_date"] = *req.DueDate
	}
	if len(updates) == 0 {
		return project, nil
	}

	if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	for _, c := range changes {
		s.Recorder.Record(ctx, activity.Event{
			ActorID:    actor.ID,
			Action:     models.ActionUpdateProject,
			EntityType: models.EntityProject,
			EntityID:   project.ID,
			Details:    "Updated " + c.Field,
			Change:     &activity.Change{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue},
		})
	}
	return s.find(ctx, project.ID)
}

func (s *ProjectService) AddMember(ctx context.Context, actor *models.User, projectID, userID string) error {
	return s.changeMember(ctx, actor, projectID, userID, true)
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor *models.User, projectID, userID string) error {
	return s.changeMember(ctx, actor, projectID, userID, false)
}

func (s *ProjectService) changeMember(ctx context.Context, actor *models.User, projectID, userID string, add bool) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	project, err := s.find(ctx, projectID)
	if err != nil {
		return err
	}
	member, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	assoc := s.DB.WithContext(ctx).Model(project).Association("Assignees")
	if add {
		err = assoc.Append(member)
	} else {
		err = assoc.Delete(member)
	}
	if err != nil {
		return fmt.Errorf("update project members: %w", err)
	}

	if add {
		s.record(ctx, actor, models.ActionAddMember, models.EntityProject, project.ID,
			fmt.Sprintf("Added user %s to project", member.Name))
	} else {
		s.record(ctx, actor, models.ActionRemoveMember, models.EntityProject, project.ID,
			fmt.Sprintf("Removed user %s from project", member.Name))
	}
	return nil
}

// Delete removes a project. Its tasks are kept and detached. The
// DELETE_PROJECT row is written before the delete.
func (s *ProjectService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	project, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	s.record(ctx, actor, models.ActionDeleteProject, models.EntityProject, project.ID,
		fmt.Sprintf("Deleted project %s", project.Title))

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(project).Association("Assignees").Clear(); err != nil {
			return fmt.Errorf("clear project members: %w", err)
		}
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Update("project_id", nil).Error; err != nil {
			return fmt.Errorf("detach project tasks: %w", err)
		}
		if err := tx.Delete(&models.Project{}, "id = ?", project.ID).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
