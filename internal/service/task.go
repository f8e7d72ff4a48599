package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"team-tracker/internal/activity"
	"team-tracker/internal/models"

	"gorm.io/gorm"
)

const (
	defaultClassification = "OTHER"
	unassigned            = "Unassigned"
	noDate                = "none"
)

// TaskService contains the business logic for tasks. Every mutation appends
// at least one activity row.
type TaskService struct {
	Deps
}

func (s *TaskService) find(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.DB.WithContext(ctx).Preload("Assignee").First(&task, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "task", id)
	}
	return &task, nil
}

// Get returns a task with its comments. Manager notes are only loaded for managers.
func (s *TaskService) Get(ctx context.Context, actor *models.User, id string) (*models.Task, error) {
	q := s.DB.WithContext(ctx).
		Preload("Creator").
		Preload("Assignee").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Comments.Author")
	if actor.IsManager() {
		q = q.Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") })
	}

	var task models.Task
	if err := q.First(&task, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "task", id)
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	q := s.DB.WithContext(ctx).Preload("Assignee").Order("created_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.AssigneeID != "" {
		q = q.Where("assignee_id = ?", f.AssigneeID)
	}
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}

	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, actor *models.User, req CreateTaskRequest) (*models.Task, error) {
	if !actor.Can(models.PermCreateTasks) {
		return nil, ErrForbidden
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
	classification := strings.TrimSpace(req.Classification)
	if classification == "" {
		classification = defaultClassification
	}

	task := models.Task{
		Title:          title,
		Description:    req.Description,
		Priority:       priority,
		Status:         models.StatusNew,
		Classification: classification,
		DueDate:        req.DueDate,
		CreatorID:      actor.ID,
	}
	if req.AssigneeID != "" {
		if _, err := s.loadUser(ctx, req.AssigneeID); err != nil {
			return nil, invalid("assignee %s does not exist", req.AssigneeID)
		}
		task.AssigneeID = &req.AssigneeID
	}
	if req.ProjectID != "" {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&models.Project{}).Where("id = ?", req.ProjectID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check project: %w", err)
		}
		if n == 0 {
			return nil, invalid("project %s does not exist", req.ProjectID)
		}
		task.ProjectID = &req.ProjectID
	}

	if err := s.DB.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.record(ctx, actor, models.ActionCreateTask, models.EntityTask, task.ID, task.Title)

	if task.AssigneeID != nil && *task.AssigneeID != actor.ID {
		s.notifyTask(ctx, *task.AssigneeID, models.NotifyAssignment,
			fmt.Sprintf("You were assigned a new task: %s", task.Title), task.ID)
	}
	return &task, nil
}

// Update applies a partial edit. Managers may edit any task, members only
// the tasks assigned to them. Each changed field gets its own UPDATE_TASK row.
func (s *TaskService) Update(ctx context.Context, actor *models.User, id string, req UpdateTaskRequest) (*models.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsManager() && !task.IsAssignedTo(actor.ID) {
		return nil, ErrForbidden
	}

	var changes []activity.Change
	updates := map[string]any{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title cannot be empty")
		}
		if title != task.Title {
			changes = append(changes, activity.Change{Field: "title", OldValue: task.Title, NewValue: title})
			updates["title"] = title
		}
	}
	if req.Description != nil && *req.Description != task.Description {
		changes = append(changes, activity.Change{Field: "description", OldValue: task.Description, NewValue: *req.Description})
		updates["description"] = *req.Description
	}
	if req.Priority != nil && *req.Priority != task.Priority {
		if !req.Priority.Valid() {
			return nil, invalid("invalid priority %q", *req.Priority)
		}
		changes = append(changes, activity.Change{Field: "priority", OldValue: string(task.Priority), NewValue: string(*req.Priority)})
		updates["priority"] = *req.Priority
	}

	statusChanged := req.Status != nil && *req.Status != task.Status
	if statusChanged {
		if !req.Status.Valid() {
			return nil, invalid("invalid status %q", *req.Status)
		}
		changes = append(changes, activity.Change{Field: "status", OldValue: string(task.Status), NewValue: string(*req.Status)})
		updates["status"] = *req.Status
	}

	if req.Classification != nil {
		c := strings.TrimSpace(*req.Classification)
		if c != "" && c != task.Classification {
			changes = append(changes, activity.Change{Field: "classification", OldValue: task.Classification, NewValue: c})
			updates["classification"] = c
		}
	}

	due := task.DueDate
	if req.ClearDueDate {
		due = nil
	} else if req.DueDate != nil {
		due = req.DueDate
	}
	dueChanged := !sameTime(task.DueDate, due)
	if dueChanged {
		changes = append(changes, activity.Change{Field: "due_date", OldValue: formatDate(task.DueDate), NewValue: formatDate(due)})
		updates["due_date"] = due
	}

	var newAssignee *models.User
	assigneeChanged := req.AssigneeID != nil && *req.AssigneeID != deref(task.AssigneeID)
	if assigneeChanged {
		newName := unassigned
		if *req.AssigneeID != "" {
			if newAssignee, err = s.loadUser(ctx, *req.AssigneeID); err != nil {
				return nil, invalid("assignee %s does not exist", *req.AssigneeID)
			}
			newName = newAssignee.Name
			updates["assignee_id"] = newAssignee.ID
		} else {
			updates["assignee_id"] = nil
		}
		changes = append(changes, activity.Change{Field: "assignee", OldValue: assigneeName(task.Assignee), NewValue: newName})
	}

	if len(updates) == 0 {
		return task, nil
	}

	var impact *models.Impact
	if statusChanged {
		if *req.Status == models.StatusCompleted {
			now := s.Now().UTC()
			updates["completed_at"] = now
			impact = activity.Classify(due, now)
		} else {
			updates["completed_at"] = nil
		}
	}

	if err := s.DB.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	for _, c := range changes {
		ev := activity.Event{
			ActorID:    actor.ID,
			Action:     models.ActionUpdateTask,
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			Details:    "Updated " + c.Field,
			Change:     &activity.Change{Field: c.Field, OldValue: c.OldValue, NewValue: c.NewValue},
		}
		if c.Field == "status" {
			ev.Impact = impact
		}
		s.Recorder.Record(ctx, ev)
	}

	updated, err := s.find(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	if assigneeChanged {
		if newAssignee != nil {
			s.notifyTask(ctx, newAssignee.ID, models.NotifyAssignment,
				fmt.Sprintf("Task %q was reassigned to you", updated.Title), task.ID)
		}
		if task.AssigneeID != nil && *task.AssigneeID != actor.ID {
			s.notifyTask(ctx, *task.AssigneeID, models.NotifyUpdate,
				fmt.Sprintf("Task %q was reassigned", updated.Title), task.ID)
		}
	}
	if dueChanged && updated.AssigneeID != nil {
		s.notifyTask(ctx, *updated.AssigneeID, models.NotifyUpdate,
			fmt.Sprintf("Deadline changed for %q", updated.Title), task.ID)
	}
	return updated, nil
}

// UpdateStatus moves a task to status. Allowed for managers, the assignee,
// and holders of the tasks:status:any permission. Completing a task freezes
// its on-time or late verdict into the log row.
func (s *TaskService) UpdateStatus(ctx context.Context, actor *models.User, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, invalid("invalid status %q", status)
	}
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignedTo(actor.ID) && !actor.Can(models.PermUpdateAnyStatus) {
		return nil, ErrForbidden
	}

	oldStatus := task.Status
	var completedAt *time.Time
	var impact *models.Impact
	if status == models.StatusCompleted {
		now := s.Now().UTC()
		completedAt = &now
		impact = activity.Classify(task.DueDate, now)
	}

	err = s.DB.WithContext(ctx).Model(&models.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
		"status":       status,
		"completed_at": completedAt,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	s.Recorder.Record(ctx, activity.Event{
		ActorID:    actor.ID,
		Action:     models.ActionUpdateStatus,
		EntityType: models.EntityTask,
		EntityID:   task.ID,
		Details:    fmt.Sprintf("Status updated to %s", status),
		Change:     &activity.Change{Field: "status", OldValue: string(oldStatus), NewValue: string(status)},
		Impact:     impact,
	})

	if task.CreatorID != actor.ID {
		s.notifyTask(ctx, task.CreatorID, models.NotifyUpdate,
			fmt.Sprintf("Task %q status updated to %s", task.Title, strings.ReplaceAll(string(status), "_", " ")), task.ID)
	}

	task.Status = status
	task.CompletedAt = completedAt
	return task, nil
}

// Delete removes a task. The DELETE_TASK row is written first so the title
// is still resolvable by readers of the log.
func (s *TaskService) Delete(ctx context.Context, actor *models.User, id string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	task, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	s.record(ctx, actor, models.ActionDeleteTask, models.EntityTask, task.ID, "Task deleted")

	return s.deleteTasks(ctx, []string{task.ID})
}

func (s *TaskService) deleteTasks(ctx context.Context, ids []string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Where("task_id IN ?", ids).Delete(&models.ManagerNote{}).Error; err != nil {
			return fmt.Errorf("delete notes: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		return nil
	})
}

func (s *TaskService) AddNote(ctx context.Context, actor *models.User, taskID, content string) (*models.ManagerNote, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content is required")
	}
	if _, err := s.find(ctx, taskID); err != nil {
		return nil, err
	}

	note := models.ManagerNote{TaskID: taskID, Content: content}
	if err := s.DB.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.record(ctx, actor, models.ActionAddNote, models.EntityTask, taskID, "Manager note added")
	return &note, nil
}

// Duplicate copies a task as a new unassigned task owned by actor.
func (s *TaskService) Duplicate(ctx context.Context, actor *models.User, id string) (*models.Task, error) {
	orig, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	dup := models.Task{
		Title:          orig.Title + " (Copy)",
		Description:    orig.Description,
		Priority:       orig.Priority,
		Status:         models.StatusNew,
		Classification: orig.Classification,
		DueDate:        orig.DueDate,
		CreatorID:      actor.ID,
		ProjectID:      orig.ProjectID,
	}
	if err := s.DB.WithContext(ctx).Create(&dup).Error; err != nil {
		return nil, fmt.Errorf("duplicate task: %w", err)
	}

	s.record(ctx, actor, models.ActionDuplicateTask, models.EntityTask, dup.ID, "Duplicated from "+orig.ID)
	return &dup, nil
}

// existing returns the tasks among ids that still exist.
func (s *TaskService) existing(ctx context.Context, ids []string) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, invalid("no tasks selected")
	}
	var tasks []models.Task
	if err := s.DB.WithContext(ctx).Preload("Assignee").Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

func taskIDs(tasks []models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

// BulkDelete deletes the selected tasks and returns how many existed.
func (s *TaskService) BulkDelete(ctx context.Context, actor *models.User, ids []string) (int, error) {
	if err := requireManager(actor); err != nil {
		return 0, err
	}
	tasks, err := s.existing(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	for _, t := range tasks {
		s.record(ctx, actor, models.ActionDeleteTask, models.EntityTask, t.ID, "Bulk deleted")
	}
	if err := s.deleteTasks(ctx, taskIDs(tasks)); err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// BulkUpdateStatus moves every selected task to status. Each task gets its
// own row with its real previous status, and completions carry an impact.
func (s *TaskService) BulkUpdateStatus(ctx context.Context, actor *models.User, ids []string, status models.TaskStatus) (int, error) {
	if err := requireManager(actor); err != nil {
		return 0, err
	}
	if !status.Valid() {
		return 0, invalid("invalid status %q", status)
	}
	tasks, err := s.existing(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	now := s.Now().UTC()
	var completedAt *time.Time
	if status == models.StatusCompleted {
		completedAt = &now
	}
	err = s.DB.WithContext(ctx).Model(&models.Task{}).Where("id IN ?", taskIDs(tasks)).Updates(map[string]any{
		"status":       status,
		"completed_at": completedAt,
	}).Error
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}

	for _, t := range tasks {
		var impact *models.Impact
		if completedAt != nil {
			impact = activity.Classify(t.DueDate, now)
		}
		s.Recorder.Record(ctx, activity.Event{
			ActorID:    actor.ID,
			Action:     models.ActionUpdateStatus,
			EntityType: models.EntityTask,
			EntityID:   t.ID,
			Details:    fmt.Sprintf("Bulk status update to %s", status),
			Change:     &activity.Change{Field: "status", OldValue: string(t.Status), NewValue: string(status)},
			Impact:     impact,
		})
	}
	return len(tasks), nil
}

// BulkReassign assigns every selected task to assigneeID, or unassigns them
// when it is empty. The new assignee gets a single notification.
func (s *TaskService) BulkReassign(ctx context.Context, actor *models.User, ids []string, assigneeID string) (int, error) {
	if err := requireManager(actor); err != nil {
		return 0, err
	}

	newName := unassigned
	var newAssignee any
	if assigneeID != "" {
		u, err := s.loadUser(ctx, assigneeID)
		if err != nil {
			return 0, invalid("assignee %s does not exist", assigneeID)
		}
		newName = u.Name
		newAssignee = u.ID
	}

	tasks, err := s.existing(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	err = s.DB.WithContext(ctx).Model(&models.Task{}).Where("id IN ?", taskIDs(tasks)).
		Update("assignee_id", newAssignee).Error
	if err != nil {
		return 0, fmt.Errorf("bulk reassign: %w", err)
	}

	for _, t := range tasks {
		s.Recorder.Record(ctx, activity.Event{
			ActorID:    actor.ID,
			Action:     models.ActionReassignTask,
			EntityType: models.EntityTask,
			EntityID:   t.ID,
			Details:    "Bulk reassigned",
			Change:     &activity.Change{Field: "assignee", OldValue: assigneeName(t.Assignee), NewValue: newName},
		})
	}

	if assigneeID != "" {
		s.notifyTask(ctx, assigneeID, models.NotifyAssignment,
			fmt.Sprintf("You were assigned %d tasks", len(tasks)), tasks[0].ID)
	}
	return len(tasks), nil
}

// AddComment adds a comment and notifies the assignee and the creator, each
// at most once and never the author.
func (s *TaskService) AddComment(ctx context.Context, actor *models.User, taskID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content is required")
	}
	task, err := s.find(ctx, taskID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{TaskID: task.ID, AuthorID: actor.ID, Content: content}
	if err := s.DB.WithContext(ctx).Omit("Author").Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = *actor

	s.record(ctx, actor, models.ActionAddComment, models.EntityTask, task.ID, "Comment added")

	msg := fmt.Sprintf("New comment on %q", task.Title)
	if task.AssigneeID != nil && *task.AssigneeID != actor.ID {
		s.notifyTask(ctx, *task.AssigneeID, models.NotifyComment, msg, task.ID)
	}
	if task.CreatorID != actor.ID && !task.IsAssignedTo(task.CreatorID) {
		s.notifyTask(ctx, task.CreatorID, models.NotifyComment, msg, task.ID)
	}
	return &comment, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return noDate
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func assigneeName(u *models.User) string {
	if u == nil {
		return unassigned
	}
	return u.Name
}
