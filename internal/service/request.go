package service

import (
	"context"
	"fmt"
	"strings"

	"team-tracker/internal/models"

	"gorm.io/gorm"
)

// RequestService handles member requests. Managers decide them; an approved
// request becomes a task assigned to the requester.
type RequestService struct {
	Deps
}

// List returns every request for managers and the actor's own otherwise.
func (s *RequestService) List(ctx context.Context, actor *models.User) ([]models.Request, error) {
	q := s.DB.WithContext(ctx).Preload("Requester").Order("created_at DESC")
	if !actor.IsManager() {
		q = q.Where("requester_id = ?", actor.ID)
	}
	var out []models.Request
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return out, nil
}

func (s *RequestService) find(ctx context.Context, id string) (*models.Request, error) {
	var r models.Request
	if err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "request", id)
	}
	return &r, nil
}

// Create files a request, logs it and notifies every manager.
func (s *RequestService) Create(ctx context.Context, actor *models.User, req CreateRequestRequest) (*models.Request, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	r := models.Request{
		Title:       title,
		Description: req.Description,
		IsUrgent:    req.IsUrgent,
		DueDate:     req.DueDate,
		Status:      models.RequestPending,
		RequesterID: actor.ID,
	}
	if err := s.DB.WithContext(ctx).Omit("Requester").Create(&r).Error; err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	s.record(ctx, actor, models.ActionCreateRequest, models.EntityRequest, r.ID, "Created request: "+r.Title)

	var managers []models.User
	if err := s.DB.WithContext(ctx).Where("role = ?", models.RoleManager).Find(&managers).Error; err != nil {
		s.Logger.Warn("failed to load managers for request notification", "request_id", r.ID, "error", err)
	}
	prefix := ""
	if r.IsUrgent {
		prefix = "URGENT: "
	}
	for _, m := range managers {
		if m.ID == actor.ID {
			continue
		}
		s.Notifier.Notify(ctx, m.ID, models.NotifyRequest,
			fmt.Sprintf("%sNew request from %s", prefix, actor.Name), &r.ID)
	}
	return &r, nil
}

// Decide approves or rejects a pending request. Approval creates a task
// assigned to the requester and returns it.
func (s *RequestService) Decide(ctx context.Context, actor *models.User, id string, d Decision) (*models.Request, *models.Task, error) {
	if err := requireManager(actor); err != nil {
		return nil, nil, err
	}
	if d.Status != models.RequestApproved && d.Status != models.RequestRejected {
		return nil, nil, invalid("status must be APPROVED or REJECTED")
	}
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r.Status != models.RequestPending {
		return nil, nil, &ConflictError{Message: fmt.Sprintf("request is already %s", r.Status)}
	}

	comment := strings.TrimSpace(d.Comment)
	var task *models.Task
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Request{}).Where("id = ?", r.ID).Updates(map[string]any{
			"status":          d.Status,
			"manager_comment": comment,
		}).Error; err != nil {
			return err
		}
		if d.Status != models.RequestApproved {
			return nil
		}
		task = taskFromRequest(r, actor.ID)
		return tx.Create(task).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("decide request: %w", err)
	}
	r.Status = d.Status
	r.ManagerComment = comment

	suffix := ""
	if comment != "" {
		suffix = ": " + comment
	}
	s.Notifier.Notify(ctx, r.RequesterID, models.NotifyRequestUpdate,
		fmt.Sprintf("Your request %q was %s%s", r.Title, r.Status, suffix), &r.ID)

	if task != nil {
		details := "Converted to Task " + task.ID
		if comment != "" {
			details += " | Comment: " + comment
		}
		s.record(ctx, actor, models.ActionCreateTask, models.EntityTask, task.ID, task.Title)
		s.record(ctx, actor, models.ActionApproveRequest, models.EntityRequest, r.ID, details)
	} else {
		reason := comment
		if reason == "" {
			reason = "No reason"
		}
		s.record(ctx, actor, models.ActionRejectRequest, models.EntityRequest, r.ID, "Rejected: "+reason)
	}
	return r, task, nil
}

func taskFromRequest(r *models.Request, creatorID string) *models.Task {
	description := r.Description
	if description == "" {
		description = "From Request: " + r.Title
	}
	priority := models.PriorityMedium
	if r.IsUrgent {
		priority = models.PriorityUrgent
	}
	requester := r.RequesterID
	return &models.Task{
		Title:          r.Title,
		Description:    description,
		Priority:       priority,
		Status:         models.StatusNew,
		Classification: defaultClassification,
		DueDate:        r.DueDate,
		CreatorID:      creatorID,
		AssigneeID:     &requester,
	}
}

// Cancel withdraws a pending request. Only its requester may cancel it.
func (s *RequestService) Cancel(ctx context.Context, actor *models.User, id string) error {
	r, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if r.RequesterID != actor.ID {
		return ErrForbidden
	}
	if r.Status != models.RequestPending {
		return &ConflictError{Message: "only pending requests can be cancelled"}
	}

	if err := s.DB.WithContext(ctx).Delete(&models.Request{}, "id = ?", r.ID).Error; err != nil {
		return fmt.Errorf("cancel request: %w", err)
	}

	s.record(ctx, actor, models.ActionCancelRequest, models.EntityRequest, r.ID, "Cancelled request: "+r.Title)
	return nil
}
