package handlers

import (
	"net/http"

	"team-tracker/internal/middleware"
	"team-tracker/internal/models"
	"team-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.Tasks.List(c.Request.Context(), service.TaskFilter{
		Status:     models.TaskStatus(c.Query("status")),
		AssigneeID: c.Query("assignee_id"),
		ProjectID:  c.Query("project_id"),
		Search:     c.Query("q"),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.svc.Tasks.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"task": task})
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task payload")
		return
	}
	task, err := h.svc.Tasks.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid task payload")
		return
	}
	task, err := h.svc.Tasks.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

type statusForm struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	var form statusForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "status is required")
		return
	}
	task, err := h.svc.Tasks.UpdateStatus(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), form.Status)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.svc.Tasks.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DuplicateTask(c *gin.Context) {
	task, err := h.svc.Tasks.Duplicate(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

type contentForm struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) AddNote(c *gin.Context) {
	var form contentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "content is required")
		return
	}
	note, err := h.svc.Tasks.AddNote(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), form.Content)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

func (h *Handler) AddComment(c *gin.Context) {
	var form contentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "content is required")
		return
	}
	comment, err := h.svc.Tasks.AddComment(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), form.Content)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// bulk actions

type bulkForm struct {
	IDs        []string          `json:"ids" binding:"required"`
	Status     models.TaskStatus `json:"status"`
	AssigneeID string            `json:"assignee_id"`
}

func (h *Handler) bindBulk(c *gin.Context) (bulkForm, bool) {
	var form bulkForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "ids are required")
		return form, false
	}
	return form, true
}

func (h *Handler) BulkDeleteTasks(c *gin.Context) {
	form, ok := h.bindBulk(c)
	if !ok {
		return
	}
	n, err := h.svc.Tasks.BulkDelete(c.Request.Context(), middleware.CurrentUser(c), form.IDs)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n})
}

func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	form, ok := h.bindBulk(c)
	if !ok {
		return
	}
	n, err := h.svc.Tasks.BulkUpdateStatus(c.Request.Context(), middleware.CurrentUser(c), form.IDs, form.Status)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n})
}

func (h *Handler) BulkReassign(c *gin.Context) {
	form, ok := h.bindBulk(c)
	if !ok {
		return
	}
	n, err := h.svc.Tasks.BulkReassign(c.Request.Context(), middleware.CurrentUser(c), form.IDs, form.AssigneeID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"affected": n})
}
