package handlers

import (
	"net/http"

	"team-tracker/internal/middleware"
	"team-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.svc.Projects.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"projects": projects})
}

func (h *Handler) GetProject(c *gin.Context) {
	project, err := h.svc.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"project": project})
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid project payload")
		return
	}
	project, err := h.svc.Projects.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid project payload")
		return
	}
	project, err := h.svc.Projects.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.svc.Projects.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberForm struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *Handler) AddProjectMember(c *gin.Context) {
	var form memberForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "user_id is required")
		return
	}
	if err := h.svc.Projects.AddMember(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), form.UserID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveProjectMember(c *gin.Context) {
	err := h.svc.Projects.RemoveMember(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), c.Param("user_id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
