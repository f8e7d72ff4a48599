package handlers

import (
	"net/http"

	"team-tracker/internal/middleware"
	"team-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListRequests(c *gin.Context) {
	reqs, err := h.svc.Requests.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req service.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	r, err := h.svc.Requests.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": r})
}

func (h *Handler) DecideRequest(c *gin.Context) {
	var d service.Decision
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "invalid decision payload")
		return
	}
	r, task, err := h.svc.Requests.Decide(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), d)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": r, "task": task})
}

func (h *Handler) CancelRequest(c *gin.Context) {
	if err := h.svc.Requests.Cancel(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
