package handlers

import (
	"net/http"

	"team-tracker/internal/middleware"
	"team-tracker/internal/notify"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	user := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	list, err := h.inbox.List(ctx, user.ID, notify.DefaultListLimit)
	if err != nil {
		renderError(c, err)
		return
	}
	unread, err := h.inbox.UnreadCount(ctx, user.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	ok, err := h.inbox.MarkRead(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.inbox.MarkAllRead(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
