package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"team-tracker/internal/middleware"
	"team-tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// render writes a JSON payload. gin.H payloads also get the current user, so
// clients can decide what to show without a second request.
func render(c *gin.Context, status int, data any) {
	if h, ok := data.(gin.H); ok {
		if u := middleware.CurrentUser(c); u != nil {
			h["current_user"] = u
		}
	}
	c.JSON(status, data)
}

// renderError maps service errors to status codes. Unexpected errors are
// logged and hidden from the client.
func renderError(c *gin.Context, err error) {
	var verr *service.ValidationError
	var cerr *service.ConflictError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.As(err, &cerr):
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
