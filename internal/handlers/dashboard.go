package handlers

import (
	"net/http"
	"strconv"

	"team-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Dashboard(c *gin.Context) {
	days := 0
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	sum, err := h.svc.Dashboard.Summary(c.Request.Context(), middleware.CurrentUser(c), days)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"dashboard": sum})
}
