package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"team-tracker/internal/activity"
	"team-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

func historyFilter(c *gin.Context) activity.Filter {
	return activity.Filter{
		Search: c.Query("q"),
		UserID: c.Query("user"),
	}
}

// History returns the grouped timeline with a summary line per entry.
func (h *Handler) History(c *gin.Context) {
	view, err := h.svc.History.View(c.Request.Context(), middleware.CurrentUser(c), historyFilter(c))
	if err != nil {
		renderError(c, err)
		return
	}

	summaries := make(map[string]string, view.Total)
	for _, g := range view.Groups {
		for _, e := range g.Items {
			summaries[e.ID] = activity.Summary(e)
		}
	}
	render(c, http.StatusOK, gin.H{"history": view, "summaries": summaries})
}

// ExportHistory streams the filtered, ungrouped log as CSV.
func (h *Handler) ExportHistory(c *gin.Context) {
	entries, err := h.svc.History.Entries(c.Request.Context(), middleware.CurrentUser(c), historyFilter(c))
	if err != nil {
		renderError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", activity.ExportFilename(h.now())))
	c.Status(http.StatusOK)
	if err := activity.WriteCSV(c.Writer, entries); err != nil {
		// headers are already sent
		slog.Error("history export failed", "error", err)
	}
}

func (h *Handler) UserHistory(c *gin.Context) {
	profile, err := h.svc.History.Profile(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, gin.H{"profile": profile})
}
