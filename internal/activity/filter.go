package activity

import (
	"strings"

	"team-tracker/internal/models"
)

// AllUsers disables the user filter, like an empty UserID.
const AllUsers = "ALL"

// Filter narrows the visible log before grouping or export.
type Filter struct {
	Search string
	UserID string
}

// Match reports whether e passes the filter. Search is a case-insensitive
// substring match against the action, the entity type and the details text.
// The term is used as given, so " " only matches text containing a space.
func (f Filter) Match(e models.ActivityLog) bool {
	if f.UserID != "" && f.UserID != AllUsers && e.UserID != f.UserID {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(string(e.Action)), term) ||
		strings.Contains(strings.ToLower(string(e.EntityType)), term) ||
		strings.Contains(strings.ToLower(e.Details.Text), term)
}

// Apply returns the entries matching f, preserving order.
func (f Filter) Apply(entries []models.ActivityLog) []models.ActivityLog {
	out := make([]models.ActivityLog, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
