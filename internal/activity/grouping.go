package activity

import (
	"time"

	"team-tracker/internal/models"
)

// GroupWindow is the largest gap between neighbouring entries of one group.
const GroupWindow = 10 * time.Minute

// LogGroup is a run of consecutive entries by one actor on one entity.
// StartTime and EndTime are the earliest and latest item timestamps.
type LogGroup struct {
	ID         string               `json:"id"`
	UserID     string               `json:"user_id"`
	User       models.User          `json:"user"`
	EntityType models.EntityType    `json:"entity_type"`
	EntityID   string               `json:"entity_id"`
	Items      []models.ActivityLog `json:"items"`
	StartTime  time.Time            `json:"start_time"`
	EndTime    time.Time            `json:"end_time"`
}

// Collapsed reports whether the group renders as an expandable list.
func (g LogGroup) Collapsed() bool {
	return len(g.Items) > 1
}

// Group coalesces consecutive entries in the order given, newest first being
// the canonical order. An entry joins the open group when it has the same
// actor and entity and lies within GroupWindow of the group's last item, in
// either direction. The group id is the id of its first item.
func Group(entries []models.ActivityLog) []LogGroup {
	if len(entries) == 0 {
		return []LogGroup{}
	}

	var groups []LogGroup
	current := newGroup(entries[0])
	edge := entries[0].CreatedAt

	for _, e := range entries[1:] {
		if joins(current, e, edge) {
			current.Items = append(current.Items, e)
			if e.CreatedAt.Before(current.StartTime) {
				current.StartTime = e.CreatedAt
			}
			if e.CreatedAt.After(current.EndTime) {
				current.EndTime = e.CreatedAt
			}
			edge = e.CreatedAt
			continue
		}
		groups = append(groups, current)
		current = newGroup(e)
		edge = e.CreatedAt
	}
	return append(groups, current)
}

func newGroup(e models.ActivityLog) LogGroup {
	return LogGroup{
		ID:         e.ID,
		UserID:     e.UserID,
		User:       e.User,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Items:      []models.ActivityLog{e},
		StartTime:  e.CreatedAt,
		EndTime:    e.CreatedAt,
	}
}

func joins(g LogGroup, e models.ActivityLog, edge time.Time) bool {
	if e.UserID != g.UserID || e.EntityType != g.EntityType || e.EntityID != g.EntityID {
		return false
	}
	gap := e.CreatedAt.Sub(edge)
	if gap < 0 {
		gap = -gap
	}
	return gap <= GroupWindow
}
