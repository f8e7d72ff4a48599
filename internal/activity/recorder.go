package activity

import (
	"context"
	"log/slog"
	"time"

	"team-tracker/internal/models"
)

// Placeholder names used when the logged entity cannot be resolved.
const (
	UnknownTask    = "Unknown Task"
	UnknownProject = "Unknown Project"
)

// Change captures a single attribute transition.
type Change struct {
	Field    string
	OldValue string
	NewValue string
}

// Event describes one mutating action to append to the log.
type Event struct {
	ActorID    string
	Action     models.Action
	EntityType models.EntityType
	EntityID   string
	// Details is free text; when empty the entity's title is looked up.
	Details string
	Change  *Change
	Impact  *models.Impact
}

// Recorder appends events to the activity log.
type Recorder struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

type RecorderOption func(*Recorder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = l }
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends ev. Identical events are not deduplicated. Failures are
// logged and never returned: an audit write must not block the mutation.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	entry := r.build(ctx, ev)
	if err := r.store.Append(ctx, &entry); err != nil {
		r.logger.Error("failed to record activity",
			"action", ev.Action,
			"entity_type", ev.EntityType,
			"entity_id", ev.EntityID,
			"actor_id", ev.ActorID,
			"error", err)
	}
}

func (r *Recorder) build(ctx context.Context, ev Event) models.ActivityLog {
	text := ev.Details
	if text == "" {
		text = r.resolveName(ctx, ev.EntityType, ev.EntityID)
	}

	details := models.PlainDetails(text)
	if ev.Impact != nil {
		impact := *ev.Impact
		details = models.StructuredDetails(text, &impact)
	}

	entry := models.ActivityLog{
		CreatedAt:  r.now().UTC(),
		UserID:     ev.ActorID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Details:    details,
	}
	if c := ev.Change; c != nil {
		entry.Field = strPtr(c.Field)
		entry.OldValue = strPtr(c.OldValue)
		entry.NewValue = strPtr(c.NewValue)
	}

	switch ev.EntityType {
	case models.EntityTask:
		entry.TaskID = strPtr(ev.EntityID)
	case models.EntityProject:
		entry.ProjectID = strPtr(ev.EntityID)
	}
	return entry
}

// resolveName falls back to a placeholder when the entity is gone or the
// lookup fails. Entity types without a title resolve to "".
func (r *Recorder) resolveName(ctx context.Context, entityType models.EntityType, id string) string {
	var placeholder string
	switch entityType {
	case models.EntityTask:
		placeholder = UnknownTask
	case models.EntityProject:
		placeholder = UnknownProject
	default:
		return ""
	}

	title, ok, err := r.store.LookupTitle(ctx, entityType, id)
	if err != nil {
		r.logger.Warn("failed to resolve entity name",
			"entity_type", entityType,
			"entity_id", id,
			"error", err)
		return placeholder
	}
	if !ok || title == "" {
		return placeholder
	}
	return title
}

func strPtr(s string) *string {
	return &s
}
