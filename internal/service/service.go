package service

import (
	"context"
	"log/slog"
	"time"

	"team-tracker/internal/activity"
	"team-tracker/internal/models"
	"team-tracker/internal/notify"

	"gorm.io/gorm"
)

// Deps are shared by every service. Entity writes and their activity rows
// are separate store calls: a crash between them can leave a mutation
// without its log row, or a log row for a delete that never happened.
type Deps struct {
	DB       *gorm.DB
	Store    activity.Store
	Recorder *activity.Recorder
	Notifier notify.Sink
	Logger   *slog.Logger
	Now      func() time.Time

	HistoryWindowDays int
}

type Services struct {
	Tasks     *TaskService
	Projects  *ProjectService
	Requests  *RequestService
	Dashboard *DashboardService
	History   *HistoryService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Store == nil {
		d.Store = activity.NewGormStore(d.DB)
	}
	if d.Recorder == nil {
		d.Recorder = activity.NewRecorder(d.Store, activity.WithClock(d.Now), activity.WithLogger(d.Logger))
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard{}
	}
	if d.HistoryWindowDays <= 0 {
		d.HistoryWindowDays = activity.DefaultWindowDays
	}

	return &Services{
		Tasks:     &TaskService{Deps: d},
		Projects:  &ProjectService{Deps: d},
		Requests:  &RequestService{Deps: d},
		Dashboard: &DashboardService{Deps: d},
		History: &HistoryService{
			Deps:       d,
			aggregator: activity.NewAggregator(d.Store, d.Now, d.Logger),
		},
	}
}

func requireManager(actor *models.User) error {
	if actor == nil || !actor.IsManager() {
		return ErrForbidden
	}
	return nil
}

func (d Deps) loadUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := d.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &u, nil
}

func (d Deps) notifyTask(ctx context.Context, userID string, typ models.NotificationType, message, taskID string) {
	d.Notifier.Notify(ctx, userID, typ, message, &taskID)
}

func (d Deps) record(ctx context.Context, actor *models.User, action models.Action, entityType models.EntityType, entityID, details string) {
	d.Recorder.Record(ctx, activity.Event{
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}
