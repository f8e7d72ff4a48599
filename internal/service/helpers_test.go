package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"team-tracker/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type sentNotification struct {
	UserID  string
	Type    models.NotificationType
	Message string
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingSink) Notify(_ context.Context, userID string, typ models.NotificationType, message string, _ *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{UserID: userID, Type: typ, Message: message})
}

func (r *recordingSink) to(userID string) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// testSetup creates a file-backed DB, migrates models and returns services
// running on a fixed clock.
func testSetup(t *testing.T) (*Services, *gorm.DB, *recordingSink) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		NowFunc:                                  func() time.Time { return baseTime },
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.ManagerNote{},
		&models.Request{},
		&models.Notification{},
		&models.ActivityLog{},
	))

	sink := &recordingSink{}
	svc := New(Deps{
		DB:       db,
		Notifier: sink,
		Now:      func() time.Time { return baseTime },
	})
	return svc, db, sink
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.UserRole, perms ...models.Permission) *models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@test.local", PasswordHash: "x", Role: role, Permissions: perms}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func createTask(t *testing.T, db *gorm.DB, creator *models.User, assignee *models.User, due *time.Time) *models.Task {
	t.Helper()
	task := models.Task{
		Title:     "Prepare release",
		Priority:  models.PriorityHigh,
		Status:    models.StatusInProgress,
		CreatorID: creator.ID,
		DueDate:   due,
	}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	require.NoError(t, db.Omit("Creator", "Assignee").Create(&task).Error)
	return &task
}

func logsFor(t *testing.T, db *gorm.DB, entityID string) []models.ActivityLog {
	t.Helper()
	var out []models.ActivityLog
	require.NoError(t, db.Where("entity_id = ?", entityID).Order("created_at ASC, id ASC").Find(&out).Error)
	return out
}

func logsWithAction(t *testing.T, db *gorm.DB, action models.Action) []models.ActivityLog {
	t.Helper()
	var out []models.ActivityLog
	require.NoError(t, db.Where("action = ?", action).Find(&out).Error)
	return out
}

func logWithAction(t *testing.T, db *gorm.DB, entityID string, action models.Action) models.ActivityLog {
	t.Helper()
	var out models.ActivityLog
	require.NoError(t, db.Where("entity_id = ? AND action = ?", entityID, action).First(&out).Error)
	return out
}

func actionsOf(logs []models.ActivityLog) []models.Action {
	out := make([]models.Action, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func timePtr(t time.Time) *time.Time { return &t }
