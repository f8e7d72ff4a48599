package activity

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"team-tracker/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// testDB opens a file-backed SQLite database with the tracker schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.ManagerNote{},
		&models.ActivityLog{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@test.local", PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func insertEntry(t *testing.T, db *gorm.DB, e models.ActivityLog) models.ActivityLog {
	t.Helper()
	if e.EntityType == "" {
		e.EntityType = models.EntityTask
	}
	if e.EntityID == "" {
		e.EntityID = "task-1"
	}
	require.NoError(t, NewGormStore(db).Append(context.Background(), &e))
	return e
}

func countEntries(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Count(&n).Error)
	return n
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

var errStoreDown = errors.New("store down")

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Append(context.Context, *models.ActivityLog) error { return errStoreDown }
func (failingStore) LookupTitle(context.Context, models.EntityType, string) (string, bool, error) {
	return "", false, errStoreDown
}
func (failingStore) Count(context.Context, Query) (int64, error) { return 0, errStoreDown }
func (failingStore) CountByUser(context.Context, Query, int) ([]UserCount, error) {
	return nil, errStoreDown
}
func (failingStore) Find(context.Context, Query) ([]models.ActivityLog, error) {
	return nil, errStoreDown
}
func (failingStore) UsersByID(context.Context, []string) (map[string]models.User, error) {
	return nil, errStoreDown
}
