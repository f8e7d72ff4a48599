package notify

import (
	"context"
	"fmt"
	"log/slog"

	"team-tracker/internal/models"

	"gorm.io/gorm"
)

// DefaultListLimit is how many notifications a user sees at once.
const DefaultListLimit = 20

// DBSink persists notifications so clients can poll for them.
type DBSink struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewDBSink(db *gorm.DB, logger *slog.Logger) *DBSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &DBSink{db: db, logger: logger}
}

func (s *DBSink) Notify(ctx context.Context, userID string, typ models.NotificationType, message string, relatedID *string) {
	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
		TaskID:  relatedID,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		s.logger.Warn("failed to store notification", "user_id", userID, "type", typ, "error", err)
	}
}

// List returns the user's latest notifications, newest first.
func (s *DBSink) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var out []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *DBSink) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification read. It only touches rows owned by userID
// and reports whether one was updated.
func (s *DBSink) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark notification read: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *DBSink) MarkAllRead(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
