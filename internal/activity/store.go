package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"team-tracker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query is the predicate set understood by Store. Zero fields do not filter.
type Query struct {
	Since           time.Time
	UserID          string
	ActionContains  string
	DetailsContains string
	// Visible restricts rows to what a member may see; nil means everything.
	Visible *Visibility
	Limit   int
}

// Visibility selects rows authored by UserID or attached to one of TaskIDs.
type Visibility struct {
	UserID  string
	TaskIDs []string
}

// UserCount is one row of a group-by-user count.
type UserCount struct {
	UserID string
	Count  int64
}

// Store is the persistence surface the activity engine needs.
type Store interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	LookupTitle(ctx context.Context, entityType models.EntityType, id string) (string, bool, error)
	Count(ctx context.Context, q Query) (int64, error)
	CountByUser(ctx context.Context, q Query, limit int) ([]UserCount, error)
	Find(ctx context.Context, q Query) ([]models.ActivityLog, error)
	UsersByID(ctx context.Context, ids []string) (map[string]models.User, error)
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Append(ctx context.Context, entry *models.ActivityLog) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *GormStore) LookupTitle(ctx context.Context, entityType models.EntityType, id string) (string, bool, error) {
	var model any
	switch entityType {
	case models.EntityTask:
		model = &models.Task{}
	case models.EntityProject:
		model = &models.Project{}
	default:
		return "", false, nil
	}

	var titles []string
	err := s.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Limit(1).
		Pluck("title", &titles).Error
	if err != nil {
		return "", false, fmt.Errorf("lookup %s title: %w", strings.ToLower(string(entityType)), err)
	}
	if len(titles) == 0 {
		return "", false, nil
	}
	return titles[0], true, nil
}

func (s *GormStore) Count(ctx context.Context, q Query) (int64, error) {
	var n int64
	if err := s.scope(ctx, q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

func (s *GormStore) CountByUser(ctx context.Context, q Query, limit int) ([]UserCount, error) {
	var rows []UserCount
	tx := s.scope(ctx, q).
		Select("user_id, COUNT(*) AS count").
		Group("user_id").
		Order("count DESC").
		Order("user_id ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count activity by user: %w", err)
	}
	return rows, nil
}

// Find returns matching rows newest first with the acting user preloaded.
// Soft-deleted users are still loaded so old rows keep their names.
func (s *GormStore) Find(ctx context.Context, q Query) ([]models.ActivityLog, error) {
	var logs []models.ActivityLog
	tx := s.scope(ctx, q).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	return logs, nil
}

func (s *GormStore) UsersByID(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Unscoped().Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *GormStore) scope(ctx context.Context, q Query) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if !q.Since.IsZero() {
		tx = tx.Where("created_at >= ?", q.Since)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.ActionContains != "" {
		tx = tx.Where("action LIKE ? ESCAPE '\\'", likePattern(q.ActionContains))
	}
	if q.DetailsContains != "" {
		tx = tx.Where("details LIKE ? ESCAPE '\\'", likePattern(q.DetailsContains))
	}
	if v := q.Visible; v != nil {
		if len(v.TaskIDs) > 0 {
			tx = tx.Where("(user_id = ? OR task_id IN ?)", v.UserID, v.TaskIDs)
		} else {
			tx = tx.Where("user_id = ?", v.UserID)
		}
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
