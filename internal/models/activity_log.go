package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntityType string

const (
	EntityTask    EntityType = "TASK"
	EntityProject EntityType = "PROJECT"
	EntityRequest EntityType = "REQUEST"
)

// Action tags are open-ended; readers must tolerate tags they do not know.
type Action string

const (
	ActionCreateTask     Action = "CREATE_TASK"
	ActionUpdateTask     Action = "UPDATE_TASK"
	ActionUpdateStatus   Action = "UPDATE_STATUS"
	ActionDeleteTask     Action = "DELETE_TASK"
	ActionDuplicateTask  Action = "DUPLICATE_TASK"
	ActionReassignTask   Action = "REASSIGN_TASK"
	ActionAddNote        Action = "ADD_NOTE"
	ActionAddComment     Action = "ADD_COMMENT"
	ActionCreateProject  Action = "CREATE_PROJECT"
	ActionUpdateProject  Action = "UPDATE_PROJECT"
	ActionDeleteProject  Action = "DELETE_PROJECT"
	ActionAddMember      Action = "ADD_MEMBER"
	ActionRemoveMember   Action = "REMOVE_MEMBER"
	ActionCreateRequest  Action = "CREATE_REQUEST"
	ActionApproveRequest Action = "APPROVE_REQUEST"
	ActionRejectRequest  Action = "REJECT_REQUEST"
	ActionCancelRequest  Action = "CANCEL_REQUEST"
)

// ActivityLog is one append-only audit row. Rows are never updated or deleted,
// including when the referenced entity or user is removed.
type ActivityLog struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	UserID string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user"`

	Action     Action     `gorm:"type:varchar(50);not null" json:"action"`
	EntityType EntityType `gorm:"type:varchar(20);not null;index:idx_activity_entity" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(36);not null;index:idx_activity_entity" json:"entity_id"`
	Details    Details    `gorm:"type:text" json:"details"`

	Field    *string `gorm:"size:50" json:"field,omitempty"`
	OldValue *string `gorm:"type:text" json:"old_value,omitempty"`
	NewValue *string `gorm:"type:text" json:"new_value,omitempty"`

	// Convenience cross-references, derived from EntityType.
	TaskID    *string `gorm:"type:varchar(36);index" json:"task_id,omitempty"`
	ProjectID *string `gorm:"type:varchar(36);index" json:"project_id,omitempty"`
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
