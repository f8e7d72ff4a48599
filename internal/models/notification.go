package models

type NotificationType string

const (
	NotifyAssignment    NotificationType = "ASSIGNMENT"
	NotifyUpdate        NotificationType = "UPDATE"
	NotifyComment       NotificationType = "COMMENT"
	NotifyRequest       NotificationType = "REQUEST"
	NotifyRequestUpdate NotificationType = "REQUEST_UPDATE"
)

type Notification struct {
	Base
	UserID  string           `gorm:"type:varchar(36);index;not null" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message string           `gorm:"type:text;not null" json:"message"`
	TaskID  *string          `gorm:"type:varchar(36)" json:"task_id,omitempty"`
	Read    bool             `gorm:"not null;default:false" json:"read"`
}
