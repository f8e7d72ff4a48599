package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Request is a member-submitted ask that a manager converts into a task or rejects.
type Request struct {
	Base

	Title          string        `gorm:"size:255;not null" json:"title"`
	Description    string        `gorm:"type:text" json:"description"`
	IsUrgent       bool          `json:"is_urgent"`
	DueDate        *time.Time    `json:"due_date,omitempty"`
	Status         RequestStatus `gorm:"type:varchar(20);not null" json:"status"`
	ManagerComment string        `gorm:"type:text" json:"manager_comment,omitempty"`

	RequesterID string `gorm:"type:varchar(36);index;not null" json:"requester_id"`
	Requester   User   `json:"requester,omitempty"`
}
