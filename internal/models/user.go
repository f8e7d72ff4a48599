package models

import (
	"slices"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleManager UserRole = "MANAGER"
	RoleMember  UserRole = "MEMBER"
)

// Permission grants a single capability on top of the user's role.
type Permission string

const (
	PermCreateTasks     Permission = "tasks:create"
	PermUpdateAnyStatus Permission = "tasks:status:any"
)

// User is soft-deleted so activity history keeps resolving the actor's name.
type User struct {
	Base
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string       `gorm:"size:100;not null" json:"name"`
	Email        string       `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Avatar       string       `gorm:"size:512" json:"avatar,omitempty"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         UserRole     `gorm:"type:varchar(20);not null" json:"role"`
	Permissions  []Permission `gorm:"serializer:json" json:"permissions,omitempty"`
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// Can reports whether the user holds p. Managers hold every permission.
func (u *User) Can(p Permission) bool {
	if u.IsManager() {
		return true
	}
	return slices.Contains(u.Permissions, p)
}
