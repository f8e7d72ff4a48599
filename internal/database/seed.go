package database

import (
	"errors"
	"fmt"
	"log/slog"

	"team-tracker/internal/config"
	"team-tracker/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the default manager and a pair of demo members if missing.
func Seed(db *gorm.DB, admin config.AdminConfig) error {
	if err := createDefaultManager(db, admin); err != nil {
		return err
	}
	seedDefaultUsers(db)
	return nil
}

// the manager account only comes from config
func createDefaultManager(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		return errors.New("admin email and password are required")
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleManager).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check manager user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default manager password: %w", err)
	}

	manager := models.User{
		Name:         "Administrator",
		Email:        admin.Email,
		PasswordHash: string(hash),
		Role:         models.RoleManager,
	}
	if err := db.Create(&manager).Error; err != nil {
		return fmt.Errorf("failed to create default manager: %w", err)
	}

	slog.Info("created default manager", "email", admin.Email)
	return nil
}

// demo accounts; failures are logged and skipped
func seedDefaultUsers(db *gorm.DB) {
	type seedUser struct {
		Name        string
		Email       string
		Password    string
		Permissions []models.Permission
	}

	users := []seedUser{
		{
			Name:        "Lead Member",
			Email:       "lead@tracker.local",
			Password:    "Lead123!",
			Permissions: []models.Permission{models.PermCreateTasks, models.PermUpdateAnyStatus},
		},
		{
			Name:     "Member",
			Email:    "member@tracker.local",
			Password: "Member123!",
		},
	}

	for _, u := range users {
		var count int64
		if err := db.Unscoped().Model(&models.User{}).
			Where("email = ?", u.Email).
			Count(&count).Error; err != nil {
			slog.Warn("failed to check seed user", "email", u.Email, "error", err)
			continue
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Warn("failed to hash seed user password", "email", u.Email, "error", err)
			continue
		}

		user := models.User{
			Name:         u.Name,
			Email:        u.Email,
			PasswordHash: string(hash),
			Role:         models.RoleMember,
			Permissions:  u.Permissions,
		}
		if err := db.Create(&user).Error; err != nil {
			slog.Warn("failed to create seed user", "email", u.Email, "error", err)
			continue
		}

		slog.Info("created seed user", "email", u.Email, "role", user.Role)
	}
}
