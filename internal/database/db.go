package database

import (
	"fmt"
	"log/slog"
	"time"

	"team-tracker/internal/config"
	"team-tracker/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open connects to the configured database, retrying while it comes up.
func Open(cfg config.DBConfig, mode string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		Logger:  newGormLogger(mode),
		NowFunc: func() time.Time { return time.Now().UTC() },
		// activity rows keep user and entity ids after the rows they point at are gone
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	var db *gorm.DB
	for i := 1; i <= maxAttempts; i++ {
		slog.Info("connecting to database", "driver", cfg.Driver, "attempt", i, "max_attempts", maxAttempts)

		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			break
		}
		slog.Warn("failed to connect to database", "error", err)
		if i < maxAttempts {
			time.Sleep(retryBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	slog.Info("connected to database", "driver", cfg.Driver)
	return db, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Comment{},
		&models.ManagerNote{},
		&models.Request{},
		&models.Notification{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
