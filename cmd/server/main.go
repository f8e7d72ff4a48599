package main

import (
	"fmt"
	"log/slog"
	"os"

	"team-tracker/internal/config"
	"team-tracker/internal/database"
	"team-tracker/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Team task tracker with an audited activity history",
	// serve is the default so the container entrypoint needs no arguments
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportAuditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config, installs the logger and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Log.Format, cfg.Log.Level)

	db, err := database.Open(cfg.DB, cfg.Server.Mode)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed default users",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(db, cfg.Admin); err != nil {
			return err
		}
		slog.Info("database migrations completed")
		return nil
	},
}
