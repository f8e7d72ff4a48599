package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"team-tracker/internal/activity"
	"team-tracker/internal/config"
	"team-tracker/internal/database"
	"team-tracker/internal/handlers"
	"team-tracker/internal/notify"
	"team-tracker/internal/server"
	"team-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, seed and run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.Server.Port = servePort
		}
		return serve(cfg, db)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides SERVER_PORT)")
}

func serve(cfg *config.Config, db *gorm.DB) error {
	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.Seed(db, cfg.Admin); err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	inbox := notify.NewDBSink(db, slog.Default())
	sinks := notify.Multi{inbox}
	if cfg.Valkey.Addr != "" {
		vs, err := notify.NewValkeySink(cfg.Valkey.Addr, slog.Default())
		if err != nil {
			// polling through the database still works
			slog.Warn("valkey notifications disabled", "address", cfg.Valkey.Addr, "error", err)
		} else {
			defer vs.Close()
			sinks = append(sinks, vs)
		}
	}

	store := activity.NewGormStore(db)
	svc := service.New(service.Deps{
		DB:                db,
		Store:             store,
		Recorder:          activity.NewRecorder(store, activity.WithLogger(slog.Default())),
		Notifier:          sinks,
		Logger:            slog.Default(),
		HistoryWindowDays: cfg.History.WindowDays,
	})

	router := server.NewRouter(cfg, db, handlers.New(db, svc, inbox))

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
