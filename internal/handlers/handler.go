package handlers

import (
	"time"

	"team-tracker/internal/notify"
	"team-tracker/internal/service"

	"gorm.io/gorm"
)

// Handler serves the JSON API. The acting user always comes from the
// session via middleware.CurrentUser and is passed to services explicitly.
type Handler struct {
	db    *gorm.DB
	svc   *service.Services
	inbox *notify.DBSink
	now   func() time.Time
}

func New(db *gorm.DB, svc *service.Services, inbox *notify.DBSink) *Handler {
	return &Handler{db: db, svc: svc, inbox: inbox, now: time.Now}
}
