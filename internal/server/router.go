package server

import (
	"net/http"

	"team-tracker/internal/config"
	"team-tracker/internal/handlers"
	"team-tracker/internal/middleware"
	"team-tracker/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "tracker_session"

func NewRouter(cfg *config.Config, db *gorm.DB, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if !cfg.IsProduction() {
		r.Use(gin.Logger())
	}

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.Use(middleware.InjectUser(db))

	// AUTH
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())
	managerOnly := middleware.RequireRole(models.RoleManager)

	auth.GET("/me", h.Me)
	auth.GET("/users", h.ListUsers)

	// TASKS
	auth.GET("/tasks", h.ListTasks)
	auth.POST("/tasks", h.CreateTask)
	auth.GET("/tasks/:id", h.GetTask)
	auth.PATCH("/tasks/:id", h.UpdateTask)
	auth.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
	auth.DELETE("/tasks/:id", managerOnly, h.DeleteTask)
	auth.POST("/tasks/:id/duplicate", h.DuplicateTask)
	auth.POST("/tasks/:id/comments", h.AddComment)
	auth.POST("/tasks/:id/notes", managerOnly, h.AddNote)

	bulk := auth.Group("/bulk/tasks", managerOnly)
	bulk.POST("/delete", h.BulkDeleteTasks)
	bulk.POST("/status", h.BulkUpdateStatus)
	bulk.POST("/reassign", h.BulkReassign)

	// PROJECTS
	auth.GET("/projects", h.ListProjects)
	auth.GET("/projects/:id", h.GetProject)
	auth.POST("/projects", managerOnly, h.CreateProject)
	auth.PATCH("/projects/:id", managerOnly, h.UpdateProject)
	auth.DELETE("/projects/:id", managerOnly, h.DeleteProject)
	auth.POST("/projects/:id/members", managerOnly, h.AddProjectMember)
	auth.DELETE("/projects/:id/members/:user_id", managerOnly, h.RemoveProjectMember)

	// REQUESTS
	auth.GET("/requests", h.ListRequests)
	auth.POST("/requests", h.CreateRequest)
	auth.POST("/requests/:id/decision", managerOnly, h.DecideRequest)
	auth.DELETE("/requests/:id", h.CancelRequest)

	// NOTIFICATIONS
	auth.GET("/notifications", h.ListNotifications)
	auth.PATCH("/notifications", h.MarkAllNotificationsRead)
	auth.POST("/notifications/:id/read", h.MarkNotificationRead)

	auth.GET("/dashboard", h.Dashboard)

	// HISTORY
	auth.GET("/history", h.History)
	auth.GET("/history/export", h.ExportHistory)
	auth.GET("/history/users/:id", h.UserHistory)

	return r
}
