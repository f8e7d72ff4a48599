package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"team-tracker/internal/activity"
	"team-tracker/internal/config"
	"team-tracker/internal/database"
	"team-tracker/internal/handlers"
	"team-tracker/internal/models"
	"team-tracker/internal/notify"
	"team-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	manager models.User
	member  models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: "0", Mode: "production"},
		DB:      config.DBConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "api.db")},
		Session: config.SessionConfig{Secret: "test-secret-test-secret-test-sec"},
		History: config.HistoryConfig{WindowDays: 30},
	}
	db, err := database.Open(cfg.DB, cfg.Server.Mode)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	ts := &testServer{db: db}
	ts.manager = createUser(t, db, "Maria", "maria@tracker.local", models.RoleManager)
	ts.member = createUser(t, db, "Ivan", "ivan@tracker.local", models.RoleMember)

	inbox := notify.NewDBSink(db, slog.Default())
	store := activity.NewGormStore(db)
	svc := service.New(service.Deps{
		DB:                db,
		Store:             store,
		Recorder:          activity.NewRecorder(store),
		Notifier:          inbox,
		Logger:            slog.Default(),
		HistoryWindowDays: cfg.History.WindowDays,
	})
	ts.router = NewRouter(cfg, db, handlers.New(db, svc, inbox))
	return ts
}

func createUser(t *testing.T, db *gorm.DB, name, email string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: name, Email: email, Role: role, PasswordHash: string(hash)}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func (ts *testServer) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/login", map[string]string{"email": email, "password": "secret"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/tasks", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/login", map[string]string{"email": "maria@tracker.local", "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// email lookup ignores case
	cookies := ts.login(t, "MARIA@tracker.local")
	w = ts.do(t, http.MethodGet, "/me", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), ts.manager.ID)
}

func TestManagerOnlyRoutes(t *testing.T) {
	ts := newTestServer(t)
	cookies := ts.login(t, "ivan@tracker.local")

	w := ts.do(t, http.MethodPost, "/bulk/tasks/delete", map[string]any{"ids": []string{"x"}}, cookies)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/projects", map[string]any{"title": "Q3"}, cookies)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTaskLifecycleIsAudited(t *testing.T) {
	ts := newTestServer(t)
	managerCookies := ts.login(t, "maria@tracker.local")
	memberCookies := ts.login(t, "ivan@tracker.local")

	due := time.Now().UTC().Add(-36 * time.Hour)
	w := ts.do(t, http.MethodPost, "/tasks", map[string]any{
		"title":       "Rotate certificates",
		"assignee_id": ts.member.ID,
		"due_date":    due,
	}, managerCookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Task models.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	taskID := created.Task.ID
	require.NotEmpty(t, taskID)

	w = ts.do(t, http.MethodPatch, "/tasks/"+taskID+"/status", map[string]string{"status": "COMPLETED"}, memberCookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// members cannot delete
	w = ts.do(t, http.MethodDelete, "/tasks/"+taskID, nil, memberCookies)
	require.Equal(t, http.StatusForbidden, w.Code)

	var status models.ActivityLog
	require.NoError(t, ts.db.Where("action = ? AND entity_id = ?", models.ActionUpdateStatus, taskID).First(&status).Error)
	require.Equal(t, ts.member.ID, status.UserID)
	require.Equal(t, "Status updated to COMPLETED", status.Details.Text)
	require.NotNil(t, status.Details.Impact)
	require.Equal(t, "2 Days Late", status.Details.Impact.Label)

	w = ts.do(t, http.MethodGet, "/history", nil, managerCookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var history struct {
		History struct {
			Total  int                 `json:"total"`
			Groups []activity.LogGroup `json:"groups"`
			Stats  *activity.Stats     `json:"stats"`
		} `json:"history"`
		Summaries map[string]string `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 2, history.History.Total)
	require.Len(t, history.History.Groups, 2)
	require.NotNil(t, history.History.Stats)
	require.Equal(t, int64(2), history.History.Stats.TotalActivities)
	require.Len(t, history.Summaries, 2)

	// the member sees the status change and the creation of their task
	w = ts.do(t, http.MethodGet, "/history", nil, memberCookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 2, history.History.Total)

	w = ts.do(t, http.MethodGet, "/history/export?q=status", nil, managerCookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="audit-log-`))
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Date,User,Action,Target,Details", strings.TrimSpace(lines[0]))
	require.Contains(t, lines[1], "TASK: "+taskID)
}

func TestNotificationsFlow(t *testing.T) {
	ts := newTestServer(t)
	managerCookies := ts.login(t, "maria@tracker.local")
	memberCookies := ts.login(t, "ivan@tracker.local")

	w := ts.do(t, http.MethodPost, "/tasks", map[string]any{
		"title":       "Patch VPN gateway",
		"assignee_id": ts.member.ID,
	}, managerCookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/notifications", nil, memberCookies)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox struct {
		Notifications []models.Notification `json:"notifications"`
		Unread        int64                 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox.Notifications, 1)
	require.Equal(t, int64(1), inbox.Unread)

	// another user's notification is not found
	w = ts.do(t, http.MethodPost, "/notifications/"+inbox.Notifications[0].ID+"/read", nil, managerCookies)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/notifications/"+inbox.Notifications[0].ID+"/read", nil, memberCookies)
	require.Equal(t, http.StatusNoContent, w.Code)

	var n models.Notification
	require.NoError(t, ts.db.First(&n, "id = ?", inbox.Notifications[0].ID).Error)
	require.True(t, n.Read)
}
