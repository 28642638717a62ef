package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/config"
	"github.com/projecthub/projecthub-api/internal/constants"
	apierrors "github.com/projecthub/projecthub-api/internal/errors"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/notify"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/services"
	"github.com/projecthub/projecthub-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type outbox struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (o *outbox) Notify(_ context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) last(kind notify.Kind) notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].Kind == kind {
			return o.sent[i]
		}
	}
	return notify.Message{}
}

type stubGenerator struct {
	tasks []services.GeneratedTask
}

func (g *stubGenerator) GenerateTasks(context.Context, *models.Project, string) ([]services.GeneratedTask, error) {
	return g.tasks, nil
}

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *services.TokenService
	outbox *outbox
}

func newTestEnv(t *testing.T, generator services.TaskGenerator) *testEnv {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{ResetURL: "https://app.example.com/reset-password", CookieSecure: true},
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret",
			AccessTokenTTL: time.Hour,
			ResetTokenTTL:  15 * time.Minute,
			OTPTTL:         10 * time.Minute,
		},
	}
	db := testutil.NewDB(t)
	logger := testutil.Logger()
	box := &outbox{}

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	tasks := repository.NewTaskRepository(db)
	tokens := services.NewTokenService(cfg.Auth.JWTSecret)

	authService := services.NewAuthService(users, tokens, box, cfg, logger)
	projectService := services.NewProjectService(projects, users, tasks)
	taskService := services.NewTaskService(tasks, projects, generator)

	router := NewRouter(RouterDeps{
		Auth:     NewAuthHandler(authService, cfg, logger),
		Projects: NewProjectHandler(projectService, logger),
		Tasks:    NewTaskHandler(taskService, logger),
		Tokens:   tokens,
		Users:    users,
		Logger:   logger,
	})

	return &testEnv{t: t, db: db, router: router, tokens: tokens, outbox: box}
}

// userToken creates a verified user and returns it with an access token.
func (e *testEnv) userToken(name, email string) (*models.User, string) {
	e.t.Helper()
	user := testutil.CreateUser(e.t, e.db, name, email)
	token, err := e.tokens.Issue(user.ID, user.Role, constants.TokenPurposeAccess, time.Hour)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, errType string) apierrors.APIError {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[apierrors.APIError](t, w)
	require.False(t, body.Success)
	require.Equal(t, errType, body.Detail.Type)
	require.Equal(t, status, body.Detail.Code)
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
