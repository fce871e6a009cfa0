package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/algotutor-api/internal/config"
	"github.com/noah-isme/algotutor-api/internal/database"
	"github.com/noah-isme/algotutor-api/internal/handler"
	"github.com/noah-isme/algotutor-api/internal/i18n"
	"github.com/noah-isme/algotutor-api/internal/middleware"
	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/repository"
	"github.com/noah-isme/algotutor-api/internal/router"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/store"
)

const (
	adminEmail    = "admin@algotutor.test"
	adminPassword = "admin-password"
	seedToken     = "seed-secret"
)

type storageStub struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (s *storageStub) Upload(_ context.Context, path string, reader io.Reader, _ int64, onProgress func(int)) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(100)
	}
	return "https://cdn.example.com/" + path, nil
}

type apiHarness struct {
	app     *fiber.App
	state   *store.State
	storage *storageStub
	events  service.EventService
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func newAPIHarness(t *testing.T) apiHarness {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.ConnectSQLite(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))

	catalog, err := i18n.Load()
	require.NoError(t, err)

	kv := repository.NewMemoryStore()
	validate := validator.New(validator.WithRequiredStructEnabled())
	state := store.New()
	storage := &storageStub{}
	events := service.NewEventService(nil, "", nil, logger)

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	sessions := service.NewSessionService(repository.NewSessionRepository(kv, time.Hour), logger)
	preferences := service.NewPreferenceService(repository.NewPreferenceRepository(kv), i18n.English, logger)
	uploads := service.NewUploadService(state, storage, validate, events, activity, logger, service.UploadConfig{MaxSizeMB: 1})
	directory := service.NewDirectoryService(state, sessions, uploads, catalog, validate, events, activity, logger, service.DirectoryConfig{HashCost: bcrypt.MinCost})
	auth := service.NewAuthService(directory, sessions, validate, service.AuthConfig{Secret: "test-secret", TTL: time.Hour}, logger)
	lessons := service.NewLessonService(state, catalog, validate, events, activity, logger)
	news := service.NewNewsService(state, catalog, validate, events, activity, logger)
	questions := service.NewQuestionService(state, validate, events, activity, logger)
	seed := service.NewSeedService(directory, lessons, news, service.SeedConfig{
		Enabled:       true,
		Token:         seedToken,
		AdminName:     "Root",
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}, logger)

	_, err = seed.Bootstrap(context.Background())
	require.NoError(t, err)

	locales := handler.NewLocaleResolver(preferences, catalog)
	cfg := config.Config{AppName: "algotutor-test", AppEnv: "test", DefaultLocale: "en"}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(auth, directory, locales, logger),
		DirectoryHandler: handler.NewDirectoryHandler(directory, locales, logger),
		LessonHandler:    handler.NewLessonHandler(lessons, locales, logger),
		NewsHandler:      handler.NewNewsHandler(news, locales, logger),
		UploadHandler:    handler.NewUploadHandler(uploads, locales, logger),
		QuestionHandler:  handler.NewQuestionHandler(questions, locales, logger),
		I18nHandler:      handler.NewI18nHandler(service.NewTranslationService(catalog), preferences, locales, logger),
		EventHandler:     handler.NewEventHandler(events, logger),
		ActivityHandler:  handler.NewActivityHandler(activity, logger),
		SeedHandler:      handler.NewSeedHandler(seed, logger),
		JWTMiddleware:    middleware.JWTProtected(auth),
		HealthProbes:     map[string]handler.Probe{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	})

	return apiHarness{app: app, state: state, storage: storage, events: events}
}

func (h apiHarness) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (h apiHarness) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

// approvedTeacher registers a teacher, approves them as the admin and
// returns the teacher's id and bearer token.
func (h apiHarness) approvedTeacher(t *testing.T, email string) (string, string) {
	t.Helper()
	resp := h.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"first_name": "Ada", "last_name": "Lovelace", "email": email, "password": "analytical",
	}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope
	decodeResponse(t, resp, &body)
	var principal struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &principal))

	admin := h.login(t, adminEmail, adminPassword)
	resp = h.do(t, http.MethodPut, "/api/v1/admin/principals/"+principal.ID+"/approval", map[string]bool{"approved": true}, bearer(admin))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	return principal.ID, h.login(t, email, "analytical")
}

func (h apiHarness) multipart(t *testing.T, method, path, token, filename string, content []byte, fields map[string]string) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func decodeData(t *testing.T, resp *http.Response, target interface{}) envelope {
	t.Helper()
	var body envelope
	decodeResponse(t, resp, &body)
	if target != nil {
		require.NoError(t, json.Unmarshal(body.Data, target))
	}
	return body
}
