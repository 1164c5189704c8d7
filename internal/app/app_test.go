package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/visualeditor/config"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

func createTestConfig(templatesURL string) *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "debug",
		Version:     "test",
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			CORSAllowOrigin: "https://editor.example.com",
		},
		Database: config.DatabaseConfig{
			Host:   "localhost",
			Port:   5432,
			User:   "postgres_test",
			DBName: "visualeditor_test",
		},
		Backend: config.BackendConfig{
			TemplatesURL: templatesURL,
			Timeout:      time.Second,
			CSRFToken:    "csrf-test",
		},
		Editor: config.EditorConfig{
			HistoryLimit:     10,
			AutosaveInterval: time.Hour,
			SessionTTL:       time.Hour,
			DraftRetention:   24 * time.Hour,
		},
	}
}

func setupTestDBMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewApp(t *testing.T) {
	db, _ := setupTestDBMock(t)
	log := logger.NewTestLogger(t)
	cfg := createTestConfig("http://templates.test")

	a := NewApp(cfg, WithMockDB(db), WithLogger(log))

	assert.Same(t, cfg, a.GetConfig())
	assert.Same(t, db, a.GetDB())
	assert.Equal(t, log, a.GetLogger())
	assert.NotNil(t, a.GetMux())
	assert.NotNil(t, a.GetShutdownContext())
	assert.False(t, a.IsServerCreated())
	assert.Zero(t, a.GetActiveRequestCount())
}

func TestInitOrder(t *testing.T) {
	cfg := createTestConfig("http://templates.test")
	log := logger.NewTestLogger(t)

	a := NewApp(cfg, WithLogger(log)).(*App)
	assert.ErrorContains(t, a.InitRepositories(), "database must be initialized")
	assert.ErrorContains(t, a.InitServices(), "repositories must be initialized")
	assert.ErrorContains(t, a.InitHandlers(), "services must be initialized")
}

func TestInitTracing_RejectsUnknownExporter(t *testing.T) {
	cfg := createTestConfig("http://templates.test")
	cfg.Tracing = config.TracingConfig{Enabled: true, TraceExporter: "carrier-pigeon"}

	a := NewApp(cfg, WithLogger(logger.NewTestLogger(t)))
	err := a.InitTracing()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize tracing")
}

func TestInitialize_ServesEditorRoutes(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/templates", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"t1","name":"Welcome"}]}`))
	}))
	defer backend.Close()

	db, mock := setupTestDBMock(t)
	log := logger.NewTestLogger(t)
	a := NewApp(createTestConfig(backend.URL+"/api"), WithMockDB(db), WithLogger(log), WithHTTPClient(backend.Client()))

	require.NoError(t, a.Initialize())
	require.NotNil(t, a.GetEditorService())

	srv := httptest.NewServer(a.GetMux())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/editor.open", "application/json", strings.NewReader(`{"name":"Spring promo"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var opened struct {
		State struct {
			SessionID string `json:"session_id"`
			Name      string `json:"name"`
		} `json:"state"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opened))
	assert.NotEmpty(t, opened.State.SessionID)
	assert.Equal(t, "Spring promo", opened.State.Name)
	assert.Equal(t, 1, a.GetEditorService().Sessions())

	resp, err = http.Get(srv.URL + "/api/templates.list")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["sessions"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartAndShutdown(t *testing.T) {
	db, mock := setupTestDBMock(t)
	mock.ExpectExec("DELETE FROM editor_drafts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	log := logger.NewTestLogger(t)
	a := NewApp(createTestConfig("http://templates.test"), WithMockDB(db), WithLogger(log))
	a.SetShutdownTimeout(5 * time.Second)
	require.NoError(t, a.Initialize())

	errCh := make(chan error, 1)
	go func() { errCh <- a.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.True(t, a.WaitForServerStart(ctx))

	require.NoError(t, a.Shutdown(context.Background()))

	select {
	case err := <-errCh:
		assert.True(t, IsServerClosed(err), "unexpected start error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}

	assert.Contains(t, log.Messages("info"), "Final autosave completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGracefulShutdownMiddleware(t *testing.T) {
	a := NewApp(createTestConfig("http://templates.test"), WithLogger(logger.NewTestLogger(t))).(*App)

	var seen int64
	handler := a.gracefulShutdownMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = a.GetActiveRequestCount()
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(1), seen)
	assert.Zero(t, a.GetActiveRequestCount())

	a.shutdownCancel()
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestShutdown_WithoutServer(t *testing.T) {
	db, mock := setupTestDBMock(t)
	mock.ExpectClose()

	a := NewApp(createTestConfig("http://templates.test"), WithMockDB(db), WithLogger(logger.NewTestLogger(t)))
	assert.NoError(t, a.Shutdown(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
