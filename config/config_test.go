package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Environment: "development"}
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg = &Config{Environment: "production"}
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())

	cfg = &Config{Environment: "staging"}
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		require.NoError(t, os.Setenv(k, v))
	}
	t.Cleanup(func() {
		for k := range vars {
			_ = os.Unsetenv(k)
		}
	})
}

func TestLoadWithOptions(t *testing.T) {
	t.Run("reads environment variables", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TEMPLATES_API_URL":        "https://templates.example.com/api/",
			"TEMPLATES_API_TIMEOUT":    "3s",
			"CSRF_TOKEN":               "csrf-123",
			"SERVER_PORT":              "9000",
			"SERVER_HOST":              "127.0.0.1",
			"CORS_ALLOW_ORIGIN":        "https://editor.example.com",
			"DB_HOST":                  "testhost",
			"DB_USER":                  "testuser",
			"DB_NAME":                  "editor_test",
			"ENVIRONMENT":              "development",
			"EDITOR_HISTORY_LIMIT":     "20",
			"EDITOR_DRAG_THRESHOLD":    "8",
			"EDITOR_AUTOSAVE_INTERVAL": "1m",
			"TRACING_ENABLED":          "true",
			"TRACING_TRACE_EXPORTER":   "jaeger",
			"TRACING_JAEGER_ENDPOINT":  "http://jaeger:14268/api/traces",
		})

		cfg, err := LoadWithOptions(LoadOptions{})
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, "https://editor.example.com", cfg.Server.CORSAllowOrigin)
		assert.Equal(t, "testhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "editor_test", cfg.Database.DBName)
		assert.Equal(t, "https://templates.example.com/api", cfg.Backend.TemplatesURL)
		assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "csrf-123", cfg.Backend.CSRFToken)
		assert.Equal(t, 20, cfg.Editor.HistoryLimit)
		assert.Equal(t, 8.0, cfg.Editor.DragThreshold)
		assert.Equal(t, time.Minute, cfg.Editor.AutosaveInterval)
		assert.True(t, cfg.Tracing.Enabled)
		assert.Equal(t, "jaeger", cfg.Tracing.TraceExporter)
		assert.Equal(t, "http://jaeger:14268/api/traces", cfg.Tracing.JaegerEndpoint)
		assert.True(t, cfg.IsDevelopment())
	})

	t.Run("applies defaults", func(t *testing.T) {
		setEnv(t, map[string]string{"TEMPLATES_API_URL": "http://localhost:3000"})

		cfg, err := LoadWithOptions(LoadOptions{})
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, "*", cfg.Server.CORSAllowOrigin)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, 50, cfg.Editor.HistoryLimit)
		assert.Equal(t, 5.0, cfg.Editor.DragThreshold)
		assert.Equal(t, 40.0, cfg.Editor.AutoScrollEdge)
		assert.Equal(t, 12.0, cfg.Editor.AutoScrollSpeed)
		assert.Equal(t, 30*time.Second, cfg.Editor.AutosaveInterval)
		assert.Equal(t, 2*time.Hour, cfg.Editor.SessionTTL)
		assert.Equal(t, 7*24*time.Hour, cfg.Editor.DraftRetention)
		assert.False(t, cfg.Tracing.Enabled)
		assert.Equal(t, "visualeditor", cfg.Tracing.ServiceName)
		assert.Equal(t, 0.1, cfg.Tracing.SamplingProbability)
		assert.Equal(t, "none", cfg.Tracing.TraceExporter)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, VERSION, cfg.Version)
	})

	t.Run("requires the templates url", func(t *testing.T) {
		_, err := LoadWithOptions(LoadOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TEMPLATES_API_URL is required")
	})

	t.Run("rejects an invalid templates url", func(t *testing.T) {
		setEnv(t, map[string]string{"TEMPLATES_API_URL": "not a url"})

		_, err := LoadWithOptions(LoadOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid URL")
	})

	t.Run("rejects a non positive history limit", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TEMPLATES_API_URL":    "http://localhost:3000",
			"EDITOR_HISTORY_LIMIT": "0",
		})

		_, err := LoadWithOptions(LoadOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EDITOR_HISTORY_LIMIT")
	})

	t.Run("missing env file is not an error", func(t *testing.T) {
		setEnv(t, map[string]string{"TEMPLATES_API_URL": "http://localhost:3000"})

		_, err := LoadWithOptions(LoadOptions{EnvFile: ".env.does-not-exist"})
		require.NoError(t, err)
	})
}
