package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/visualeditor/internal/domain"
	"github.com/Notifuse/visualeditor/internal/domain/mocks"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

func newGatewayServer(t *testing.T, handler http.HandlerFunc) (*TemplateGatewayClient, *logger.TestLogger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logger.NewTestLogger(t)
	return NewTemplateGateway(srv.URL+"/", "csrf-token", 5*time.Second, nil, log), log
}

func TestTemplateGateway_List(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/templates", r.URL.Path)
			assert.Empty(t, r.Header.Get("X-CSRF-TOKEN"))
			_, _ = w.Write([]byte(`[
				{"id":"t1","name":"Welcome","updated_at":"2026-10-01T10:00:00Z","category":"onboarding"},
				{"id":"t2","name":"Receipt","updated_at":"2026-10-02T10:00:00Z"}
			]`))
		})

		list, err := gw.List(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "t1", list[0].ID)
		assert.Equal(t, "onboarding", list[0].Category)
		assert.Equal(t, "Receipt", list[1].Name)
		assert.Equal(t, 2026, list[1].UpdatedAt.Year())
	})

	t.Run("wrapped in data", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[{"id":"t1","name":"Welcome","updated_at":"2026-10-01T10:00:00Z"}]}`))
		})

		list, err := gw.List(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Welcome", list[0].Name)
	})

	t.Run("unexpected payload", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		_, err := gw.List(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected templates list payload")
	})
}

func TestTemplateGateway_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/templates/t 1", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"t 1","name":"Welcome","html":"<p>Hi {{first_name}}</p>","css":"p{}","variables":["first_name"]}`))
		})

		tpl, err := gw.Get(context.Background(), "t 1")
		require.NoError(t, err)
		assert.Equal(t, "t 1", tpl.ID)
		assert.Equal(t, "<p>Hi {{first_name}}</p>", tpl.HTML)
		assert.Equal(t, []string{"first_name"}, tpl.Variables)
	})

	t.Run("not found maps to ErrNotFound", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"No query results"}`))
		})

		_, err := gw.Get(context.Background(), "missing")
		var notFound *domain.ErrNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.ID)
	})
}

func TestTemplateGateway_Save(t *testing.T) {
	req := &domain.SaveTemplateRequest{
		Name:      " Welcome ",
		HTML:      "<div class=\"eb-root\"></div>",
		CSS:       ".eb-root{}",
		Config:    json.RawMessage(`{"root":"n1"}`),
		Variables: []string{"first_name"},
	}

	t.Run("create posts the body with the csrf header", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/templates", r.URL.Path)
			assert.Equal(t, "csrf-token", r.Header.Get("X-CSRF-TOKEN"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"name":"Welcome","html":"<div class=\"eb-root\"></div>","css":".eb-root{}","config":{"root":"n1"},"variables":["first_name"]}`, string(body))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":"t9","name":"Welcome"}}`))
		})

		tpl, err := gw.Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "t9", tpl.ID)
	})

	t.Run("update uses put and tolerates an empty body", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/templates/t9", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		tpl, err := gw.Update(context.Background(), "t9", req)
		require.NoError(t, err)
		assert.NotNil(t, tpl)
	})

	t.Run("invalid request never reaches the backend", func(t *testing.T) {
		gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be called")
		})

		_, err := gw.Create(context.Background(), &domain.SaveTemplateRequest{Name: "x"})
		var vErr domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Message, "html is required")
	})

	statusCases := []struct {
		name      string
		status    int
		body      string
		message   string
		retryable bool
	}{
		{"csrf mismatch", 419, `{"message":"CSRF token mismatch."}`, "CSRF token mismatch.", false},
		{"validation bag", http.StatusUnprocessableEntity, `{"errors":{"name":["The name has already been taken."]}}`, "name: The name has already been taken.", false},
		{"server error", http.StatusInternalServerError, `oops`, "oops", true},
		{"throttled", http.StatusTooManyRequests, `{"error":"slow down"}`, "slow down", true},
		{"forbidden", http.StatusForbidden, `{}`, "", false},
	}
	for _, tc := range statusCases {
		t.Run(tc.name, func(t *testing.T) {
			gw, log := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := gw.Create(context.Background(), req)
			var saveErr *domain.SaveError
			require.ErrorAs(t, err, &saveErr)
			assert.Equal(t, tc.status, saveErr.StatusCode)
			assert.Equal(t, tc.message, saveErr.Message)
			assert.Equal(t, tc.retryable, saveErr.Retryable())
			assert.Len(t, log.Messages("warn"), 1)
		})
	}
}

func TestTemplateGateway_DuplicateAndDelete(t *testing.T) {
	var calls []string
	gw, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		assert.Equal(t, "csrf-token", r.Header.Get("X-CSRF-TOKEN"))
		if strings.HasSuffix(r.URL.Path, "/duplicate") {
			_, _ = w.Write([]byte(`{"id":"t2","name":"Welcome (copy)","updated_at":"2026-10-03T00:00:00Z"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	summary, err := gw.Duplicate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t2", summary.ID)
	assert.Equal(t, "Welcome (copy)", summary.Name)

	require.NoError(t, gw.Delete(context.Background(), "t2"))
	assert.Equal(t, []string{"POST /templates/t1/duplicate", "DELETE /templates/t2"}, calls)
}

func TestTemplateGateway_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockHTTPClient(ctrl)
	client.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	log := logger.NewTestLogger(t)
	gw := NewTemplateGateway("http://templates.local", "", time.Second, client, log)

	err := gw.Delete(context.Background(), "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	var saveErr *domain.SaveError
	assert.False(t, errors.As(err, &saveErr))
	assert.Equal(t, []string{"Templates backend request failed"}, log.Messages("error"))
}
