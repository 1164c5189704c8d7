package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/visualeditor/internal/domain"
	"github.com/Notifuse/visualeditor/internal/domain/mocks"
	apphttp "github.com/Notifuse/visualeditor/internal/http"
	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/dragdrop"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
	"github.com/Notifuse/visualeditor/pkg/properties"
	"github.com/Notifuse/visualeditor/pkg/serializer"
	"github.com/Notifuse/visualeditor/pkg/transform"
)

func setupEditorHandlerTest(t *testing.T) (*mocks.MockEditorService, *logger.TestLogger, string) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	svc := mocks.NewMockEditorService(ctrl)
	log := logger.NewTestLogger(t)
	handler := apphttp.NewEditorHandler(svc, log)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return svc, log, server.URL
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp, decodeBody(t, resp)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sampleState() *domain.SessionState {
	return &domain.SessionState{
		SessionID: "s1",
		DraftID:   "d1",
		Name:      "Welcome",
		Tree:      &doctree.Snapshot{Root: "n1"},
		Gesture:   "idle",
	}
}

func TestEditorHandler_Open(t *testing.T) {
	svc, _, baseURL := setupEditorHandlerTest(t)

	svc.EXPECT().OpenSession(gomock.Any(), domain.OpenSessionRequest{TemplateID: "t1"}).Return(sampleState(), nil)

	resp, body := postJSON(t, baseURL+"/api/editor.open", map[string]string{"template_id": "t1"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	state := body["state"].(map[string]interface{})
	assert.Equal(t, "s1", state["session_id"])
	assert.Equal(t, "n1", state["tree"].(map[string]interface{})["root"])
}

func TestEditorHandler_RequestChecks(t *testing.T) {
	_, _, baseURL := setupEditorHandlerTest(t)

	t.Run("wrong method", func(t *testing.T) {
		resp, body := getJSON(t, baseURL+"/api/editor.undo")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "Method not allowed", body["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, body := postJSON(t, baseURL+"/api/editor.undo", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", body["error"])
	})

	t.Run("validation runs before the service", func(t *testing.T) {
		resp, body := postJSON(t, baseURL+"/api/editor.drag.begin", map[string]interface{}{
			"session_id": "s1",
			"source":     map[string]string{"kind": "palette", "paletteKind": "marquee"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["error"], "marquee")
	})

	t.Run("missing session id", func(t *testing.T) {
		resp, _ := postJSON(t, baseURL+"/api/editor.drag.move", map[string]interface{}{"point": map[string]float64{"x": 1, "y": 2}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp, body := getJSON(t, baseURL+"/api/editor.state")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "session_id is required", body["error"])
	})
}

func TestEditorHandler_DragGesture(t *testing.T) {
	svc, _, baseURL := setupEditorHandlerTest(t)

	svc.EXPECT().BeginDrag(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req domain.BeginDragRequest) (*dragdrop.Snapshot, error) {
			assert.Equal(t, dragdrop.SourcePalette, req.Source.Kind)
			assert.Equal(t, doctree.KindHeading, req.Source.PaletteKind)
			assert.Equal(t, geom.Pt(700, 70), req.Point)
			return &dragdrop.Snapshot{State: "idle", Source: &req.Source, Pointer: req.Point}, nil
		})
	resp, body := postJSON(t, baseURL+"/api/editor.drag.begin", map[string]interface{}{
		"session_id": "s1",
		"source":     map[string]string{"kind": "palette", "paletteKind": "heading"},
		"point":      map[string]float64{"x": 700, "y": 70},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "idle", body["drag"].(map[string]interface{})["state"])

	svc.EXPECT().DragMove(gomock.Any(), domain.PointerRequest{SessionID: "s1", Point: geom.Pt(100, 70), Over: "n1"}).
		Return(&dragdrop.Snapshot{State: "hovering", Target: &dragdrop.Target{ParentID: "n1"}}, nil)
	resp, body = postJSON(t, baseURL+"/api/editor.drag.move", map[string]interface{}{
		"session_id": "s1",
		"point":      map[string]float64{"x": 100, "y": 70},
		"over":       "n1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hovering", body["drag"].(map[string]interface{})["state"])

	svc.EXPECT().AutoScroll(gomock.Any(), "s1").Return(12.0, nil)
	resp, body = postJSON(t, baseURL+"/api/editor.drag.scroll", map[string]string{"session_id": "s1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 12.0, body["step"])

	ended := sampleState()
	ended.Gesture = "cancelled"
	ended.Notices = []dragdrop.Notice{{Level: dragdrop.NoticeWarning, Message: "That element cannot be dropped there"}}
	svc.EXPECT().EndDrag(gomock.Any(), gomock.Any()).Return(ended, nil)
	resp, body = postJSON(t, baseURL+"/api/editor.drag.end", map[string]interface{}{"session_id": "s1", "over": "n1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := body["state"].(map[string]interface{})
	assert.Equal(t, "cancelled", state["gesture"])
	assert.Len(t, state["notices"], 1)
}

func TestEditorHandler_Transform(t *testing.T) {
	svc, _, baseURL := setupEditorHandlerTest(t)

	svc.EXPECT().BeginTransform(gomock.Any(), domain.BeginTransformRequest{
		SessionID: "s1", NodeID: "n2", Handle: transform.HandleRotate, Point: geom.Pt(10, 10),
	}).Return(&transform.Frame{NodeID: "n2", RotationDeg: 0}, nil)
	resp, body := postJSON(t, baseURL+"/api/editor.transform.begin", map[string]interface{}{
		"session_id": "s1", "node_id": "n2", "handle": "rotate", "point": map[string]float64{"x": 10, "y": 10},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "n2", body["frame"].(map[string]interface{})["nodeId"])

	svc.EXPECT().TransformMove(gomock.Any(), gomock.Any()).Return(nil, transform.ErrNoTransform)
	resp, _ = postJSON(t, baseURL+"/api/editor.transform.move", map[string]interface{}{"session_id": "s1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	svc.EXPECT().EndTransform(gomock.Any(), "s1").Return(sampleState(), nil)
	resp, _ = postJSON(t, baseURL+"/api/editor.transform.end", map[string]string{"session_id": "s1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.EXPECT().CancelGesture(gomock.Any(), "s1").Return(sampleState(), nil)
	resp, _ = postJSON(t, baseURL+"/api/editor.cancel", map[string]string{"session_id": "s1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEditorHandler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown session", &domain.ErrSessionNotFound{SessionID: "s1"}, http.StatusNotFound},
		{"gesture in progress", fmt.Errorf("undo: %w", history.ErrGestureInProgress), http.StatusConflict},
		{"empty history", history.ErrNothingToUndo, http.StatusConflict},
		{"unexpected", errors.New("tree corrupted"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, log, baseURL := setupEditorHandlerTest(t)
			svc.EXPECT().Undo(gomock.Any(), "s1").Return(nil, tc.err)

			resp, body := postJSON(t, baseURL+"/api/editor.undo", map[string]string{"session_id": "s1"})
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "Failed to undo", body["error"])
				assert.Len(t, log.Messages("error"), 1)
			} else {
				assert.Equal(t, tc.err.Error(), body["error"])
			}
		})
	}
}

func TestEditorHandler_SelectionAndProperties(t *testing.T) {
	svc, _, baseURL := setupEditorHandlerTest(t)

	svc.EXPECT().Select(gomock.Any(), domain.SelectRequest{SessionID: "s1", Mode: domain.SelectToggle, NodeID: "n2"}).Return(sampleState(), nil)
	resp, _ := postJSON(t, baseURL+"/api/editor.select", map[string]string{"session_id": "s1", "mode": "toggle", "node_id": "n2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.EXPECT().Schema(gomock.Any(), domain.SchemaRequest{SessionID: "s1", NodeID: "n2"}).Return(&properties.Schema{NodeID: "n2", Kind: doctree.KindText}, nil)
	resp, body := getJSON(t, baseURL+"/api/editor.schema?session_id=s1&node_id=n2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["schema"])

	resp, _ = getJSON(t, baseURL+"/api/editor.schema?session_id=s1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	svc.EXPECT().ApplyProperty(gomock.Any(), gomock.Any()).Return(nil,
		&properties.ValueError{Key: "color", Value: "red-ish", Reason: "expected a hex color"})
	resp, body = postJSON(t, baseURL+"/api/editor.apply", map[string]string{"session_id": "s1", "node_id": "n2", "key": "color", "value": "red-ish"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["error"], "expected a hex color")

	svc.EXPECT().Bulk(gomock.Any(), domain.BulkRequest{SessionID: "s1", Operation: domain.BulkAlign, Edge: properties.EdgeLeft}).
		Return(nil, properties.ErrSelectionTooSmall)
	resp, _ = postJSON(t, baseURL+"/api/editor.bulk", map[string]string{"session_id": "s1", "operation": "align", "edge": "left"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestEditorHandler_ExportAndPreview(t *testing.T) {
	svc, _, baseURL := setupEditorHandlerTest(t)

	svc.EXPECT().Export(gomock.Any(), "s1").Return(&domain.ExportResponse{
		Document: &serializer.Document{HTML: "<div></div>", Variables: []string{"first_name"}},
		Page:     "<!DOCTYPE html>",
	}, nil)
	resp, body := getJSON(t, baseURL+"/api/editor.export?session_id=s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<!DOCTYPE html>", body["page"])
	assert.Equal(t, []interface{}{"first_name"}, body["document"].(map[string]interface{})["variables"])

	svc.EXPECT().Preview(gomock.Any(), domain.PreviewRequest{SessionID: "s1", Data: map[string]interface{}{"first_name": "Ada"}}).
		Return("<p>Hello Ada</p>", nil)
	resp, body = postJSON(t, baseURL+"/api/editor.preview", map[string]interface{}{"session_id": "s1", "data": map[string]string{"first_name": "Ada"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>Hello Ada</p>", body["html"])
}

func TestEditorHandler_Save(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, _, baseURL := setupEditorHandlerTest(t)
		saved := sampleState()
		saved.Saved = true
		saved.TemplateID = "t9"
		svc.EXPECT().Save(gomock.Any(), domain.SaveRequest{SessionID: "s1", Name: "Promo"}).Return(saved, nil)

		resp, body := postJSON(t, baseURL+"/api/editor.save", map[string]string{"session_id": "s1", "name": "Promo"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["state"].(map[string]interface{})["saved"])
	})

	t.Run("backend rejection", func(t *testing.T) {
		svc, _, baseURL := setupEditorHandlerTest(t)
		svc.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil,
			fmt.Errorf("failed to save template: %w", &domain.SaveError{StatusCode: 419, Message: "CSRF token mismatch."}))

		resp, body := postJSON(t, baseURL+"/api/editor.save", map[string]string{"session_id": "s1"})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, float64(419), body["backend_status"])
		assert.Equal(t, false, body["retryable"])
	})

	t.Run("backend unreachable", func(t *testing.T) {
		svc, log, baseURL := setupEditorHandlerTest(t)
		svc.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

		resp, body := postJSON(t, baseURL+"/api/editor.save", map[string]string{"session_id": "s1"})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "Failed to reach the templates backend", body["error"])
		assert.Equal(t, []string{"Failed to save template"}, log.Messages("error"))
	})
}

func TestEditorHandler_Templates(t *testing.T) {
	svc, _, baseURL := setupEditorHandlerTest(t)

	svc.EXPECT().ListTemplates(gomock.Any()).Return([]domain.TemplateSummary{{ID: "t1", Name: "Welcome"}}, nil)
	resp, body := getJSON(t, baseURL+"/api/templates.list")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["templates"], 1)

	svc.EXPECT().DuplicateTemplate(gomock.Any(), "t1").Return(&domain.TemplateSummary{ID: "t2", Name: "Welcome (copy)"}, nil)
	resp, body = postJSON(t, baseURL+"/api/templates.duplicate", map[string]string{"id": "t1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "t2", body["template"].(map[string]interface{})["id"])

	resp, _ = postJSON(t, baseURL+"/api/templates.delete", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	svc.EXPECT().DeleteTemplate(gomock.Any(), "t2").Return(&domain.ErrNotFound{Entity: "template", ID: "t2"})
	resp, _ = postJSON(t, baseURL+"/api/templates.delete", map[string]string{"id": "t2"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	svc.EXPECT().CloseSession(gomock.Any(), "s1").Return(nil)
	resp, body = postJSON(t, baseURL+"/api/editor.close", map[string]string{"session_id": "s1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	svc.EXPECT().ReportLayout(gomock.Any(), gomock.Any()).Return(nil)
	resp, _ = postJSON(t, baseURL+"/api/editor.layout", map[string]interface{}{
		"session_id": "s1",
		"layout":     map[string]interface{}{"viewport": map[string]float64{"width": 800, "height": 600}},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	svc.EXPECT().Redo(gomock.Any(), "s1").Return(sampleState(), nil)
	svc.EXPECT().State(gomock.Any(), "s1").Return(sampleState(), nil)
	resp, _ = postJSON(t, baseURL+"/api/editor.redo", map[string]string{"session_id": "s1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = getJSON(t, baseURL+"/api/editor.state?session_id=s1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
