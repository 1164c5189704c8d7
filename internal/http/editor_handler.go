package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Notifuse/visualeditor/internal/domain"
	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/logger"
	"github.com/Notifuse/visualeditor/pkg/tracing"
)

type EditorHandler struct {
	service domain.EditorService
	logger  logger.Logger
}

func NewEditorHandler(service domain.EditorService, logger logger.Logger) *EditorHandler {
	return &EditorHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EditorHandler) RegisterRoutes(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"/api/editor.open":            h.handleOpen,
		"/api/editor.close":           h.handleClose,
		"/api/editor.state":           h.handleState,
		"/api/editor.layout":          h.handleLayout,
		"/api/editor.drag.begin":      h.handleDragBegin,
		"/api/editor.drag.move":       h.handleDragMove,
		"/api/editor.drag.end":        h.handleDragEnd,
		"/api/editor.drag.scroll":     h.handleDragScroll,
		"/api/editor.transform.begin": h.handleTransformBegin,
		"/api/editor.transform.move":  h.handleTransformMove,
		"/api/editor.transform.end":   h.handleTransformEnd,
		"/api/editor.cancel":          h.handleCancel,
		"/api/editor.select":          h.handleSelect,
		"/api/editor.schema":          h.handleSchema,
		"/api/editor.apply":           h.handleApply,
		"/api/editor.bulk":            h.handleBulk,
		"/api/editor.undo":            h.handleUndo,
		"/api/editor.redo":            h.handleRedo,
		"/api/editor.export":          h.handleExport,
		"/api/editor.preview":         h.handlePreview,
		"/api/editor.save":            h.handleSave,
		"/api/templates.list":         h.handleTemplatesList,
		"/api/templates.duplicate":    h.handleTemplatesDuplicate,
		"/api/templates.delete":       h.handleTemplatesDelete,
	}
	for path, fn := range routes {
		mux.Handle(path, instrument(path[len("/api/"):], fn))
	}
}

// statusWriter remembers the status written by a handler
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument records the operation count and latency of a route
func instrument(operation string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		outcome := tracing.OutcomeOK
		switch {
		case sw.status >= 500:
			outcome = tracing.OutcomeError
		case sw.status >= 400:
			outcome = tracing.OutcomeRejected
		}
		tracing.RecordOperation(r.Context(), operation, outcome, started)
	})
}

// decode reads a POST body into req. It answers the request itself and
// returns false when the method or the body is wrong.
func (h *EditorHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Failed to decode request body")
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if v, ok := req.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return false
		}
	}
	return true
}

// sessionQuery reads session_id from a GET request
func sessionQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	id := r.URL.Query().Get("session_id")
	if id == "" {
		WriteJSONError(w, "session_id is required", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func requireSessionID(w http.ResponseWriter, id string) bool {
	if id == "" {
		WriteJSONError(w, "session_id is required", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *EditorHandler) writeState(w http.ResponseWriter, st *domain.SessionState, err error, fallback string) {
	if err != nil {
		writeServiceError(w, h.logger, err, fallback)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": st,
	})
}

func (h *EditorHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req domain.OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	st, err := h.service.OpenSession(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to open editor session")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"state": st,
	})
}

func (h *EditorHandler) handleClose(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.CloseSession(r.Context(), req.SessionID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to close editor session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *EditorHandler) handleState(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionQuery(w, r)
	if !ok {
		return
	}
	st, err := h.service.State(r.Context(), id)
	h.writeState(w, st, err, "Failed to get editor state")
}

func (h *EditorHandler) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req domain.LayoutRequest
	if !h.decode(w, r, &req) || !requireSessionID(w, req.SessionID) {
		return
	}

	if err := h.service.ReportLayout(r.Context(), req); err != nil {
		writeServiceError(w, h.logger, err, "Failed to report layout")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *EditorHandler) handleDragBegin(w http.ResponseWriter, r *http.Request) {
	var req domain.BeginDragRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.service.BeginDrag(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to begin drag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"drag": snap,
	})
}

func (h *EditorHandler) handleDragMove(w http.ResponseWriter, r *http.Request) {
	var req domain.PointerRequest
	if !h.decode(w, r, &req) || !requireSessionID(w, req.SessionID) {
		return
	}

	snap, err := h.service.DragMove(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to move drag")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"drag": snap,
	})
}

func (h *EditorHandler) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	var req domain.PointerRequest
	if !h.decode(w, r, &req) || !requireSessionID(w, req.SessionID) {
		return
	}
	st, err := h.service.EndDrag(r.Context(), req)
	h.writeState(w, st, err, "Failed to end drag")
}

func (h *EditorHandler) handleDragScroll(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	step, err := h.service.AutoScroll(r.Context(), req.SessionID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to auto-scroll")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"step": step,
	})
}

func (h *EditorHandler) handleTransformBegin(w http.ResponseWriter, r *http.Request) {
	var req domain.BeginTransformRequest
	if !h.decode(w, r, &req) {
		return
	}

	frame, err := h.service.BeginTransform(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to begin transform")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame": frame,
	})
}

func (h *EditorHandler) handleTransformMove(w http.ResponseWriter, r *http.Request) {
	var req domain.PointerRequest
	if !h.decode(w, r, &req) || !requireSessionID(w, req.SessionID) {
		return
	}

	frame, err := h.service.TransformMove(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to move transform")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frame": frame,
	})
}

func (h *EditorHandler) handleTransformEnd(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.EndTransform(r.Context(), req.SessionID)
	h.writeState(w, st, err, "Failed to end transform")
}

func (h *EditorHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.CancelGesture(r.Context(), req.SessionID)
	h.writeState(w, st, err, "Failed to cancel gesture")
}

func (h *EditorHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req domain.SelectRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.Select(r.Context(), req)
	h.writeState(w, st, err, "Failed to update selection")
}

func (h *EditorHandler) handleSchema(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionQuery(w, r)
	if !ok {
		return
	}
	nodeID := r.URL.Query().Get("node_id")
	if nodeID == "" {
		WriteJSONError(w, "node_id is required", http.StatusBadRequest)
		return
	}

	schema, err := h.service.Schema(r.Context(), domain.SchemaRequest{SessionID: id, NodeID: doctree.NodeID(nodeID)})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get property schema")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schema": schema,
	})
}

func (h *EditorHandler) handleApply(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplyPropertyRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.ApplyProperty(r.Context(), req)
	h.writeState(w, st, err, "Failed to apply property")
}

func (h *EditorHandler) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.Bulk(r.Context(), req)
	h.writeState(w, st, err, "Failed to run bulk operation")
}

func (h *EditorHandler) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.Undo(r.Context(), req.SessionID)
	h.writeState(w, st, err, "Failed to undo")
}

func (h *EditorHandler) handleRedo(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.Redo(r.Context(), req.SessionID)
	h.writeState(w, st, err, "Failed to redo")
}

func (h *EditorHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionQuery(w, r)
	if !ok {
		return
	}

	out, err := h.service.Export(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to export document")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EditorHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req domain.PreviewRequest
	if !h.decode(w, r, &req) || !requireSessionID(w, req.SessionID) {
		return
	}

	page, err := h.service.Preview(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to render preview")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"html": page,
	})
}

func (h *EditorHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveRequest
	if !h.decode(w, r, &req) || !requireSessionID(w, req.SessionID) {
		return
	}

	st, err := h.service.Save(r.Context(), req)
	if err != nil {
		// a save the backend never answered is still a gateway failure
		if StatusFor(err) == http.StatusInternalServerError {
			h.logger.WithField("error", err.Error()).Error("Failed to save template")
			WriteJSONError(w, "Failed to reach the templates backend", http.StatusBadGateway)
			return
		}
		writeServiceError(w, h.logger, err, "Failed to save template")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": st,
	})
}

func (h *EditorHandler) handleTemplatesList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to list templates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
	})
}

type templateIDRequest struct {
	ID string `json:"id"`
}

func (r *templateIDRequest) Validate() error {
	if r.ID == "" {
		return domain.NewValidationError("id is required")
	}
	return nil
}

func (h *EditorHandler) handleTemplatesDuplicate(w http.ResponseWriter, r *http.Request) {
	var req templateIDRequest
	if !h.decode(w, r, &req) {
		return
	}

	summary, err := h.service.DuplicateTemplate(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to duplicate template")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"template": summary,
	})
}

func (h *EditorHandler) handleTemplatesDelete(w http.ResponseWriter, r *http.Request) {
	var req templateIDRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, err, "Failed to delete template")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
