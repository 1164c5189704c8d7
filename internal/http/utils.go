package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Notifuse/visualeditor/internal/domain"
	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/dragdrop"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
	"github.com/Notifuse/visualeditor/pkg/properties"
	"github.com/Notifuse/visualeditor/pkg/transform"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// rejections are edits the document model refuses. The session is
// unchanged, so the client may correct the input and retry.
var rejections = []error{
	doctree.ErrInvalidPlacement,
	doctree.ErrSchemaMismatch,
	doctree.ErrUnknownNodeReference,
	properties.ErrInvalidValue,
	properties.ErrSelectionTooSmall,
	properties.ErrUnknownEdge,
	properties.ErrUnknownAxis,
	transform.ErrUnknownHandle,
	transform.ErrNotRotatable,
	transform.ErrNoLayout,
}

// conflicts are requests that do not fit the current gesture or history state
var conflicts = []error{
	history.ErrGestureInProgress,
	history.ErrNothingToUndo,
	history.ErrNothingToRedo,
	dragdrop.ErrGestureInFlight,
	dragdrop.ErrNoGesture,
	transform.ErrTransformActive,
	transform.ErrNoTransform,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StatusFor maps a service error to its HTTP status
func StatusFor(err error) int {
	var (
		validationErr domain.ValidationError
		notFound      *domain.ErrNotFound
		noSession     *domain.ErrSessionNotFound
		saveErr       *domain.SaveError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &noSession):
		return http.StatusNotFound
	case errors.As(err, &saveErr):
		return http.StatusBadGateway
	case isAny(err, rejections):
		return http.StatusUnprocessableEntity
	case isAny(err, conflicts):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError answers with the status StatusFor picks. Backend save
// failures carry the backend status so the client can tell CSRF and
// validation problems from outages. Unexpected errors are logged and hidden
// behind fallback.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error, fallback string) {
	status := StatusFor(err)

	var saveErr *domain.SaveError
	if errors.As(err, &saveErr) {
		writeJSON(w, status, map[string]interface{}{
			"error":          saveErr.Error(),
			"backend_status": saveErr.StatusCode,
			"retryable":      saveErr.Retryable(),
		})
		return
	}

	if status == http.StatusInternalServerError {
		log.WithField("error", err.Error()).Error(fallback)
		WriteJSONError(w, fallback, status)
		return
	}
	WriteJSONError(w, err.Error(), status)
}
