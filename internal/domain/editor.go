package domain

import (
	"context"
	"fmt"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/dragdrop"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/properties"
	"github.com/Notifuse/visualeditor/pkg/serializer"
	"github.com/Notifuse/visualeditor/pkg/transform"
)

//go:generate mockgen -destination mocks/mock_editor_service.go -package mocks github.com/Notifuse/visualeditor/internal/domain EditorService

// SessionState is what the view needs to redraw after an operation
type SessionState struct {
	SessionID  string            `json:"session_id"`
	TemplateID string            `json:"template_id,omitempty"`
	DraftID    string            `json:"draft_id"`
	Name       string            `json:"name"`
	Tree       *doctree.Snapshot `json:"tree"`
	Selection  []doctree.NodeID  `json:"selection"`
	CanUndo    bool              `json:"can_undo"`
	CanRedo    bool              `json:"can_redo"`
	Saved      bool              `json:"saved"`
	SaveError  string            `json:"save_error,omitempty"`
	Gesture    string            `json:"gesture"`
	Canvas     string            `json:"canvas"`
	Notices    []dragdrop.Notice `json:"notices,omitempty"`
}

// ExportResponse holds the exported document and its full HTML page
type ExportResponse struct {
	Document *serializer.Document `json:"document"`
	Page     string               `json:"page"`
}

type OpenSessionRequest struct {
	TemplateID string `json:"template_id,omitempty"`
	DraftID    string `json:"draft_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// SessionRequest addresses an operation without arguments
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

func (r *SessionRequest) Validate() error {
	if r.SessionID == "" {
		return NewValidationError("session_id is required")
	}
	return nil
}

type LayoutRequest struct {
	SessionID string            `json:"session_id"`
	Layout    geom.LayoutReport `json:"layout"`
}

type BeginDragRequest struct {
	SessionID string          `json:"session_id"`
	Source    dragdrop.Source `json:"source"`
	Point     geom.Point      `json:"point"`
}

func (r *BeginDragRequest) Validate() error {
	if r.SessionID == "" {
		return NewValidationError("session_id is required")
	}
	switch r.Source.Kind {
	case dragdrop.SourcePalette:
		if !r.Source.PaletteKind.Valid() {
			return NewValidationError(fmt.Sprintf("unknown palette kind %q", r.Source.PaletteKind))
		}
	case dragdrop.SourceNode:
		if r.Source.NodeID == "" {
			return NewValidationError("source node_id is required")
		}
	default:
		return NewValidationError(fmt.Sprintf("invalid source kind %q", r.Source.Kind))
	}
	return nil
}

// PointerRequest carries one pointer event of a running gesture
type PointerRequest struct {
	SessionID string         `json:"session_id"`
	Point     geom.Point     `json:"point"`
	Over      doctree.NodeID `json:"over,omitempty"`
}

type BeginTransformRequest struct {
	SessionID string           `json:"session_id"`
	NodeID    doctree.NodeID   `json:"node_id"`
	Handle    transform.Handle `json:"handle"`
	Point     geom.Point       `json:"point"`
}

func (r *BeginTransformRequest) Validate() error {
	if r.SessionID == "" {
		return NewValidationError("session_id is required")
	}
	if r.NodeID == "" {
		return NewValidationError("node_id is required")
	}
	if r.Handle == "" {
		return NewValidationError("handle is required")
	}
	return nil
}

// SelectMode says how a select call changes the selection
type SelectMode string

const (
	SelectSingle SelectMode = "single"
	SelectToggle SelectMode = "toggle"
	SelectRange  SelectMode = "range"
	SelectAll    SelectMode = "all"
	SelectClear  SelectMode = "clear"
)

type SelectRequest struct {
	SessionID string         `json:"session_id"`
	Mode      SelectMode     `json:"mode"`
	NodeID    doctree.NodeID `json:"node_id,omitempty"`
	ToNodeID  doctree.NodeID `json:"to_node_id,omitempty"`
}

func (r *SelectRequest) Validate() error {
	if r.SessionID == "" {
		return NewValidationError("session_id is required")
	}
	switch r.Mode {
	case SelectSingle, SelectToggle:
		if r.NodeID == "" {
			return NewValidationError("node_id is required")
		}
	case SelectRange:
		if r.NodeID == "" || r.ToNodeID == "" {
			return NewValidationError("node_id and to_node_id are required")
		}
	case SelectAll, SelectClear:
	default:
		return NewValidationError(fmt.Sprintf("invalid select mode %q", r.Mode))
	}
	return nil
}

type SchemaRequest struct {
	SessionID string         `json:"session_id"`
	NodeID    doctree.NodeID `json:"node_id"`
}

type ApplyPropertyRequest struct {
	SessionID string         `json:"session_id"`
	NodeID    doctree.NodeID `json:"node_id"`
	Key       string         `json:"key"`
	Value     string         `json:"value"`
}

func (r *ApplyPropertyRequest) Validate() error {
	if r.SessionID == "" {
		return NewValidationError("session_id is required")
	}
	if r.NodeID == "" {
		return NewValidationError("node_id is required")
	}
	if r.Key == "" {
		return NewValidationError("key is required")
	}
	return nil
}

// BulkOperation is one of the multi-selection operations
type BulkOperation string

const (
	BulkAlign      BulkOperation = "align"
	BulkDistribute BulkOperation = "distribute"
	BulkDuplicate  BulkOperation = "duplicate"
	BulkDelete     BulkOperation = "delete"
)

type BulkRequest struct {
	SessionID string          `json:"session_id"`
	Operation BulkOperation   `json:"operation"`
	Edge      properties.Edge `json:"edge,omitempty"`
	Axis      properties.Axis `json:"axis,omitempty"`
}

func (r *BulkRequest) Validate() error {
	if r.SessionID == "" {
		return NewValidationError("session_id is required")
	}
	switch r.Operation {
	case BulkAlign:
		if r.Edge == "" {
			return NewValidationError("edge is required for align")
		}
	case BulkDistribute:
		if r.Axis == "" {
			return NewValidationError("axis is required for distribute")
		}
	case BulkDuplicate, BulkDelete:
	default:
		return NewValidationError(fmt.Sprintf("invalid bulk operation %q", r.Operation))
	}
	return nil
}

type PreviewRequest struct {
	SessionID string                 `json:"session_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

type SaveRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
}

// EditorService runs editing sessions on behalf of the HTTP API
type EditorService interface {
	OpenSession(ctx context.Context, req OpenSessionRequest) (*SessionState, error)
	CloseSession(ctx context.Context, sessionID string) error
	State(ctx context.Context, sessionID string) (*SessionState, error)
	ReportLayout(ctx context.Context, req LayoutRequest) error

	BeginDrag(ctx context.Context, req BeginDragRequest) (*dragdrop.Snapshot, error)
	DragMove(ctx context.Context, req PointerRequest) (*dragdrop.Snapshot, error)
	EndDrag(ctx context.Context, req PointerRequest) (*SessionState, error)
	AutoScroll(ctx context.Context, sessionID string) (float64, error)
	CancelGesture(ctx context.Context, sessionID string) (*SessionState, error)

	BeginTransform(ctx context.Context, req BeginTransformRequest) (*transform.Frame, error)
	TransformMove(ctx context.Context, req PointerRequest) (*transform.Frame, error)
	EndTransform(ctx context.Context, sessionID string) (*SessionState, error)

	Select(ctx context.Context, req SelectRequest) (*SessionState, error)
	Schema(ctx context.Context, req SchemaRequest) (*properties.Schema, error)
	ApplyProperty(ctx context.Context, req ApplyPropertyRequest) (*SessionState, error)
	Bulk(ctx context.Context, req BulkRequest) (*SessionState, error)

	Undo(ctx context.Context, sessionID string) (*SessionState, error)
	Redo(ctx context.Context, sessionID string) (*SessionState, error)

	Export(ctx context.Context, sessionID string) (*ExportResponse, error)
	Preview(ctx context.Context, req PreviewRequest) (string, error)
	Save(ctx context.Context, req SaveRequest) (*SessionState, error)

	ListTemplates(ctx context.Context) ([]TemplateSummary, error)
	DuplicateTemplate(ctx context.Context, id string) (*TemplateSummary, error)
	DeleteTemplate(ctx context.Context, id string) error
}
