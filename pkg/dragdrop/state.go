package dragdrop

import (
	"errors"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
)

var (
	// ErrGestureInFlight is returned when a pointer-down arrives while a
	// gesture is still running
	ErrGestureInFlight = errors.New("a drag gesture is already in progress")
	// ErrNoGesture is returned for move/up/cancel events without a gesture
	ErrNoGesture = errors.New("no drag gesture in progress")
)

// State of the drag gesture
type State int

const (
	StateIdle State = iota
	StateDragging
	StateHovering
	StateCommitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateHovering:
		return "hovering"
	case StateCommitted:
		return "committed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the gesture has ended
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// SourceKind tells where the dragged thing comes from
type SourceKind string

const (
	SourcePalette SourceKind = "palette"
	SourceNode    SourceKind = "node"
)

// Source is the thing being dragged
type Source struct {
	Kind        SourceKind     `json:"kind"`
	PaletteKind doctree.Kind   `json:"paletteKind,omitempty"`
	NodeID      doctree.NodeID `json:"nodeId,omitempty"`
	// GrabOffset is the pointer position relative to the dragged element's
	// top-left corner at pointer-down
	GrabOffset geom.Point `json:"grabOffset"`
}

// PointerEvent is a pointer sample from the view. Over is the deepest node
// under the pointer as hit-tested by the view, empty outside the canvas.
type PointerEvent struct {
	Point geom.Point     `json:"point"`
	Over  doctree.NodeID `json:"over,omitempty"`
}

// Target is the drop destination resolved while hovering
type Target struct {
	ParentID   doctree.NodeID `json:"parentId"`
	Index      int            `json:"index"`
	Free       bool           `json:"free"`
	Position   geom.Point     `json:"position"`
	IndicatorY float64        `json:"indicatorY"`
}

// NoticeLevel is the severity of a transient user-visible notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is shown to the user for a short time
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Snapshot is the observable gesture state for the view
type Snapshot struct {
	State      string     `json:"state"`
	Source     *Source    `json:"source,omitempty"`
	Target     *Target    `json:"target,omitempty"`
	Pointer    geom.Point `json:"pointer"`
	ScrollStep float64    `json:"scrollStep"`
}
