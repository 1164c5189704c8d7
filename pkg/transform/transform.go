package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

// MinSize is the smallest width or height a resize can produce
const MinSize = 10.0

// rotateHandleOffset is the distance of the rotation knob above the outline
const rotateHandleOffset = 24.0

var (
	ErrNotRotatable    = errors.New("node cannot be rotated")
	ErrNoLayout        = errors.New("node has no measured box")
	ErrNoTransform     = errors.New("no transform in progress")
	ErrTransformActive = errors.New("a transform is already in progress")
	ErrUnknownHandle   = errors.New("unknown resize handle")
)

// Handle identifies a grip on the selection overlay
type Handle string

const (
	HandleN      Handle = "n"
	HandleS      Handle = "s"
	HandleE      Handle = "e"
	HandleW      Handle = "w"
	HandleNE     Handle = "ne"
	HandleNW     Handle = "nw"
	HandleSE     Handle = "se"
	HandleSW     Handle = "sw"
	HandleRotate Handle = "rotate"
)

// ResizeHandles lists the eight resize grips clockwise from the top-left
var ResizeHandles = []Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

func (h Handle) valid() bool {
	for _, r := range ResizeHandles {
		if r == h {
			return true
		}
	}
	return false
}

func (h Handle) north() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) south() bool { return h == HandleS || h == HandleSE || h == HandleSW }
func (h Handle) east() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) west() bool  { return h == HandleW || h == HandleNW || h == HandleSW }

// Frame is the overlay to draw for the current pointer position
type Frame struct {
	NodeID      doctree.NodeID        `json:"nodeId"`
	Outline     geom.Rect             `json:"outline"`
	Handles     map[Handle]geom.Point `json:"handles"`
	RotationDeg float64               `json:"rotationDeg"`
	Transform   string                `json:"transform,omitempty"`
}

type mode int

const (
	modeIdle mode = iota
	modeResize
	modeRotate
)

// Engine runs resize and rotate gestures on one node at a time
type Engine struct {
	tree    *doctree.Tree
	history *history.Manager
	logger  logger.Logger
	layout  geom.LayoutReport

	mode      mode
	nodeID    doctree.NodeID
	handle    Handle
	start     geom.Point
	startRect geom.Rect
	context   *geom.Rect
	before    *doctree.Node
	angle0    float64
	current   geom.Rect
}

// NewEngine creates a transform engine bound to tree and its history
func NewEngine(tree *doctree.Tree, h *history.Manager, l logger.Logger) *Engine {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Engine{tree: tree, history: h, logger: l}
}

// SetLayout stores the latest boxes measured by the view
func (e *Engine) SetLayout(report geom.LayoutReport) {
	e.layout = report
}

// Active reports whether a resize or rotation is in progress
func (e *Engine) Active() bool {
	return e.mode != modeIdle
}

// Overlay returns the idle overlay for a node: its box and handles
func (e *Engine) Overlay(id doctree.NodeID) (Frame, error) {
	n, err := e.tree.Get(id)
	if err != nil {
		return Frame{}, err
	}
	r, ok := e.layout.Boxes.Rect(string(id))
	if !ok {
		return Frame{}, fmt.Errorf("overlay %s: %w", id, ErrNoLayout)
	}
	return frameFor(n, r), nil
}

func (e *Engine) begin(id doctree.NodeID, p geom.Point) (*doctree.Node, error) {
	if e.Active() {
		return nil, ErrTransformActive
	}
	n, err := e.tree.Get(id)
	if err != nil {
		return nil, err
	}
	if id == e.tree.Root() {
		return nil, fmt.Errorf("transform root: %w", doctree.ErrInvalidPlacement)
	}
	r, ok := e.layout.Boxes.Rect(string(id))
	if !ok {
		return nil, fmt.Errorf("transform %s: %w", id, ErrNoLayout)
	}

	e.context = nil
	if n.Placement.IsFree() {
		if ctx, ok := e.layout.Boxes.Rect(string(n.ParentID)); ok {
			e.context = &ctx
		}
	}
	e.nodeID = id
	e.start = p
	e.startRect = r
	e.current = r
	e.before = n
	return n, nil
}

// BeginResize starts resizing id from handle h
func (e *Engine) BeginResize(id doctree.NodeID, h Handle, p geom.Point) (Frame, error) {
	if !h.valid() {
		return Frame{}, ErrUnknownHandle
	}
	n, err := e.begin(id, p)
	if err != nil {
		return Frame{}, err
	}
	e.mode = modeResize
	e.handle = h
	return frameFor(n, e.current), nil
}

// BeginRotate starts rotating id around the centre of its box
func (e *Engine) BeginRotate(id doctree.NodeID, p geom.Point) (Frame, error) {
	k, ok := e.tree.Kind(id)
	if !ok {
		return Frame{}, fmt.Errorf("rotate %s: %w", id, doctree.ErrUnknownNodeReference)
	}
	if !k.Rotatable() {
		return Frame{}, fmt.Errorf("rotate %s: %w", k, ErrNotRotatable)
	}
	n, err := e.begin(id, p)
	if err != nil {
		return Frame{}, err
	}
	e.mode = modeRotate
	e.handle = HandleRotate
	e.angle0 = geom.AngleDeg(e.startRect.Center(), p)
	return frameFor(n, e.current), nil
}

// Move applies the pointer position to the node and returns the overlay
func (e *Engine) Move(p geom.Point) (Frame, error) {
	switch e.mode {
	case modeResize:
		return e.resize(p)
	case modeRotate:
		return e.rotate(p)
	default:
		return Frame{}, ErrNoTransform
	}
}

func (e *Engine) resize(p geom.Point) (Frame, error) {
	d := p.Sub(e.start)
	r := e.startRect
	h := e.handle

	if h.east() {
		r.Width = e.startRect.Width + d.X
	}
	if h.west() {
		r.X = e.startRect.X + d.X
		r.Width = e.startRect.Width - d.X
	}
	if h.south() {
		r.Height = e.startRect.Height + d.Y
	}
	if h.north() {
		r.Y = e.startRect.Y + d.Y
		r.Height = e.startRect.Height - d.Y
	}

	r = e.enforceMin(r)
	if e.context != nil {
		r = clampInside(r, *e.context)
	}
	e.current = r

	if h.east() || h.west() {
		if err := e.tree.SetAttribute(e.nodeID, "width", px(r.Width)); err != nil {
			return Frame{}, err
		}
	}
	if h.north() || h.south() {
		if err := e.tree.SetAttribute(e.nodeID, "height", px(r.Height)); err != nil {
			return Frame{}, err
		}
	}
	if e.before.Placement.IsFree() && e.context != nil && (h.west() || h.north()) {
		pl := e.before.Placement
		pl.X = geom.Round(r.X-e.context.X, 2)
		pl.Y = geom.Round(r.Y-e.context.Y, 2)
		if err := e.tree.SetPlacement(e.nodeID, pl); err != nil {
			return Frame{}, err
		}
	}

	n, err := e.tree.Get(e.nodeID)
	if err != nil {
		return Frame{}, err
	}
	return frameFor(n, r), nil
}

// enforceMin keeps the opposite edge fixed when the box would get too small
func (e *Engine) enforceMin(r geom.Rect) geom.Rect {
	if r.Width < MinSize {
		if e.handle.west() {
			r.X = e.startRect.X + e.startRect.Width - MinSize
		}
		r.Width = MinSize
	}
	if r.Height < MinSize {
		if e.handle.north() {
			r.Y = e.startRect.Y + e.startRect.Height - MinSize
		}
		r.Height = MinSize
	}
	return r
}

// clampInside trims r so it stays within ctx
func clampInside(r, ctx geom.Rect) geom.Rect {
	if r.X < ctx.X {
		r.Width -= ctx.X - r.X
		r.X = ctx.X
	}
	if r.Y < ctx.Y {
		r.Height -= ctx.Y - r.Y
		r.Y = ctx.Y
	}
	if right := ctx.X + ctx.Width; r.X+r.Width > right {
		r.Width = right - r.X
	}
	if bottom := ctx.Y + ctx.Height; r.Y+r.Height > bottom {
		r.Height = bottom - r.Y
	}
	r.Width = math.Max(r.Width, math.Min(MinSize, ctx.Width))
	r.Height = math.Max(r.Height, math.Min(MinSize, ctx.Height))
	return r
}

func (e *Engine) rotate(p geom.Point) (Frame, error) {
	angle := geom.AngleDeg(e.startRect.Center(), p)
	deg := geom.NormalizeDeg(geom.Round(e.before.RotationDeg+(angle-e.angle0), 2))
	if err := e.tree.SetRotation(e.nodeID, deg); err != nil {
		return Frame{}, err
	}
	n, err := e.tree.Get(e.nodeID)
	if err != nil {
		return Frame{}, err
	}
	return frameFor(n, e.current), nil
}

// End finishes the gesture and records a single history entry. Nothing is
// recorded when the node did not change.
func (e *Engine) End() (*history.Entry, error) {
	if !e.Active() {
		return nil, ErrNoTransform
	}
	defer e.reset()

	after, err := e.tree.Get(e.nodeID)
	if err != nil {
		return nil, err
	}

	if e.mode == modeRotate {
		if after.RotationDeg == e.before.RotationDeg {
			return nil, nil
		}
		change := &history.RotationChange{NodeID: e.nodeID, Old: e.before.RotationDeg, New: after.RotationDeg}
		return e.history.RecordChange(history.EntryRotate, change, e.nodeID), nil
	}

	var changes history.CompositeChange
	if attrs := history.NewAttributeChange(e.nodeID, e.before.Attributes, after.Attributes); !attrs.Empty() {
		changes = append(changes, attrs)
	}
	if after.Placement != e.before.Placement {
		changes = append(changes, &history.PlacementChange{NodeID: e.nodeID, Old: e.before.Placement, New: after.Placement})
	}
	if len(changes) == 0 {
		return nil, nil
	}
	e.logger.WithFields(map[string]interface{}{
		"node_id": string(e.nodeID),
		"handle":  string(e.handle),
	}).Debug("Resize committed")
	return e.history.RecordChange(history.EntryResize, changes, e.nodeID), nil
}

// Cancel puts the node back as it was at the start of the gesture
func (e *Engine) Cancel() error {
	if !e.Active() {
		return ErrNoTransform
	}
	defer e.reset()

	after, err := e.tree.Get(e.nodeID)
	if err != nil {
		return err
	}
	if err := history.NewAttributeChange(e.nodeID, e.before.Attributes, after.Attributes).Revert(e.tree); err != nil {
		return err
	}
	if err := e.tree.SetPlacement(e.nodeID, e.before.Placement); err != nil {
		return err
	}
	return e.tree.SetRotation(e.nodeID, e.before.RotationDeg)
}

func (e *Engine) reset() {
	e.mode = modeIdle
	e.nodeID = ""
	e.handle = ""
	e.before = nil
	e.context = nil
}

func frameFor(n *doctree.Node, r geom.Rect) Frame {
	f := Frame{
		NodeID:      n.ID,
		Outline:     r,
		RotationDeg: n.RotationDeg,
		Handles: map[Handle]geom.Point{
			HandleNW: {X: r.X, Y: r.Y},
			HandleN:  {X: r.MidX(), Y: r.Y},
			HandleNE: {X: r.X + r.Width, Y: r.Y},
			HandleE:  {X: r.X + r.Width, Y: r.MidY()},
			HandleSE: {X: r.X + r.Width, Y: r.Y + r.Height},
			HandleS:  {X: r.MidX(), Y: r.Y + r.Height},
			HandleSW: {X: r.X, Y: r.Y + r.Height},
			HandleW:  {X: r.X, Y: r.MidY()},
		},
	}
	if n.Kind.Rotatable() {
		f.Handles[HandleRotate] = geom.Point{X: r.MidX(), Y: r.Y - rotateHandleOffset}
	}
	if n.RotationDeg != 0 {
		f.Transform = RotateCSS(n.RotationDeg)
	}
	return f
}

// RotateCSS renders a rotation as a CSS transform
func RotateCSS(deg float64) string {
	return fmt.Sprintf("rotate(%sdeg)", formatNumber(deg))
}

func px(v float64) string {
	return fmt.Sprintf("%dpx", int(math.Round(v)))
}

func formatNumber(v float64) string {
	v = geom.Round(v, 2)
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
