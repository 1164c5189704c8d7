package dragdrop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

// DefaultThreshold is the pointer travel in pixels before a press turns
// into a drag
const DefaultThreshold = 5.0

// Config holds the tunables of the engine
type Config struct {
	Threshold       float64
	AutoScrollEdge  float64
	AutoScrollSpeed float64
}

// DefaultConfig returns the stock settings
func DefaultConfig() Config {
	return Config{
		Threshold:       DefaultThreshold,
		AutoScrollEdge:  DefaultScrollEdge,
		AutoScrollSpeed: DefaultScrollSpeed,
	}
}

// Result describes a finished gesture
type Result struct {
	State  State          `json:"state"`
	NodeID doctree.NodeID `json:"nodeId,omitempty"`
	Entry  *history.Entry `json:"-"`
}

// Engine runs drag gestures against a tree. It is single threaded like the
// tree it mutates.
type Engine struct {
	tree     *doctree.Tree
	history  *history.Manager
	logger   logger.Logger
	cfg      Config
	layout   geom.LayoutReport
	scroller *AutoScroller
	onNotice func(Notice)

	state   State
	armed   bool
	source  Source
	origin  geom.Point
	pointer geom.Point
	target  *Target
}

// Option configures an Engine
type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.Threshold > 0 {
			e.cfg.Threshold = cfg.Threshold
		}
		if cfg.AutoScrollEdge > 0 {
			e.cfg.AutoScrollEdge = cfg.AutoScrollEdge
		}
		if cfg.AutoScrollSpeed > 0 {
			e.cfg.AutoScrollSpeed = cfg.AutoScrollSpeed
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithNoticeHandler receives user-visible notices such as rejected drops
func WithNoticeHandler(fn func(Notice)) Option {
	return func(e *Engine) {
		e.onNotice = fn
	}
}

// WithScroller attaches the scroll target driven during drags
func WithScroller(s Scroller) Option {
	return func(e *Engine) {
		e.scroller.target = s
	}
}

// NewEngine creates an engine bound to tree and its history
func NewEngine(tree *doctree.Tree, h *history.Manager, opts ...Option) *Engine {
	e := &Engine{
		tree:    tree,
		history: h,
		logger:  logger.NewNopLogger(),
		cfg:     DefaultConfig(),
		state:   StateIdle,
	}
	e.scroller = NewAutoScroller(e.cfg.AutoScrollEdge, e.cfg.AutoScrollSpeed, nil)
	for _, opt := range opts {
		opt(e)
	}
	e.scroller.edge = e.cfg.AutoScrollEdge
	e.scroller.speed = e.cfg.AutoScrollSpeed
	return e
}

// SetLayout stores the latest boxes measured by the view
func (e *Engine) SetLayout(report geom.LayoutReport) {
	e.layout = report
}

// State returns the current gesture state
func (e *Engine) State() State {
	return e.state
}

// Active reports whether a press or drag is in flight. Undo and redo are
// refused while it is.
func (e *Engine) Active() bool {
	return e.armed || e.state == StateDragging || e.state == StateHovering
}

// Snapshot exposes the gesture for rendering the ghost and indicator
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{State: e.state.String(), Pointer: e.pointer, ScrollStep: e.scroller.Velocity()}
	if e.armed || e.state != StateIdle {
		src := e.source
		s.Source = &src
	}
	if e.target != nil {
		t := *e.target
		s.Target = &t
	}
	return s
}

// PointerDown arms a gesture. The drag starts once the pointer travels
// past the threshold.
func (e *Engine) PointerDown(src Source, p geom.Point) error {
	if e.Active() {
		return ErrGestureInFlight
	}
	switch src.Kind {
	case SourcePalette:
		if !src.PaletteKind.Valid() {
			return fmt.Errorf("palette source: %w", doctree.ErrSchemaMismatch)
		}
	case SourceNode:
		if !e.tree.Has(src.NodeID) {
			return fmt.Errorf("drag source %s: %w", src.NodeID, doctree.ErrUnknownNodeReference)
		}
		if src.NodeID == e.tree.Root() {
			return fmt.Errorf("drag source: %w", doctree.ErrInvalidPlacement)
		}
	default:
		return fmt.Errorf("unknown drag source %q", src.Kind)
	}

	e.state = StateIdle
	e.armed = true
	e.source = src
	e.origin = p
	e.pointer = p
	e.target = nil
	return nil
}

// PointerMove feeds a pointer sample. It returns the hover target, nil when
// the pointer is over nothing that accepts the drop.
func (e *Engine) PointerMove(ev PointerEvent) (*Target, error) {
	if !e.Active() {
		return nil, ErrNoGesture
	}
	e.pointer = ev.Point

	if e.armed && e.state == StateIdle {
		if ev.Point.Dist(e.origin) < e.cfg.Threshold {
			return nil, nil
		}
		e.armed = false
		e.state = StateDragging
		e.logger.WithField("source", e.sourceLabel()).Debug("Drag started")
	}

	e.scroller.Update(ev.Point, e.layout.Viewport)

	t := e.resolveTarget(ev)
	e.target = t
	if t == nil {
		e.state = StateDragging
		return nil, nil
	}
	e.state = StateHovering
	out := *t
	return &out, nil
}

// PointerUp ends the gesture. A press that never crossed the threshold ends
// as a plain click and changes nothing.
func (e *Engine) PointerUp(ev PointerEvent) (Result, error) {
	if !e.Active() {
		return Result{State: e.state}, ErrNoGesture
	}
	e.scroller.Stop()

	if e.armed {
		e.reset(StateIdle)
		return Result{State: StateIdle}, nil
	}

	e.pointer = ev.Point
	if parentID, ok := e.container(ev); ok && e.selfDrop(parentID) {
		return e.reject(parentID, fmt.Errorf("drop %s into itself: %w", e.source.NodeID, doctree.ErrInvalidPlacement))
	}
	e.target = e.resolveTarget(ev)
	if e.target == nil {
		e.reset(StateCancelled)
		return Result{State: StateCancelled}, nil
	}

	// leave the active states before mutating so a re-entrant pointer-up
	// cannot commit twice
	target := *e.target
	e.state = StateCommitted
	res, err := e.commit(target)
	if err != nil {
		return e.reject(target.ParentID, err)
	}
	e.reset(StateCommitted)
	res.State = StateCommitted
	return res, nil
}

// reject cancels the gesture and reports why the drop was refused
func (e *Engine) reject(parentID doctree.NodeID, err error) (Result, error) {
	e.reset(StateCancelled)
	e.notice(NoticeWarning, noticeFor(err))
	e.logger.WithFields(map[string]interface{}{
		"source": e.sourceLabel(),
		"parent": string(parentID),
		"error":  err.Error(),
	}).Warn("Drop rejected")
	return Result{State: StateCancelled}, err
}

// Cancel aborts the gesture, as on Escape. The tree is untouched.
func (e *Engine) Cancel() error {
	if !e.Active() {
		return ErrNoGesture
	}
	e.scroller.Stop()
	e.reset(StateCancelled)
	return nil
}

// Tick advances auto-scroll by one frame and returns the applied step
func (e *Engine) Tick() float64 {
	if e.state != StateDragging && e.state != StateHovering {
		return 0
	}
	return e.scroller.Tick()
}

func (e *Engine) reset(s State) {
	e.state = s
	e.armed = false
	e.target = nil
}

func (e *Engine) notice(level NoticeLevel, msg string) {
	if e.onNotice != nil {
		e.onNotice(Notice{Level: level, Message: msg})
	}
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, doctree.ErrInvalidPlacement):
		return "That element cannot be dropped there"
	case errors.Is(err, doctree.ErrUnknownNodeReference):
		return "The element no longer exists"
	default:
		return "Drop failed"
	}
}

func (e *Engine) sourceLabel() string {
	if e.source.Kind == SourcePalette {
		return "palette:" + string(e.source.PaletteKind)
	}
	return "node:" + string(e.source.NodeID)
}

func (e *Engine) draggedKind() doctree.Kind {
	if e.source.Kind == SourcePalette {
		return e.source.PaletteKind
	}
	k, _ := e.tree.Kind(e.source.NodeID)
	return k
}

func (e *Engine) draggedIsFree() bool {
	if e.source.Kind == SourcePalette {
		spec, _ := doctree.SpecOf(e.source.PaletteKind)
		return spec.DefaultPlacement == doctree.PlacementFree
	}
	n, err := e.tree.Get(e.source.NodeID)
	return err == nil && n.Placement.IsFree()
}

// container finds the nearest ancestor-or-self of the hovered node that
// accepts children
func (e *Engine) container(ev PointerEvent) (doctree.NodeID, bool) {
	if ev.Over == "" || !e.tree.Has(ev.Over) {
		return "", false
	}
	parentID := ev.Over
	for {
		k, _ := e.tree.Kind(parentID)
		if k.AcceptsChildren() {
			return parentID, true
		}
		p, ok := e.tree.Parent(parentID)
		if !ok {
			return "", false
		}
		parentID = p
	}
}

// selfDrop reports whether the hovered container is the dragged node or
// one of its descendants
func (e *Engine) selfDrop(parentID doctree.NodeID) bool {
	if e.source.Kind != SourceNode {
		return false
	}
	id := e.source.NodeID
	return id == parentID || e.tree.IsDescendant(id, parentID)
}

// resolveTarget computes the flow index or free position in the hovered
// container. Containers the dragged node cannot enter give no target.
func (e *Engine) resolveTarget(ev PointerEvent) *Target {
	parentID, ok := e.container(ev)
	if !ok || e.selfDrop(parentID) {
		return nil
	}
	if e.draggedIsFree() {
		return e.freeTarget(parentID, ev.Point)
	}
	return e.flowTarget(parentID, ev.Point)
}

func (e *Engine) flowTarget(parentID doctree.NodeID, p geom.Point) *Target {
	parent, err := e.tree.Get(parentID)
	if err != nil {
		return nil
	}
	t := &Target{ParentID: parentID}

	below := false
	var last *geom.Rect
	for _, c := range parent.Children {
		if e.source.Kind == SourceNode && c == e.source.NodeID {
			continue
		}
		r, ok := e.layout.Boxes.Rect(string(c))
		if !ok {
			continue
		}
		if r.MidY() < p.Y {
			t.Index++
			last = &r
			continue
		}
		if !below {
			below = true
			t.IndicatorY = r.Y
		}
	}

	if !below {
		switch {
		case last != nil:
			t.IndicatorY = last.Y + last.Height
		default:
			if r, ok := e.layout.Boxes.Rect(string(parentID)); ok {
				t.IndicatorY = r.Y
			}
		}
	}
	return t
}

func (e *Engine) freeTarget(contextID doctree.NodeID, p geom.Point) *Target {
	ctx, ok := e.layout.Boxes.Rect(string(contextID))
	if !ok {
		return nil
	}
	w, h := e.draggedSize()
	pos := p.Sub(e.source.GrabOffset).Sub(ctx.Min())
	pos = geom.ClampPoint(pos, w, h, ctx)
	return &Target{ParentID: contextID, Free: true, Position: pos}
}

func (e *Engine) draggedSize() (float64, float64) {
	if e.source.Kind == SourceNode {
		if r, ok := e.layout.Boxes.Rect(string(e.source.NodeID)); ok {
			return r.Width, r.Height
		}
		if n, err := e.tree.Get(e.source.NodeID); err == nil {
			return pixels(n.Attributes.Value("width")), pixels(n.Attributes.Value("height"))
		}
		return 0, 0
	}
	w, _ := doctree.DefaultAttribute(e.source.PaletteKind, "width")
	h, _ := doctree.DefaultAttribute(e.source.PaletteKind, "height")
	return pixels(w), pixels(h)
}

// pixels parses "64px" or "64"; anything else counts as zero
func pixels(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func (e *Engine) commit(t Target) (Result, error) {
	if !doctree.CanDrop(e.draggedKind(), e.mustKind(t.ParentID)) {
		return Result{}, fmt.Errorf("drop into %s: %w", t.ParentID, doctree.ErrInvalidPlacement)
	}
	if e.source.Kind == SourcePalette {
		return e.commitPalette(t)
	}

	id := e.source.NodeID
	if id == t.ParentID || e.tree.IsDescendant(id, t.ParentID) {
		return Result{}, fmt.Errorf("drop %s into itself: %w", id, doctree.ErrInvalidPlacement)
	}
	n, err := e.tree.Get(id)
	if err != nil {
		return Result{}, err
	}

	if t.Free {
		return e.commitFree(n, t)
	}
	if n.ParentID == t.ParentID && e.tree.IndexOf(id) == t.Index {
		return Result{NodeID: id}, nil
	}
	before := e.history.Capture()
	touched, err := e.tree.Move(id, t.ParentID, t.Index)
	if err != nil {
		return Result{}, err
	}
	entry := e.history.RecordSnapshot(history.EntryMove, before, touched...)
	_ = e.tree.Select(id)
	return Result{NodeID: id, Entry: entry}, nil
}

func (e *Engine) mustKind(id doctree.NodeID) doctree.Kind {
	k, _ := e.tree.Kind(id)
	return k
}

func (e *Engine) commitPalette(t Target) (Result, error) {
	before := e.history.Capture()
	n := doctree.NewNode(e.source.PaletteKind)
	index := t.Index
	if t.Free {
		n.Placement = doctree.Free(t.Position.X, t.Position.Y, e.tree.TopZ(t.ParentID)+1)
		index = 0
	} else {
		n.Placement = doctree.Flow()
	}
	touched, err := e.tree.Insert(n, t.ParentID, index)
	if err != nil {
		return Result{}, err
	}
	entry := e.history.RecordSnapshot(history.EntryInsert, before, touched...)
	_ = e.tree.Select(n.ID)
	e.logger.WithFields(map[string]interface{}{
		"kind":    string(n.Kind),
		"node_id": string(n.ID),
	}).Debug("Palette item dropped")
	return Result{NodeID: n.ID, Entry: entry}, nil
}

func (e *Engine) commitFree(n *doctree.Node, t Target) (Result, error) {
	newPlacement := doctree.Free(t.Position.X, t.Position.Y, n.Placement.ZIndex)

	if n.ParentID == t.ParentID {
		if n.Placement == newPlacement {
			return Result{NodeID: n.ID}, nil
		}
		if err := e.tree.SetPlacement(n.ID, newPlacement); err != nil {
			return Result{}, err
		}
		change := &history.PlacementChange{NodeID: n.ID, Old: n.Placement, New: newPlacement}
		entry := e.history.RecordChange(history.EntryPlacement, change, n.ID)
		_ = e.tree.Select(n.ID)
		return Result{NodeID: n.ID, Entry: entry}, nil
	}

	before := e.history.Capture()
	touched, err := e.tree.Move(n.ID, t.ParentID, 0)
	if err != nil {
		return Result{}, err
	}
	newPlacement.ZIndex = e.tree.TopZ(t.ParentID) + 1
	if err := e.tree.SetPlacement(n.ID, newPlacement); err != nil {
		// Move succeeded, so put the tree back before reporting
		_ = e.tree.Restore(before)
		return Result{}, err
	}
	entry := e.history.RecordSnapshot(history.EntryMove, before, touched...)
	_ = e.tree.Select(n.ID)
	return Result{NodeID: n.ID, Entry: entry}, nil
}
