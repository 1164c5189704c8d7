package properties

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/history"
)

var (
	ErrSelectionTooSmall = errors.New("bulk operation needs more selected nodes")
	ErrUnknownEdge       = errors.New("unknown alignment edge")
	ErrUnknownAxis       = errors.New("unknown distribution axis")
)

// Edge is an alignment target
type Edge string

const (
	EdgeLeft   Edge = "left"
	EdgeCenter Edge = "center"
	EdgeRight  Edge = "right"
	EdgeTop    Edge = "top"
	EdgeMiddle Edge = "middle"
	EdgeBottom Edge = "bottom"
)

func (e Edge) horizontal() bool {
	return e == EdgeLeft || e == EdgeCenter || e == EdgeRight
}

func (e Edge) valid() bool {
	switch e {
	case EdgeLeft, EdgeCenter, EdgeRight, EdgeTop, EdgeMiddle, EdgeBottom:
		return true
	}
	return false
}

type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

// alignAttribute is written on flow nodes, which have no coordinates. It is
// the same attribute the Alignment field edits.
const alignAttribute = "textAlign"

// BulkResult is the outcome of a bulk operation
type BulkResult struct {
	Affected []doctree.NodeID `json:"affected"`
	Entry    *history.Entry   `json:"-"`
}

// roots returns the selected ids whose ancestors are not also selected
func (b *Binder) roots() []doctree.NodeID {
	sel := b.tree.Selection()
	out := make([]doctree.NodeID, 0, len(sel))
	for _, id := range sel {
		if !b.tree.Has(id) {
			continue
		}
		nested := false
		for _, other := range sel {
			if other != id && b.tree.IsDescendant(other, id) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, id)
		}
	}
	return out
}

func (b *Binder) multi(min int) ([]doctree.NodeID, error) {
	ids := b.roots()
	if len(ids) < min {
		return nil, fmt.Errorf("%d selected, %d required: %w", len(ids), min, ErrSelectionTooSmall)
	}
	return ids, nil
}

// freeBox is a free node with its measured box and context origin
type freeBox struct {
	id      doctree.NodeID
	place   doctree.Placement
	box     geom.Rect
	context geom.Rect
}

func (b *Binder) measure(id doctree.NodeID) (*freeBox, bool) {
	n, err := b.tree.Get(id)
	if err != nil || !n.Placement.IsFree() {
		return nil, false
	}
	box, ok := b.layout.Boxes.Rect(string(id))
	if !ok {
		return nil, false
	}
	ctx, ok := b.layout.Boxes.Rect(string(n.ParentID))
	if !ok {
		return nil, false
	}
	return &freeBox{id: id, place: n.Placement, box: box, context: ctx}, true
}

// moveTo places a free node so its box starts at the viewport point p,
// clamped to its positioning context
func (b *Binder) moveTo(fb *freeBox, p geom.Point) (bool, error) {
	local := geom.ClampPoint(p.Sub(fb.context.Min()), fb.box.Width, fb.box.Height,
		geom.Rect{Width: fb.context.Width, Height: fb.context.Height})
	next := doctree.Free(local.X, local.Y, fb.place.ZIndex)
	if next == fb.place {
		return false, nil
	}
	return true, b.tree.SetPlacement(fb.id, next)
}

// Align lines up the selection on edge. Free nodes move to the shared edge
// of their bounding boxes; flow nodes get an align attribute for the
// horizontal edges and are left alone for the vertical ones.
func (b *Binder) Align(edge Edge) (*BulkResult, error) {
	if !edge.valid() {
		return nil, fmt.Errorf("%q: %w", edge, ErrUnknownEdge)
	}
	ids, err := b.multi(2)
	if err != nil {
		return nil, err
	}

	var boxes []*freeBox
	var flow []doctree.NodeID
	for _, id := range ids {
		if fb, ok := b.measure(id); ok {
			boxes = append(boxes, fb)
			continue
		}
		if n, err := b.tree.Get(id); err == nil && !n.Placement.IsFree() {
			flow = append(flow, id)
		}
	}

	before := b.history.Capture()
	var affected []doctree.NodeID

	if len(boxes) > 0 {
		bounds := boxes[0].box
		for _, fb := range boxes[1:] {
			bounds = union(bounds, fb.box)
		}
		for _, fb := range boxes {
			p := fb.box.Min()
			switch edge {
			case EdgeLeft:
				p.X = bounds.X
			case EdgeCenter:
				p.X = bounds.MidX() - fb.box.Width/2
			case EdgeRight:
				p.X = bounds.X + bounds.Width - fb.box.Width
			case EdgeTop:
				p.Y = bounds.Y
			case EdgeMiddle:
				p.Y = bounds.MidY() - fb.box.Height/2
			case EdgeBottom:
				p.Y = bounds.Y + bounds.Height - fb.box.Height
			}
			changed, err := b.moveTo(fb, p)
			if err != nil {
				return nil, b.rollback(before, err)
			}
			if changed {
				affected = append(affected, fb.id)
			}
		}
	}

	if edge.horizontal() {
		for _, id := range flow {
			n, _ := b.tree.Get(id)
			if n.Attributes.Value(alignAttribute) == string(edge) {
				continue
			}
			if err := b.tree.SetAttribute(id, alignAttribute, string(edge)); err != nil {
				return nil, b.rollback(before, err)
			}
			affected = append(affected, id)
		}
	}

	return b.commitBulk(before, affected, "align")
}

// Distribute spaces free nodes evenly along axis. The outermost nodes stay
// where they are.
func (b *Binder) Distribute(axis Axis) (*BulkResult, error) {
	if axis != AxisHorizontal && axis != AxisVertical {
		return nil, fmt.Errorf("%q: %w", axis, ErrUnknownAxis)
	}
	ids, err := b.multi(3)
	if err != nil {
		return nil, err
	}
	var boxes []*freeBox
	for _, id := range ids {
		if fb, ok := b.measure(id); ok {
			boxes = append(boxes, fb)
		}
	}
	if len(boxes) < 3 {
		return nil, fmt.Errorf("%d measured free nodes, 3 required: %w", len(boxes), ErrSelectionTooSmall)
	}

	start := func(r geom.Rect) float64 { return r.X }
	size := func(r geom.Rect) float64 { return r.Width }
	if axis == AxisVertical {
		start = func(r geom.Rect) float64 { return r.Y }
		size = func(r geom.Rect) float64 { return r.Height }
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		return start(boxes[i].box) < start(boxes[j].box)
	})

	first, last := boxes[0].box, boxes[len(boxes)-1].box
	span := start(last) + size(last) - start(first)
	used := 0.0
	for _, fb := range boxes {
		used += size(fb.box)
	}
	gap := (span - used) / float64(len(boxes)-1)

	before := b.history.Capture()
	var affected []doctree.NodeID
	pos := start(first) + size(first) + gap
	for _, fb := range boxes[1 : len(boxes)-1] {
		p := fb.box.Min()
		if axis == AxisHorizontal {
			p.X = pos
		} else {
			p.Y = pos
		}
		changed, err := b.moveTo(fb, p)
		if err != nil {
			return nil, b.rollback(before, err)
		}
		if changed {
			affected = append(affected, fb.id)
		}
		pos += size(fb.box) + gap
	}
	return b.commitBulk(before, affected, "distribute")
}

// DuplicateAll copies every selected node and selects the copies
func (b *Binder) DuplicateAll() (*BulkResult, error) {
	ids, err := b.multi(2)
	if err != nil {
		return nil, err
	}
	before := b.history.Capture()
	copies := make([]doctree.NodeID, 0, len(ids))
	for _, id := range ids {
		cp, err := b.tree.Duplicate(id)
		if err != nil {
			return nil, b.rollback(before, err)
		}
		copies = append(copies, cp)
	}
	res, err := b.commitBulk(before, copies, "duplicate")
	if err != nil {
		return nil, err
	}
	b.tree.SetSelection(copies)
	return res, nil
}

// DeleteAll removes every selected node
func (b *Binder) DeleteAll() (*BulkResult, error) {
	ids, err := b.multi(2)
	if err != nil {
		return nil, err
	}
	before := b.history.Capture()
	var removed []doctree.NodeID
	for _, id := range ids {
		gone, err := b.tree.Remove(id)
		if err != nil {
			return nil, b.rollback(before, err)
		}
		removed = append(removed, gone...)
	}
	b.tree.ClearSelection()
	return b.commitBulk(before, removed, "delete")
}

func (b *Binder) commitBulk(before *doctree.Snapshot, affected []doctree.NodeID, op string) (*BulkResult, error) {
	res := &BulkResult{Affected: affected}
	if len(affected) == 0 {
		return res, nil
	}
	res.Entry = b.history.Record(history.EntryBulk, history.Data{Before: before, Affected: affected})
	b.logger.WithFields(map[string]interface{}{
		"operation": op,
		"nodes":     len(affected),
	}).Debug("Bulk operation applied")
	return res, nil
}

// rollback puts the tree back after a partially applied bulk operation
func (b *Binder) rollback(before *doctree.Snapshot, cause error) error {
	sel := b.tree.Selection()
	if err := b.tree.Restore(before); err != nil {
		b.logger.WithField("error", err.Error()).Error("Failed to roll back bulk operation")
		return fmt.Errorf("%v (rollback failed: %w)", cause, err)
	}
	b.tree.SetSelection(sel)
	return cause
}

func union(a, b geom.Rect) geom.Rect {
	minX, minY := min(a.X, b.X), min(a.Y, b.Y)
	maxX := max(a.X+a.Width, b.X+b.Width)
	maxY := max(a.Y+a.Height, b.Y+b.Height)
	return geom.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
