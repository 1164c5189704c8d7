package dragdrop

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

type fixture struct {
	tree    *doctree.Tree
	history *history.Manager
	engine  *Engine
	notices []Notice
	section doctree.NodeID
	text1   doctree.NodeID
	text2   doctree.NodeID
}

// newFixture builds root > section > [text1, text2] with a matching layout
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.tree = doctree.New(doctree.WithIDGenerator(doctree.SequentialIDs("n")))
	f.history = history.NewManager(f.tree, history.WithLogger(logger.NewTestLogger(t)))

	insert := func(k doctree.Kind, parent doctree.NodeID, index int) doctree.NodeID {
		n := doctree.NewNode(k)
		_, err := f.tree.Insert(n, parent, index)
		require.NoError(t, err)
		return n.ID
	}
	f.section = insert(doctree.KindSection, f.tree.Root(), 0)
	f.text1 = insert(doctree.KindText, f.section, 0)
	f.text2 = insert(doctree.KindText, f.section, 1)

	f.engine = NewEngine(f.tree, f.history,
		WithLogger(logger.NewTestLogger(t)),
		WithNoticeHandler(func(n Notice) { f.notices = append(f.notices, n) }),
	)
	f.engine.SetLayout(geom.LayoutReport{
		Viewport: geom.Rect{X: 0, Y: 0, Width: 800, Height: 600},
		Boxes: geom.Layout{
			string(f.tree.Root()): {X: 0, Y: 0, Width: 600, Height: 1000},
			string(f.section):     {X: 20, Y: 20, Width: 560, Height: 200},
			string(f.text1):       {X: 20, Y: 30, Width: 560, Height: 40},
			string(f.text2):       {X: 20, Y: 80, Width: 560, Height: 40},
		},
	})
	return f
}

func (f *fixture) children(t *testing.T, id doctree.NodeID) []doctree.NodeID {
	t.Helper()
	n, err := f.tree.Get(id)
	require.NoError(t, err)
	return n.Children
}

func TestEngine_PaletteHeadingDropAndUndo(t *testing.T) {
	f := newFixture(t)
	pre := f.tree.Snapshot()

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindHeading}, geom.Pt(700, 70)))
	target, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(100, 70), Over: f.text1})
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, StateHovering, f.engine.State())
	assert.Equal(t, f.section, target.ParentID)
	assert.Equal(t, 1, target.Index)
	assert.Equal(t, 80.0, target.IndicatorY)

	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(100, 70), Over: f.text1})
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, []doctree.NodeID{f.text1, res.NodeID, f.text2}, f.children(t, f.section))
	heading, _ := f.tree.Get(res.NodeID)
	assert.Equal(t, doctree.KindHeading, heading.Kind)
	assert.Equal(t, []doctree.NodeID{res.NodeID}, f.tree.Selection())
	assert.Equal(t, 1, f.history.Len())
	require.NotNil(t, res.Entry)
	assert.Equal(t, []doctree.NodeID{res.NodeID, f.section}, res.Entry.AffectedNodeIDs)

	_, err = f.history.Undo()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))
	assert.Equal(t, []doctree.NodeID{f.text1, f.text2}, f.children(t, f.section))
}

func TestEngine_CyclicDropRejected(t *testing.T) {
	f := newFixture(t)
	column := doctree.NewNode(doctree.KindColumn)
	_, err := f.tree.Insert(column, f.section, 2)
	require.NoError(t, err)
	pre := f.tree.Snapshot()

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: f.section}, geom.Pt(30, 25)))
	target, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(40, 150), Over: column.ID})
	require.NoError(t, err)
	assert.Nil(t, target, "a descendant is never offered as a drop target")
	assert.Equal(t, StateDragging, f.engine.State())
	assert.Nil(t, f.engine.Snapshot().Target)

	target, err = f.engine.PointerMove(PointerEvent{Point: geom.Pt(40, 50), Over: f.text1})
	require.NoError(t, err)
	assert.Nil(t, target, "nor is the dragged container itself")

	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(40, 150), Over: column.ID})

	require.Error(t, err)
	assert.ErrorIs(t, err, doctree.ErrInvalidPlacement)
	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, StateCancelled, f.engine.State())
	assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))
	assert.Equal(t, 0, f.history.Len())
	require.Len(t, f.notices, 1)
	assert.Equal(t, NoticeWarning, f.notices[0].Level)
}

func TestEngine_StickerFreeDrop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindSticker}, geom.Pt(700, 300)))
	target, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(120, 80), Over: f.section})
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.True(t, target.Free)

	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(120, 80), Over: f.section})
	require.NoError(t, err)

	sticker, err := f.tree.Get(res.NodeID)
	require.NoError(t, err)
	assert.Equal(t, f.section, sticker.ParentID)
	assert.Equal(t, doctree.PlacementFree, sticker.Placement.Mode)
	assert.Equal(t, 100.0, sticker.Placement.X)
	assert.Equal(t, 60.0, sticker.Placement.Y)
	assert.Equal(t, 0.0, sticker.RotationDeg)

	section, _ := f.tree.Get(f.section)
	assert.Equal(t, []doctree.NodeID{res.NodeID}, section.Layers)
	assert.Equal(t, []doctree.NodeID{f.text1, f.text2}, section.Children)
}

func TestEngine_FreeDropIsClamped(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindSticker, GrabOffset: geom.Pt(10, 10)}, geom.Pt(0, 0)))
	_, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(575, 215), Over: f.section})
	require.NoError(t, err)
	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(575, 215), Over: f.section})
	require.NoError(t, err)

	sticker, _ := f.tree.Get(res.NodeID)
	// section is 560x200, sticker 64x64
	assert.Equal(t, doctree.Free(496, 136, 1), sticker.Placement)
}

func TestEngine_MoveFreeNodeRecordsPlacementChange(t *testing.T) {
	f := newFixture(t)
	sticker := doctree.NewNode(doctree.KindSticker)
	sticker.Placement = doctree.Free(10, 10, 1)
	_, err := f.tree.Insert(sticker, f.section, 0)
	require.NoError(t, err)
	layout := f.engine.layout
	layout.Boxes = layout.Boxes.Merge(geom.Layout{string(sticker.ID): {X: 30, Y: 30, Width: 64, Height: 64}})
	f.engine.SetLayout(layout)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: sticker.ID, GrabOffset: geom.Pt(5, 5)}, geom.Pt(35, 35)))
	_, err = f.engine.PointerMove(PointerEvent{Point: geom.Pt(85, 65), Over: sticker.ID})
	require.NoError(t, err)
	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(85, 65), Over: sticker.ID})
	require.NoError(t, err)

	require.NotNil(t, res.Entry)
	assert.Equal(t, history.EntryPlacement, res.Entry.Type)
	n, _ := f.tree.Get(sticker.ID)
	assert.Equal(t, doctree.Free(60, 40, 1), n.Placement)

	_, err = f.history.Undo()
	require.NoError(t, err)
	n, _ = f.tree.Get(sticker.ID)
	assert.Equal(t, doctree.Free(10, 10, 1), n.Placement)
}

func TestEngine_MoveExistingFlowNode(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: f.text1}, geom.Pt(50, 50)))
	_, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(50, 110), Over: f.text2})
	require.NoError(t, err)
	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(50, 110), Over: f.text2})
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, res.State)
	assert.Equal(t, []doctree.NodeID{f.text2, f.text1}, f.children(t, f.section))
	assert.Equal(t, 1, f.history.Len())
	require.NotNil(t, res.Entry)
	assert.Equal(t, []doctree.NodeID{f.text1, f.section}, res.Entry.AffectedNodeIDs)
}

func TestEngine_DropInPlaceRecordsNothing(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: f.text1}, geom.Pt(50, 50)))
	_, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(50, 40), Over: f.text1})
	require.NoError(t, err)
	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(50, 40), Over: f.text1})
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, res.State)
	assert.Nil(t, res.Entry)
	assert.Equal(t, 0, f.history.Len())
}

func TestEngine_Threshold(t *testing.T) {
	f := newFixture(t)
	pre := f.tree.Snapshot()

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: f.text1}, geom.Pt(50, 50)))
	target, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(53, 53), Over: f.text2})
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Equal(t, StateIdle, f.engine.State())
	assert.True(t, f.engine.Active())

	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(53, 53), Over: f.text2})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, res.State)
	assert.False(t, f.engine.Active())
	assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))
}

func TestEngine_Reentrancy(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindText}, geom.Pt(700, 70)))
	assert.ErrorIs(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindText}, geom.Pt(700, 70)), ErrGestureInFlight)

	_, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(100, 70), Over: f.text1})
	require.NoError(t, err)
	_, err = f.engine.PointerUp(PointerEvent{Point: geom.Pt(100, 70), Over: f.text1})
	require.NoError(t, err)

	_, err = f.engine.PointerUp(PointerEvent{Point: geom.Pt(100, 70), Over: f.text1})
	assert.ErrorIs(t, err, ErrNoGesture)
	assert.Len(t, f.children(t, f.section), 3, "a repeated pointer-up must not insert twice")
	assert.Equal(t, 1, f.history.Len())
}

func TestEngine_Cancel(t *testing.T) {
	f := newFixture(t)
	pre := f.tree.Snapshot()

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: f.text2}, geom.Pt(50, 100)))
	_, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(50, 20), Over: f.text1})
	require.NoError(t, err)
	require.NoError(t, f.engine.Cancel())

	assert.Equal(t, StateCancelled, f.engine.State())
	assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))
	assert.Equal(t, 0, f.history.Len())
	assert.ErrorIs(t, f.engine.Cancel(), ErrNoGesture)
}

func TestEngine_DropOutsideCanvasCancels(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindButton}, geom.Pt(700, 70)))
	target, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(900, 70)})
	require.NoError(t, err)
	assert.Nil(t, target)
	assert.Equal(t, StateDragging, f.engine.State())

	res, err := f.engine.PointerUp(PointerEvent{Point: geom.Pt(900, 70)})
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, res.State)
	assert.Equal(t, 0, f.history.Len())
}

func TestEngine_PointerDownValidation(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: "blink"}, geom.Pt(0, 0)), doctree.ErrSchemaMismatch)
	assert.ErrorIs(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: "ghost"}, geom.Pt(0, 0)), doctree.ErrUnknownNodeReference)
	assert.ErrorIs(t, f.engine.PointerDown(Source{Kind: SourceNode, NodeID: f.tree.Root()}, geom.Pt(0, 0)), doctree.ErrInvalidPlacement)
	assert.Error(t, f.engine.PointerDown(Source{Kind: "clipboard"}, geom.Pt(0, 0)))
	assert.False(t, f.engine.Active())
}

func TestEngine_AutoScroll(t *testing.T) {
	f := newFixture(t)
	offset := &ScrollOffset{}
	f.engine = NewEngine(f.tree, f.history, WithScroller(offset))
	f.engine.SetLayout(geom.LayoutReport{Viewport: geom.Rect{Width: 800, Height: 600}})

	assert.Equal(t, 0.0, f.engine.Tick(), "no scrolling outside a drag")

	require.NoError(t, f.engine.PointerDown(Source{Kind: SourcePalette, PaletteKind: doctree.KindText}, geom.Pt(100, 300)))
	_, err := f.engine.PointerMove(PointerEvent{Point: geom.Pt(100, 590)})
	require.NoError(t, err)

	step := f.engine.Tick()
	assert.InDelta(t, DefaultScrollSpeed*30/40, step, 1e-9)
	f.engine.Tick()
	assert.InDelta(t, 2*step, offset.Y, 1e-9)

	_, err = f.engine.PointerMove(PointerEvent{Point: geom.Pt(100, 0)})
	require.NoError(t, err)
	assert.InDelta(t, -DefaultScrollSpeed, f.engine.Tick(), 1e-9)

	require.NoError(t, f.engine.Cancel())
	assert.Equal(t, 0.0, f.engine.Tick())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "hovering", StateHovering.String())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateDragging.Terminal())
	assert.Equal(t, "unknown", State(42).String())
}
