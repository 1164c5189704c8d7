package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

func setup(t *testing.T, opts ...Option) (*doctree.Tree, *Manager) {
	t.Helper()
	tree := doctree.New(doctree.WithIDGenerator(doctree.SequentialIDs("n")))
	opts = append([]Option{WithLogger(logger.NewTestLogger(t))}, opts...)
	return tree, NewManager(tree, opts...)
}

func insertRecorded(t *testing.T, tree *doctree.Tree, m *Manager, k doctree.Kind, parent doctree.NodeID, index int) doctree.NodeID {
	t.Helper()
	before := m.Capture()
	n := doctree.NewNode(k)
	touched, err := tree.Insert(n, parent, index)
	require.NoError(t, err)
	m.RecordSnapshot(EntryInsert, before, touched...)
	return n.ID
}

func TestManager_UndoRedoInverseLaw(t *testing.T) {
	tree, m := setup(t)
	section := insertRecorded(t, tree, m, doctree.KindSection, tree.Root(), 0)
	insertRecorded(t, tree, m, doctree.KindText, section, 0)

	actions := []struct {
		name string
		do   func(t *testing.T)
	}{
		{"insert", func(t *testing.T) {
			insertRecorded(t, tree, m, doctree.KindButton, section, 1)
		}},
		{"move", func(t *testing.T) {
			before := m.Capture()
			child, _ := tree.Get(section)
			touched, err := tree.Move(child.Children[0], tree.Root(), 0)
			require.NoError(t, err)
			m.RecordSnapshot(EntryMove, before, touched...)
		}},
		{"remove", func(t *testing.T) {
			before := m.Capture()
			removed, err := tree.Remove(section)
			require.NoError(t, err)
			m.RecordSnapshot(EntryRemove, before, removed...)
		}},
		{"attribute change", func(t *testing.T) {
			n, _ := tree.Get(section)
			require.NoError(t, tree.SetAttribute(section, "backgroundColor", "#000000"))
			require.NoError(t, tree.SetAttribute(section, "borderRadius", "4px"))
			after, _ := tree.Get(section)
			m.RecordChange(EntryAttribute, NewAttributeChange(section, n.Attributes, after.Attributes), section)
		}},
		{"content change", func(t *testing.T) {
			child, _ := tree.Get(section)
			old, _ := tree.Get(child.Children[0])
			s := "Hello {{ first_name }}"
			require.NoError(t, tree.SetContent(old.ID, &s))
			cur, _ := tree.Get(old.ID)
			m.RecordChange(EntryContent, &ContentChange{NodeID: old.ID, Old: old.Content, New: cur.Content}, old.ID)
		}},
		{"replace", func(t *testing.T) {
			before := m.Capture()
			newID, err := tree.Replace(section, doctree.KindCard, doctree.Attributes{})
			require.NoError(t, err)
			m.Record(EntryReplace, Data{Before: before, Affected: []doctree.NodeID{section, newID},
				Remap: map[doctree.NodeID]doctree.NodeID{section: newID}})
		}},
	}

	for _, a := range actions {
		t.Run(a.name, func(t *testing.T) {
			pre := tree.Snapshot()
			a.do(t)
			post := tree.Snapshot()

			_, err := m.Undo()
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(pre, tree.Snapshot()), "undo must restore the pre-action tree")

			_, err = m.Redo()
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(post, tree.Snapshot()), "redo must restore the post-action tree")

			_, err = m.Undo()
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(pre, tree.Snapshot()))
			require.NoError(t, tree.Validate())
		})
	}
}

func TestManager_BoundedHistory(t *testing.T) {
	tree, m := setup(t)

	for i := 0; i < 60; i++ {
		insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)
	}

	assert.Equal(t, DefaultLimit, m.Len())
	assert.Equal(t, 50, m.Cursor())

	undone := 0
	for m.CanUndo() {
		_, err := m.Undo()
		require.NoError(t, err)
		undone++
	}
	assert.Equal(t, 50, undone)
	root, _ := tree.Get(tree.Root())
	assert.Len(t, root.Children, 10, "the ten oldest inserts can no longer be undone")

	_, err := m.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestManager_RecordTruncatesRedoTail(t *testing.T) {
	tree, m := setup(t)
	insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)
	insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)

	_, err := m.Undo()
	require.NoError(t, err)
	assert.True(t, m.CanRedo())

	insertRecorded(t, tree, m, doctree.KindImage, tree.Root(), 0)

	assert.False(t, m.CanRedo())
	assert.Equal(t, 2, m.Len())
	_, err = m.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestManager_GestureGuard(t *testing.T) {
	busy := true
	tree, m := setup(t, WithGestureGuard(func() bool { return busy }))
	insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)

	_, err := m.Undo()
	assert.ErrorIs(t, err, ErrGestureInProgress)
	assert.Equal(t, 1, m.Cursor())

	busy = false
	_, err = m.Undo()
	assert.NoError(t, err)
}

func TestManager_RestoreClearsSelectionAndNotifies(t *testing.T) {
	tree, m := setup(t)
	text := insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)
	section := insertRecorded(t, tree, m, doctree.KindSection, tree.Root(), 1)
	require.NoError(t, tree.Select(text))

	var notified [][]doctree.NodeID
	m.OnRestore(func(e *Entry, live []doctree.NodeID) {
		notified = append(notified, live)
	})

	e, err := m.Undo()
	require.NoError(t, err)

	assert.Equal(t, EntryInsert, e.Type)
	assert.Empty(t, tree.Selection())
	require.Len(t, notified, 1)
	assert.Equal(t, []doctree.NodeID{tree.Root(), text}, notified[0])
	assert.True(t, tree.IsTombstoned(section))
}

func TestManager_EvictionPrunesTombstones(t *testing.T) {
	tree, m := setup(t, WithLimit(2))

	text := insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)
	before := m.Capture()
	_, err := tree.Remove(text)
	require.NoError(t, err)
	m.RecordSnapshot(EntryRemove, before, text)
	assert.True(t, tree.IsTombstoned(text))

	insertRecorded(t, tree, m, doctree.KindImage, tree.Root(), 0)
	assert.True(t, tree.IsTombstoned(text), "remove entry still references the node")

	insertRecorded(t, tree, m, doctree.KindImage, tree.Root(), 0)
	assert.False(t, tree.IsTombstoned(text), "no entry can bring the node back")
}

func TestManager_Timestamps(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tree, m := setup(t, WithClock(func() time.Time { return at }))

	insertRecorded(t, tree, m, doctree.KindText, tree.Root(), 0)
	require.Len(t, m.Entries(), 1)
	assert.Equal(t, at, m.Entries()[0].Timestamp)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.CanUndo())
}

func TestChanges(t *testing.T) {
	tree := doctree.New(doctree.WithIDGenerator(doctree.SequentialIDs("n")))
	sticker := doctree.NewNode(doctree.KindSticker)
	sticker.Placement = doctree.Free(10, 10, 1)
	_, err := tree.Insert(sticker, tree.Root(), 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		change Reversible
		check  func(t *testing.T, n *doctree.Node, reverted bool)
	}{
		{
			name:   "placement",
			change: &PlacementChange{NodeID: sticker.ID, Old: doctree.Free(10, 10, 1), New: doctree.Free(40, 50, 1)},
			check: func(t *testing.T, n *doctree.Node, reverted bool) {
				if reverted {
					assert.Equal(t, doctree.Free(10, 10, 1), n.Placement)
				} else {
					assert.Equal(t, doctree.Free(40, 50, 1), n.Placement)
				}
			},
		},
		{
			name:   "rotation",
			change: &RotationChange{NodeID: sticker.ID, Old: 0, New: 90},
			check: func(t *testing.T, n *doctree.Node, reverted bool) {
				want := 90.0
				if reverted {
					want = 0
				}
				assert.Equal(t, want, n.RotationDeg)
			},
		},
		{
			name: "composite",
			change: CompositeChange{
				&AttributeChange{NodeID: sticker.ID, Deltas: []AttrDelta{{Key: "width", Old: "64px", HadOld: true, New: "80px", HasNew: true}}},
				&AttributeChange{NodeID: sticker.ID, Deltas: []AttrDelta{{Key: "opacity", New: "0.5", HasNew: true}}},
			},
			check: func(t *testing.T, n *doctree.Node, reverted bool) {
				_, hasOpacity := n.Attributes.Get("opacity")
				if reverted {
					assert.Equal(t, "64px", n.Attributes.Value("width"))
					assert.False(t, hasOpacity)
				} else {
					assert.Equal(t, "80px", n.Attributes.Value("width"))
					assert.True(t, hasOpacity)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.change.Reapply(tree))
			n, _ := tree.Get(sticker.ID)
			tt.check(t, n, false)

			require.NoError(t, tt.change.Revert(tree))
			n, _ = tree.Get(sticker.ID)
			tt.check(t, n, true)
		})
	}
}

func TestNewAttributeChange(t *testing.T) {
	before := doctree.NewAttributes("a", "1", "b", "2", "c", "3")
	after := doctree.NewAttributes("a", "1", "b", "20", "d", "4")

	c := NewAttributeChange("x", before, after)

	assert.Equal(t, []AttrDelta{
		{Key: "b", Old: "2", HadOld: true, New: "20", HasNew: true},
		{Key: "c", Old: "3", HadOld: true},
		{Key: "d", New: "4", HasNew: true},
	}, c.Deltas)
	assert.False(t, c.Empty())
	assert.True(t, NewAttributeChange("x", before, before).Empty())
}

func ExampleManager() {
	tree := doctree.New(doctree.WithIDGenerator(doctree.SequentialIDs("n")))
	m := NewManager(tree)

	before := m.Capture()
	n := doctree.NewNode(doctree.KindHeading)
	_, _ = tree.Insert(n, tree.Root(), 0)
	m.RecordSnapshot(EntryInsert, before, n.ID)

	_, _ = m.Undo()
	fmt.Println(tree.Has(n.ID), m.CanRedo())
	// Output: false true
}
