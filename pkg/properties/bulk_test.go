package properties

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/serializer"
)

func TestBinder_AlignFreeNodes(t *testing.T) {
	tests := []struct {
		name     string
		edge     Edge
		want     [3]doctree.Placement
		affected int
	}{
		{
			name:     "left",
			edge:     EdgeLeft,
			want:     [3]doctree.Placement{doctree.Free(0, 0, 1), doctree.Free(0, 40, 2), doctree.Free(0, 10, 3)},
			affected: 2,
		},
		{
			name:     "right",
			edge:     EdgeRight,
			want:     [3]doctree.Placement{doctree.Free(300, 0, 1), doctree.Free(300, 40, 2), doctree.Free(300, 10, 3)},
			affected: 2,
		},
		{
			name:     "center",
			edge:     EdgeCenter,
			want:     [3]doctree.Placement{doctree.Free(150, 0, 1), doctree.Free(150, 40, 2), doctree.Free(150, 10, 3)},
			affected: 3,
		},
		{
			name:     "top",
			edge:     EdgeTop,
			want:     [3]doctree.Placement{doctree.Free(0, 0, 1), doctree.Free(100, 0, 2), doctree.Free(300, 0, 3)},
			affected: 2,
		},
		{
			name:     "bottom",
			edge:     EdgeBottom,
			want:     [3]doctree.Placement{doctree.Free(0, 40, 1), doctree.Free(100, 40, 2), doctree.Free(300, 40, 3)},
			affected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			pre := f.tree.Snapshot()
			f.tree.SetSelection([]doctree.NodeID{f.s1, f.s2, f.s3})

			res, err := f.binder.Align(tt.edge)
			require.NoError(t, err)
			assert.Len(t, res.Affected, tt.affected)
			require.NotNil(t, res.Entry)
			assert.Equal(t, history.EntryBulk, res.Entry.Type)
			assert.Equal(t, 1, f.history.Len())

			for i, id := range []doctree.NodeID{f.s1, f.s2, f.s3} {
				assert.Equal(t, tt.want[i], f.node(t, id).Placement, "node %s", id)
			}

			_, err = f.history.Undo()
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))
		})
	}
}

func TestBinder_AlignFlowNodes(t *testing.T) {
	f := newFixture(t)
	f.tree.SetSelection([]doctree.NodeID{f.heading, f.text})

	before := serializer.ToDocument(f.tree).HTML
	assert.NotContains(t, before, "text-align:center")

	res, err := f.binder.Align(EdgeCenter)
	require.NoError(t, err)
	assert.ElementsMatch(t, []doctree.NodeID{f.heading, f.text}, res.Affected)
	assert.Equal(t, "center", f.node(t, f.heading).Attributes.Value("textAlign"))
	assert.Equal(t, "center", f.node(t, f.text).Attributes.Value("textAlign"))

	after := serializer.ToDocument(f.tree).HTML
	assert.Equal(t, 2, strings.Count(after, "text-align:center"))
	assert.NotContains(t, after, "data-eb-attr-align")

	schema, err := f.binder.SchemaFor(f.text)
	require.NoError(t, err)
	field, ok := schema.Field("textAlign")
	require.True(t, ok)
	assert.Equal(t, "center", field.Value)

	res, err = f.binder.Align(EdgeMiddle)
	require.NoError(t, err)
	assert.Empty(t, res.Affected)
	assert.Nil(t, res.Entry)
	assert.Equal(t, 1, f.history.Len())
}

func TestBinder_AlignErrors(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.binder.Select(f.s1))

	_, err := f.binder.Align(EdgeLeft)
	assert.ErrorIs(t, err, ErrSelectionTooSmall)

	_, err = f.binder.Align("diagonal")
	assert.ErrorIs(t, err, ErrUnknownEdge)
}

func TestBinder_Distribute(t *testing.T) {
	f := newFixture(t)
	pre := f.tree.Snapshot()
	f.tree.SetSelection([]doctree.NodeID{f.s3, f.s1, f.s2})

	// boxes start at 20, 120 and 320, each 64 wide: the gap becomes 86
	res, err := f.binder.Distribute(AxisHorizontal)
	require.NoError(t, err)
	assert.Equal(t, []doctree.NodeID{f.s2}, res.Affected)
	assert.Equal(t, doctree.Free(150, 40, 2), f.node(t, f.s2).Placement)
	assert.Equal(t, doctree.Free(0, 0, 1), f.node(t, f.s1).Placement)
	assert.Equal(t, doctree.Free(300, 10, 3), f.node(t, f.s3).Placement)

	_, err = f.history.Undo()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))

	f.tree.SetSelection([]doctree.NodeID{f.s1, f.s2})
	_, err = f.binder.Distribute(AxisVertical)
	assert.ErrorIs(t, err, ErrSelectionTooSmall)

	_, err = f.binder.Distribute("depth")
	assert.ErrorIs(t, err, ErrUnknownAxis)
}

func TestBinder_DuplicateAll(t *testing.T) {
	f := newFixture(t)
	pre := f.tree.Snapshot()
	f.tree.SetSelection([]doctree.NodeID{f.heading, f.text})

	res, err := f.binder.DuplicateAll()
	require.NoError(t, err)
	require.Len(t, res.Affected, 2)
	assert.Equal(t, 1, f.history.Len())
	assert.Equal(t, res.Affected, f.binder.Selection())

	section := f.node(t, f.section)
	assert.Equal(t, []doctree.NodeID{f.heading, res.Affected[0], f.text, res.Affected[1]}, section.Children)
	assert.Equal(t, doctree.KindHeading, f.node(t, res.Affected[0]).Kind)

	_, err = f.history.Undo()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(pre, f.tree.Snapshot()))
}

func TestBinder_DeleteAllSkipsNestedSelection(t *testing.T) {
	f := newFixture(t)
	pre := f.tree.Snapshot()
	f.tree.SetSelection([]doctree.NodeID{f.heading, f.section})

	_, err := f.binder.DeleteAll()
	assert.ErrorIs(t, err, ErrSelectionTooSmall, "heading sits inside the selected section")

	_, err = f.tree.Insert(doctree.NewNode(doctree.KindSpacer), f.tree.Root(), 1)
	require.NoError(t, err)
	f.tree.SelectAll()
	res, err := f.binder.DeleteAll()
	require.NoError(t, err)
	assert.Len(t, res.Affected, 7)
	assert.Equal(t, 1, f.tree.Len())
	assert.Empty(t, f.binder.Selection())

	_, err = f.history.Undo()
	require.NoError(t, err)
	assert.True(t, f.tree.Has(f.heading))
	assert.Equal(t, len(pre.Nodes)+1, f.tree.Len())
}
