package doctree

// Selection returns the selected ids, primary first
func (t *Tree) Selection() []NodeID {
	return cloneIDs(t.selection)
}

// Primary returns the first selected id
func (t *Tree) Primary() (NodeID, bool) {
	if len(t.selection) == 0 {
		return "", false
	}
	return t.selection[0], true
}

func (t *Tree) IsSelected(id NodeID) bool {
	return indexOf(t.selection, id) >= 0
}

// Select makes id the only selected node. An id that is not live clears
// the selection.
func (t *Tree) Select(id NodeID) error {
	if !t.Has(id) {
		t.selection = nil
		return opErr("select", id, ErrUnknownNodeReference, "")
	}
	t.selection = []NodeID{id}
	return nil
}

// ToggleSelect adds id to the selection or removes it when already there
func (t *Tree) ToggleSelect(id NodeID) error {
	if !t.Has(id) {
		return opErr("select", id, ErrUnknownNodeReference, "")
	}
	if t.IsSelected(id) {
		t.selection = removeID(t.selection, id)
		return nil
	}
	t.selection = append(t.selection, id)
	return nil
}

// SelectRange selects the siblings between from and to, both included, in
// document order. Both nodes must share the parent and placement mode.
func (t *Tree) SelectRange(from, to NodeID) error {
	a, ok := t.nodes[from]
	if !ok {
		return opErr("select range", from, ErrUnknownNodeReference, "")
	}
	b, ok := t.nodes[to]
	if !ok {
		return opErr("select range", to, ErrUnknownNodeReference, "")
	}
	if a.ParentID == "" || a.ParentID != b.ParentID || a.Placement.Mode != b.Placement.Mode {
		return opErr("select range", to, ErrInvalidPlacement, "range must span siblings")
	}
	parent := t.nodes[a.ParentID]
	list := parent.Children
	if a.Placement.IsFree() {
		list = parent.Layers
	}
	i, j := indexOf(list, from), indexOf(list, to)
	if i > j {
		i, j = j, i
	}
	t.selection = cloneIDs(list[i : j+1])
	return nil
}

// SelectAll selects every direct child of the root, flow then free
func (t *Tree) SelectAll() {
	root := t.nodes[t.root]
	sel := make([]NodeID, 0, len(root.Children)+len(root.Layers))
	sel = append(sel, root.Children...)
	sel = append(sel, root.Layers...)
	t.selection = sel
}

// ClearSelection empties the selection
func (t *Tree) ClearSelection() {
	t.selection = nil
}

// SetSelection replaces the selection, skipping ids that are not live
func (t *Tree) SetSelection(ids []NodeID) {
	sel := make([]NodeID, 0, len(ids))
	for _, id := range ids {
		if t.Has(id) && indexOf(sel, id) < 0 {
			sel = append(sel, id)
		}
	}
	t.selection = sel
}

func (t *Tree) dropFromSelection(ids ...NodeID) {
	if len(t.selection) == 0 {
		return
	}
	for _, id := range ids {
		t.selection = removeID(t.selection, id)
	}
}
