package doctree

import (
	"fmt"

	"github.com/Notifuse/visualeditor/pkg/geom"
)

// Tree is the document model: an arena of nodes addressed by id, rooted at
// a container. A Tree is not safe for concurrent use; callers serialise
// access per editing session.
type Tree struct {
	nodes      map[NodeID]*Node
	root       NodeID
	tombstones map[NodeID]struct{}
	newID      IDGenerator
	selection  []NodeID
}

// Option configures a Tree
type Option func(*Tree)

// WithIDGenerator replaces the uuid based generator
func WithIDGenerator(gen IDGenerator) Option {
	return func(t *Tree) {
		t.newID = gen
	}
}

// New creates a tree holding only an empty root container
func New(opts ...Option) *Tree {
	t := &Tree{
		nodes:      make(map[NodeID]*Node),
		tombstones: make(map[NodeID]struct{}),
		newID:      UUIDGenerator,
	}
	for _, opt := range opts {
		opt(t)
	}

	root := NewNode(KindContainer)
	root.ID = t.nextID()
	t.nodes[root.ID] = root
	t.root = root.ID
	return t
}

// Root returns the id of the root container
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of live nodes, root included
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Has reports whether id refers to a live node
func (t *Tree) Has(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// IsTombstoned reports whether id belonged to a deleted node that history
// may still bring back
func (t *Tree) IsTombstoned(id NodeID) bool {
	_, ok := t.tombstones[id]
	return ok
}

// Tombstones returns the ids of deleted nodes still reserved
func (t *Tree) Tombstones() []NodeID {
	out := make([]NodeID, 0, len(t.tombstones))
	for id := range t.tombstones {
		out = append(out, id)
	}
	return out
}

// Get returns a copy of the node
func (t *Tree) Get(id NodeID) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, opErr("get", id, ErrUnknownNodeReference, "")
	}
	return n.Clone(), nil
}

// Kind returns the kind of a live node
func (t *Tree) Kind(id NodeID) (Kind, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return "", false
	}
	return n.Kind, true
}

// Parent returns the parent id of a live node. The root has no parent.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	n, ok := t.nodes[id]
	if !ok || n.ParentID == "" {
		return "", false
	}
	return n.ParentID, true
}

// IndexOf returns the position of id in its parent's flow children or
// layers, depending on its placement
func (t *Tree) IndexOf(id NodeID) int {
	n, ok := t.nodes[id]
	if !ok || n.ParentID == "" {
		return -1
	}
	p := t.nodes[n.ParentID]
	if n.Placement.IsFree() {
		return indexOf(p.Layers, id)
	}
	return indexOf(p.Children, id)
}

// IsDescendant reports whether nodeID lies strictly below ancestorID
func (t *Tree) IsDescendant(ancestorID, nodeID NodeID) bool {
	n, ok := t.nodes[nodeID]
	if !ok {
		return false
	}
	for n.ParentID != "" {
		if n.ParentID == ancestorID {
			return true
		}
		n, ok = t.nodes[n.ParentID]
		if !ok {
			return false
		}
	}
	return false
}

// Ancestors returns the ids from nodeID's parent up to the root
func (t *Tree) Ancestors(nodeID NodeID) []NodeID {
	var out []NodeID
	n, ok := t.nodes[nodeID]
	for ok && n.ParentID != "" {
		out = append(out, n.ParentID)
		n, ok = t.nodes[n.ParentID]
	}
	return out
}

// Walk visits nodes in document order: a node, its flow children, then its
// layers. fn receives a copy and the depth below the root. Returning an
// error stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) error) error {
	return t.walk(t.root, 0, fn)
}

// WalkFrom is Walk starting at id
func (t *Tree) WalkFrom(id NodeID, fn func(n *Node, depth int) error) error {
	if !t.Has(id) {
		return opErr("walk", id, ErrUnknownNodeReference, "")
	}
	return t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(n *Node, depth int) error) error {
	n, ok := t.nodes[id]
	if !ok {
		return opErr("walk", id, ErrUnknownNodeReference, "")
	}
	if err := fn(n.Clone(), depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := t.walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	for _, l := range n.Layers {
		if err := t.walk(l, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// IDs returns every live id in document order
func (t *Tree) IDs() []NodeID {
	out := make([]NodeID, 0, len(t.nodes))
	_ = t.Walk(func(n *Node, _ int) error {
		out = append(out, n.ID)
		return nil
	})
	return out
}

// subtree returns id and all its descendants, parents first
func (t *Tree) subtree(id NodeID) []NodeID {
	out := []NodeID{id}
	for i := 0; i < len(out); i++ {
		n := t.nodes[out[i]]
		out = append(out, n.Children...)
		out = append(out, n.Layers...)
	}
	return out
}

func (t *Tree) nextID() NodeID {
	for {
		id := t.newID()
		if _, live := t.nodes[id]; live {
			continue
		}
		if _, dead := t.tombstones[id]; dead {
			continue
		}
		return id
	}
}

func (t *Tree) idInUse(id NodeID) bool {
	_, live := t.nodes[id]
	_, dead := t.tombstones[id]
	return live || dead
}

// Insert attaches a detached node under parentID. Flow nodes are placed at
// index in the parent's children; free nodes are appended to the parent's
// layers and index is ignored. An empty node id gets a fresh one.
// It returns the touched ids: the new node and its parent.
func (t *Tree) Insert(node *Node, parentID NodeID, index int) ([]NodeID, error) {
	const op = "insert"
	if node == nil {
		return nil, opErr(op, parentID, ErrInvalidPlacement, "nil node")
	}
	if !node.Kind.Valid() {
		return nil, opErr(op, node.ID, ErrSchemaMismatch, "unknown kind %q", node.Kind)
	}
	if len(node.Children) > 0 || len(node.Layers) > 0 {
		return nil, opErr(op, node.ID, ErrInvalidPlacement, "node must be detached")
	}
	parent, ok := t.nodes[parentID]
	if !ok {
		return nil, opErr(op, parentID, ErrUnknownNodeReference, "parent")
	}
	if !parent.Kind.AcceptsChildren() {
		return nil, opErr(op, parentID, ErrInvalidPlacement, "%s does not accept children", parent.Kind)
	}
	if node.ID != "" && t.idInUse(node.ID) {
		return nil, opErr(op, node.ID, ErrInvalidPlacement, "id already used")
	}
	if err := checkNodeSchema(node); err != nil {
		return nil, opErr(op, node.ID, ErrSchemaMismatch, "%v", err)
	}
	if !node.Placement.IsFree() && (index < 0 || index > len(parent.Children)) {
		return nil, opErr(op, parentID, ErrInvalidPlacement, "index %d out of range [0,%d]", index, len(parent.Children))
	}

	n := node.Clone()
	if n.ID == "" {
		n.ID = t.nextID()
	}
	if n.Placement.Mode == "" {
		n.Placement.Mode = PlacementFlow
	}
	if n.Content != nil {
		c, err := CanonicalContent(n.Kind, *n.Content)
		if err != nil {
			return nil, opErr(op, n.ID, ErrSchemaMismatch, "content: %v", err)
		}
		n.Content = &c
	}
	n.ParentID = parentID
	if n.Placement.IsFree() {
		parent.Layers = append(parent.Layers, n.ID)
	} else {
		parent.Children = insertID(parent.Children, index, n.ID)
	}
	t.nodes[n.ID] = n
	node.ID = n.ID
	return []NodeID{n.ID, parentID}, nil
}

// Move re-parents nodeID. newIndex is the final position among the new
// parent's flow children, counted without the moved node. Free nodes keep
// their placement and go to the end of the new parent's layers. It returns
// the moved id followed by the old and new parents.
func (t *Tree) Move(nodeID, newParentID NodeID, newIndex int) ([]NodeID, error) {
	const op = "move"
	n, ok := t.nodes[nodeID]
	if !ok {
		return nil, opErr(op, nodeID, ErrUnknownNodeReference, "")
	}
	if nodeID == t.root {
		return nil, opErr(op, nodeID, ErrInvalidPlacement, "root cannot be moved")
	}
	parent, ok := t.nodes[newParentID]
	if !ok {
		return nil, opErr(op, newParentID, ErrUnknownNodeReference, "target")
	}
	if newParentID == nodeID || t.IsDescendant(nodeID, newParentID) {
		return nil, opErr(op, nodeID, ErrInvalidPlacement, "cannot move a node into itself or its descendants")
	}
	if !parent.Kind.AcceptsChildren() {
		return nil, opErr(op, newParentID, ErrInvalidPlacement, "%s does not accept children", parent.Kind)
	}

	touched := []NodeID{nodeID, n.ParentID}
	if n.ParentID != newParentID {
		touched = append(touched, newParentID)
	}

	if n.Placement.IsFree() {
		t.detach(n)
		parent.Layers = append(parent.Layers, nodeID)
		n.ParentID = newParentID
		return touched, nil
	}

	size := len(parent.Children)
	if n.ParentID == newParentID {
		size--
	}
	if newIndex < 0 || newIndex > size {
		return nil, opErr(op, newParentID, ErrInvalidPlacement, "index %d out of range [0,%d]", newIndex, size)
	}
	t.detach(n)
	parent.Children = insertID(parent.Children, newIndex, nodeID)
	n.ParentID = newParentID
	return touched, nil
}

func (t *Tree) detach(n *Node) {
	p, ok := t.nodes[n.ParentID]
	if !ok {
		return
	}
	p.Children = removeID(p.Children, n.ID)
	p.Layers = removeID(p.Layers, n.ID)
}

// Remove deletes nodeID and its whole subtree. Removed ids are tombstoned
// and dropped from the selection. It returns the removed ids, parents first.
func (t *Tree) Remove(nodeID NodeID) ([]NodeID, error) {
	n, ok := t.nodes[nodeID]
	if !ok {
		return nil, opErr("remove", nodeID, ErrUnknownNodeReference, "")
	}
	if nodeID == t.root {
		return nil, opErr("remove", nodeID, ErrInvalidPlacement, "root cannot be removed")
	}
	removed := t.subtree(nodeID)
	t.detach(n)
	for _, id := range removed {
		delete(t.nodes, id)
		t.tombstones[id] = struct{}{}
	}
	t.dropFromSelection(removed...)
	return removed, nil
}

// SetAttribute sets a single attribute. Keys must be lower camelCase.
func (t *Tree) SetAttribute(id NodeID, key, value string) error {
	n, ok := t.nodes[id]
	if !ok {
		return opErr("set attribute", id, ErrUnknownNodeReference, "")
	}
	if !ValidAttributeKey(key) {
		return opErr("set attribute", id, ErrSchemaMismatch, "invalid attribute key %q", key)
	}
	n.Attributes.Set(key, value)
	return nil
}

func (t *Tree) DeleteAttribute(id NodeID, key string) error {
	n, ok := t.nodes[id]
	if !ok {
		return opErr("delete attribute", id, ErrUnknownNodeReference, "")
	}
	n.Attributes.Delete(key)
	return nil
}

// SetContent replaces the content of a node. nil clears it. Content is
// stored in canonical form.
func (t *Tree) SetContent(id NodeID, content *string) error {
	n, ok := t.nodes[id]
	if !ok {
		return opErr("set content", id, ErrUnknownNodeReference, "")
	}
	if content == nil {
		n.Content = nil
		return nil
	}
	if spec := kindIndex[n.Kind]; spec.Void {
		return opErr("set content", id, ErrSchemaMismatch, "%s has no content", n.Kind)
	}
	c, err := CanonicalContent(n.Kind, *content)
	if err != nil {
		return opErr("set content", id, ErrSchemaMismatch, "content: %v", err)
	}
	n.Content = &c
	return nil
}

// SetPlacement changes the placement of a node. Switching between flow and
// free moves the node between its parent's children and layers.
func (t *Tree) SetPlacement(id NodeID, p Placement) error {
	const op = "set placement"
	n, ok := t.nodes[id]
	if !ok {
		return opErr(op, id, ErrUnknownNodeReference, "")
	}
	if p.Mode != PlacementFlow && p.Mode != PlacementFree {
		return opErr(op, id, ErrInvalidPlacement, "unknown mode %q", p.Mode)
	}
	if id == t.root {
		if p.IsFree() {
			return opErr(op, id, ErrInvalidPlacement, "root is always in flow")
		}
		return nil
	}
	if !p.IsFree() {
		p = Flow()
	}
	if n.Placement.Mode != p.Mode {
		parent := t.nodes[n.ParentID]
		t.detach(n)
		if p.IsFree() {
			parent.Layers = append(parent.Layers, id)
		} else {
			parent.Children = append(parent.Children, id)
		}
	}
	n.Placement = p
	return nil
}

// SetRotation sets the rotation in degrees, normalised to [0,360). Only
// rotatable kinds may have a non-zero rotation.
func (t *Tree) SetRotation(id NodeID, deg float64) error {
	n, ok := t.nodes[id]
	if !ok {
		return opErr("set rotation", id, ErrUnknownNodeReference, "")
	}
	deg = geom.NormalizeDeg(deg)
	if deg != 0 && !n.Kind.Rotatable() {
		return opErr("set rotation", id, ErrSchemaMismatch, "%s cannot rotate", n.Kind)
	}
	n.RotationDeg = deg
	return nil
}

// Replace swaps nodeID for a new node of kind k under a fresh id. The new
// node takes the old one's slot, placement, content and descendants; attrs
// are applied on top of the old attributes. The old id is tombstoned and a
// selected old id is replaced by the new one.
func (t *Tree) Replace(nodeID NodeID, k Kind, attrs Attributes) (NodeID, error) {
	const op = "replace"
	old, ok := t.nodes[nodeID]
	if !ok {
		return "", opErr(op, nodeID, ErrUnknownNodeReference, "")
	}
	if nodeID == t.root {
		return "", opErr(op, nodeID, ErrInvalidPlacement, "root cannot be replaced")
	}
	if !k.Valid() {
		return "", opErr(op, nodeID, ErrSchemaMismatch, "unknown kind %q", k)
	}
	if !k.AcceptsChildren() && (len(old.Children) > 0 || len(old.Layers) > 0) {
		return "", opErr(op, nodeID, ErrSchemaMismatch, "%s cannot hold the existing children", k)
	}
	for _, key := range attrs.Keys() {
		if !ValidAttributeKey(key) {
			return "", opErr(op, nodeID, ErrSchemaMismatch, "invalid attribute key %q", key)
		}
	}

	n := old.Clone()
	n.ID = t.nextID()
	n.Kind = k
	attrs.Range(func(key, value string) bool {
		n.Attributes.Set(key, value)
		return true
	})
	if !k.Rotatable() {
		n.RotationDeg = 0
	}

	parent := t.nodes[old.ParentID]
	if i := indexOf(parent.Children, nodeID); i >= 0 {
		parent.Children[i] = n.ID
	}
	if i := indexOf(parent.Layers, nodeID); i >= 0 {
		parent.Layers[i] = n.ID
	}
	for _, c := range n.Children {
		t.nodes[c].ParentID = n.ID
	}
	for _, l := range n.Layers {
		t.nodes[l].ParentID = n.ID
	}
	delete(t.nodes, nodeID)
	t.tombstones[nodeID] = struct{}{}
	t.nodes[n.ID] = n

	for i, s := range t.selection {
		if s == nodeID {
			t.selection[i] = n.ID
		}
	}
	return n.ID, nil
}

// Duplicate deep-copies nodeID with fresh ids. A flow copy lands right after
// the original; a free copy is offset by 10px and stacked on top.
func (t *Tree) Duplicate(nodeID NodeID) (NodeID, error) {
	src, ok := t.nodes[nodeID]
	if !ok {
		return "", opErr("duplicate", nodeID, ErrUnknownNodeReference, "")
	}
	if nodeID == t.root {
		return "", opErr("duplicate", nodeID, ErrInvalidPlacement, "root cannot be duplicated")
	}
	parent := t.nodes[src.ParentID]
	copyID := t.cloneSubtree(nodeID, src.ParentID)
	cp := t.nodes[copyID]

	if cp.Placement.IsFree() {
		cp.Placement.X += 10
		cp.Placement.Y += 10
		cp.Placement.ZIndex = t.maxZ(parent) + 1
		parent.Layers = append(parent.Layers, copyID)
	} else {
		parent.Children = insertID(parent.Children, indexOf(parent.Children, nodeID)+1, copyID)
	}
	return copyID, nil
}

func (t *Tree) cloneSubtree(id, parentID NodeID) NodeID {
	src := t.nodes[id]
	n := src.Clone()
	n.ID = t.nextID()
	n.ParentID = parentID
	t.nodes[n.ID] = n
	for i, c := range src.Children {
		n.Children[i] = t.cloneSubtree(c, n.ID)
	}
	for i, l := range src.Layers {
		n.Layers[i] = t.cloneSubtree(l, n.ID)
	}
	return n.ID
}

func (t *Tree) maxZ(parent *Node) int {
	z := 0
	for _, l := range parent.Layers {
		if n := t.nodes[l]; n.Placement.ZIndex > z {
			z = n.Placement.ZIndex
		}
	}
	return z
}

// TopZ returns the highest z-index among the layers of contextID
func (t *Tree) TopZ(contextID NodeID) int {
	p, ok := t.nodes[contextID]
	if !ok {
		return 0
	}
	return t.maxZ(p)
}

// PruneTombstones forgets tombstoned ids for which keep returns false
func (t *Tree) PruneTombstones(keep func(NodeID) bool) int {
	pruned := 0
	for id := range t.tombstones {
		if keep != nil && keep(id) {
			continue
		}
		delete(t.tombstones, id)
		pruned++
	}
	return pruned
}

func checkNodeSchema(n *Node) error {
	var bad string
	n.Attributes.Range(func(key, _ string) bool {
		if !ValidAttributeKey(key) {
			bad = key
			return false
		}
		return true
	})
	if bad != "" {
		return fmt.Errorf("invalid attribute key %q", bad)
	}
	if n.Content != nil && kindIndex[n.Kind].Void {
		return fmt.Errorf("%s has no content", n.Kind)
	}
	if n.RotationDeg != 0 && !n.Kind.Rotatable() {
		return fmt.Errorf("%s cannot rotate", n.Kind)
	}
	return nil
}
