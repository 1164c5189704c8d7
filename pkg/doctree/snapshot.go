package doctree

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a plain, serialisable copy of the whole tree. Nodes are
// listed in document order.
type Snapshot struct {
	Root  NodeID `json:"root"`
	Nodes []Node `json:"nodes"`
}

// Snapshot captures the current tree
func (t *Tree) Snapshot() *Snapshot {
	s := &Snapshot{Root: t.root, Nodes: make([]Node, 0, len(t.nodes))}
	_ = t.Walk(func(n *Node, _ int) error {
		s.Nodes = append(s.Nodes, *n)
		return nil
	})
	return s
}

// Contains reports whether the snapshot holds id
func (s *Snapshot) Contains(id NodeID) bool {
	if s == nil {
		return false
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return true
		}
	}
	return false
}

// Node returns the snapshot copy of id
func (s *Snapshot) Node(id NodeID) (*Node, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return s.Nodes[i].Clone(), true
		}
	}
	return nil, false
}

func (s *Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot produced by Marshal
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// Restore replaces the whole tree with s. The snapshot is validated before
// anything changes. Live nodes absent from s are tombstoned, ids present in
// s are revived, and the selection is cleared.
func (t *Tree) Restore(s *Snapshot) error {
	if s == nil {
		return opErr("restore", "", ErrInvalidPlacement, "nil snapshot")
	}
	nodes := make(map[NodeID]*Node, len(s.Nodes))
	for i := range s.Nodes {
		n := s.Nodes[i].Clone()
		if _, dup := nodes[n.ID]; dup {
			return opErr("restore", n.ID, ErrInvalidPlacement, "duplicate id")
		}
		nodes[n.ID] = n
	}
	if err := validate(nodes, s.Root); err != nil {
		return err
	}

	for id := range t.nodes {
		if _, ok := nodes[id]; !ok {
			t.tombstones[id] = struct{}{}
		}
	}
	for id := range nodes {
		delete(t.tombstones, id)
	}
	t.nodes = nodes
	t.root = s.Root
	t.selection = nil
	return nil
}

// FromSnapshot builds a tree from a snapshot
func FromSnapshot(s *Snapshot, opts ...Option) (*Tree, error) {
	t := &Tree{
		nodes:      make(map[NodeID]*Node),
		tombstones: make(map[NodeID]struct{}),
		newID:      UUIDGenerator,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Restore(s); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the structural invariants: a single root, every
// reference resolves, each non-root node is owned by exactly one parent
// list matching its placement, no cycles, and only accepting kinds have
// children.
func (t *Tree) Validate() error {
	return validate(t.nodes, t.root)
}

func validate(nodes map[NodeID]*Node, root NodeID) error {
	const op = "validate"
	r, ok := nodes[root]
	if !ok {
		return opErr(op, root, ErrUnknownNodeReference, "missing root")
	}
	if r.ParentID != "" {
		return opErr(op, root, ErrInvalidPlacement, "root has a parent")
	}

	owners := make(map[NodeID]NodeID, len(nodes))
	for id, n := range nodes {
		if !n.Kind.Valid() {
			return opErr(op, id, ErrSchemaMismatch, "unknown kind %q", n.Kind)
		}
		if n.ID != id {
			return opErr(op, id, ErrInvalidPlacement, "id mismatch")
		}
		if (len(n.Children) > 0 || len(n.Layers) > 0) && !n.Kind.AcceptsChildren() {
			return opErr(op, id, ErrInvalidPlacement, "%s cannot have children", n.Kind)
		}
		if err := checkNodeSchema(n); err != nil {
			return opErr(op, id, ErrSchemaMismatch, "%v", err)
		}
		lists := [][]NodeID{n.Children, n.Layers}
		for li, list := range lists {
			for _, c := range list {
				child, ok := nodes[c]
				if !ok {
					return opErr(op, c, ErrUnknownNodeReference, "child of %s", id)
				}
				if _, owned := owners[c]; owned {
					return opErr(op, c, ErrInvalidPlacement, "owned by more than one parent")
				}
				owners[c] = id
				if child.ParentID != id {
					return opErr(op, c, ErrInvalidPlacement, "parent mismatch")
				}
				if child.Placement.IsFree() != (li == 1) {
					return opErr(op, c, ErrInvalidPlacement, "placement does not match owning list")
				}
			}
		}
	}

	for id := range nodes {
		if id == root {
			if _, owned := owners[id]; owned {
				return opErr(op, id, ErrInvalidPlacement, "root is owned")
			}
			continue
		}
		if _, owned := owners[id]; !owned {
			return opErr(op, id, ErrInvalidPlacement, "orphan node")
		}
	}

	// every node reaches the root; with single ownership that rules out cycles
	for id := range nodes {
		seen := 0
		cur := id
		for cur != root {
			cur = nodes[cur].ParentID
			seen++
			if seen > len(nodes) {
				return opErr(op, id, ErrInvalidPlacement, "cycle")
			}
		}
	}
	return nil
}
