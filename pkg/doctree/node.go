package doctree

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// NodeID identifies a node for its whole lifetime. Ids are never reused.
type NodeID string

// IDGenerator produces candidate node ids
type IDGenerator func() NodeID

// UUIDGenerator is the default generator
func UUIDGenerator() NodeID {
	return NodeID(uuid.NewString())
}

// SequentialIDs returns a generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Int64
	return func() NodeID {
		return NodeID(prefix + "-" + strconv.FormatInt(n.Add(1), 10))
	}
}

// PlacementMode tells whether a node is laid out by flow or positioned
type PlacementMode string

const (
	PlacementFlow PlacementMode = "flow"
	PlacementFree PlacementMode = "free"
)

// Placement of a node inside its parent. X and Y are relative to the
// positioning context and only meaningful for free nodes.
type Placement struct {
	Mode   PlacementMode `json:"mode"`
	X      float64       `json:"x,omitempty"`
	Y      float64       `json:"y,omitempty"`
	ZIndex int           `json:"zIndex,omitempty"`
}

func Flow() Placement {
	return Placement{Mode: PlacementFlow}
}

func Free(x, y float64, z int) Placement {
	return Placement{Mode: PlacementFree, X: x, Y: y, ZIndex: z}
}

func (p Placement) IsFree() bool {
	return p.Mode == PlacementFree
}

func (p Placement) String() string {
	if p.IsFree() {
		return fmt.Sprintf("Free{x:%g,y:%g,z:%d}", p.X, p.Y, p.ZIndex)
	}
	return "Flow"
}

// Node is one element of the document. Children holds flow children in
// order; Layers holds the free nodes this node is positioning context for.
type Node struct {
	ID          NodeID     `json:"id"`
	Kind        Kind       `json:"kind"`
	Attributes  Attributes `json:"attributes"`
	Content     *string    `json:"content,omitempty"`
	Children    []NodeID   `json:"children,omitempty"`
	Layers      []NodeID   `json:"layers,omitempty"`
	ParentID    NodeID     `json:"parentId,omitempty"`
	Placement   Placement  `json:"placement"`
	RotationDeg float64    `json:"rotationDeg"`
}

// NewNode builds a detached node of kind k with the kind defaults applied.
// The id is assigned when the node is inserted.
func NewNode(k Kind) *Node {
	n := &Node{
		Kind:       k,
		Attributes: DefaultAttributes(k),
		Placement:  Flow(),
	}
	if spec, ok := kindIndex[k]; ok {
		n.Placement.Mode = spec.DefaultPlacement
		if spec.DefaultContent != nil {
			c := *spec.DefaultContent
			n.Content = &c
		}
	}
	return n
}

// Clone returns a deep copy of n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	out.Attributes = n.Attributes.Clone()
	if n.Content != nil {
		c := *n.Content
		out.Content = &c
	}
	out.Children = cloneIDs(n.Children)
	out.Layers = cloneIDs(n.Layers)
	return &out
}

// ContentString returns the content or the empty string
func (n *Node) ContentString() string {
	if n.Content == nil {
		return ""
	}
	return *n.Content
}

func cloneIDs(ids []NodeID) []NodeID {
	if ids == nil {
		return nil
	}
	out := make([]NodeID, len(ids))
	copy(out, ids)
	return out
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	i := indexOf(ids, id)
	if i < 0 {
		return ids
	}
	return append(ids[:i:i], ids[i+1:]...)
}

func insertID(ids []NodeID, index int, id NodeID) []NodeID {
	out := make([]NodeID, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}
