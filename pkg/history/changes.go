package history

import (
	"github.com/Notifuse/visualeditor/pkg/doctree"
)

// Reversible is an inverse payload: a change that knows how to undo and
// redo itself without a full snapshot.
type Reversible interface {
	Revert(t *doctree.Tree) error
	Reapply(t *doctree.Tree) error
}

// AttrDelta is one attribute transition. A missing side means the key was
// absent.
type AttrDelta struct {
	Key    string `json:"key"`
	Old    string `json:"old,omitempty"`
	HadOld bool   `json:"hadOld"`
	New    string `json:"new,omitempty"`
	HasNew bool   `json:"hasNew"`
}

// AttributeChange records attribute edits on one node
type AttributeChange struct {
	NodeID doctree.NodeID `json:"nodeId"`
	Deltas []AttrDelta    `json:"deltas"`
}

// NewAttributeChange compares before and after and keeps the differing keys
func NewAttributeChange(id doctree.NodeID, before, after doctree.Attributes) *AttributeChange {
	c := &AttributeChange{NodeID: id}
	for _, k := range before.Keys() {
		old, _ := before.Get(k)
		nv, ok := after.Get(k)
		if ok && nv == old {
			continue
		}
		c.Deltas = append(c.Deltas, AttrDelta{Key: k, Old: old, HadOld: true, New: nv, HasNew: ok})
	}
	for _, k := range after.Keys() {
		if _, ok := before.Get(k); ok {
			continue
		}
		c.Deltas = append(c.Deltas, AttrDelta{Key: k, New: after.Value(k), HasNew: true})
	}
	return c
}

// Empty reports whether the change does nothing
func (c *AttributeChange) Empty() bool {
	return len(c.Deltas) == 0
}

func (c *AttributeChange) Revert(t *doctree.Tree) error {
	for i := len(c.Deltas) - 1; i >= 0; i-- {
		d := c.Deltas[i]
		if err := setOrDelete(t, c.NodeID, d.Key, d.Old, d.HadOld); err != nil {
			return err
		}
	}
	return nil
}

func (c *AttributeChange) Reapply(t *doctree.Tree) error {
	for _, d := range c.Deltas {
		if err := setOrDelete(t, c.NodeID, d.Key, d.New, d.HasNew); err != nil {
			return err
		}
	}
	return nil
}

func setOrDelete(t *doctree.Tree, id doctree.NodeID, key, value string, present bool) error {
	if present {
		return t.SetAttribute(id, key, value)
	}
	return t.DeleteAttribute(id, key)
}

// ContentChange records a content edit
type ContentChange struct {
	NodeID doctree.NodeID `json:"nodeId"`
	Old    *string        `json:"old"`
	New    *string        `json:"new"`
}

func (c *ContentChange) Revert(t *doctree.Tree) error {
	return t.SetContent(c.NodeID, c.Old)
}

func (c *ContentChange) Reapply(t *doctree.Tree) error {
	return t.SetContent(c.NodeID, c.New)
}

// PlacementChange records a free node being repositioned in place
type PlacementChange struct {
	NodeID doctree.NodeID    `json:"nodeId"`
	Old    doctree.Placement `json:"old"`
	New    doctree.Placement `json:"new"`
}

func (c *PlacementChange) Revert(t *doctree.Tree) error {
	return t.SetPlacement(c.NodeID, c.Old)
}

func (c *PlacementChange) Reapply(t *doctree.Tree) error {
	return t.SetPlacement(c.NodeID, c.New)
}

// RotationChange records a rotation gesture
type RotationChange struct {
	NodeID doctree.NodeID `json:"nodeId"`
	Old    float64        `json:"old"`
	New    float64        `json:"new"`
}

func (c *RotationChange) Revert(t *doctree.Tree) error {
	return t.SetRotation(c.NodeID, c.Old)
}

func (c *RotationChange) Reapply(t *doctree.Tree) error {
	return t.SetRotation(c.NodeID, c.New)
}

// CompositeChange groups changes recorded as one entry. Revert runs them
// backwards.
type CompositeChange []Reversible

func (c CompositeChange) Revert(t *doctree.Tree) error {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].Revert(t); err != nil {
			return err
		}
	}
	return nil
}

func (c CompositeChange) Reapply(t *doctree.Tree) error {
	for _, ch := range c {
		if err := ch.Reapply(t); err != nil {
			return err
		}
	}
	return nil
}
