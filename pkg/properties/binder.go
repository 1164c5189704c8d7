package properties

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/geom"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

// ErrInvalidValue is returned when a value breaks its descriptor's constraints
var ErrInvalidValue = errors.New("invalid property value")

// ValueError describes a rejected value
type ValueError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Value, e.Key, e.Reason)
}

func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}

// Field is a descriptor with the node's current value
type Field struct {
	Descriptor
	Value string `json:"value"`
}

type ResolvedGroup struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Schema is the property panel of one node
type Schema struct {
	NodeID      doctree.NodeID  `json:"nodeId"`
	Kind        doctree.Kind    `json:"kind"`
	DisplayName string          `json:"displayName"`
	Groups      []ResolvedGroup `json:"groups"`
}

// Field returns the resolved field for key
func (s *Schema) Field(key string) (Field, bool) {
	for _, g := range s.Groups {
		for _, f := range g.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return Field{}, false
}

// ApplyResult reports what an applied property did
type ApplyResult struct {
	NodeID doctree.NodeID                    `json:"nodeId"`
	Value  string                            `json:"value"`
	Entry  *history.Entry                    `json:"-"`
	Remap  map[doctree.NodeID]doctree.NodeID `json:"remap,omitempty"`
}

// Binder keeps the selection and writes property edits back to the tree
type Binder struct {
	tree    *doctree.Tree
	history *history.Manager
	logger  logger.Logger
	layout  geom.LayoutReport
}

func NewBinder(tree *doctree.Tree, h *history.Manager, l logger.Logger) *Binder {
	return &Binder{tree: tree, history: h, logger: l}
}

// SetLayout stores the measured boxes used by bulk alignment
func (b *Binder) SetLayout(report geom.LayoutReport) {
	b.layout = report
}

func (b *Binder) Selection() []doctree.NodeID {
	return b.tree.Selection()
}

func (b *Binder) Select(id doctree.NodeID) error {
	return b.tree.Select(id)
}

func (b *Binder) SelectRange(from, to doctree.NodeID) error {
	return b.tree.SelectRange(from, to)
}

func (b *Binder) SelectAll() {
	b.tree.SelectAll()
}

func (b *Binder) Toggle(id doctree.NodeID) error {
	return b.tree.ToggleSelect(id)
}

func (b *Binder) Clear() {
	b.tree.ClearSelection()
}

// SchemaFor builds the property panel of a node from its live attributes,
// falling back to the kind defaults
func (b *Binder) SchemaFor(id doctree.NodeID) (*Schema, error) {
	n, err := b.tree.Get(id)
	if err != nil {
		b.forget(id)
		return nil, err
	}
	groups, ok := GroupsFor(n.Kind)
	if !ok {
		return nil, fmt.Errorf("no properties for %s: %w", n.Kind, doctree.ErrSchemaMismatch)
	}

	s := &Schema{NodeID: n.ID, Kind: n.Kind, DisplayName: n.Kind.DisplayName()}
	for _, g := range groups {
		rg := ResolvedGroup{Name: g.Name, Fields: make([]Field, 0, len(g.Fields))}
		for _, d := range g.Fields {
			rg.Fields = append(rg.Fields, Field{Descriptor: d, Value: currentValue(n, d)})
		}
		s.Groups = append(s.Groups, rg)
	}
	return s, nil
}

func currentValue(n *doctree.Node, d Descriptor) string {
	switch d.Target {
	case TargetContent:
		return n.ContentString()
	case TargetAction:
		return ""
	}
	if v, ok := n.Attributes.Get(d.Key); ok {
		return v
	}
	v, _ := doctree.DefaultAttribute(n.Kind, d.Key)
	return v
}

// forget drops a stale id from the selection
func (b *Binder) forget(id doctree.NodeID) {
	sel := b.tree.Selection()
	for i, s := range sel {
		if s == id {
			b.tree.SetSelection(append(sel[:i], sel[i+1:]...))
			return
		}
	}
}

// Apply validates value against the descriptor of key and writes it to the
// node, recording one history entry when something changed
func (b *Binder) Apply(id doctree.NodeID, key, value string) (*ApplyResult, error) {
	n, err := b.tree.Get(id)
	if err != nil {
		b.forget(id)
		b.logger.WithField("node_id", string(id)).Warn("Property edit for unknown node ignored")
		return nil, err
	}
	d, ok := Lookup(n.Kind, key)
	if !ok {
		b.logger.WithFields(map[string]interface{}{
			"node_id": string(id),
			"kind":    string(n.Kind),
			"key":     key,
		}).Warn("Property not defined for node kind, edit ignored")
		return nil, fmt.Errorf("%s has no property %q: %w", n.Kind, key, doctree.ErrSchemaMismatch)
	}

	if d.Target == TargetAction {
		return b.runAction(n, d)
	}

	normalized, err := Normalize(d, value)
	if err != nil {
		return nil, err
	}

	switch d.Target {
	case TargetContent:
		return b.applyContent(n, normalized)
	case TargetStructural:
		return b.applyStructural(n, d, normalized)
	default:
		return b.applyAttribute(n, d, normalized)
	}
}

func (b *Binder) applyAttribute(n *doctree.Node, d Descriptor, value string) (*ApplyResult, error) {
	res := &ApplyResult{NodeID: n.ID, Value: value}
	if cur, ok := n.Attributes.Get(d.Key); ok && cur == value {
		return res, nil
	}
	before := n.Attributes.Clone()
	if err := b.tree.SetAttribute(n.ID, d.Key, value); err != nil {
		return nil, err
	}
	after, err := b.tree.Get(n.ID)
	if err != nil {
		return nil, err
	}
	res.Entry = b.history.RecordChange(history.EntryAttribute,
		history.NewAttributeChange(n.ID, before, after.Attributes), n.ID)
	return res, nil
}

func (b *Binder) applyContent(n *doctree.Node, value string) (*ApplyResult, error) {
	old := n.Content
	if err := b.tree.SetContent(n.ID, &value); err != nil {
		return nil, err
	}
	after, err := b.tree.Get(n.ID)
	if err != nil {
		return nil, err
	}
	res := &ApplyResult{NodeID: n.ID, Value: after.ContentString()}
	if old != nil && *old == after.ContentString() {
		return res, nil
	}
	res.Entry = b.history.RecordChange(history.EntryContent,
		&history.ContentChange{NodeID: n.ID, Old: old, New: after.Content}, n.ID)
	return res, nil
}

// applyStructural replaces the node under a fresh id. The snapshot entry
// brings the old node back on undo.
func (b *Binder) applyStructural(n *doctree.Node, d Descriptor, value string) (*ApplyResult, error) {
	if currentValue(n, d) == value {
		return &ApplyResult{NodeID: n.ID, Value: value}, nil
	}
	before := b.history.Capture()
	newID, err := b.tree.Replace(n.ID, n.Kind, doctree.NewAttributes(d.Key, value))
	if err != nil {
		return nil, err
	}
	remap := map[doctree.NodeID]doctree.NodeID{n.ID: newID}
	entry := b.history.Record(history.EntryReplace, history.Data{
		Before:   before,
		Affected: []doctree.NodeID{n.ID, newID},
		Remap:    remap,
	})
	if !b.tree.IsSelected(newID) {
		_ = b.tree.Select(newID)
	}
	b.logger.WithFields(map[string]interface{}{
		"old_id": string(n.ID),
		"new_id": string(newID),
		"key":    d.Key,
	}).Debug("Node replaced by structural property")
	return &ApplyResult{NodeID: newID, Value: value, Entry: entry, Remap: remap}, nil
}

func (b *Binder) runAction(n *doctree.Node, d Descriptor) (*ApplyResult, error) {
	before := b.history.Capture()
	switch d.Key {
	case ActionDuplicate:
		copyID, err := b.tree.Duplicate(n.ID)
		if err != nil {
			return nil, err
		}
		entry := b.history.RecordSnapshot(history.EntryDuplicate, before, copyID)
		_ = b.tree.Select(copyID)
		return &ApplyResult{NodeID: copyID, Entry: entry}, nil
	case ActionDelete:
		removed, err := b.tree.Remove(n.ID)
		if err != nil {
			return nil, err
		}
		entry := b.history.RecordSnapshot(history.EntryRemove, before, removed...)
		return &ApplyResult{NodeID: n.ID, Entry: entry}, nil
	}
	return nil, fmt.Errorf("unknown action %q: %w", d.Key, doctree.ErrSchemaMismatch)
}

// Normalize checks value against d and returns the form written to the node
func Normalize(d Descriptor, value string) (string, error) {
	switch d.Type {
	case FieldRange:
		return normalizeRange(d, value)
	case FieldColor:
		v := strings.TrimSpace(value)
		if !govalidator.IsHexcolor(v) {
			return "", &ValueError{Key: d.Key, Value: value, Reason: "expected a hex color"}
		}
		if !strings.HasPrefix(v, "#") {
			v = "#" + v
		}
		return strings.ToLower(v), nil
	case FieldURL:
		v := strings.TrimSpace(value)
		if v == "" {
			return "", &ValueError{Key: d.Key, Value: value, Reason: "must not be empty"}
		}
		return v, nil
	case FieldSelect:
		for _, o := range d.Options {
			if o.Value == value {
				return value, nil
			}
		}
		return "", &ValueError{Key: d.Key, Value: value, Reason: "not one of the options"}
	}
	return value, nil
}

// normalizeRange parses a number with an optional unit suffix, clamps it to
// the descriptor bounds and snaps it to the step
func normalizeRange(d Descriptor, value string) (string, error) {
	raw := strings.TrimSpace(value)
	if d.Unit != "" {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, d.Unit))
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", &ValueError{Key: d.Key, Value: value, Reason: "not a number"}
	}
	f = geom.Clamp(f, d.Min, d.Max)
	if d.Step > 0 {
		f = d.Min + float64(int64((f-d.Min)/d.Step+0.5))*d.Step
		f = geom.Clamp(f, d.Min, d.Max)
	}
	return strconv.FormatFloat(geom.Round(f, 4), 'f', -1, 64) + d.Unit, nil
}
