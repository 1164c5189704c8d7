package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

// DefaultLimit is the number of entries kept before the oldest is evicted
const DefaultLimit = 50

var (
	ErrNothingToUndo     = errors.New("nothing to undo")
	ErrNothingToRedo     = errors.New("nothing to redo")
	ErrGestureInProgress = errors.New("a gesture is in progress")
)

// EntryType names the user action an entry undoes
type EntryType string

const (
	EntryInsert    EntryType = "insert"
	EntryMove      EntryType = "move"
	EntryRemove    EntryType = "remove"
	EntryDuplicate EntryType = "duplicate"
	EntryAttribute EntryType = "attribute"
	EntryContent   EntryType = "content"
	EntryPlacement EntryType = "placement"
	EntryResize    EntryType = "resize"
	EntryRotate    EntryType = "rotate"
	EntryReplace   EntryType = "replace"
	EntryBulk      EntryType = "bulk"
)

// Entry is one undoable step. Either Before (a snapshot taken before the
// action) or Change (an inverse payload) is set. After is filled on undo so
// that redo can restore it.
type Entry struct {
	Type            EntryType                         `json:"type"`
	Timestamp       time.Time                         `json:"timestamp"`
	Before          *doctree.Snapshot                 `json:"before,omitempty"`
	After           *doctree.Snapshot                 `json:"after,omitempty"`
	Change          Reversible                        `json:"-"`
	AffectedNodeIDs []doctree.NodeID                  `json:"affectedNodeIds,omitempty"`
	Remap           map[doctree.NodeID]doctree.NodeID `json:"remap,omitempty"`
}

// Data is what callers hand to Record
type Data struct {
	Before   *doctree.Snapshot
	Change   Reversible
	Affected []doctree.NodeID
	Remap    map[doctree.NodeID]doctree.NodeID
}

// RestoreListener is told which nodes to re-bind after undo or redo. The
// view re-attaches drag handles and editing hooks for them.
type RestoreListener func(entry *Entry, live []doctree.NodeID)

// Manager is a linear, bounded undo/redo stack over one tree.
type Manager struct {
	tree      *doctree.Tree
	entries   []*Entry
	cursor    int
	limit     int
	logger    logger.Logger
	now       func() time.Time
	busy      func() bool
	listeners []RestoreListener
}

// Option configures a Manager
type Option func(*Manager)

func WithLimit(limit int) Option {
	return func(m *Manager) {
		if limit > 0 {
			m.limit = limit
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithGestureGuard makes Undo and Redo fail while busy reports true
func WithGestureGuard(busy func() bool) Option {
	return func(m *Manager) {
		m.busy = busy
	}
}

// NewManager creates a manager for tree
func NewManager(tree *doctree.Tree, opts ...Option) *Manager {
	m := &Manager{
		tree:   tree,
		limit:  DefaultLimit,
		logger: logger.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnRestore registers a listener called after every undo and redo
func (m *Manager) OnRestore(fn RestoreListener) {
	m.listeners = append(m.listeners, fn)
}

// SetGestureGuard replaces the gesture guard
func (m *Manager) SetGestureGuard(busy func() bool) {
	m.busy = busy
}

// Capture takes the pre-action snapshot for a snapshot entry
func (m *Manager) Capture() *doctree.Snapshot {
	return m.tree.Snapshot()
}

// RecordSnapshot records a structural action using the snapshot taken
// before it
func (m *Manager) RecordSnapshot(typ EntryType, before *doctree.Snapshot, affected ...doctree.NodeID) *Entry {
	return m.Record(typ, Data{Before: before, Affected: affected})
}

// RecordChange records a high-frequency action with its inverse payload
func (m *Manager) RecordChange(typ EntryType, change Reversible, affected ...doctree.NodeID) *Entry {
	return m.Record(typ, Data{Change: change, Affected: affected})
}

// Record appends an entry. Any redo tail is dropped and the oldest entry
// is evicted once the limit is exceeded. Data without a snapshot or change
// records the current state, making its undo a no-op.
func (m *Manager) Record(typ EntryType, data Data) *Entry {
	if data.Before == nil && data.Change == nil {
		data.Before = m.tree.Snapshot()
	}
	e := &Entry{
		Type:            typ,
		Timestamp:       m.now(),
		Before:          data.Before,
		Change:          data.Change,
		AffectedNodeIDs: data.Affected,
		Remap:           data.Remap,
	}

	if m.cursor < len(m.entries) {
		m.entries = m.entries[:m.cursor]
	}
	m.entries = append(m.entries, e)

	evicted := 0
	for len(m.entries) > m.limit {
		m.entries[0] = nil
		m.entries = m.entries[1:]
		evicted++
	}
	m.cursor = len(m.entries)

	if evicted > 0 {
		pruned := m.tree.PruneTombstones(m.referenced)
		m.logger.WithFields(map[string]interface{}{
			"evicted": evicted,
			"pruned":  pruned,
		}).Debug("History limit reached, oldest entries evicted")
	}
	m.logger.WithField("entry_type", string(typ)).Debug("History entry recorded")
	return e
}

// referenced reports whether any kept entry may bring id back
func (m *Manager) referenced(id doctree.NodeID) bool {
	for _, e := range m.entries {
		if e.Before.Contains(id) || e.After.Contains(id) {
			return true
		}
		for _, a := range e.AffectedNodeIDs {
			if a == id {
				return true
			}
		}
		for k, v := range e.Remap {
			if k == id || v == id {
				return true
			}
		}
	}
	return false
}

// Undo reverts the entry under the cursor
func (m *Manager) Undo() (*Entry, error) {
	if m.busy != nil && m.busy() {
		return nil, ErrGestureInProgress
	}
	if m.cursor == 0 {
		return nil, ErrNothingToUndo
	}
	e := m.entries[m.cursor-1]

	if e.Before != nil {
		after := m.tree.Snapshot()
		if err := m.tree.Restore(e.Before); err != nil {
			return nil, fmt.Errorf("failed to undo %s: %w", e.Type, err)
		}
		e.After = after
	} else {
		if err := e.Change.Revert(m.tree); err != nil {
			return nil, fmt.Errorf("failed to undo %s: %w", e.Type, err)
		}
		m.tree.ClearSelection()
	}
	m.cursor--
	m.notify(e)
	return e, nil
}

// Redo re-applies the entry after the cursor
func (m *Manager) Redo() (*Entry, error) {
	if m.busy != nil && m.busy() {
		return nil, ErrGestureInProgress
	}
	if m.cursor >= len(m.entries) {
		return nil, ErrNothingToRedo
	}
	e := m.entries[m.cursor]

	if e.Before != nil {
		if e.After == nil {
			return nil, fmt.Errorf("failed to redo %s: missing after state", e.Type)
		}
		if err := m.tree.Restore(e.After); err != nil {
			return nil, fmt.Errorf("failed to redo %s: %w", e.Type, err)
		}
	} else {
		if err := e.Change.Reapply(m.tree); err != nil {
			return nil, fmt.Errorf("failed to redo %s: %w", e.Type, err)
		}
		m.tree.ClearSelection()
	}
	m.cursor++
	m.notify(e)
	return e, nil
}

func (m *Manager) notify(e *Entry) {
	if len(m.listeners) == 0 {
		return
	}
	live := m.tree.IDs()
	for _, fn := range m.listeners {
		fn(e, live)
	}
}

func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

func (m *Manager) CanRedo() bool {
	return m.cursor < len(m.entries)
}

// Len returns the number of stored entries
func (m *Manager) Len() int {
	return len(m.entries)
}

// Cursor returns the number of entries that can be undone
func (m *Manager) Cursor() int {
	return m.cursor
}

// Limit returns the maximum number of entries
func (m *Manager) Limit() int {
	return m.limit
}

// Entries returns the stored entries, oldest first
func (m *Manager) Entries() []*Entry {
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Clear drops every entry and releases all tombstones
func (m *Manager) Clear() {
	m.entries = nil
	m.cursor = 0
	m.tree.PruneTombstones(nil)
}
