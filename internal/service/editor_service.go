package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Notifuse/visualeditor/internal/domain"
	"github.com/Notifuse/visualeditor/pkg/doctree"
	"github.com/Notifuse/visualeditor/pkg/dragdrop"
	"github.com/Notifuse/visualeditor/pkg/history"
	"github.com/Notifuse/visualeditor/pkg/logger"
	"github.com/Notifuse/visualeditor/pkg/properties"
	"github.com/Notifuse/visualeditor/pkg/serializer"
	"github.com/Notifuse/visualeditor/pkg/tracing"
	"github.com/Notifuse/visualeditor/pkg/transform"
)

const defaultTemplateName = "Untitled template"

// gestureTransform is reported while a resize or rotation is in flight
const gestureTransform = "transforming"

// EditorServiceConfig holds the session tunables
type EditorServiceConfig struct {
	HistoryLimit     int
	Drag             dragdrop.Config
	SessionTTL       time.Duration
	AutosaveInterval time.Duration
	DraftRetention   time.Duration
	PreviewTimeout   time.Duration
}

// session is one open editor. Every engine in it shares the tree, so all
// access goes through mu.
type session struct {
	mu sync.Mutex

	id         string
	templateID string
	draftID    string
	name       string

	tree      *doctree.Tree
	history   *history.Manager
	drag      *dragdrop.Engine
	transform *transform.Engine
	binder    *properties.Binder
	scroll    *dragdrop.ScrollOffset
	notices   []dragdrop.Notice

	// revision counts committed changes; saved and drafted remember the
	// revision last written to the backend and to the drafts table
	revision int
	saved    int
	drafted  int
	saveErr  string
	lastUsed time.Time
	// closed is set once the session leaves the registry; callers still
	// holding the pointer must not touch it
	closed bool
}

func (s *session) unsaved() bool {
	return s.revision != s.saved
}

func (s *session) gesture() string {
	if s.transform.Active() {
		return gestureTransform
	}
	return s.drag.State().String()
}

// EditorService runs editing sessions over the engine packages and persists
// them through the templates backend and the drafts table
type EditorService struct {
	gateway   domain.TemplateGateway
	drafts    domain.DraftRepository
	logger    logger.Logger
	cfg       EditorServiceConfig
	previewer *serializer.Previewer
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewEditorService(gateway domain.TemplateGateway, drafts domain.DraftRepository, log logger.Logger, cfg EditorServiceConfig) *EditorService {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = history.DefaultLimit
	}
	if cfg.PreviewTimeout <= 0 {
		cfg.PreviewTimeout = serializer.DefaultRenderTimeout
	}
	return &EditorService{
		gateway:   gateway,
		drafts:    drafts,
		logger:    log,
		cfg:       cfg,
		previewer: serializer.NewPreviewerWithOptions(cfg.PreviewTimeout, serializer.DefaultMaxTemplateSize),
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// OpenSession starts editing a draft, a stored template or a blank document
func (s *EditorService) OpenSession(ctx context.Context, req domain.OpenSessionRequest) (_ *domain.SessionState, err error) {
	ctx, span := tracing.StartServiceSpan(ctx, "EditorService", "OpenSession")
	defer func() { tracing.EndSpan(span, err) }()

	var (
		tree       *doctree.Tree
		templateID = req.TemplateID
		draftID    = req.DraftID
		name       = req.Name
		savedClean bool
	)

	switch {
	case req.DraftID != "":
		draft, err := s.drafts.Get(ctx, req.DraftID)
		if err != nil {
			return nil, err
		}
		snap, err := doctree.UnmarshalSnapshot(draft.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to read draft %s: %w", draft.ID, err)
		}
		if tree, err = doctree.FromSnapshot(snap); err != nil {
			return nil, fmt.Errorf("failed to restore draft %s: %w", draft.ID, err)
		}
		templateID = draft.TemplateID
		if name == "" {
			name = draft.Name
		}

	case req.TemplateID != "":
		tpl, err := s.gateway.Get(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		if tree, err = serializer.FromDocument(tpl.HTML); err != nil {
			s.logger.WithField("template_id", req.TemplateID).Warn(fmt.Sprintf("Template markup rejected: %v", err))
			return nil, err
		}
		if name == "" {
			name = tpl.Name
		}
		savedClean = true

	default:
		tree = doctree.New()
	}

	if name == "" {
		name = defaultTemplateName
	}
	if draftID == "" {
		draftID = uuid.New().String()
	}

	sess := s.newSession(tree, templateID, draftID, name)
	if !savedClean {
		sess.saved = -1
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	open := len(s.sessions)
	s.mu.Unlock()
	tracing.AddAttribute(ctx, "session_id", sess.id)
	tracing.RecordSessions(ctx, open)

	s.logger.WithFields(map[string]interface{}{
		"session_id":  sess.id,
		"template_id": templateID,
		"draft_id":    draftID,
		"nodes":       tree.Len(),
	}).Info("Editor session opened")

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.state(sess), nil
}

func (s *EditorService) newSession(tree *doctree.Tree, templateID, draftID, name string) *session {
	id := uuid.New().String()
	log := s.logger.WithField("session_id", id)

	sess := &session{
		id:         id,
		templateID: templateID,
		draftID:    draftID,
		name:       name,
		tree:       tree,
		scroll:     &dragdrop.ScrollOffset{},
		lastUsed:   s.now(),
	}
	sess.history = history.NewManager(tree, history.WithLimit(s.cfg.HistoryLimit), history.WithLogger(log))
	sess.drag = dragdrop.NewEngine(tree, sess.history,
		dragdrop.WithConfig(s.cfg.Drag),
		dragdrop.WithLogger(log),
		dragdrop.WithScroller(sess.scroll),
		dragdrop.WithNoticeHandler(func(n dragdrop.Notice) {
			sess.notices = append(sess.notices, n)
		}),
	)
	sess.transform = transform.NewEngine(tree, sess.history, log)
	sess.binder = properties.NewBinder(tree, sess.history, log)
	sess.history.SetGestureGuard(func() bool {
		return sess.drag.Active() || sess.transform.Active()
	})
	sess.history.OnRestore(func(e *history.Entry, live []doctree.NodeID) {
		log.WithFields(map[string]interface{}{
			"entry": string(e.Type),
			"live":  len(live),
		}).Debug("History entry restored")
	})
	return sess
}

// CloseSession drops the session, keeping unsaved work as a draft
func (s *EditorService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return &domain.ErrSessionNotFound{SessionID: sessionID}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	if sess.unsaved() && sess.revision != sess.drafted {
		if err := s.persistDraft(ctx, sess); err != nil {
			return err
		}
	}
	s.logger.WithField("session_id", sessionID).Info("Editor session closed")
	return nil
}

func (s *EditorService) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, &domain.ErrSessionNotFound{SessionID: id}
	}
	return sess, nil
}

// with runs fn holding the session lock
func (s *EditorService) with(id string, fn func(sess *session) error) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return &domain.ErrSessionNotFound{SessionID: id}
	}
	sess.lastUsed = s.now()
	return fn(sess)
}

// state builds the view model and drains pending notices
func (s *EditorService) state(sess *session) *domain.SessionState {
	st := &domain.SessionState{
		SessionID:  sess.id,
		TemplateID: sess.templateID,
		DraftID:    sess.draftID,
		Name:       sess.name,
		Tree:       sess.tree.Snapshot(),
		Selection:  sess.tree.Selection(),
		CanUndo:    sess.history.CanUndo(),
		CanRedo:    sess.history.CanRedo(),
		Saved:      !sess.unsaved(),
		SaveError:  sess.saveErr,
		Gesture:    sess.gesture(),
		Canvas:     serializer.Canvas(sess.tree),
		Notices:    sess.notices,
	}
	sess.notices = nil
	return st
}

func (s *EditorService) State(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	var st *domain.SessionState
	err := s.with(sessionID, func(sess *session) error {
		st = s.state(sess)
		return nil
	})
	return st, err
}

// stateAfter runs a mutation and returns the resulting state. A non-nil
// entry from fn marks the session as changed.
func (s *EditorService) stateAfter(sessionID string, fn func(sess *session) (*history.Entry, error)) (*domain.SessionState, error) {
	var st *domain.SessionState
	err := s.with(sessionID, func(sess *session) error {
		entry, err := fn(sess)
		if err != nil {
			return err
		}
		if entry != nil {
			sess.revision++
		}
		st = s.state(sess)
		return nil
	})
	return st, err
}

// ReportLayout hands the boxes measured by the view to every engine
func (s *EditorService) ReportLayout(ctx context.Context, req domain.LayoutRequest) error {
	return s.with(req.SessionID, func(sess *session) error {
		sess.drag.SetLayout(req.Layout)
		sess.transform.SetLayout(req.Layout)
		sess.binder.SetLayout(req.Layout)
		return nil
	})
}

func (s *EditorService) BeginDrag(ctx context.Context, req domain.BeginDragRequest) (*dragdrop.Snapshot, error) {
	var snap dragdrop.Snapshot
	err := s.with(req.SessionID, func(sess *session) error {
		if sess.transform.Active() {
			return transform.ErrTransformActive
		}
		if err := sess.drag.PointerDown(req.Source, req.Point); err != nil {
			return err
		}
		snap = sess.drag.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *EditorService) DragMove(ctx context.Context, req domain.PointerRequest) (*dragdrop.Snapshot, error) {
	var snap dragdrop.Snapshot
	err := s.with(req.SessionID, func(sess *session) error {
		if _, err := sess.drag.PointerMove(dragdrop.PointerEvent{Point: req.Point, Over: req.Over}); err != nil {
			return err
		}
		snap = sess.drag.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// EndDrag drops at the pointer. A rejected drop is not an error for the
// caller: the gesture ends cancelled and the reason is in the notices.
func (s *EditorService) EndDrag(ctx context.Context, req domain.PointerRequest) (*domain.SessionState, error) {
	return s.stateAfter(req.SessionID, func(sess *session) (*history.Entry, error) {
		res, err := sess.drag.PointerUp(dragdrop.PointerEvent{Point: req.Point, Over: req.Over})
		if err != nil {
			if errors.Is(err, doctree.ErrInvalidPlacement) || errors.Is(err, doctree.ErrUnknownNodeReference) {
				return nil, nil
			}
			return nil, err
		}
		return res.Entry, nil
	})
}

// AutoScroll advances the drag auto-scroll by one frame
func (s *EditorService) AutoScroll(ctx context.Context, sessionID string) (float64, error) {
	var step float64
	err := s.with(sessionID, func(sess *session) error {
		step = sess.drag.Tick()
		return nil
	})
	return step, err
}

// CancelGesture aborts whatever gesture is running, as on Escape
func (s *EditorService) CancelGesture(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return s.stateAfter(sessionID, func(sess *session) (*history.Entry, error) {
		if sess.drag.Active() {
			if err := sess.drag.Cancel(); err != nil {
				return nil, err
			}
		}
		if sess.transform.Active() {
			if err := sess.transform.Cancel(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
}

func (s *EditorService) BeginTransform(ctx context.Context, req domain.BeginTransformRequest) (*transform.Frame, error) {
	var frame transform.Frame
	err := s.with(req.SessionID, func(sess *session) error {
		if sess.drag.Active() {
			return dragdrop.ErrGestureInFlight
		}
		var err error
		if req.Handle == transform.HandleRotate {
			frame, err = sess.transform.BeginRotate(req.NodeID, req.Point)
		} else {
			frame, err = sess.transform.BeginResize(req.NodeID, req.Handle, req.Point)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func (s *EditorService) TransformMove(ctx context.Context, req domain.PointerRequest) (*transform.Frame, error) {
	var frame transform.Frame
	err := s.with(req.SessionID, func(sess *session) error {
		var err error
		frame, err = sess.transform.Move(req.Point)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

func (s *EditorService) EndTransform(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return s.stateAfter(sessionID, func(sess *session) (*history.Entry, error) {
		return sess.transform.End()
	})
}

func (s *EditorService) Select(ctx context.Context, req domain.SelectRequest) (*domain.SessionState, error) {
	return s.stateAfter(req.SessionID, func(sess *session) (*history.Entry, error) {
		switch req.Mode {
		case domain.SelectSingle:
			return nil, sess.binder.Select(req.NodeID)
		case domain.SelectToggle:
			return nil, sess.binder.Toggle(req.NodeID)
		case domain.SelectRange:
			return nil, sess.binder.SelectRange(req.NodeID, req.ToNodeID)
		case domain.SelectAll:
			sess.binder.SelectAll()
		case domain.SelectClear:
			sess.binder.Clear()
		default:
			return nil, domain.NewValidationError(fmt.Sprintf("invalid select mode %q", req.Mode))
		}
		return nil, nil
	})
}

func (s *EditorService) Schema(ctx context.Context, req domain.SchemaRequest) (*properties.Schema, error) {
	var schema *properties.Schema
	err := s.with(req.SessionID, func(sess *session) error {
		var err error
		schema, err = sess.binder.SchemaFor(req.NodeID)
		return err
	})
	return schema, err
}

func (s *EditorService) ApplyProperty(ctx context.Context, req domain.ApplyPropertyRequest) (*domain.SessionState, error) {
	return s.stateAfter(req.SessionID, func(sess *session) (*history.Entry, error) {
		res, err := sess.binder.Apply(req.NodeID, req.Key, req.Value)
		if err != nil {
			return nil, err
		}
		return res.Entry, nil
	})
}

func (s *EditorService) Bulk(ctx context.Context, req domain.BulkRequest) (*domain.SessionState, error) {
	return s.stateAfter(req.SessionID, func(sess *session) (*history.Entry, error) {
		var (
			res *properties.BulkResult
			err error
		)
		switch req.Operation {
		case domain.BulkAlign:
			res, err = sess.binder.Align(req.Edge)
		case domain.BulkDistribute:
			res, err = sess.binder.Distribute(req.Axis)
		case domain.BulkDuplicate:
			res, err = sess.binder.DuplicateAll()
		case domain.BulkDelete:
			res, err = sess.binder.DeleteAll()
		default:
			return nil, domain.NewValidationError(fmt.Sprintf("invalid bulk operation %q", req.Operation))
		}
		if err != nil {
			return nil, err
		}
		return res.Entry, nil
	})
}

func (s *EditorService) Undo(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return s.stateAfter(sessionID, func(sess *session) (*history.Entry, error) {
		return sess.history.Undo()
	})
}

func (s *EditorService) Redo(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return s.stateAfter(sessionID, func(sess *session) (*history.Entry, error) {
		return sess.history.Redo()
	})
}

func (s *EditorService) Export(ctx context.Context, sessionID string) (*domain.ExportResponse, error) {
	var resp *domain.ExportResponse
	err := s.with(sessionID, func(sess *session) error {
		doc := serializer.ToDocument(sess.tree)
		resp = &domain.ExportResponse{Document: doc, Page: serializer.ExportDocument(doc, sess.name)}
		return nil
	})
	return resp, err
}

// Preview renders the exported page with test data substituted
func (s *EditorService) Preview(ctx context.Context, req domain.PreviewRequest) (string, error) {
	var (
		doc  *serializer.Document
		name string
	)
	err := s.with(req.SessionID, func(sess *session) error {
		doc = serializer.ToDocument(sess.tree)
		name = sess.name
		return nil
	})
	if err != nil {
		return "", err
	}
	// rendering runs outside the session lock, it can take a while
	return s.previewer.Preview(ctx, doc, name, req.Data)
}

// Save writes the document to the templates backend. A failure never
// touches the tree; it only leaves the session marked unsaved.
func (s *EditorService) Save(ctx context.Context, req domain.SaveRequest) (_ *domain.SessionState, err error) {
	ctx, span := tracing.StartServiceSpan(ctx, "EditorService", "Save")
	defer func() { tracing.EndSpan(span, err) }()
	tracing.AddAttribute(ctx, "session_id", req.SessionID)

	var st *domain.SessionState
	err = s.with(req.SessionID, func(sess *session) error {
		if req.Name != "" {
			sess.name = req.Name
		}
		doc := serializer.ToDocument(sess.tree)
		config, err := sess.tree.Snapshot().Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		body := &domain.SaveTemplateRequest{
			Name:      sess.name,
			HTML:      doc.HTML,
			CSS:       doc.CSS,
			Config:    config,
			Variables: doc.Variables,
		}

		var tpl *domain.Template
		if sess.templateID == "" {
			tpl, err = s.gateway.Create(ctx, body)
		} else {
			tpl, err = s.gateway.Update(ctx, sess.templateID, body)
		}
		if err != nil {
			sess.saveErr = err.Error()
			s.logger.WithFields(map[string]interface{}{
				"session_id":  sess.id,
				"template_id": sess.templateID,
			}).Error(fmt.Sprintf("Failed to save template: %v", err))
			return fmt.Errorf("failed to save template: %w", err)
		}

		if tpl != nil && tpl.ID != "" {
			sess.templateID = tpl.ID
		}
		sess.saved = sess.revision
		sess.saveErr = ""
		st = s.state(sess)
		return nil
	})
	return st, err
}

func (s *EditorService) ListTemplates(ctx context.Context) ([]domain.TemplateSummary, error) {
	list, err := s.gateway.List(ctx)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list templates: %v", err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return list, nil
}

func (s *EditorService) DuplicateTemplate(ctx context.Context, id string) (*domain.TemplateSummary, error) {
	summary, err := s.gateway.Duplicate(ctx, id)
	if err != nil {
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to duplicate template: %v", err))
		return nil, fmt.Errorf("failed to duplicate template: %w", err)
	}
	return summary, nil
}

func (s *EditorService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.gateway.Delete(ctx, id); err != nil {
		s.logger.WithField("template_id", id).Error(fmt.Sprintf("Failed to delete template: %v", err))
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// persistDraft writes the session tree to the drafts table. Caller holds
// sess.mu.
func (s *EditorService) persistDraft(ctx context.Context, sess *session) error {
	data, err := sess.tree.Snapshot().Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	draft := &domain.Draft{
		ID:         sess.draftID,
		TemplateID: sess.templateID,
		Name:       sess.name,
		Snapshot:   data,
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"session_id": sess.id,
			"draft_id":   sess.draftID,
		}).Error(fmt.Sprintf("Failed to autosave draft: %v", err))
		return fmt.Errorf("failed to save draft: %w", err)
	}
	sess.drafted = sess.revision
	return nil
}

func (s *EditorService) snapshotSessions() []*session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Autosave persists changed sessions as drafts, closes sessions idle past
// the TTL and prunes old drafts. Failures are logged and the pass goes on.
func (s *EditorService) Autosave(ctx context.Context) {
	ctx, span := tracing.StartServiceSpan(ctx, "EditorService", "Autosave")
	defer span.End()

	now := s.now()
	saved, expired := 0, 0

	for _, sess := range s.snapshotSessions() {
		if s.autosaveSession(ctx, sess, now, &saved) {
			expired++
			s.logger.WithField("session_id", sess.id).Info("Editor session expired")
		}
	}

	if s.cfg.DraftRetention > 0 {
		n, err := s.drafts.DeleteOlderThan(ctx, now.Add(-s.cfg.DraftRetention))
		if err != nil {
			s.logger.Error(fmt.Sprintf("Failed to prune drafts: %v", err))
		} else if n > 0 {
			s.logger.WithField("count", n).Debug("Old drafts pruned")
		}
	}

	tracing.RecordSessions(ctx, s.Sessions())
	if saved > 0 || expired > 0 {
		s.logger.WithFields(map[string]interface{}{
			"drafts_saved":     saved,
			"sessions_expired": expired,
		}).Debug("Autosave pass finished")
	}
}

// autosaveSession drafts one session and reports whether it expired.
// Expiry is decided and applied while holding sess.mu, so a request that
// refreshed lastUsed in the meantime keeps the session open. Registry
// removal nests s.mu inside sess.mu; nothing takes them the other way.
func (s *EditorService) autosaveSession(ctx context.Context, sess *session, now time.Time, saved *int) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return false
	}

	// gestures in flight leave the tree mid-change, skip them this round
	if sess.drag.Active() || sess.transform.Active() {
		return false
	}
	if sess.unsaved() && sess.revision != sess.drafted {
		if err := s.persistDraft(ctx, sess); err == nil {
			*saved++
		}
	}

	if s.cfg.SessionTTL <= 0 || now.Sub(sess.lastUsed) <= s.cfg.SessionTTL {
		return false
	}
	// a failed draft write keeps the session until its work is stored
	if sess.unsaved() && sess.revision != sess.drafted {
		return false
	}
	sess.closed = true
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	return true
}

// RunAutosave calls Autosave on every interval tick until ctx ends
func (s *EditorService) RunAutosave(ctx context.Context) error {
	interval := s.cfg.AutosaveInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// last pass so nothing typed before shutdown is lost
			s.Autosave(context.Background())
			return nil
		case <-ticker.C:
			s.Autosave(ctx)
		}
	}
}

// Sessions returns the number of open sessions
func (s *EditorService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
