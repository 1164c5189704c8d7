package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/Notifuse/visualeditor/internal/domain"
)

const draftsTable = "editor_drafts"

var draftColumns = []string{"id", "template_id", "name", "snapshot", "created_at", "updated_at"}

// DraftRepository stores autosaved editor trees in PostgreSQL
type DraftRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
}

// NewDraftRepository creates a new DraftRepository instance
func NewDraftRepository(db *sql.DB) domain.DraftRepository {
	return &DraftRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Save inserts the draft, or overwrites the snapshot of an existing one
func (r *DraftRepository) Save(ctx context.Context, draft *domain.Draft) error {
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}
	if len(draft.Snapshot) == 0 {
		return fmt.Errorf("draft %s has no snapshot", draft.ID)
	}

	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	var templateID interface{}
	if draft.TemplateID != "" {
		templateID = draft.TemplateID
	}

	query, args, err := r.psql.Insert(draftsTable).
		Columns(draftColumns...).
		Values(draft.ID, templateID, draft.Name, []byte(draft.Snapshot), draft.CreatedAt, draft.UpdatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			name = EXCLUDED.name,
			snapshot = EXCLUDED.snapshot,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Get retrieves a draft by ID
func (r *DraftRepository) Get(ctx context.Context, id string) (*domain.Draft, error) {
	query, args, err := r.psql.Select(draftColumns...).
		From(draftsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var (
		draft      domain.Draft
		templateID sql.NullString
		snapshot   []byte
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&draft.ID,
		&templateID,
		&draft.Name,
		&snapshot,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrNotFound{Entity: "draft", ID: id}
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	draft.TemplateID = templateID.String
	draft.Snapshot = snapshot
	return &draft, nil
}

// Delete removes a draft by ID
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.psql.Delete(draftsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "draft", ID: id}
	}
	return nil
}

// DeleteOlderThan removes drafts whose last update is before the cutoff
func (r *DraftRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := r.psql.Delete(draftsTable).
		Where(sq.Lt{"updated_at": before.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired drafts: %w", err)
	}

	return result.RowsAffected()
}
