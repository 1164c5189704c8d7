package domain

import (
	"context"
	"encoding/json"
	"time"
)

//go:generate mockgen -destination mocks/mock_draft_repository.go -package mocks github.com/Notifuse/visualeditor/internal/domain DraftRepository

// Draft is an autosaved editor tree, kept so a crashed session can resume
type Draft struct {
	ID         string          `json:"id"`
	TemplateID string          `json:"template_id,omitempty"`
	Name       string          `json:"name"`
	Snapshot   json.RawMessage `json:"snapshot"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type DraftRepository interface {
	// Save inserts the draft or replaces the stored one with the same ID
	Save(ctx context.Context, draft *Draft) error
	Get(ctx context.Context, id string) (*Draft, error)
	Delete(ctx context.Context, id string) error
	// DeleteOlderThan removes drafts not updated since before
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
