package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_template_gateway.go -package mocks github.com/Notifuse/visualeditor/internal/domain TemplateGateway
//go:generate mockgen -destination mocks/mock_http_client.go -package mocks github.com/Notifuse/visualeditor/internal/domain HTTPClient

// HTTPClient defines the interface for HTTP operations
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TemplateSummary is one row of the templates list
type TemplateSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	Category  string    `json:"category,omitempty"`
}

// Template is a stored email template
type Template struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	HTML      string   `json:"html"`
	CSS       string   `json:"css"`
	Variables []string `json:"variables"`
}

// SaveTemplateRequest is the body of create and update calls
type SaveTemplateRequest struct {
	Name      string          `json:"name"`
	HTML      string          `json:"html"`
	CSS       string          `json:"css"`
	Config    json.RawMessage `json:"config"`
	Variables []string        `json:"variables,omitempty"`
}

func (r *SaveTemplateRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return NewValidationError("name is required")
	}
	if !govalidator.IsByteLength(r.Name, 1, 255) {
		return NewValidationError("name length must be between 1 and 255")
	}
	if strings.TrimSpace(r.HTML) == "" {
		return NewValidationError("html is required")
	}
	if len(r.Config) > 0 && !json.Valid(r.Config) {
		return NewValidationError("config must be valid JSON")
	}
	for _, v := range r.Variables {
		if v == "" || strings.ContainsAny(v, " {}") {
			return NewValidationError(fmt.Sprintf("invalid variable name %q", v))
		}
	}
	return nil
}

// TemplateGateway is the templates backend the editor loads from and saves to
type TemplateGateway interface {
	List(ctx context.Context) ([]TemplateSummary, error)
	Get(ctx context.Context, id string) (*Template, error)
	Create(ctx context.Context, req *SaveTemplateRequest) (*Template, error)
	Update(ctx context.Context, id string, req *SaveTemplateRequest) (*Template, error)
	Duplicate(ctx context.Context, id string) (*TemplateSummary, error)
	Delete(ctx context.Context, id string) error
}
