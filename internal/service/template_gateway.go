package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Notifuse/visualeditor/internal/domain"
	"github.com/Notifuse/visualeditor/pkg/logger"
)

// maxResponseBytes caps how much of a backend response is read
const maxResponseBytes = 10 << 20

// TemplateGatewayClient talks to the templates backend over HTTP
type TemplateGatewayClient struct {
	baseURL   string
	csrfToken string
	client    domain.HTTPClient
	logger    logger.Logger
}

// NewTemplateGateway creates a gateway for baseURL. A nil client gets a plain
// http.Client with the given timeout.
func NewTemplateGateway(baseURL, csrfToken string, timeout time.Duration, client domain.HTTPClient, log logger.Logger) *TemplateGatewayClient {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &TemplateGatewayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		csrfToken: csrfToken,
		client:    client,
		logger:    log,
	}
}

// List returns the template summaries
func (g *TemplateGatewayClient) List(ctx context.Context) ([]domain.TemplateSummary, error) {
	body, err := g.do(ctx, http.MethodGet, "/templates", nil)
	if err != nil {
		return nil, err
	}

	// some deployments wrap collections in {"data": [...]}
	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		list = list.Get("data")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("unexpected templates list payload")
	}

	summaries := make([]domain.TemplateSummary, 0, len(list.Array()))
	if err := json.Unmarshal([]byte(list.Raw), &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode templates list: %w", err)
	}
	return summaries, nil
}

// Get fetches one template
func (g *TemplateGatewayClient) Get(ctx context.Context, id string) (*domain.Template, error) {
	body, err := g.do(ctx, http.MethodGet, "/templates/"+url.PathEscape(id), nil)
	if err != nil {
		var saveErr *domain.SaveError
		if errors.As(err, &saveErr) && saveErr.StatusCode == http.StatusNotFound {
			return nil, &domain.ErrNotFound{Entity: "template", ID: id}
		}
		return nil, err
	}

	var tpl domain.Template
	if err := json.Unmarshal(unwrapObject(body), &tpl); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	return &tpl, nil
}

// Create stores a new template
func (g *TemplateGatewayClient) Create(ctx context.Context, req *domain.SaveTemplateRequest) (*domain.Template, error) {
	return g.save(ctx, http.MethodPost, "/templates", req)
}

// Update overwrites template id
func (g *TemplateGatewayClient) Update(ctx context.Context, id string, req *domain.SaveTemplateRequest) (*domain.Template, error) {
	return g.save(ctx, http.MethodPut, "/templates/"+url.PathEscape(id), req)
}

func (g *TemplateGatewayClient) save(ctx context.Context, method, path string, req *domain.SaveTemplateRequest) (*domain.Template, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}

	body, err := g.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	var tpl domain.Template
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(unwrapObject(body), &tpl); err != nil {
			return nil, fmt.Errorf("failed to decode saved template: %w", err)
		}
	}
	return &tpl, nil
}

// Duplicate asks the backend to copy template id
func (g *TemplateGatewayClient) Duplicate(ctx context.Context, id string) (*domain.TemplateSummary, error) {
	body, err := g.do(ctx, http.MethodPost, "/templates/"+url.PathEscape(id)+"/duplicate", nil)
	if err != nil {
		return nil, err
	}

	var summary domain.TemplateSummary
	if err := json.Unmarshal(unwrapObject(body), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode duplicated template: %w", err)
	}
	return &summary, nil
}

// Delete removes template id
func (g *TemplateGatewayClient) Delete(ctx context.Context, id string) error {
	_, err := g.do(ctx, http.MethodDelete, "/templates/"+url.PathEscape(id), nil)
	return err
}

func (g *TemplateGatewayClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.csrfToken != "" && method != http.MethodGet {
		req.Header.Set("X-CSRF-TOKEN", g.csrfToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		}).Error("Templates backend request failed")
		return nil, fmt.Errorf("templates backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read templates backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		saveErr := &domain.SaveError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
		g.logger.WithFields(map[string]interface{}{
			"method":    method,
			"path":      path,
			"status":    resp.StatusCode,
			"retryable": saveErr.Retryable(),
		}).Warn("Templates backend returned an error status")
		return nil, saveErr
	}

	return body, nil
}

// errorMessage pulls a human readable message out of an error body
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"message", "error", "errors.0.message", "errors.0"} {
		if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String {
			return r.String()
		}
	}
	// Laravel style validation bag: {"errors": {"name": ["..."]}}
	var msg string
	gjson.GetBytes(body, "errors").ForEach(func(key, value gjson.Result) bool {
		first := value.Get("0")
		if first.Exists() {
			msg = fmt.Sprintf("%s: %s", key.String(), first.String())
			return false
		}
		return true
	})
	return msg
}

// unwrapObject returns the "data" member when the backend wraps objects
func unwrapObject(body []byte) []byte {
	if data := gjson.GetBytes(body, "data"); data.IsObject() {
		return []byte(data.Raw)
	}
	return body
}
