package serializer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

// Limits for preview rendering
const (
	DefaultRenderTimeout   = 5 * time.Second
	DefaultMaxTemplateSize = 100 * 1024 // 100KB
)

// Previewer renders exported documents with test data through Liquid,
// bounded in size and time
type Previewer struct {
	timeout time.Duration
	maxSize int
	engine  *liquid.Engine
}

func NewPreviewer() *Previewer {
	return NewPreviewerWithOptions(DefaultRenderTimeout, DefaultMaxTemplateSize)
}

func NewPreviewerWithOptions(timeout time.Duration, maxSize int) *Previewer {
	return &Previewer{
		timeout: timeout,
		maxSize: maxSize,
		engine:  liquid.NewEngine(),
	}
}

// Render renders content with data, giving up when ctx ends or the
// timeout passes
func (p *Previewer) Render(ctx context.Context, content string, data map[string]interface{}) (string, error) {
	if len(content) > p.maxSize {
		return "", fmt.Errorf("template size (%d bytes) exceeds maximum allowed size (%d bytes)", len(content), p.maxSize)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resultChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errorChan <- fmt.Errorf("panic during liquid rendering: %v", r)
			}
		}()

		rendered, err := p.engine.ParseAndRenderString(content, data)
		if err != nil {
			errorChan <- fmt.Errorf("liquid rendering failed: %w", err)
			return
		}
		resultChan <- rendered
	}()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errorChan:
		return "", err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("liquid rendering timeout after %v", p.timeout)
		}
		return "", ctx.Err()
	}
}

// Preview exports doc under title and renders it with data. Variables
// missing from data are shown as their placeholder.
func (p *Previewer) Preview(ctx context.Context, doc *Document, title string, data map[string]interface{}) (string, error) {
	return p.Render(ctx, ExportDocument(doc, title), withPlaceholders(doc.Variables, data))
}

func withPlaceholders(vars []string, data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data)+len(vars))
	for k, v := range data {
		out[k] = v
	}
	for _, name := range vars {
		if _, ok := out[name]; ok {
			continue
		}
		if !strings.Contains(name, ".") {
			out[name] = "{{" + name + "}}"
		}
	}
	return out
}
