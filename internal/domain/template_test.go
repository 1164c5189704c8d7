package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveTemplateRequest_Validate(t *testing.T) {
	valid := func() *SaveTemplateRequest {
		return &SaveTemplateRequest{
			Name:      "  Welcome  ",
			HTML:      "<div>Hello {{first_name}}</div>",
			Config:    json.RawMessage(`{"root":"n1","nodes":[]}`),
			Variables: []string{"first_name"},
		}
	}

	t.Run("valid request trims the name", func(t *testing.T) {
		req := valid()
		require.NoError(t, req.Validate())
		assert.Equal(t, "Welcome", req.Name)
	})

	testCases := []struct {
		name    string
		mutate  func(r *SaveTemplateRequest)
		message string
	}{
		{"blank name", func(r *SaveTemplateRequest) { r.Name = "   " }, "name is required"},
		{"long name", func(r *SaveTemplateRequest) { r.Name = strings.Repeat("x", 256) }, "name length"},
		{"empty html", func(r *SaveTemplateRequest) { r.HTML = "" }, "html is required"},
		{"broken config", func(r *SaveTemplateRequest) { r.Config = json.RawMessage(`{"root":`) }, "config must be valid JSON"},
		{"bad variable", func(r *SaveTemplateRequest) { r.Variables = []string{"first name"} }, "invalid variable name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			assert.IsType(t, ValidationError{}, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	t.Run("config may be omitted", func(t *testing.T) {
		req := valid()
		req.Config = nil
		assert.NoError(t, req.Validate())
	})
}
