package problems

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		p      *Problem
		status int
	}{
		{"bad request", BadRequest("x"), http.StatusBadRequest},
		{"forbidden", Forbidden("x"), http.StatusForbidden},
		{"not found", NotFound("x"), http.StatusNotFound},
		{"too many", TooManyRequests("x"), http.StatusTooManyRequests},
		{"unavailable", ServiceUnavailable("x"), http.StatusServiceUnavailable},
		{"gateway timeout", GatewayTimeout("x"), http.StatusGatewayTimeout},
		{"internal", Internal("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.p.Status)
			assert.Equal(t, http.StatusText(tt.status), tt.p.Title)
			assert.Equal(t, "about:blank", tt.p.Type)
			assert.Equal(t, "x", tt.p.Detail)
		})
	}
}

func TestWithFields_SortedAndSerialized(t *testing.T) {
	p := BadRequest("validation failed").WithFields(map[string]string{
		"variants[1].imageId": "required",
		"discount.percentage": "must be between 0 and 100",
	})

	require.Len(t, p.Errors, 2)
	assert.Equal(t, "discount.percentage", p.Errors[0].Field)
	assert.Equal(t, "variants[1].imageId", p.Errors[1].Field)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "about:blank",
		"title": "Bad Request",
		"status": 400,
		"detail": "validation failed",
		"errors": [
			{"field": "discount.percentage", "message": "must be between 0 and 100"},
			{"field": "variants[1].imageId", "message": "required"}
		]
	}`, string(raw))
}
