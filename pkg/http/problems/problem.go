// Package problems renders RFC 7807 Problem Details.
package problems

import (
	"net/http"
	"sort"
)

const ContentType = "application/problem+json"

type Problem struct {
	Type     string       `json:"type,omitempty"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func New(status int, detail string) *Problem {
	return &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

func BadRequest(detail string) *Problem { return New(http.StatusBadRequest, detail) }

func Forbidden(detail string) *Problem { return New(http.StatusForbidden, detail) }

func NotFound(detail string) *Problem { return New(http.StatusNotFound, detail) }

func TooManyRequests(detail string) *Problem { return New(http.StatusTooManyRequests, detail) }

func ServiceUnavailable(detail string) *Problem { return New(http.StatusServiceUnavailable, detail) }

func GatewayTimeout(detail string) *Problem { return New(http.StatusGatewayTimeout, detail) }

func Internal(detail string) *Problem { return New(http.StatusInternalServerError, detail) }

// WithFields attaches field errors sorted by field name.
func (p *Problem) WithFields(fields map[string]string) *Problem {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Errors = append(p.Errors, FieldError{Field: k, Message: fields[k]})
	}
	return p
}
