package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// GetTraceIDAndSpanID returns empty strings when ctx carries no valid span.
func GetTraceIDAndSpanID(ctx context.Context) (string, string) {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}
