package tracing

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// GetStartingTraceID returns the trace id of the span in ctx.
// Without a valid span (tracing disabled or not sampled) it returns a
// generated "man-<uuid>" id so log lines of one transfer still correlate.
func GetStartingTraceID(ctx context.Context) string {
	if traceID := trace.SpanFromContext(ctx).SpanContext().TraceID(); traceID.IsValid() {
		return traceID.String()
	}
	return "man-" + uuid.NewString()
}
