// Package telemetry provides the Telemetry adapter contract (spec §4.8),
// merging the teacher's separate tracer/metrics packages into the single
// span-oriented interface the action executor emits one span per request
// through (spec §4.3 step 8, §8 testable property 7).
package telemetry

import "context"

// SpanStatus mirrors the coarse OK/Error outcome a span can be set to.
type SpanStatus int

const (
	StatusUnset SpanStatus = iota
	StatusOK
	StatusError
)

// Span represents one unit of work within a trace.
type Span interface {
	// SetAttr attaches metadata to the span for dashboard filtering.
	SetAttr(key string, value any)
	// SetStatus records the final outcome of the span.
	SetStatus(status SpanStatus, message string)
	// RecordException attaches an error to the span without ending it.
	RecordException(err error)
	// End marks the end of the span and prepares it for reporting.
	End()
}

// Telemetry defines the interface for managing distributed tracing and
// request metrics, consumed by the action executor.
type Telemetry interface {
	// StartSpan starts a new span as a child of any span already present
	// in ctx, returning the derived context to propagate downstream.
	StartSpan(ctx context.Context, name string, attrs map[string]any) (Span, context.Context)

	// RecordHTTP records throughput/latency for one finished HTTP request.
	RecordHTTP(method, routePath string, statusCode int, durationSeconds float64)

	// ExtractTraceInfo retrieves the current trace/span id from ctx, for
	// log correlation.
	ExtractTraceInfo(ctx context.Context) (traceID, spanID string, ok bool)

	// Close flushes buffered spans/metrics and releases resources.
	Close() error
}
