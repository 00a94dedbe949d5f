package telemetry

import "context"

type noopTelemetry struct{}
type noopSpan struct{}

var _ Telemetry = (*noopTelemetry)(nil)

// NewNoop returns a Telemetry implementation that does nothing. It is the
// default used whenever no driver is installed on the Builder (spec §4.8).
func NewNoop() Telemetry { return &noopTelemetry{} }

func (t *noopTelemetry) StartSpan(ctx context.Context, name string, attrs map[string]any) (Span, context.Context) {
	return &noopSpan{}, ctx
}

func (t *noopTelemetry) RecordHTTP(method, routePath string, statusCode int, durationSeconds float64) {
}

func (t *noopTelemetry) ExtractTraceInfo(ctx context.Context) (string, string, bool) {
	return "", "", false
}

func (t *noopTelemetry) Close() error { return nil }

func (s *noopSpan) SetAttr(key string, value any)           {}
func (s *noopSpan) SetStatus(status SpanStatus, msg string) {}
func (s *noopSpan) RecordException(err error)               {}
func (s *noopSpan) End()                                     {}
