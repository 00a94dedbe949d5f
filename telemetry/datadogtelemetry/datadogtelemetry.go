// Package datadogtelemetry is the alternate Telemetry driver backed by
// Datadog, merging the teacher's
// internal/infrastructure/telemetry/{tracer,metrics}/datadog.go into the
// unified span+metrics contract. Only ddtrace/tracer and datadog-go/v5's
// statsd client are used — the heavier datadog-agent-internal packages
// the teacher's go.mod also carried are not needed and are dropped.
package datadogtelemetry

import (
	"context"
	"fmt"
	"strconv"

	"github.com/igniter-hq/igniter-go/telemetry"

	"github.com/DataDog/datadog-go/v5/statsd"
	ddtracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// Config configures the Datadog agent endpoints and service identity.
type Config struct {
	ServiceName   string
	Environment   string
	AgentAddr     string
	StatsdAddr    string
	SampleRate    float64
	Namespace     string
	ConstantTags  []string
}

type driver struct {
	serviceName string
	statsd      *statsd.Client
}

type span struct{ span ddtracer.Span }

var _ telemetry.Telemetry = (*driver)(nil)

// New starts the Datadog tracer and a dogstatsd client for metrics.
func New(cfg Config) (telemetry.Telemetry, error) {
	ddtracer.Start(
		ddtracer.WithService(cfg.ServiceName),
		ddtracer.WithEnv(cfg.Environment),
		ddtracer.WithAgentAddr(cfg.AgentAddr),
		ddtracer.WithSampler(ddtracer.NewRateSampler(cfg.SampleRate)),
	)

	client, err := statsd.New(cfg.StatsdAddr,
		statsd.WithNamespace(cfg.Namespace),
		statsd.WithTags(cfg.ConstantTags),
	)
	if err != nil {
		ddtracer.Stop()
		return nil, fmt.Errorf("datadogtelemetry: build statsd client: %w", err)
	}

	return &driver{serviceName: cfg.ServiceName, statsd: client}, nil
}

func (d *driver) StartSpan(ctx context.Context, name string, attrs map[string]any) (telemetry.Span, context.Context) {
	s, ctx := ddtracer.StartSpanFromContext(ctx, name)
	out := &span{span: s}
	for k, v := range attrs {
		out.SetAttr(k, v)
	}
	return out, ctx
}

func (d *driver) ExtractTraceInfo(ctx context.Context) (traceID, spanID string, ok bool) {
	s, found := ddtracer.SpanFromContext(ctx)
	if !found {
		return "", "", false
	}
	return strconv.FormatUint(s.Context().TraceID(), 10), strconv.FormatUint(s.Context().SpanID(), 10), true
}

func (d *driver) RecordHTTP(method, routePath string, statusCode int, durationSeconds float64) {
	tags := []string{
		fmt.Sprintf("method:%s", method),
		fmt.Sprintf("route:%s", routePath),
		fmt.Sprintf("status:%d", statusCode),
		fmt.Sprintf("status_group:%dxx", statusCode/100),
	}
	_ = d.statsd.Incr("http.request.total", tags, 1.0)
	_ = d.statsd.Distribution("http.request.duration", durationSeconds, tags, 1.0)
}

func (d *driver) Close() error {
	ddtracer.Stop()
	return d.statsd.Close()
}

func (s *span) SetAttr(key string, value any) {
	s.span.SetTag(key, value)
}

func (s *span) SetStatus(status telemetry.SpanStatus, msg string) {
	if status == telemetry.StatusError {
		s.span.SetTag("error", true)
		if msg != "" {
			s.span.SetTag("error.message", msg)
		}
	}
}

func (s *span) RecordException(err error) {
	s.span.SetTag("error", err)
}

func (s *span) End() {
	s.span.Finish()
}
