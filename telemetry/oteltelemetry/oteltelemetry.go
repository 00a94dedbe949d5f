// Package oteltelemetry is the OpenTelemetry-backed Telemetry driver,
// merging the teacher's internal/infrastructure/telemetry/tracer/otel.go
// and .../metrics/otel.go into the unified span+metrics contract.
package oteltelemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/igniter-hq/igniter-go/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OTLP gRPC exporters for traces and metrics.
type Config struct {
	ServiceName   string
	Environment   string
	TracerAddr    string
	MetricsAddr   string
	SampleRate    float64
	MetricsPeriod time.Duration
}

type driver struct {
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	counters       sync.Map
	histos         sync.Map
}

type span struct{ span trace.Span }

var _ telemetry.Telemetry = (*driver)(nil)

// New builds an OpenTelemetry Telemetry driver exporting traces and
// metrics over OTLP/gRPC.
func New(ctx context.Context, cfg Config) (telemetry.Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("oteltelemetry: build resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.TracerAddr),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("oteltelemetry: build trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.MetricsAddr),
		otlpmetricgrpc.WithInsecure(),
		otlpmetricgrpc.WithTimeout(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("oteltelemetry: build metrics exporter: %w", err)
	}

	period := cfg.MetricsPeriod
	if period <= 0 {
		period = 5 * time.Second
	}
	httpView := sdkmetric.NewView(
		sdkmetric.Instrument{Name: "http_request_duration"},
		sdkmetric.Stream{
			Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		},
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(period))),
		sdkmetric.WithResource(res),
		sdkmetric.WithView(httpView),
	)
	otel.SetMeterProvider(mp)

	return &driver{
		traceProvider:  tp,
		metricProvider: mp,
		tracer:         tp.Tracer(cfg.ServiceName),
		meter:          mp.Meter(cfg.ServiceName),
	}, nil
}

func (d *driver) StartSpan(ctx context.Context, name string, attrs map[string]any) (telemetry.Span, context.Context) {
	ctx, s := d.tracer.Start(ctx, name)
	out := &span{span: s}
	for k, v := range attrs {
		out.SetAttr(k, v)
	}
	return out, ctx
}

func (d *driver) ExtractTraceInfo(ctx context.Context) (traceID, spanID string, ok bool) {
	s := trace.SpanFromContext(ctx)
	if !s.IsRecording() {
		return "", "", false
	}
	sc := s.SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}

func (d *driver) RecordHTTP(method, routePath string, statusCode int, durationSeconds float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", routePath),
		attribute.Int("http.status_code", statusCode),
	}
	d.recordCounter("http.request.total", 1, attrs)
	d.recordHistogram("http.request.duration", durationSeconds, attrs)
}

func (d *driver) recordCounter(name string, val int64, attrs []attribute.KeyValue) {
	clean := sanitize(name)
	var counter metric.Int64Counter
	if v, ok := d.counters.Load(clean); ok {
		counter = v.(metric.Int64Counter)
	} else {
		var err error
		counter, err = d.meter.Int64Counter(clean)
		if err != nil {
			return
		}
		d.counters.Store(clean, counter)
	}
	counter.Add(context.Background(), val, metric.WithAttributes(attrs...))
}

func (d *driver) recordHistogram(name string, val float64, attrs []attribute.KeyValue) {
	clean := sanitize(name)
	var h metric.Float64Histogram
	if v, ok := d.histos.Load(clean); ok {
		h = v.(metric.Float64Histogram)
	} else {
		var err error
		h, err = d.meter.Float64Histogram(clean)
		if err != nil {
			return
		}
		d.histos.Store(clean, h)
	}
	h.Record(context.Background(), val, metric.WithAttributes(attrs...))
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func (d *driver) Close() error {
	if err := d.traceProvider.Shutdown(context.Background()); err != nil {
		return err
	}
	return d.metricProvider.Shutdown(context.Background())
}

func (s *span) SetAttr(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *span) SetStatus(status telemetry.SpanStatus, msg string) {
	switch status {
	case telemetry.StatusOK:
		s.span.SetStatus(codes.Ok, msg)
	case telemetry.StatusError:
		s.span.SetStatus(codes.Error, msg)
	default:
		s.span.SetStatus(codes.Unset, msg)
	}
}

func (s *span) RecordException(err error) {
	s.span.RecordError(err)
}

func (s *span) End() {
	s.span.End()
}
