// Package stdoutadapter is the development logger driver: tinted,
// human-readable output over log/slog. Grounded on the teacher's
// internal/infrastructure/logger/stdout.go.
package stdoutadapter

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/igniter-hq/igniter-go/internal/ctxkey"
	"github.com/igniter-hq/igniter-go/internal/mask"
	"github.com/igniter-hq/igniter-go/logger"

	"github.com/lmittmann/tint"
)

type stdoutLogger struct {
	handler slog.Handler
	log     *slog.Logger
}

var _ logger.Logger = (*stdoutLogger)(nil)

// New builds a tint-backed Logger writing colorized lines to stdout.
func New(level slog.Level) logger.Logger {
	base := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC1123,
	})
	masked := newMaskingHandler(base)

	return &stdoutLogger{handler: masked, log: slog.New(masked)}
}

func (l *stdoutLogger) WithContext(ctx context.Context) logger.Logger {
	if ctx == nil {
		return l
	}

	var args []any
	if requestID := ctxkey.GetRequestID(ctx); requestID != "" {
		args = append(args, slog.String("request_id", requestID))
	}
	if traceID, spanID, ok := ctxkey.GetTraceInfo(ctx); ok {
		args = append(args, slog.String("trace_id", traceID), slog.String("span_id", spanID))
	}

	if len(args) == 0 {
		return l
	}
	return &stdoutLogger{handler: l.handler, log: l.log.With(args...)}
}

func (l *stdoutLogger) WithField(key string, value any) logger.Logger {
	return &stdoutLogger{handler: l.handler, log: l.log.With(slog.Any(key, value))}
}

func (l *stdoutLogger) WithFields(fields logger.Fields) logger.Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &stdoutLogger{handler: l.handler, log: l.log.With(args...)}
}

func (l *stdoutLogger) Debug(msg string, fields ...logger.Fields) { l.log.Debug(msg, toArgs(fields)...) }
func (l *stdoutLogger) Info(msg string, fields ...logger.Fields)  { l.log.Info(msg, toArgs(fields)...) }
func (l *stdoutLogger) Warn(msg string, fields ...logger.Fields)  { l.log.Warn(msg, toArgs(fields)...) }
func (l *stdoutLogger) Error(msg string, fields ...logger.Fields) { l.log.Error(msg, toArgs(fields)...) }

func toArgs(fields []logger.Fields) []any {
	if len(fields) == 0 {
		return nil
	}
	var args []any
	for _, f := range fields {
		for k, v := range f {
			args = append(args, slog.Any(k, v))
		}
	}
	return args
}

// --- Masking handler ---

type maskingHandler struct {
	next slog.Handler
}

func newMaskingHandler(next slog.Handler) *maskingHandler {
	return &maskingHandler{next: next}
}

func (h *maskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskingHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(r.Message) > mask.MaxFieldSize {
		r.Message = "[message too large to log]"
	} else if mask.ContainsSensitiveToken(r.Message) {
		r.Message = "******** [REDACTED]"
	}

	newRecord := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		newRecord.AddAttrs(h.maskAttr(a))
		return true
	})

	return h.next.Handle(ctx, newRecord)
}

func (h *maskingHandler) maskAttr(a slog.Attr) slog.Attr {
	if mask.IsSensitiveKey(a.Key) {
		return slog.String(a.Key, "******** [REDACTED]")
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedGroup := make([]any, len(attrs))
		for i, attr := range attrs {
			maskedGroup[i] = h.maskAttr(attr)
		}
		return slog.Group(a.Key, maskedGroup...)
	}

	return slog.Any(a.Key, mask.MaskSensitive(a.Value.Any()))
}

func (h *maskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &maskingHandler{next: h.next.WithAttrs(masked)}
}

func (h *maskingHandler) WithGroup(name string) slog.Handler {
	return &maskingHandler{next: h.next.WithGroup(name)}
}
