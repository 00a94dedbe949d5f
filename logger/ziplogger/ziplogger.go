// Package ziplogger is an alternate structured-logging driver backed by
// go.uber.org/zap, demonstrating that the Logger adapter boundary (spec
// §4.8) is genuinely driver-agnostic. The teacher's go.mod pulls zap in
// transitively through the OpenTelemetry zap bridge; this gives it a
// first-class seat alongside the logrus/stdout drivers.
package ziplogger

import (
	"context"

	"github.com/igniter-hq/igniter-go/internal/ctxkey"
	"github.com/igniter-hq/igniter-go/internal/mask"
	"github.com/igniter-hq/igniter-go/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zipLogger struct {
	log *zap.SugaredLogger
}

var _ logger.Logger = (*zipLogger)(nil)

// New builds a zap-backed Logger at the given minimum level, JSON encoded.
func New(level zapcore.Level) logger.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}
	return &zipLogger{log: base.Sugar()}
}

func (l *zipLogger) WithContext(ctx context.Context) logger.Logger {
	if ctx == nil {
		return l
	}

	var args []any
	if requestID := ctxkey.GetRequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if traceID, spanID, ok := ctxkey.GetTraceInfo(ctx); ok {
		args = append(args, "trace_id", traceID, "span_id", spanID)
	}

	if len(args) == 0 {
		return l
	}
	return &zipLogger{log: l.log.With(args...)}
}

func (l *zipLogger) WithField(key string, value any) logger.Logger {
	return &zipLogger{log: l.log.With(key, maskValue(key, value))}
}

func (l *zipLogger) WithFields(fields logger.Fields) logger.Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, maskValue(k, v))
	}
	return &zipLogger{log: l.log.With(args...)}
}

func (l *zipLogger) Debug(msg string, fields ...logger.Fields) { l.logAt(l.log.Debugw, msg, fields) }
func (l *zipLogger) Info(msg string, fields ...logger.Fields)  { l.logAt(l.log.Infow, msg, fields) }
func (l *zipLogger) Warn(msg string, fields ...logger.Fields)  { l.logAt(l.log.Warnw, msg, fields) }
func (l *zipLogger) Error(msg string, fields ...logger.Fields) { l.logAt(l.log.Errorw, msg, fields) }

func (l *zipLogger) logAt(fn func(string, ...any), msg string, fields []logger.Fields) {
	if len(msg) > mask.MaxFieldSize {
		msg = "[message too large to log]"
	} else if mask.ContainsSensitiveToken(msg) {
		msg = "******** [REDACTED]"
	}

	var args []any
	for _, f := range fields {
		for k, v := range f {
			args = append(args, k, maskValue(k, v))
		}
	}
	fn(msg, args...)
}

func maskValue(key string, value any) any {
	if mask.IsSensitiveKey(key) {
		return "******** [REDACTED]"
	}
	return mask.MaskSensitive(value)
}
