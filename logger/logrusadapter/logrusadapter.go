// Package logrusadapter is the production/staging logger driver: JSON
// output, size/age-based file rotation, and sensitive-field masking.
// Grounded on the teacher's internal/infrastructure/logger/logrus.go.
package logrusadapter

import (
	"context"

	"github.com/igniter-hq/igniter-go/internal/ctxkey"
	"github.com/igniter-hq/igniter-go/internal/mask"
	"github.com/igniter-hq/igniter-go/logger"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logrus driver's output target and rotation policy.
type Options struct {
	Path       string
	Level      logrus.Level
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type logrusLogger struct {
	log *logrus.Entry
}

var _ logger.Logger = (*logrusLogger)(nil)

// New builds a logrus-backed Logger writing JSON lines through lumberjack
// rotation, with a masking hook applied to every entry.
func New(opts Options) logger.Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(opts.Level)
	base.SetOutput(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	})
	base.AddHook(newMaskingHook())

	return &logrusLogger{log: logrus.NewEntry(base)}
}

func (l *logrusLogger) WithContext(ctx context.Context) logger.Logger {
	if ctx == nil {
		return l
	}

	fields := logrus.Fields{}
	if requestID := ctxkey.GetRequestID(ctx); requestID != "" {
		fields["request_id"] = requestID
	}
	if traceID, spanID, ok := ctxkey.GetTraceInfo(ctx); ok {
		fields["trace_id"] = traceID
		fields["span_id"] = spanID
	}

	if len(fields) == 0 {
		return l
	}
	return &logrusLogger{log: l.log.WithFields(fields)}
}

func (l *logrusLogger) WithField(key string, value any) logger.Logger {
	return &logrusLogger{log: l.log.WithField(key, value)}
}

func (l *logrusLogger) WithFields(fields logger.Fields) logger.Logger {
	return &logrusLogger{log: l.log.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Debug(msg string, fields ...logger.Fields) { l.entry(fields).Debug(msg) }
func (l *logrusLogger) Info(msg string, fields ...logger.Fields)  { l.entry(fields).Info(msg) }
func (l *logrusLogger) Warn(msg string, fields ...logger.Fields)  { l.entry(fields).Warn(msg) }
func (l *logrusLogger) Error(msg string, fields ...logger.Fields) { l.entry(fields).Error(msg) }

func (l *logrusLogger) entry(fields []logger.Fields) *logrus.Entry {
	if len(fields) == 0 {
		return l.log
	}
	merged := logrus.Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return l.log.WithFields(merged)
}

// --- Masking hook ---

type maskingHook struct{}

func newMaskingHook() *maskingHook { return &maskingHook{} }

func (h *maskingHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *maskingHook) Fire(entry *logrus.Entry) error {
	for k, v := range entry.Data {
		if mask.IsSensitiveKey(k) {
			entry.Data[k] = "******** [REDACTED]"
			continue
		}
		entry.Data[k] = mask.MaskSensitive(v)
	}

	if len(entry.Message) > mask.MaxFieldSize {
		entry.Message = "[message too large to log]"
	} else if mask.ContainsSensitiveToken(entry.Message) {
		entry.Message = "******** [REDACTED]"
	}

	return nil
}
