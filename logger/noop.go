package logger

import "context"

type noopLogger struct{}

var _ Logger = (*noopLogger)(nil)

// NewNoop returns a Logger that discards everything. It is the default
// used whenever no driver is installed on the Builder (spec §4.8).
func NewNoop() Logger { return &noopLogger{} }

func (l *noopLogger) WithContext(ctx context.Context) Logger  { return l }
func (l *noopLogger) WithField(key string, value any) Logger  { return l }
func (l *noopLogger) WithFields(fields Fields) Logger         { return l }
func (l *noopLogger) Debug(msg string, fields ...Fields)      {}
func (l *noopLogger) Info(msg string, fields ...Fields)       {}
func (l *noopLogger) Warn(msg string, fields ...Fields)       {}
func (l *noopLogger) Error(msg string, fields ...Fields)      {}
