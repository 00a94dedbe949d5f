// Package logger provides a unified logging interface for Igniter
// applications, supporting multiple drivers and context-aware metadata
// extraction (spec §4.8).
package logger

import "context"

// Fields is a flat map of structured logging attributes, matching the
// adapter contract's "structured fields are a flat object" rule.
type Fields map[string]any

// Logger defines the standard interface for structured logging consumed
// by the action executor and by user procedures through the per-request
// context scope block.
type Logger interface {
	// WithContext extracts correlation metadata (request id, trace/span
	// id) from ctx and returns a new Logger with those fields attached.
	WithContext(ctx context.Context) Logger

	// WithField adds a single key-value pair to the logging context.
	WithField(key string, value any) Logger

	// WithFields adds multiple key-value pairs to the logging context.
	WithFields(fields Fields) Logger

	// Debug logs a message at the Debug level, with optional structured fields.
	Debug(msg string, fields ...Fields)
	// Info logs a message at the Info level, with optional structured fields.
	Info(msg string, fields ...Fields)
	// Warn logs a message at the Warn level, with optional structured fields.
	Warn(msg string, fields ...Fields)
	// Error logs a message at the Error level, with optional structured fields.
	Error(msg string, fields ...Fields)
}

// mergeFields flattens the variadic Fields convenience argument used by
// the leveled log methods into a single map, later of which wins.
func mergeFields(fields []Fields) Fields {
	if len(fields) == 0 {
		return nil
	}
	out := make(Fields, len(fields)*2)
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}
