// Package ctxkey defines the unexported context keys used to thread
// request-scoped correlation metadata (request id, trace id, span id)
// through a plain context.Context, independent of igniter's own typed
// Context model.
package ctxkey

import "context"

type key struct{}

var (
	kRequestID = key{}
	kTraceID   = key{}
	kSpanID    = key{}
)

func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(kRequestID).(string); ok {
		return id
	}
	return ""
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, kRequestID, id)
}

func GetTraceInfo(ctx context.Context) (traceID, spanID string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	traceID, tOK := ctx.Value(kTraceID).(string)
	spanID, sOK := ctx.Value(kSpanID).(string)
	if !tOK || !sOK || traceID == "" {
		return "", "", false
	}
	return traceID, spanID, true
}

func SetTraceInfo(ctx context.Context, traceID, spanID string) context.Context {
	ctx = context.WithValue(ctx, kTraceID, traceID)
	return context.WithValue(ctx, kSpanID, spanID)
}
