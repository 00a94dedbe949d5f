package igniter

import (
	"context"
	"time"

	"github.com/igniter-hq/igniter-go/apperror"
	"github.com/igniter-hq/igniter-go/logger"
	"github.com/igniter-hq/igniter-go/realtime"
	"github.com/igniter-hq/igniter-go/schema"
	"github.com/igniter-hq/igniter-go/telemetry"
)

// Kind distinguishes the three action variants (spec §3 "Action"):
// query (read, GET), mutation (write, configurable method), and stream
// (long-lived SSE connection).
type Kind int

const (
	KindQuery Kind = iota
	KindMutation
	KindStream
)

// HandlerFunc is a query/mutation action handler. A non-nil, non-*Response
// return value becomes the body of a 200 response on the context's
// "response" builder, keeping the effects recorded on it (spec §4.3 step 6).
type HandlerFunc func(req *Request, ctx *Context) (any, error)

// StreamHandlerFunc is a stream action handler. It receives a StreamHandle
// to send frames and register close callbacks; returning ends the
// synchronous portion of the call but the connection stays open until
// the client disconnects or the handle is closed (spec §4.3 "Algorithm
// (stream)").
type StreamHandlerFunc func(req *Request, ctx *Context, stream *StreamHandle) error

// Action is the polymorphic query/mutation/stream endpoint definition
// (spec §3 "Action").
type Action struct {
	Name    string
	Path    string
	Method  string
	Kind    Kind
	Channel string

	Procedures []Procedure

	// QuerySchema/ParamsSchema/BodySchema are type-erased validators,
	// each closing over a schema.Schema[T] for its own T (spec §3
	// "querySchema?/paramsSchema?/bodySchema?") — Go's generics are
	// invariant, so a Schema[T] cannot be stored directly in an Action
	// value that must hold schemas of differing T across actions.
	QuerySchema  validatorFunc
	ParamsSchema validatorFunc
	BodySchema   validatorFunc

	Handler       HandlerFunc
	StreamHandler StreamHandlerFunc
}

// validatorFunc is the type-erased shape a Schema[T].Parse reduces to
// once wrapped by WithQuerySchema/WithParamsSchema/WithBodySchema.
type validatorFunc func(input any) (any, error)

// ActionOption customizes an Action at construction time.
type ActionOption func(*Action)

// WithQuerySchema attaches a schema validated against the request's
// parsed query values (spec §3 "querySchema").
func WithQuerySchema[T any](s schema.Schema[T]) ActionOption {
	return func(a *Action) { a.QuerySchema = eraseSchema(s) }
}

// WithParamsSchema attaches a schema validated against route parameters.
func WithParamsSchema[T any](s schema.Schema[T]) ActionOption {
	return func(a *Action) { a.ParamsSchema = eraseSchema(s) }
}

// WithBodySchema attaches a schema validated against the parsed body.
func WithBodySchema[T any](s schema.Schema[T]) ActionOption {
	return func(a *Action) { a.BodySchema = eraseSchema(s) }
}

func eraseSchema[T any](s schema.Schema[T]) validatorFunc {
	return func(input any) (any, error) { return s.Parse(input) }
}

// WithProcedures attaches action-level procedures, run after controller
// and application middleware (spec §4.2 step 1).
func WithProcedures(procedures ...Procedure) ActionOption {
	return func(a *Action) { a.Procedures = procedures }
}

// WithChannel names the realtime channel a stream action registers its
// connections under (spec §4.7 "Channels").
func WithChannel(channel string) ActionOption {
	return func(a *Action) { a.Channel = channel }
}

// NewQuery builds a GET, side-effect-free action (spec §6.1).
func NewQuery(path string, handler HandlerFunc, opts ...ActionOption) *Action {
	a := &Action{Path: path, Method: "GET", Kind: KindQuery, Handler: handler}
	applyActionOptions(a, opts)
	return a
}

// NewMutation builds a write action using method (default POST if
// empty).
func NewMutation(method, path string, handler HandlerFunc, opts ...ActionOption) *Action {
	if method == "" {
		method = "POST"
	}
	a := &Action{Path: path, Method: method, Kind: KindMutation, Handler: handler}
	applyActionOptions(a, opts)
	return a
}

// NewStream builds a GET, SSE-upgrading action (spec §6.1).
func NewStream(path string, handler StreamHandlerFunc, opts ...ActionOption) *Action {
	a := &Action{Path: path, Method: "GET", Kind: KindStream, StreamHandler: handler}
	applyActionOptions(a, opts)
	return a
}

func applyActionOptions(a *Action, opts []ActionOption) {
	for _, opt := range opts {
		opt(a)
	}
}

// StreamHandle is the write handle a stream handler uses to emit frames
// on its realtime connection (spec §4.6 "stream()").
type StreamHandle struct {
	conn *realtime.Connection
}

// Send enqueues event/data as an SSE frame on this connection (spec
// §4.7 "Publish (stream frame)"). It never blocks; overflow is handled
// per the bus's configured policy.
func (h *StreamHandle) Send(event string, data any) {
	h.conn.Enqueue(realtimeDataFrame(event, data))
}

// Close ends the connection, firing its onClose callbacks exactly once.
func (h *StreamHandle) Close() { h.conn.Close() }

// OnClose registers fn to run when the client disconnects or Close is
// called.
func (h *StreamHandle) OnClose(fn func()) { h.conn.OnClose(fn) }

func realtimeDataFrame(event string, data any) realtime.Frame {
	return realtime.Frame{Event: event, Data: data}
}

// executionScope is the per-request scope block installed into Context
// before the procedure chain runs (spec §4.3 step 1: "request",
// "response", "logger", "store", "jobs", "telemetry", "plugins",
// "timestamp").
const (
	ctxKeyRequest   = "request"
	ctxKeyResponse  = "response"
	ctxKeyLogger    = "logger"
	ctxKeyStore     = "store"
	ctxKeyJobs      = "jobs"
	ctxKeyTelemetry = "telemetry"
	ctxKeyPlugins   = "plugins"
	ctxKeyTimestamp = "timestamp"
)

// executeAction runs the full pipeline of spec §4.3 for a query or
// mutation action already matched by the router, racing it against the
// application's configured timeout.
func (app *Application) executeAction(action *Action, raw RawRequest) *Response {
	req := newRequest(raw, app.config.BodyLimitBytes)
	res := newResponse()
	ctx := newContext(app.baseContextValues(), app.logg)
	ctx.merge(ContextPatch{
		ctxKeyRequest:   req,
		ctxKeyResponse:  res,
		ctxKeyLogger:    app.logg,
		ctxKeyStore:     app.store,
		ctxKeyJobs:      app.jobsAdapter,
		ctxKeyTelemetry: app.telemetry,
		ctxKeyPlugins:   app.plugins,
		ctxKeyTimestamp: time.Now(),
	})

	span, _ := app.telemetry.StartSpan(context.Background(), "igniter.action", map[string]any{
		"http.method":    action.Method,
		"http.route":     action.Path,
		"igniter.action": action.Name,
	})
	defer span.End()

	started := time.Now()
	result := app.runActionPipeline(action, req, ctx, res)

	status := result.statusForSpan()
	span.SetAttr("http.status_code", status)
	if result.err != nil {
		span.SetAttr("igniter.error_code", result.err.Code)
		span.SetStatus(telemetry.StatusError, result.err.Message)
		span.RecordException(result.err)
		app.logg.Error("igniter: action failed", logger.Fields{"code": result.err.Code, "error": result.err.Error()})
	} else {
		span.SetStatus(telemetry.StatusOK, "")
	}
	app.telemetry.RecordHTTP(action.Method, action.Path, status, time.Since(started).Seconds())

	return result.response
}

type pipelineResult struct {
	response *Response
	err      *apperror.Error
}

func (r pipelineResult) statusForSpan() int {
	if r.response == nil {
		return 500
	}
	return r.response.status
}

func (app *Application) runActionPipeline(action *Action, req *Request, ctx *Context, res *Response) pipelineResult {
	done := make(chan pipelineResult, 1)
	go func() {
		done <- app.runActionPipelineSyncRecovered(action, req, ctx, res)
	}()

	timeout := app.config.timeout()
	if timeout <= 0 {
		return <-done
	}
	select {
	case r := <-done:
		return r
	case <-time.After(timeout):
		err := apperror.RequestTimeout("action handler exceeded the configured timeout")
		return pipelineResult{response: errorResponse(err).seal(), err: err}
	}
}

// runActionPipelineSyncRecovered guards against a panic raised by
// mutating a sealed Response (spec §4.6) or by a programmer error
// inside a handler, converting it into an error response rather than
// crashing the request's goroutine. A panicked *apperror.Error (such as
// RESPONSE_SEALED) keeps its own code; any other value becomes
// INTERNAL_ERROR.
func (app *Application) runActionPipelineSyncRecovered(action *Action, req *Request, ctx *Context, res *Response) (result pipelineResult) {
	defer func() {
		if r := recover(); r != nil {
			appErr, ok := r.(*apperror.Error)
			if !ok {
				appErr = apperror.Internal(nil)
			}
			result = pipelineResult{response: errorResponse(appErr).seal(), err: appErr}
		}
	}()
	return app.runActionPipelineSync(action, req, ctx, res)
}

func (app *Application) runActionPipelineSync(action *Action, req *Request, ctx *Context, res *Response) pipelineResult {
	if appErr := validateAction(action, req); appErr != nil {
		return pipelineResult{response: errorResponse(appErr).seal(), err: appErr}
	}

	procedures := append(append([]Procedure{}, app.middleware...), action.Procedures...)
	earlyResponse, err := runProcedures(procedures, req, ctx)
	if err != nil {
		appErr, _ := apperror.As(err)
		return pipelineResult{response: errorResponse(appErr).seal(), err: appErr}
	}
	if earlyResponse != nil {
		return pipelineResult{response: earlyResponse.seal()}
	}

	value, err := action.Handler(req, ctx)
	if err != nil {
		appErr, ok := apperror.As(err)
		if !ok {
			appErr = apperror.Internal(err)
		}
		return pipelineResult{response: errorResponse(appErr).seal(), err: appErr}
	}

	final := res
	if responseValue, ok := value.(*Response); ok {
		final = responseValue
	} else if value != nil {
		final = res.Status(200).Body(value)
	} else if final.status == 0 {
		final = NoContent()
	}

	app.applyDeferredEffects(final)
	final.seal()

	return pipelineResult{response: final}
}

// validateAction runs params -> query -> body validation in that
// deterministic order (spec §4.3 step 3).
func validateAction(action *Action, req *Request) *apperror.Error {
	if action.ParamsSchema != nil {
		if _, err := action.ParamsSchema(req.Params()); err != nil {
			return validationError("params", err)
		}
	}
	if action.QuerySchema != nil {
		if _, err := action.QuerySchema(req.QueryValues()); err != nil {
			return validationError("query", err)
		}
	}
	if action.BodySchema != nil {
		body, err := req.BodyJSON()
		if err != nil {
			if appErr, ok := apperror.As(err); ok {
				return appErr
			}
			return apperror.Internal(err)
		}
		if _, err := action.BodySchema(body); err != nil {
			return validationError("body", err)
		}
	}
	return nil
}

func validationError(section string, err error) *apperror.Error {
	if fe, ok := err.(schema.FieldErrors); ok {
		details := make(map[string][]string)
		for _, f := range fe.Fields() {
			key := section + "." + f.Field
			details[key] = append(details[key], f.Message)
		}
		return apperror.Validation("validation failed", details)
	}
	return apperror.Validation("validation failed", map[string]string{section: err.Error()})
}

// applyDeferredEffects publishes the response's recorded revalidation
// intent once the body has been committed (spec §4.3 step 7, §9
// "Revalidation is a projection, not a mutation").
func (app *Application) applyDeferredEffects(res *Response) {
	if len(res.revalidateKeys) > 0 && app.bus != nil {
		app.bus.PublishRevalidate(dedupe(res.revalidateKeys), res.revalidateScopes)
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ExecuteStream runs steps 1-5 of spec §4.3's stream algorithm: it
// builds the scope block, validates params/query, runs the procedure
// chain, registers a realtime connection under the action's channel
// plus any extra scopes/channels the caller declared, and invokes the
// stream handler synchronously. The returned Connection is what the
// adapter pumps onto the wire until the client disconnects; a non-nil
// error means no connection was established.
func (app *Application) ExecuteStream(action *Action, raw RawRequest, extraScopes, extraChannels []string, lastEventID string) (*realtime.Connection, *apperror.Error) {
	req := newRequest(raw, app.config.BodyLimitBytes)
	ctx := newContext(app.baseContextValues(), app.logg)

	if appErr := validateAction(action, req); appErr != nil {
		return nil, appErr
	}

	procedures := append(append([]Procedure{}, app.middleware...), action.Procedures...)
	res := newResponse()
	ctx.merge(ContextPatch{
		ctxKeyRequest:   req,
		ctxKeyResponse:  res,
		ctxKeyLogger:    app.logg,
		ctxKeyStore:     app.store,
		ctxKeyJobs:      app.jobsAdapter,
		ctxKeyTelemetry: app.telemetry,
		ctxKeyPlugins:   app.plugins,
		ctxKeyTimestamp: time.Now(),
	})

	earlyResponse, err := runProcedures(procedures, req, ctx)
	if err != nil {
		appErr, ok := apperror.As(err)
		if !ok {
			appErr = apperror.Internal(err)
		}
		return nil, appErr
	}
	if earlyResponse != nil {
		sealed := earlyResponse.seal()
		return nil, apperror.FromClientBody(sealed.StatusCode(), sealed.BodyValue())
	}

	channels := append([]string{}, extraChannels...)
	if action.Channel != "" {
		channels = append(channels, action.Channel)
	}
	conn := app.bus.Connect(extraScopes, channels, lastEventID)
	handle := &StreamHandle{conn: conn}

	if action.StreamHandler != nil {
		if err := action.StreamHandler(req, ctx, handle); err != nil {
			conn.Close()
			appErr, ok := apperror.As(err)
			if !ok {
				appErr = apperror.Internal(err)
			}
			return nil, appErr
		}
	}

	return conn, nil
}

func (app *Application) baseContextValues() map[string]any {
	if app.baseContext == nil {
		return nil
	}
	return app.baseContext()
}
