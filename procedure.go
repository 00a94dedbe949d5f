package igniter

import (
	"github.com/igniter-hq/igniter-go/apperror"
	"github.com/igniter-hq/igniter-go/schema"
)

// ProcedureResult is the tagged-union-style return value of a procedure
// handler (spec §4.2): exactly one of Patch or Response is meaningful.
// A non-nil Response short-circuits the remaining chain.
type ProcedureResult struct {
	Patch    ContextPatch
	Response *Response
}

// Patch wraps a ContextPatch as a ProcedureResult.
func Patch(patch ContextPatch) ProcedureResult {
	return ProcedureResult{Patch: patch}
}

// Respond wraps a Response as a ProcedureResult, short-circuiting the
// remaining procedure chain and the action handler (spec §4.2 "Early
// response").
func Respond(res *Response) ProcedureResult {
	return ProcedureResult{Response: res}
}

// ProcedureFunc is the handler signature every procedure reduces to at
// invocation time, after its options (if any) have been parsed and bound.
type ProcedureFunc func(req *Request, ctx *Context) (ProcedureResult, error)

// Procedure is a named, composable middleware step (spec §4.2). A
// Procedure built with options validates and parses its caller-supplied
// options through a Schema before invoking its handler.
type Procedure struct {
	Name string
	run  func(req *Request, ctx *Context, rawOptions any) (ProcedureResult, error)
}

// Simple constructs a Procedure with no options (spec §4.2).
func Simple(name string, handler ProcedureFunc) Procedure {
	return Procedure{
		Name: name,
		run: func(req *Request, ctx *Context, _ any) (ProcedureResult, error) {
			return handler(req, ctx)
		},
	}
}

// NewProcedure constructs a Procedure whose handler receives a validated,
// typed options value produced by parsing the caller's raw options
// through optionsSchema (spec §4.2 "Procedure options"). Options are
// re-validated through optionsSchema.Parse on every bind, the same way a
// mapstructure+validator Schema enforces struct tags on an already-typed
// Go value passed to it — this catches options built by hand (rather
// than decoded from raw input) that still violate their own struct tags.
func NewProcedure[O any](name string, optionsSchema schema.Schema[O], handler func(req *Request, ctx *Context, options O) (ProcedureResult, error)) func(options O) Procedure {
	return func(options O) Procedure {
		parsed, err := optionsSchema.Parse(options)
		return Procedure{
			Name: name,
			run: func(req *Request, ctx *Context, _ any) (ProcedureResult, error) {
				if err != nil {
					return ProcedureResult{}, optionsValidationError(name, err)
				}
				return handler(req, ctx, parsed)
			},
		}
	}
}

// optionsValidationError wraps a Schema.Parse failure from a procedure's
// options in a VALIDATION_FAILED error, translating per-field detail the
// way validationError does for request query/params/body (spec §4.3
// step 3).
func optionsValidationError(name string, err error) *apperror.Error {
	if fe, ok := err.(schema.FieldErrors); ok {
		details := make(map[string][]string)
		for _, f := range fe.Fields() {
			details[f.Field] = append(details[f.Field], f.Message)
		}
		return apperror.Validation("invalid options for procedure "+name, details)
	}
	return apperror.Validation("invalid options for procedure "+name, map[string]string{"options": err.Error()})
}

// WithOptions constructs a curried Procedure like NewProcedure, but
// decodes its options from raw untyped input (e.g. a controller
// definition parsed from configuration) instead of accepting an
// already-typed O, so it can fail at bind time with an error rather than
// deferring the failure to the first matching request.
func WithOptions[O any](name string, optionsSchema schema.Schema[O], handler func(req *Request, ctx *Context, options O) (ProcedureResult, error)) func(raw any) (Procedure, error) {
	return func(raw any) (Procedure, error) {
		opts, err := optionsSchema.Parse(raw)
		if err != nil {
			return Procedure{}, err
		}
		return Procedure{
			Name: name,
			run: func(req *Request, ctx *Context, _ any) (ProcedureResult, error) {
				return handler(req, ctx, opts)
			},
		}, nil
	}
}

// runProcedures executes procedures in sequence, merging each patch into
// ctx before the next runs, and returns the first early Response or
// error encountered (spec §4.2 "Execution").
func runProcedures(procedures []Procedure, req *Request, ctx *Context) (*Response, error) {
	for _, p := range procedures {
		result, err := p.run(req, ctx, nil)
		if err != nil {
			if _, ok := err.(*apperror.Error); ok {
				return nil, err
			}
			return nil, apperror.Internal(err)
		}
		if result.Response != nil {
			return result.Response, nil
		}
		ctx.merge(result.Patch)
	}
	return nil, nil
}
