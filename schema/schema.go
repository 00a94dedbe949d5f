// Package schema defines the "parse(input) → output | throws" contract
// (spec §1, §9) that the core treats any validation library as
// satisfying. The go-playground/validator-backed implementation, grounded
// on the teacher's internal/infrastructure/validator package, lives in
// the structschema subpackage.
package schema

// FieldError represents a single field validation failure, shaped to
// serialize directly into an error response's "details" (spec §7).
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// Schema is implemented by anything that can validate and decode a raw
// input value into a typed T. querySchema/paramsSchema/bodySchema (spec
// §3) are all values satisfying Schema for their respective output type.
type Schema[T any] interface {
	// Parse validates input, returning the typed result or a non-nil
	// error. When the error originates from structural validation, it
	// should be recoverable via structschema.AsFieldErrors for client
	// reporting.
	Parse(input any) (T, error)
}

// FieldErrors is the error type structschema.AsFieldErrors and the
// executor's validation-error translation recognize: a validation
// failure carrying one or more per-field messages.
type FieldErrors interface {
	error
	Fields() []FieldError
}
