package apperror

// New is the generic constructor for Error.
func New(code, message string, kind Kind, err ...error) *Error {
	appErr := &Error{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
	if len(err) > 0 && err[0] != nil {
		appErr.Err = err[0]
	}
	return appErr
}

// NewPersistent creates an error with KindPersistent.
// Optional: pass an existing error as the 3rd argument to wrap it.
func NewPersistent(code, message string, err ...error) *Error {
	return New(code, message, KindPersistent, err...)
}

// NewTransient creates an error with KindTransient.
// Optional: pass an existing error as the 3rd argument to wrap it.
func NewTransient(code, message string, err ...error) *Error {
	return New(code, message, KindTransient, err...)
}

// NewInternal creates an error with KindInternal.
// Optional: pass an existing error as the 3rd argument to wrap it.
func NewInternal(code, message string, err ...error) *Error {
	return New(code, message, KindInternal, err...)
}

// Validation builds a VALIDATION_FAILED error (spec §7, HTTP 400). details
// is normally the output of a Schema's field-error report.
func Validation(message string, details any) *Error {
	e := NewPersistent(CodeValidationFailed, message)
	if details != nil {
		e.Details = details
	}
	return e
}

// Unauthorized builds an UNAUTHORIZED error (HTTP 401).
func Unauthorized(message string) *Error {
	return NewPersistent(CodeUnauthorized, message)
}

// Forbidden builds a FORBIDDEN error (HTTP 403).
func Forbidden(message string) *Error {
	return NewPersistent(CodeForbidden, message)
}

// NotFound builds a NOT_FOUND error (HTTP 404).
func NotFound(message string) *Error {
	return NewPersistent(CodeNotFound, message)
}

// MethodNotAllowed builds a METHOD_NOT_ALLOWED error (HTTP 405). allow is
// the set of methods registered for the matched path, surfaced on the
// response's Allow header by the router (spec §4.4).
func MethodNotAllowed(allow []string) *Error {
	return NewPersistent(CodeMethodNotAllowed, "method not allowed").WithDetail("allow", allow)
}

// Conflict builds a CONFLICT error (HTTP 409).
func Conflict(message string) *Error {
	return NewPersistent(CodeConflict, message)
}

// Unprocessable builds an UNPROCESSABLE error (HTTP 422).
func Unprocessable(message string, details any) *Error {
	e := NewPersistent(CodeUnprocessable, message)
	if details != nil {
		e.Details = details
	}
	return e
}

// TooManyRequests builds a TOO_MANY_REQUESTS error (HTTP 429).
func TooManyRequests(message string) *Error {
	return NewPersistent(CodeTooManyRequests, message)
}

// PayloadTooLarge builds a PAYLOAD_TOO_LARGE error (HTTP 413).
func PayloadTooLarge(limitBytes int64) *Error {
	return NewPersistent(CodePayloadTooLarge, "request body exceeds the configured limit").
		WithDetail("limit_bytes", limitBytes)
}

// RequestTimeout builds a REQUEST_TIMEOUT error (HTTP 504). Per spec §7
// this is a gateway-style timeout, not the classic 408.
func RequestTimeout(message string) *Error {
	return NewTransient(CodeRequestTimeout, message)
}

// Internal builds an INTERNAL_ERROR (HTTP 500). The wrapped err is kept
// for logging/telemetry but never serialized to the client.
func Internal(err error) *Error {
	msg := "internal error"
	return NewInternal(CodeInternalError, msg, err)
}

// JobsNotConfigured builds a JOBS_NOT_CONFIGURED developer error (HTTP
// 500), raised by the default no-op Jobs adapter's Enqueue (spec §4.8).
func JobsNotConfigured() *Error {
	return NewInternal(CodeJobsNotConfigured, "no Jobs adapter is configured on this application")
}

// StoreNotConfigured builds a STORE_NOT_CONFIGURED developer error (HTTP
// 500), raised by the default no-op Store adapter.
func StoreNotConfigured() *Error {
	return NewInternal(CodeStoreNotConfigured, "no Store adapter is configured on this application")
}

// ConfigInvalid builds a CONFIG_INVALID developer error (HTTP 500),
// raised for a cookie-prefix violation in Response.SetCookie, for a stream
// action reached through Router.Dispatch, and for a missing path
// parameter in Router.BuildURL.
func ConfigInvalid(message string) *Error {
	return NewInternal(CodeConfigInvalid, message)
}

// ResponseSealed builds a RESPONSE_SEALED programmer error (HTTP 500),
// raised when a Response is mutated after deferred effects have started
// applying (spec §4.6).
func ResponseSealed() *Error {
	return NewInternal(CodeResponseSealed, "response has already been sealed and can no longer be mutated")
}

// FromClientBody reconstructs an *Error carrying status and body exactly
// as already decided, used when a caller holds a fully-built response
// (e.g. one returned early by a procedure via Respond) but the calling
// contract can only hand an *Error back to the adapter. body is expected
// to be a client-safe error envelope of the ClientBody shape ("code",
// "message", optional "details"); any other value is wrapped under a
// generic INTERNAL_ERROR code so the original status is still preserved.
func FromClientBody(status int, body any) *Error {
	code := CodeInternalError
	message := "request failed"
	var details any

	if m, ok := body.(map[string]any); ok {
		if c, ok := m["code"].(string); ok && c != "" {
			code = c
		}
		if msg, ok := m["message"].(string); ok && msg != "" {
			message = msg
		}
		details = m["details"]
	}

	kind := KindPersistent
	if status >= 500 {
		kind = KindInternal
	}

	err := New(code, message, kind)
	err.status = status
	if details != nil {
		err.Details = details
	}
	return err
}
