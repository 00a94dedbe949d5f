package igniter

import (
	"fmt"

	"github.com/igniter-hq/igniter-go/apperror"
)

// cookieEffect is a deferred Set-Cookie instruction (spec §6.4).
type cookieEffect struct {
	name     string
	value    string
	clear    bool
	maxAge   int
	path     string
	domain   string
	secure   bool
	httpOnly bool
	sameSite string
	signed   bool
}

// streamEffect marks the response as a stream upgrade, carrying the
// scopes/channels the connection should be registered under (spec §4.7).
type streamEffect struct {
	scopes   []string
	channels []string
}

// Response accumulates the deferred effects an action handler produces —
// status, body, headers, cookies, revalidation keys, and an optional
// stream upgrade — before the executor applies them atomically to the
// wire (spec §4.6 "Response"). Once sealed, further mutation panics with
// a RESPONSE_SEALED error.
type Response struct {
	status  int
	body    any
	headers map[string]string
	cookies []cookieEffect

	revalidateKeys   []string
	revalidateScopes []string

	stream *streamEffect

	sealed bool
}

func newResponse() *Response {
	return &Response{headers: make(map[string]string)}
}

func (r *Response) assertMutable() {
	if r.sealed {
		panic(apperror.ResponseSealed())
	}
}

// Status sets the HTTP status code directly.
func (r *Response) Status(code int) *Response {
	r.assertMutable()
	r.status = code
	return r
}

// Body sets the response body value, JSON-encoded by the adapter.
func (r *Response) Body(body any) *Response {
	r.assertMutable()
	r.body = body
	return r
}

// Success builds a 200 OK response with body (spec §4.6).
func Success(body any) *Response { return newResponse().Status(200).Body(body) }

// Created builds a 201 Created response with body.
func Created(body any) *Response { return newResponse().Status(201).Body(body) }

// NoContent builds a 204 No Content response with no body.
func NoContent() *Response { return newResponse().Status(204) }

func errorResponse(err *apperror.Error) *Response {
	return newResponse().Status(err.HTTPStatus()).Body(err.ClientBody())
}

// BadRequest builds a VALIDATION_FAILED response (spec §7).
func BadRequest(message string, details any) *Response {
	return errorResponse(apperror.Validation(message, details))
}

// Unauthorized builds an UNAUTHORIZED response.
func Unauthorized(message string) *Response {
	return errorResponse(apperror.Unauthorized(message))
}

// Forbidden builds a FORBIDDEN response.
func Forbidden(message string) *Response {
	return errorResponse(apperror.Forbidden(message))
}

// NotFound builds a NOT_FOUND response.
func NotFound(message string) *Response {
	return errorResponse(apperror.NotFound(message))
}

// Conflict builds a CONFLICT response.
func Conflict(message string) *Response {
	return errorResponse(apperror.Conflict(message))
}

// TooManyRequests builds a TOO_MANY_REQUESTS response.
func TooManyRequests(message string) *Response {
	return errorResponse(apperror.TooManyRequests(message))
}

// Unprocessable builds an UNPROCESSABLE response.
func Unprocessable(message string, details any) *Response {
	return errorResponse(apperror.Unprocessable(message, details))
}

// ErrorResponse converts any *apperror.Error into its wire response, the
// same conversion the executor applies internally; adapters use it for
// errors returned outside Router.Dispatch, such as by ExecuteStream.
func ErrorResponse(err *apperror.Error) *Response { return errorResponse(err) }

// SetHeader defers setting a response header (spec §4.6).
func (r *Response) SetHeader(key, value string) *Response {
	r.assertMutable()
	r.headers[key] = value
	return r
}

// SetCookie defers a Set-Cookie effect. signed requests the cookie value
// be HMAC-suffixed by the adapter before it is written to the wire
// (spec §6.4).
func (r *Response) SetCookie(name, value string, maxAgeSeconds int, opts ...CookieOption) *Response {
	r.assertMutable()
	c := cookieEffect{name: name, value: value, maxAge: maxAgeSeconds, path: "/", httpOnly: true, sameSite: "Lax"}
	for _, opt := range opts {
		opt(&c)
	}
	if err := validateCookiePrefix(c.name, c.secure, c.path, c.domain); err != nil {
		panic(err)
	}
	r.cookies = append(r.cookies, c)
	return r
}

// ClearCookie defers an expiring Set-Cookie effect that removes name on
// the client (spec §6.4).
func (r *Response) ClearCookie(name string, opts ...CookieOption) *Response {
	r.assertMutable()
	c := cookieEffect{name: name, clear: true, maxAge: -1, path: "/", httpOnly: true, sameSite: "Lax"}
	for _, opt := range opts {
		opt(&c)
	}
	r.cookies = append(r.cookies, c)
	return r
}

// Revalidate defers a revalidation publish, delivered to every realtime
// connection whose scope intersects scopes (or every connection if
// scopes is empty) once this response has been committed (spec §4.6,
// §4.7 "Publish (revalidation)").
func (r *Response) Revalidate(keys []string, scopes ...string) *Response {
	r.assertMutable()
	r.revalidateKeys = append(r.revalidateKeys, keys...)
	r.revalidateScopes = append(r.revalidateScopes, scopes...)
	return r
}

// Stream upgrades the response into an SSE connection registered under
// scopes/channels (spec §4.7, §6.3). The executor does not read this
// record and does not reject it on a query or mutation response; stream
// connections are registered by Application.ExecuteStream.
func (r *Response) Stream(scopes, channels []string) *Response {
	r.assertMutable()
	r.stream = &streamEffect{scopes: scopes, channels: channels}
	return r
}

// seal freezes the response and returns itself for the adapter to
// render; cookie effects are signed later, in CookieHeaders.
func (r *Response) seal() *Response {
	r.sealed = true
	return r
}

func (r *Response) String() string {
	return fmt.Sprintf("Response{status=%d}", r.status)
}

// StatusCode returns the response's HTTP status, defaulting to 200 if
// never set (e.g. a handler that only mutated headers/cookies).
func (r *Response) StatusCode() int {
	if r.status == 0 {
		return 200
	}
	return r.status
}

// BodyValue returns the raw body value an adapter should JSON-encode
// onto the wire, or nil if there is none.
func (r *Response) BodyValue() any { return r.body }

// Headers returns the response's deferred header effects.
func (r *Response) Headers() map[string]string { return r.headers }

// CookieHeaders renders every deferred cookie effect as a Set-Cookie
// header value, signing values that requested it with signingSecret
// (spec §6.4).
func (r *Response) CookieHeaders(signingSecret []byte) []string {
	out := make([]string, 0, len(r.cookies))
	for _, c := range r.cookies {
		out = append(out, renderSetCookie(c, signingSecret))
	}
	return out
}
