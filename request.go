package igniter

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/igniter-hq/igniter-go/apperror"
)

// RawRequest is the minimal transport-agnostic shape an adapter must
// supply to construct a Request (spec §3 "Request"). fiberadapter (and
// any future adapter) translates its native request type into this
// shape once per incoming call.
type RawRequest struct {
	Method  string
	Path    string
	Params  map[string]string
	Query   map[string][]string
	Headers map[string][]string
	Cookies map[string]string

	// ReadBody lazily reads and returns the full request body, enforcing
	// bodyLimitBytes. It must be safe to call at most once.
	ReadBody func(limitBytes int64) ([]byte, error)

	SigningSecret []byte
}

// Request is the normalized, read-only facade over an incoming HTTP
// request (spec §3 "Request"): case-insensitive header lookups, lazy
// body parsing, and signed-cookie verification.
type Request struct {
	method  string
	path    string
	params  map[string]string
	query   map[string][]string
	headers map[string][]string
	cookies map[string]string

	signingSecret  []byte
	bodyLimitBytes int64
	readBody       func(int64) ([]byte, error)

	bodyOnce sync.Once
	bodyRaw  []byte
	bodyErr  error
}

func newRequest(raw RawRequest, bodyLimitBytes int64) *Request {
	return &Request{
		method:         strings.ToUpper(raw.Method),
		path:           raw.Path,
		params:         raw.Params,
		query:          raw.Query,
		headers:        canonicalizeHeaders(raw.Headers),
		cookies:        raw.Cookies,
		signingSecret:  raw.SigningSecret,
		bodyLimitBytes: bodyLimitBytes,
		readBody:       raw.ReadBody,
	}
}

func canonicalizeHeaders(h map[string][]string) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Method returns the normalized (uppercase) HTTP method.
func (r *Request) Method() string { return r.method }

// Path returns the request's path, excluding query string.
func (r *Request) Path() string { return r.path }

// Param returns a named route parameter (spec §4.4 "Routing").
func (r *Request) Param(name string) string { return r.params[name] }

// Params returns all route parameters.
func (r *Request) Params() map[string]string { return r.params }

// Query returns the first value of a query parameter, or "" if absent.
func (r *Request) Query(key string) string {
	values := r.query[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// QueryAll returns every value of a (possibly repeated) query parameter.
func (r *Request) QueryAll(key string) []string { return r.query[key] }

// QueryValues returns the full raw query map.
func (r *Request) QueryValues() map[string][]string { return r.query }

// Header performs a case-insensitive header lookup, returning the first
// value (spec §3 "Request" — case-insensitive headers).
func (r *Request) Header(name string) string {
	values := r.headers[strings.ToLower(name)]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// HeaderAll returns every value of a (possibly repeated) header.
func (r *Request) HeaderAll(name string) []string {
	return r.headers[strings.ToLower(name)]
}

// Cookie returns a raw cookie value, or "" if absent.
func (r *Request) Cookie(name string) string { return r.cookies[name] }

// SignedCookie returns the cookie's value with its HMAC signature
// verified and stripped, failing if the cookie is absent, malformed, or
// its signature does not match (spec §6.4 "Signed cookies").
func (r *Request) SignedCookie(name string) (string, error) {
	raw, ok := r.cookies[name]
	if !ok {
		return "", apperror.NotFound("cookie not present: " + name)
	}
	value, ok := verifySignedCookieValue(raw, r.signingSecret)
	if !ok {
		return "", apperror.Unauthorized("cookie signature verification failed: " + name)
	}
	return value, nil
}

// Body reads and returns the raw request body, enforcing the
// application's configured body size limit (spec §6.5
// "bodyLimitBytes"). Safe to call multiple times; the body is read once
// and cached.
func (r *Request) Body() ([]byte, error) {
	r.bodyOnce.Do(func() {
		if r.readBody == nil {
			return
		}
		r.bodyRaw, r.bodyErr = r.readBody(r.bodyLimitBytes)
	})
	return r.bodyRaw, r.bodyErr
}

// BodyJSON reads the body and decodes it as JSON into a loosely-typed
// value (map[string]any for a JSON object), the shape a bodySchema's
// structural validator expects (spec §4.3 step 3 "body"). An empty body
// decodes to nil rather than an error.
func (r *Request) BodyJSON() (any, error) {
	raw, err := r.Body()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperror.Validation("request body is not valid JSON", map[string]string{"body": err.Error()})
	}
	return out, nil
}
