// Package fiberadapter translates between *fiber.Ctx and the core's
// Request/Response model, grounded on the Fiber server bootstrap it
// replaces: the same AppName/Prefork wiring (server timeouts are not set)
// and the same request-id propagation middleware, but rendering the core's own
// {"error":{"code","message","details"}} envelope (spec §6.1) instead
// of a generic response wrapper.
package fiberadapter

import (
	"bufio"
	"strings"

	"github.com/gofiber/fiber/v2"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/igniter-hq/igniter-go/apperror"
	"github.com/igniter-hq/igniter-go/internal/ctxkey"
	"github.com/igniter-hq/igniter-go/realtime"
)

// New builds a Fiber application wired to dispatch every request through
// app's router. Only AppName and Prefork are set on fiber.Config; the
// read/write/idle timeouts of config.HTTPConfig are not applied, so
// Fiber's defaults hold.
func New(app *igniter.Application, appName string, prefork bool) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: appName,
		Prefork: prefork,
	})

	fiberApp.Use(requestID())

	fiberApp.Get(joinPath(app.Config().BasePath, "__realtime__"), realtimeHandler(app))
	fiberApp.All("/*", dispatchHandler(app))

	return fiberApp
}

func joinPath(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// requestID mirrors the teacher's X-Request-Id propagation: echo the
// inbound header (or mint "unknown") and thread it onto the Fiber
// UserContext for log correlation.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = "unknown"
		}
		c.Set(fiber.HeaderXRequestID, reqID)
		c.SetUserContext(ctxkey.SetRequestID(c.UserContext(), reqID))
		return c.Next()
	}
}

func dispatchHandler(app *igniter.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if strings.EqualFold(c.Method(), "GET") {
			if action, _, ok := app.Router().MatchStream(c.Path()); ok {
				return streamActionHandler(c, app, action)
			}
		}
		raw := toRawRequest(c, app)
		res := app.Router().Dispatch(raw)
		return writeResponse(c, app, res)
	}
}

// streamActionHandler upgrades a matched stream action's own route to
// SSE (spec §4.3 "Algorithm (stream)"), as distinct from the shared
// "/__realtime__" subscription endpoint (spec §6.3).
func streamActionHandler(c *fiber.Ctx, app *igniter.Application, action *igniter.Action) error {
	raw := toRawRequest(c, app)
	lastEventID := c.Get("Last-Event-ID")

	conn, appErr := app.ExecuteStream(action, raw, nil, nil, lastEventID)
	if appErr != nil {
		return writeResponse(c, app, igniter.ErrorResponse(appErr))
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(streamWriter(conn))
	return nil
}

func toRawRequest(c *fiber.Ctx, app *igniter.Application) igniter.RawRequest {
	query := make(map[string][]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		query[k] = append(query[k], string(value))
	})

	headers := make(map[string][]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		headers[k] = append(headers[k], string(value))
	})

	cookies := make(map[string]string)
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		cookies[string(key)] = string(value)
	})

	return igniter.RawRequest{
		Method:        c.Method(),
		Path:          c.Path(),
		Query:         query,
		Headers:       headers,
		Cookies:       cookies,
		SigningSecret: app.Config().CookieSigningSecret,
		ReadBody: func(limitBytes int64) ([]byte, error) {
			body := c.Body()
			if limitBytes > 0 && int64(len(body)) > limitBytes {
				return nil, apperror.PayloadTooLarge(limitBytes)
			}
			return body, nil
		},
	}
}

func writeResponse(c *fiber.Ctx, app *igniter.Application, res *igniter.Response) error {
	for key, value := range res.Headers() {
		c.Set(key, value)
	}
	for _, cookie := range res.CookieHeaders(app.Config().CookieSigningSecret) {
		c.Append(fiber.HeaderSetCookie, cookie)
	}
	c.Status(res.StatusCode())

	body := res.BodyValue()
	if body == nil {
		return nil
	}

	// A handler returning a bare string falls back to text/plain, same
	// as the original, unless it set its own Content-Type.
	if text, ok := body.(string); ok && !hasContentTypeHeader(res.Headers()) {
		c.Type("text/plain")
		return c.SendString(text)
	}
	return c.JSON(body)
}

func hasContentTypeHeader(headers map[string]string) bool {
	for key := range headers {
		if strings.EqualFold(key, fiber.HeaderContentType) {
			return true
		}
	}
	return false
}

func realtimeHandler(app *igniter.Application) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scopes := splitCommaList(c.Query("scopes"))
		channels := splitCommaList(c.Query("channels"))
		lastEventID := c.Get("Last-Event-ID")

		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")
		c.Set(fiber.HeaderConnection, "keep-alive")

		conn := app.Bus().Connect(scopes, channels, lastEventID)
		c.Context().SetBodyStreamWriter(streamWriter(conn))
		return nil
	}
}

// streamWriter pumps conn's outbound frame queue onto the wire until the
// client disconnects, matching spec §5 "Resource lifetimes" — the
// connection is always closed on exit from this loop.
func streamWriter(conn *realtime.Connection) func(w *bufio.Writer) {
	return func(w *bufio.Writer) {
		defer conn.Close()
		for {
			select {
			case frame := <-conn.Frames():
				encoded, err := frame.Encode()
				if err != nil {
					continue
				}
				if _, err := w.Write(encoded); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-conn.Done():
				return
			}
		}
	}
}

func splitCommaList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

