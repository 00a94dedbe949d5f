package igniter_test

import (
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/stretchr/testify/assert"
)

func TestResponseBuildersSetStatus(t *testing.T) {
	assert.Equal(t, 200, igniter.Success("ok").StatusCode())
	assert.Equal(t, 201, igniter.Created("ok").StatusCode())
	assert.Equal(t, 204, igniter.NoContent().StatusCode())
	assert.Equal(t, 400, igniter.BadRequest("bad", nil).StatusCode())
	assert.Equal(t, 401, igniter.Unauthorized("no").StatusCode())
	assert.Equal(t, 403, igniter.Forbidden("no").StatusCode())
	assert.Equal(t, 404, igniter.NotFound("no").StatusCode())
	assert.Equal(t, 409, igniter.Conflict("no").StatusCode())
	assert.Equal(t, 429, igniter.TooManyRequests("no").StatusCode())
}

func TestResponseMutationAfterSealPanics(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	assert.Panics(t, func() {
		res.SetHeader("a", "b")
	})
}

func TestResponseHeadersAccumulate(t *testing.T) {
	res := igniter.Success(nil).SetHeader("X-A", "1").SetHeader("X-B", "2")
	headers := res.Headers()
	assert.Equal(t, "1", headers["X-A"])
	assert.Equal(t, "2", headers["X-B"])
}
