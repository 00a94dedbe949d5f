package igniter_test

import (
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/stretchr/testify/assert"
)

func TestBaseContextFactorySeedsEveryRequest(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var observed string
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		observed, _ = igniter.Get[string](ctx, "tenant")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Context(func() map[string]any {
			return map[string]any{"tenant": "acme"}
		}).Controller("items", items)
	})

	app.Router().Dispatch(rawGET("/items"))
	assert.Equal(t, "acme", observed)
}

func TestMustGetPanicsOnMissingKey(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		igniter.MustGet[string](ctx, "does-not-exist")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	assert.Equal(t, 500, res.StatusCode())
}

func TestScopeBlockIsInstalledPerRequest(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		igniter.MustGet[*igniter.Request](ctx, "request")
		igniter.MustGet[*igniter.Response](ctx, "response")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	assert.Equal(t, 200, res.StatusCode())
}
