package igniter_test

import (
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, configure func(*igniter.Builder) *igniter.Builder) *igniter.Application {
	t.Helper()
	b := igniter.New()
	if configure != nil {
		b = configure(b)
	}
	return b.Create()
}

func rawGET(path string) igniter.RawRequest {
	return igniter.RawRequest{
		Method: "GET",
		Path:   path,
		ReadBody: func(int64) ([]byte, error) {
			return nil, nil
		},
	}
}

func TestRouterStaticBeatsParam(t *testing.T) {
	staticHit := false
	paramHit := false

	items := igniter.NewController("items", "/items")
	items.Query("list", igniter.NewQuery("/featured", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		staticHit = true
		return igniter.Success(map[string]string{"kind": "static"}), nil
	}))
	items.Query("get", igniter.NewQuery("/:id", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		paramHit = true
		return igniter.Success(map[string]string{"id": req.Param("id")}), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items/featured"))
	require.Equal(t, 200, res.StatusCode())
	assert.True(t, staticHit)
	assert.False(t, paramHit)

	res = app.Router().Dispatch(rawGET("/items/42"))
	require.Equal(t, 200, res.StatusCode())
	assert.True(t, paramHit)
}

func TestRouterNotFoundAndMethodNotAllowed(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Query("get", igniter.NewQuery("/:id", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/nothing/here"))
	assert.Equal(t, 404, res.StatusCode())

	postReq := rawGET("/items/42")
	postReq.Method = "POST"
	res = app.Router().Dispatch(postReq)
	assert.Equal(t, 405, res.StatusCode())
	assert.Equal(t, "GET, HEAD", res.Headers()["Allow"])
}

func TestRouterHeadMirrorsGetWithoutBody(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Query("get", igniter.NewQuery("/:id", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		return igniter.Success(map[string]string{"id": req.Param("id")}), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	headReq := rawGET("/items/7")
	headReq.Method = "HEAD"
	res := app.Router().Dispatch(headReq)
	assert.Equal(t, 200, res.StatusCode())
	assert.Nil(t, res.BodyValue())
}

func TestRouterBuildURL(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Query("get", igniter.NewQuery("/:id", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	url, err := app.Router().BuildURL("items", "get", map[string]string{"id": "42"}, map[string][]string{"tag": {"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "/items/42?tag=a&tag=b", url)

	_, err = app.Router().BuildURL("items", "get", nil, nil)
	assert.Error(t, err)
}

func TestRouterRejectsStreamDispatch(t *testing.T) {
	items := igniter.NewController("items", "/items")
	items.Stream("watch", igniter.NewStream("/watch", func(req *igniter.Request, ctx *igniter.Context, s *igniter.StreamHandle) error {
		return nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items/watch"))
	assert.Equal(t, 500, res.StatusCode())

	action, params, ok := app.Router().MatchStream("/items/watch")
	require.True(t, ok)
	assert.NotNil(t, action)
	assert.Empty(t, params)
}
