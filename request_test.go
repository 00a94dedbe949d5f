package igniter_test

import (
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeaderLookupIsCaseInsensitive(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var got string
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		got = req.Header("x-api-key")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	raw := rawGET("/items")
	raw.Headers = map[string][]string{"X-API-Key": {"secret-value"}}
	app.Router().Dispatch(raw)
	assert.Equal(t, "secret-value", got)
}

func TestRequestBodyJSONDecodesObject(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var decoded any
	var handlerErr error
	items.Mutation("create", igniter.NewMutation("POST", "/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		decoded, handlerErr = req.BodyJSON()
		return igniter.Created("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	raw := igniter.RawRequest{
		Method: "POST",
		Path:   "/items",
		ReadBody: func(int64) ([]byte, error) {
			return []byte(`{"name":"widget"}`), nil
		},
	}
	app.Router().Dispatch(raw)
	require.NoError(t, handlerErr)
	m, ok := decoded.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "widget", m["name"])
}

func TestRequestBodyJSONEmptyBodyIsNil(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var decoded any
	var called bool
	items.Mutation("create", igniter.NewMutation("POST", "/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		decoded, _ = req.BodyJSON()
		called = true
		return igniter.Created("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	raw := igniter.RawRequest{
		Method:   "POST",
		Path:     "/items",
		ReadBody: func(int64) ([]byte, error) { return nil, nil },
	}
	app.Router().Dispatch(raw)
	require.True(t, called)
	assert.Nil(t, decoded)
}

func TestRequestBodyJSONMalformedReturnsValidationError(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var handlerErr error
	items.Mutation("create", igniter.NewMutation("POST", "/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		_, handlerErr = req.BodyJSON()
		if handlerErr != nil {
			return nil, handlerErr
		}
		return igniter.Created("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	raw := igniter.RawRequest{
		Method:   "POST",
		Path:     "/items",
		ReadBody: func(int64) ([]byte, error) { return []byte(`{not json`), nil },
	}
	res := app.Router().Dispatch(raw)
	assert.Equal(t, 400, res.StatusCode())
}

func TestRequestQueryAllReturnsRepeatedValues(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var values []string
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		values = req.QueryAll("tag")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	raw := rawGET("/items")
	raw.Query = map[string][]string{"tag": {"a", "b"}}
	app.Router().Dispatch(raw)
	assert.Equal(t, []string{"a", "b"}, values)
}
