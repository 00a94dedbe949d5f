package igniter_test

import (
	"errors"
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/igniter-hq/igniter-go/schema/structschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requireRoleOptions struct {
	Role string `json:"role" validate:"required"`
}

func TestProcedureChainMergesPatchesInOrder(t *testing.T) {
	first := igniter.Simple("first", func(req *igniter.Request, ctx *igniter.Context) (igniter.ProcedureResult, error) {
		return igniter.Patch(igniter.ContextPatch{"step": 1}), nil
	})
	second := igniter.Simple("second", func(req *igniter.Request, ctx *igniter.Context) (igniter.ProcedureResult, error) {
		step, _ := igniter.Get[int](ctx, "step")
		return igniter.Patch(igniter.ContextPatch{"step": step + 1}), nil
	})

	items := igniter.NewController("items", "/items", first, second)
	var observed int
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		observed, _ = igniter.Get[int](ctx, "step")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	assert.Equal(t, 200, res.StatusCode())
	assert.Equal(t, 2, observed)
}

func TestProcedureErrorIsWrappedInternal(t *testing.T) {
	failing := igniter.Simple("failing", func(req *igniter.Request, ctx *igniter.Context) (igniter.ProcedureResult, error) {
		return igniter.ProcedureResult{}, errors.New("boom")
	})

	items := igniter.NewController("items", "/items", failing)
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		t.Fatal("handler must not run after a procedure error")
		return nil, nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	assert.Equal(t, 500, res.StatusCode())
}

func TestNewProcedureValidatesCurriedOptions(t *testing.T) {
	requireRole := igniter.NewProcedure("requireRole", structschema.Of[requireRoleOptions](), func(req *igniter.Request, ctx *igniter.Context, options requireRoleOptions) (igniter.ProcedureResult, error) {
		return igniter.Patch(igniter.ContextPatch{"role": options.Role}), nil
	})

	items := igniter.NewController("items", "/items", requireRole(requireRoleOptions{Role: "admin"}))
	var observed string
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		observed, _ = igniter.Get[string](ctx, "role")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	require.Equal(t, 200, res.StatusCode())
	assert.Equal(t, "admin", observed)
}

func TestNewProcedureRejectsInvalidCurriedOptions(t *testing.T) {
	requireRole := igniter.NewProcedure("requireRole", structschema.Of[requireRoleOptions](), func(req *igniter.Request, ctx *igniter.Context, options requireRoleOptions) (igniter.ProcedureResult, error) {
		t.Fatal("handler must not run when options fail validation")
		return igniter.ProcedureResult{}, nil
	})

	items := igniter.NewController("items", "/items", requireRole(requireRoleOptions{}))
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		t.Fatal("action handler must not run after an options-validation error")
		return nil, nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	res := app.Router().Dispatch(rawGET("/items"))
	assert.Equal(t, 400, res.StatusCode())
}

func TestContextGetMissingKeyReturnsZeroValue(t *testing.T) {
	items := igniter.NewController("items", "/items")
	var ok bool
	items.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		_, ok = igniter.Get[string](ctx, "nope")
		return igniter.Success("ok"), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("items", items)
	})

	app.Router().Dispatch(rawGET("/items"))
	assert.False(t, ok)
}
