package igniter_test

import (
	"strings"
	"testing"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseSetCookieRendersAttributes(t *testing.T) {
	res := igniter.Success(nil)
	res.SetCookie("session", "abc123", 3600, igniter.WithPath("/app"), igniter.WithSecure(), igniter.WithSameSite("Strict"))

	headers := res.CookieHeaders(nil)
	require.Len(t, headers, 1)
	h := headers[0]
	assert.Contains(t, h, "session=abc123")
	assert.Contains(t, h, "Max-Age=3600")
	assert.Contains(t, h, "Path=/app")
	assert.Contains(t, h, "Secure")
	assert.Contains(t, h, "HttpOnly")
	assert.Contains(t, h, "SameSite=Strict")
}

func TestResponseClearCookieExpires(t *testing.T) {
	res := igniter.Success(nil)
	res.ClearCookie("session")

	headers := res.CookieHeaders(nil)
	require.Len(t, headers, 1)
	assert.Contains(t, headers[0], "Max-Age=0")
}

func TestResponseSignedCookieRoundTrips(t *testing.T) {
	secret := []byte("test-signing-secret")
	res := igniter.Success(nil)
	res.SetCookie("session", "user-42", 3600, igniter.Signed())

	headers := res.CookieHeaders(secret)
	require.Len(t, headers, 1)

	kv := strings.SplitN(strings.SplitN(headers[0], ";", 2)[0], "=", 2)
	require.Len(t, kv, 2)
	signedValue := kv[1]
	assert.NotEqual(t, "user-42", signedValue)
	assert.Contains(t, signedValue, ".")

	var recovered string
	var recoverErr error
	x := igniter.NewController("x", "/x")
	x.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		value, err := req.SignedCookie("session")
		recovered, recoverErr = value, err
		return igniter.NoContent(), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("x", x)
	})

	raw := igniter.RawRequest{
		Method:        "GET",
		Path:          "/x",
		Cookies:       map[string]string{"session": signedValue},
		SigningSecret: secret,
		ReadBody:      func(int64) ([]byte, error) { return nil, nil },
	}
	res2 := app.Router().Dispatch(raw)
	require.Equal(t, 204, res2.StatusCode())
	require.NoError(t, recoverErr)
	assert.Equal(t, "user-42", recovered)
}

func TestSignedCookieVerificationFailsOnTamperedValue(t *testing.T) {
	secret := []byte("test-signing-secret")
	res := igniter.Success(nil)
	res.SetCookie("session", "user-42", 3600, igniter.Signed())
	headers := res.CookieHeaders(secret)
	require.Len(t, headers, 1)

	kv := strings.SplitN(strings.SplitN(headers[0], ";", 2)[0], "=", 2)
	signedValue := kv[1]
	tampered := signedValue + "x"

	x := igniter.NewController("x", "/x")
	var gotErr error
	x.Query("get", igniter.NewQuery("/", func(req *igniter.Request, ctx *igniter.Context) (any, error) {
		_, err := req.SignedCookie("session")
		gotErr = err
		return igniter.NoContent(), nil
	}))

	app := newTestApp(t, func(b *igniter.Builder) *igniter.Builder {
		return b.Controller("x", x)
	})

	raw := igniter.RawRequest{
		Method:        "GET",
		Path:          "/x",
		Cookies:       map[string]string{"session": tampered},
		SigningSecret: secret,
		ReadBody:      func(int64) ([]byte, error) { return nil, nil },
	}
	_ = app.Router().Dispatch(raw)
	assert.Error(t, gotErr)
}

func TestCookiePrefixRulesEnforced(t *testing.T) {
	assert.Panics(t, func() {
		igniter.Success(nil).SetCookie("__Host-session", "v", 0)
	})
	assert.Panics(t, func() {
		igniter.Success(nil).SetCookie("__Secure-session", "v", 0)
	})
	assert.NotPanics(t, func() {
		igniter.Success(nil).SetCookie("__Host-session", "v", 0, igniter.WithSecure())
	})
}
