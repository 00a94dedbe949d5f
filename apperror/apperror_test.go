package apperror_test

import (
	"errors"
	"testing"

	"github.com/igniter-hq/igniter-go/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[string]int{
		apperror.CodeValidationFailed: 400,
		apperror.CodeUnauthorized:     401,
		apperror.CodeForbidden:        403,
		apperror.CodeNotFound:         404,
		apperror.CodeMethodNotAllowed: 405,
		apperror.CodeConflict:         409,
		apperror.CodeUnprocessable:    422,
		apperror.CodeTooManyRequests:  429,
		apperror.CodePayloadTooLarge:  413,
		apperror.CodeRequestTimeout:   504,
		apperror.CodeInternalError:    500,
	}
	for code, status := range cases {
		e := apperror.New(code, "x", apperror.KindPersistent)
		assert.Equal(t, status, e.HTTPStatus(), code)
	}
}

func TestClientBodyOmitsDetailsExceptValidation(t *testing.T) {
	conflict := apperror.Conflict("already exists").WithDetail("id", "123")
	body := conflict.ClientBody()
	assert.NotContains(t, body, "details")

	val := apperror.Validation("bad input", map[string]any{"query.page": []string{"must be >= 1"}})
	body = val.ClientBody()
	require.Contains(t, body, "details")
}

func TestAsUnwraps(t *testing.T) {
	base := apperror.NotFound("missing")
	wrapped := errors.New("wrapped: " + base.Error())
	_, ok := apperror.As(wrapped)
	assert.False(t, ok)

	found, ok := apperror.As(base)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, found.Code)
}

func TestFromClientBodyPreservesStatusAndMessage(t *testing.T) {
	original := apperror.Unauthorized("token expired")
	rebuilt := apperror.FromClientBody(original.HTTPStatus(), original.ClientBody())

	assert.Equal(t, 401, rebuilt.HTTPStatus())
	assert.Equal(t, "token expired", rebuilt.Message)
	assert.Equal(t, apperror.CodeUnauthorized, rebuilt.Code)
}

func TestFromClientBodyFallsBackOnUnrecognizedBody(t *testing.T) {
	rebuilt := apperror.FromClientBody(403, "not a client-body map")

	assert.Equal(t, 403, rebuilt.HTTPStatus())
	assert.Equal(t, apperror.CodeInternalError, rebuilt.Code)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, apperror.RequestTimeout("slow").IsRetryable())
	assert.False(t, apperror.Conflict("dup").IsRetryable())
}
