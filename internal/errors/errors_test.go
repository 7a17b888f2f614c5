package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "missing booking", NotFound("missing booking").Error())

	wrapped := Wrap(errors.New("boom"), ErrCodeInternal, "query failed")
	assert.Equal(t, "query failed: boom", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeInternal, "query failed")
	assert.True(t, errors.Is(err, cause))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
}

func TestCodeCheckers(t *testing.T) {
	assert.True(t, IsNotFound(NotFoundf("booking %s not found", "b1")))
	assert.True(t, IsConflict(Conflict("duplicate")))
	assert.True(t, IsValidation(Validation("bad input")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestCodeCheckers_SeeThroughWrapping(t *testing.T) {
	inner := NotFound("gone")
	outer := Wrapf(inner, ErrCodeInternal, "while loading")
	// errors.As finds the outermost AppError.
	assert.Equal(t, ErrCodeInternal, GetCode(outer))
	assert.True(t, errors.Is(outer, inner))
}

func TestValidationField(t *testing.T) {
	err := ValidationField("phone", "invalid phone number")
	require.True(t, IsValidation(err))
	assert.Equal(t, "phone", GetField(err))
	assert.Equal(t, ErrCodeValidation, GetCode(err))
}

func TestGetCode_NonAppError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
	assert.Equal(t, "", GetField(errors.New("plain")))
}
