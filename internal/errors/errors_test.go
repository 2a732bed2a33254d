package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "record not found", NotFound("record not found").Error())

	wrapped := Wrap(errors.New("dial tcp"), ErrCodeUnavailable, "gateway unreachable")
	assert.Equal(t, "gateway unreachable: dial tcp", wrapped.Error())
}

func TestConstructorsFormat(t *testing.T) {
	t.Parallel()

	err := Validation("field %s is required", "title")
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Equal(t, "field title is required", err.Message)

	assert.Equal(t, "gateway down", Unavailable("gateway down").Message)
}

func TestWrapNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Wrap(nil, ErrCodeInternal, "x"))
	assert.NoError(t, Wrapf(nil, ErrCodeInternal, "x %d", 1))
}

func TestPredicatesThroughWrapping(t *testing.T) {
	t.Parallel()

	base := ValidationField("email", "Invalid email address")
	err := fmt.Errorf("submit: %w", base)

	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "email", GetField(err))
	assert.Equal(t, ErrCodeValidation, GetCode(err))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Record not found", UserMessage(fmt.Errorf("x: %w", NotFound("Record not found")), "oops"))
	assert.Equal(t, "oops", UserMessage(errors.New("dial tcp 10.0.0.1"), "oops"))
}
