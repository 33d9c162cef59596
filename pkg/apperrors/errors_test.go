package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := NotFound("user not found")
	assert.Same(t, typed, FromError(typed))

	wrapped := FromError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, CodeDependency, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, wrapped.Status)
	// The cause never leaks into the outward message.
	assert.Equal(t, "internal server error", wrapped.Message)
	assert.EqualError(t, errors.Unwrap(wrapped), "dial tcp: connection refused")
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(Conflict("taken"), CodeConflict))
	assert.False(t, IsCode(Conflict("taken"), CodeNotFound))
	assert.False(t, IsCode(errors.New("plain"), CodeConflict))
	assert.False(t, IsCode(nil, CodeConflict))
}

func TestFromValidation(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Year  int    `validate:"min=1,max=4"`
	}
	err := validator.New().Struct(payload{Email: "not-an-email", Year: 9})
	require.Error(t, err)

	got := FromValidation(err)
	assert.Equal(t, CodeValidation, got.Code)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "Email", got.Fields[0].Field)

	plain := FromValidation(errors.New("bad body"))
	assert.Equal(t, CodeValidation, plain.Code)
	assert.Equal(t, "bad body", plain.Message)
}
