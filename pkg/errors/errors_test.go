package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalid, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindInternal, http.StatusInternalServerError},
		{Kind(99), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.HTTPStatus())
	}
}

func TestAsError(t *testing.T) {
	sentinel := New(KindForbidden, "forbidden", "nope")

	wrapped := fmt.Errorf("get profile: %w", sentinel)

	got, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Same(t, sentinel, got)
	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.Equal(t, http.StatusForbidden, got.HTTPStatus())

	_, ok = AsError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestInternalError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewInternalError("failed to find user", cause)

	assert.Equal(t, "failed to find user: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Equal(t, "failed to find user", NewInternalError("failed to find user", nil).Error())
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "validation failed: email - must be a valid email",
		NewValidationError("email", "must be a valid email").Error())
	assert.Equal(t, "validation failed: bad input", NewValidationError("", "bad input").Error())
	assert.Equal(t, http.StatusUnprocessableEntity, NewValidationError("", "x").HTTPStatus())
}
