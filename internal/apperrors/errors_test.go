package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_MatchesSentinelForCode(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, ErrValidation},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusInternalServerError, ErrPersistence},
		{http.StatusServiceUnavailable, ErrPersistence},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.code), func(t *testing.T) {
			err := NewAppError(tc.code, "boom", nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAppError_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("saving: %w", NewPersistenceError("failed to insert transaction", cause))

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{
		"category": "category is required",
		"amount":   "amount must be greater than zero",
	})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation error: amount: amount must be greater than zero; category: category is required", err.Error())

	wrapped := fmt.Errorf("create: %w", err)
	assert.Equal(t, map[string]string{
		"category": "category is required",
		"amount":   "amount must be greater than zero",
	}, FieldsOf(wrapped))
	assert.Nil(t, FieldsOf(NewNotFoundError("missing")))
}
