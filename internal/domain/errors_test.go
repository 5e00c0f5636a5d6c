package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrValidation,
		ErrForbidden,
		ErrUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "session with id",
			entity:      "session",
			id:          "abc",
			expectedMsg: `session with id "abc" not found`,
		},
		{
			name:        "entity only",
			entity:      "quotation",
			expectedMsg: "quotation not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
		})
	}
}

func TestValidationError(t *testing.T) {
	assert.Equal(t, "validation failed for text: must not be empty",
		NewValidationError("text", "must not be empty").Error())
	assert.Equal(t, "validation failed: bad input",
		NewValidationError("", "bad input").Error())
	assert.True(t, IsValidation(NewValidationError("text", "x")))
}

func TestUnavailableError(t *testing.T) {
	err := NewUnavailableError("assistant", "circuit open")

	assert.Equal(t, `service "assistant" unavailable: circuit open`, err.Error())
	assert.Equal(t, `service "store" unavailable`, NewUnavailableError("store", "").Error())
	assert.True(t, IsUnavailable(err))
}

func TestIsHelpers_WrappedErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NewNotFoundError("session", "1"), IsNotFound},
		{"conflict", fmt.Errorf("sync: %w", ErrConflict), IsConflict},
		{"validation", NewValidationError("text", "empty"), IsValidation},
		{"forbidden", fmt.Errorf("load: %w", ErrForbidden), IsForbidden},
		{"unavailable", NewUnavailableError("assistant", "down"), IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.False(t, tt.check(fmt.Errorf("plain")))
		})
	}
}
