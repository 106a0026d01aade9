package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"validation", NewValidationError("bad", "title is required"), ErrValidation, true},
		{"wrapped validation", fmt.Errorf("create: %w", NewValidationError("bad")), ErrValidation, true},
		{"404 rejection is not found", NewServerRejection(http.StatusNotFound, ""), ErrNotFound, true},
		{"500 rejection is not not-found", NewServerRejection(http.StatusInternalServerError, ""), ErrNotFound, false},
		{"rejection is rejection", NewServerRejection(http.StatusForbidden, "nope"), ErrServerRejection, true},
		{"network is not rejection", NewNetworkError("GET /api/recipes", errors.New("dial")), ErrServerRejection, false},
		{"denied", NewAuthorizationDenied("admins only"), ErrAuthorizationDenied, true},
		{"in flight", ErrInFlight, ErrInFlight, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestAppError_Message(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewNetworkError("POST /api/recipes", cause)
	assert.Equal(t, "POST /api/recipes failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	rejection := NewServerRejection(http.StatusBadGateway, "")
	assert.Equal(t, "Bad Gateway", rejection.Error())
	assert.Equal(t, http.StatusBadGateway, rejection.Status)
}
