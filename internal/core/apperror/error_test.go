package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad"), http.StatusBadRequest},
		{"not found", NewNotFound("product", "x"), http.StatusNotFound},
		{"conflict", NewConflict("not pending"), http.StatusConflict},
		{"forbidden", NewForbidden("nope"), http.StatusForbidden},
		{"insufficient stock", NewInsufficientStock("p", 5, 2), http.StatusConflict},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFound("store", "s")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.Equal(t, "Internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestCodeHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", NewDuplicate("category", "name", "Snacks"))

	assert.True(t, IsDuplicate(dup))
	assert.False(t, IsNotFound(dup))
	assert.True(t, IsNotFound(NewNotFound("purchase", "1")))
	assert.False(t, HasCode(errors.New("x"), CodeConflict))
}
