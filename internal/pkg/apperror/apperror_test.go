package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	notFound := NotFound("unit not found")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain app error", notFound, http.StatusNotFound},
		{"wrapped with fmt", fmt.Errorf("lookup: %w", notFound), http.StatusNotFound},
		{"invalid argument", InvalidArgument("bad range"), http.StatusBadRequest},
		{"conflict", Conflict("taken"), http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestWrap_KeepsSentinelReachable(t *testing.T) {
	sentinel := Forbidden("permission denied")
	wrapped := Wrap(sentinel, http.StatusForbidden, "cannot edit unit")

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, "cannot edit unit", wrapped.Error())
}
