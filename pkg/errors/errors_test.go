package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error wins", New(ErrInternal, http.StatusTeapot, "short and stout"), http.StatusTeapot},
		{"invalid input", fmt.Errorf("decoding body: %w", ErrInvalidInput), http.StatusBadRequest},
		{"contract", ErrContractViolation, http.StatusBadRequest},
		{"busy", ErrBusy, http.StatusConflict},
		{"partition", fmt.Errorf("acquire: %w", ErrPartitionUnavailable), http.StatusServiceUnavailable},
		{"table", ErrTableMissing, http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusCode(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "batch size %d", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "invalid input: batch size -1", err.Error())
}

func TestIsDegradable(t *testing.T) {
	assert.True(t, IsDegradable(fmt.Errorf("x: %w", ErrTableMissing)))
	assert.True(t, IsDegradable(ErrPartitionUnavailable))
	assert.False(t, IsDegradable(ErrInternal))
}
