package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", ValidationError("invalid input"), TypeValidation, http.StatusBadRequest},
		{"auth", AuthError("wrong password"), TypeAuth, http.StatusUnauthorized},
		{"not found", NotFoundError("token not found"), TypeNotFound, http.StatusNotFound},
		{"conflict", ConflictError("request mismatch"), TypeConflict, http.StatusConflict},
		{"internal", InternalError("save failed", fmt.Errorf("disk full")), TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.wantType))
		})
	}
}

func TestInternalError_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := InternalError("failed to save table", cause)

	assert.Equal(t, cause, err.Cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWithField(t *testing.T) {
	err := ConflictError("request mismatch").
		WithField("username", "mr1").
		WithField("request_id", "abc")

	assert.Equal(t, "mr1", err.Context["username"])
	assert.Equal(t, "abc", err.Context["request_id"])
}

func TestToResponse(t *testing.T) {
	err := AuthError("wrong password").WithField("username", "mr1")
	resp := err.ToResponse()

	assert.False(t, resp.Success)
	assert.Equal(t, "wrong password", resp.Error)
	assert.Equal(t, TypeAuth, resp.Type)
	assert.Equal(t, "mr1", resp.Context["username"])
}

func TestAsStructuredError(t *testing.T) {
	structured := ValidationError("bad input")
	assert.Same(t, structured, AsStructuredError(structured))

	wrapped := AsStructuredError(fmt.Errorf("wrapped: %w", structured))
	assert.Same(t, structured, wrapped)

	plain := errors.New("plain failure")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.Equal(t, plain, converted.Cause)

	assert.Nil(t, AsStructuredError(nil))
}
