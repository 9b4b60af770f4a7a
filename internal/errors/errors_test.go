package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"not found", NotFound("missing"), KindNotFound},
		{"conflict", Conflict("dup"), KindConflict},
		{"wrapped conflict", fmt.Errorf("create: %w", Conflict("dup")), KindConflict},
		{"plain error", fmt.Errorf("boom"), KindStorage},
		{"storage", Storage(fmt.Errorf("boom")), KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStorage_KeepsDomainErrors(t *testing.T) {
	err := Conflict("ISBN already exists.")
	assert.Same(t, err, Storage(err))
	assert.Nil(t, Storage(nil))
}

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{Validation("Year must be a valid number."), http.StatusBadRequest, "VALIDATION_ERROR", "Year must be a valid number."},
		{NotFound("Author not found."), http.StatusNotFound, "NOT_FOUND", "Author not found."},
		{Conflict("Email already exists."), http.StatusConflict, "CONFLICT", "Email already exists."},
		{Storage(fmt.Errorf("dial tcp: refused")), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
			resp := httpErr.ToErrorResponse()
			assert.False(t, resp.Success)
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}
