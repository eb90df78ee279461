package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errUpstream = errors.New("unknown permission")

func TestAppErrorChain(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		target error
		code   string
	}{
		{"not found", NotFound("no such role"), ErrNotFound, "NOT_FOUND"},
		{"unauthorized", Unauthorized("missing token"), ErrUnauthorized, "UNAUTHORIZED"},
		{"forbidden", Forbidden("nope"), ErrForbidden, "FORBIDDEN"},
		{"bad request", BadRequest("malformed body"), ErrBadRequest, "BAD_REQUEST"},
		{"unavailable", Unavailable("not ready"), ErrUnavailable, "UNAVAILABLE"},
		{"invalid input wraps cause", InvalidInput("bad token", errUpstream), errUpstream, "INVALID_INPUT"},
		{"invalid input sentinel", InvalidInput("bad token", errUpstream), ErrInvalidInput, "INVALID_INPUT"},
		{"invalid input without cause", InvalidInput("bad token", nil), ErrInvalidInput, "INVALID_INPUT"},
		{"internal", InternalServer("boom", errUpstream), errUpstream, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false, expected true", tt.err, tt.target)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, expected %q", tt.err.Code, tt.code)
			}
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "no such role: resource not found", NotFound("no such role").Error())
	assert.Equal(t, "plain", (&AppError{Message: "plain"}).Error())
}
