package errors

import (
	"errors"
	"fmt"
)

// Service errors - sentinel errors for use with errors.Is()
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnavailable    = errors.New("service unavailable")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// AppError carries a stable machine code and a client-safe message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: msg, Err: ErrBadRequest}
}

// InvalidInput keeps err in the chain so callers can still match the
// underlying rbac sentinel.
func InvalidInput(msg string, err error) *AppError {
	if err == nil {
		err = ErrInvalidInput
	} else if !errors.Is(err, ErrInvalidInput) {
		err = fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return &AppError{Code: "INVALID_INPUT", Message: msg, Err: err}
}

func Unavailable(msg string) *AppError {
	return &AppError{Code: "UNAVAILABLE", Message: msg, Err: ErrUnavailable}
}

func InternalServer(msg string, err error) *AppError {
	return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: err}
}
