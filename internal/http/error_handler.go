package http

import (
	"errors"
	"fmt"
	"net/http"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"

	"authz-service/internal/http/middleware"
	apperrors "authz-service/pkg/errors"
	"authz-service/pkg/logger"
)

const (
	jsonKeyError     = "error"
	jsonKeyRequestID = "request_id"
	unknownRequestID = "unknown"
	msgInternalError = "Internal server error"
)

// NewHTTPErrorHandler handles all errors returned by handlers and middleware.
// Sentinel errors map to status codes; 5xx details are logged and never
// sent to the client.
func NewHTTPErrorHandler(log slog.Logger) echo.HTTPErrorHandler {
	log = log.Named("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, message := statusFor(err)

		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = unknownRequestID
		}

		ctx := c.Request().Context()
		if code >= 500 {
			log.Error(ctx, "internal server error",
				slog.F("request_id", requestID),
				slog.F("status", code),
				logger.Error(err),
			)
			message = msgInternalError
		} else {
			log.Debug(ctx, "client error",
				slog.F("request_id", requestID),
				slog.F("status", code),
				logger.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]string{
				jsonKeyError:     message,
				jsonKeyRequestID: requestID,
			})
		}
		if err != nil {
			log.Error(ctx, "write error response", logger.Error(err))
		}
	}
}

func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if m, ok := httpErr.Message.(string); ok {
			return httpErr.Code, m
		}
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	code := http.StatusInternalServerError
	message := msgInternalError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = http.StatusNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized):
		code, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		code, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrBadRequest):
		code, message = http.StatusBadRequest, "Bad request"
	case errors.Is(err, apperrors.ErrInvalidInput):
		code, message = http.StatusBadRequest, "Invalid input"
	case errors.Is(err, apperrors.ErrRateLimited):
		code, message = http.StatusTooManyRequests, "Rate limit exceeded"
	case errors.Is(err, apperrors.ErrUnavailable):
		code, message = http.StatusServiceUnavailable, "Service unavailable"
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && code < 500 {
		message = appErr.Message
	}
	return code, message
}
