package middleware

import (
	"time"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request. Handler errors are passed to the
// echo error handler first so the logged status is the one sent.
func RequestLogger(log slog.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []slog.Field{
				slog.F("method", req.Method),
				slog.F("path", req.URL.Path),
				slog.F("status", status),
				slog.F("latency_ms", time.Since(start).Milliseconds()),
				slog.F("request_id", GetRequestID(c)),
				slog.F("remote_ip", c.RealIP()),
			}

			switch {
			case status >= 500:
				log.Error(req.Context(), "request", fields...)
			case status >= 400:
				log.Info(req.Context(), "request", fields...)
			default:
				log.Debug(req.Context(), "request", fields...)
			}
			return nil
		}
	}
}
