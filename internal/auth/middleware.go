package auth

import (
	"net/http"
	"strings"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"

	"authz-service/pkg/logger"
	"authz-service/pkg/rbac/echoadapter"
)

type Middleware struct {
	jwtService  *JWTService
	resolver    *ClaimsResolver
	serviceKeys *ServiceKeys
	logger      slog.Logger
}

func NewMiddleware(jwtService *JWTService, resolver *ClaimsResolver, serviceKeys *ServiceKeys, log slog.Logger) *Middleware {
	return &Middleware{
		jwtService:  jwtService,
		resolver:    resolver,
		serviceKeys: serviceKeys,
		logger:      log.Named("auth"),
	}
}

// RequireJWT verifies the bearer token and stores the resolved subject with
// echoadapter.SetSubject.
func (m *Middleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingAuthorization)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				m.logger.Debug(c.Request().Context(), "token rejected", logger.Error(err))
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			subject, err := m.resolver.FromClaims(c.Request().Context(), claims)
			if err != nil {
				m.logger.Error(c.Request().Context(), "resolve subject",
					slog.F("subject_id", claims.Subject),
					logger.Error(err),
				)
				return respondError(c, http.StatusServiceUnavailable, msgSubjectUnresolved)
			}

			echoadapter.SetSubject(c, subject)
			return next(c)
		}
	}
}

// RequireServiceKey admits callers presenting a configured X-Service-Key.
// When no keys are configured every caller is admitted.
func (m *Middleware) RequireServiceKey() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.serviceKeys.Enabled() {
				return next(c)
			}

			key := strings.TrimSpace(c.Request().Header.Get(headerServiceKey))
			if key == "" {
				return respondError(c, http.StatusUnauthorized, msgMissingServiceKey)
			}
			if !m.serviceKeys.Verify(key) {
				return respondError(c, http.StatusUnauthorized, msgInvalidServiceKey)
			}

			c.Set(contextKeyServiceCaller, KeyID(key))
			return next(c)
		}
	}
}

// ServiceCallerFrom returns the KeyID of the service key RequireServiceKey
// verified for this request. It is empty when no key was verified, including
// when service keys are disabled.
func ServiceCallerFrom(c echo.Context) (string, bool) {
	id, ok := c.Get(contextKeyServiceCaller).(string)
	return id, ok && id != ""
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyError: message})
}
