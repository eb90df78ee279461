package echoadapter

import (
	"errors"
	"fmt"
	"net/http"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"

	"authz-service/pkg/logger"
	"authz-service/pkg/rbac"
)

// Guard builds Echo middleware that gates routes on the subject stored by
// SetSubject, evaluated against an rbac.Engine.
type Guard struct {
	engine *rbac.Engine
	logger slog.Logger
}

func NewGuard(engine *rbac.Engine, log slog.Logger) *Guard {
	return &Guard{engine: engine, logger: log.Named("rbac")}
}

// The Require* constructors panic on a token outside the catalog or role
// enumeration, so a miswired route fails when the router is built.

// RequirePermission returns 403 Forbidden unless the subject holds p.
func (g *Guard) RequirePermission(p rbac.Permission) echo.MiddlewareFunc {
	mustPermissions("RequirePermission", p)
	return g.require("permission", func(s rbac.Subject) (bool, error) {
		return g.engine.Can(s, p)
	})
}

// RequireAnyPermission returns 403 Forbidden unless the subject holds at
// least one of perms.
func (g *Guard) RequireAnyPermission(perms ...rbac.Permission) echo.MiddlewareFunc {
	mustPermissions("RequireAnyPermission", perms...)
	return g.require("any_permission", func(s rbac.Subject) (bool, error) {
		return g.engine.HasAnyPermission(s, perms)
	})
}

// RequireAllPermissions returns 403 Forbidden unless the subject holds every
// one of perms.
func (g *Guard) RequireAllPermissions(perms ...rbac.Permission) echo.MiddlewareFunc {
	mustPermissions("RequireAllPermissions", perms...)
	return g.require("all_permissions", func(s rbac.Subject) (bool, error) {
		return g.engine.HasAllPermissions(s, perms)
	})
}

// RequireRole returns 403 Forbidden unless the subject is assigned exactly
// r. A higher role does not pass.
func (g *Guard) RequireRole(r rbac.Role) echo.MiddlewareFunc {
	mustRoles("RequireRole", r)
	return g.require("role", func(s rbac.Subject) (bool, error) {
		return g.engine.HasRole(s, r)
	})
}

// RequireAnyRole returns 403 Forbidden unless the subject is assigned one of
// roles.
func (g *Guard) RequireAnyRole(roles ...rbac.Role) echo.MiddlewareFunc {
	mustRoles("RequireAnyRole", roles...)
	return g.require("any_role", func(s rbac.Subject) (bool, error) {
		return g.engine.HasAnyRole(s, roles)
	})
}

func mustPermissions(fn string, perms ...rbac.Permission) {
	for _, p := range perms {
		if !p.Valid() {
			panic(fmt.Sprintf("echoadapter.%s: %v: %q", fn, rbac.ErrUnknownPermission, string(p)))
		}
	}
}

func mustRoles(fn string, roles ...rbac.Role) {
	for _, r := range roles {
		if !rbac.RoleExists(r) {
			panic(fmt.Sprintf("echoadapter.%s: %v: %q", fn, rbac.ErrInvalidRole, string(r)))
		}
	}
}

func (g *Guard) require(check string, allowed func(rbac.Subject) (bool, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			subject, err := SubjectFrom(c)
			if err != nil {
				g.logger.Debug(ctx, "no subject for guarded route", slog.F("path", c.Path()))
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
			}

			ok, err := allowed(subject)
			switch {
			case errors.Is(err, rbac.ErrNotReady):
				g.logger.Warn(ctx, "grant table not loaded", slog.F("check", check))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"error": "Service unavailable",
				})
			case err != nil:
				g.logger.Error(ctx, "authorization check failed",
					slog.F("check", check), logger.Error(err))
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "Internal server error",
				})
			case !ok:
				g.logger.Debug(ctx, "authorization denied",
					slog.F("check", check),
					slog.F("subject_id", subject.ID),
					slog.F("role", subject.Role.String()))
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "Forbidden",
				})
			}

			return next(c)
		}
	}
}
