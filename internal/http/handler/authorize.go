package handler

import (
	"net/http"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"

	apperrors "authz-service/pkg/errors"
	"authz-service/pkg/logger"
	"authz-service/pkg/rbac"
	"authz-service/pkg/validator"
)

// AuthorizeHandler answers authorization queries from other services.
type AuthorizeHandler struct {
	engine   Authorizer
	resolver SubjectResolver
	recorder DecisionRecorder
	maxItems int
	logger   slog.Logger
}

func NewAuthorizeHandler(engine Authorizer, resolver SubjectResolver, recorder DecisionRecorder, maxItems int, log slog.Logger) *AuthorizeHandler {
	if maxItems <= 0 {
		maxItems = validator.DefaultMaxItems
	}
	return &AuthorizeHandler{
		engine:   engine,
		resolver: resolver,
		recorder: recorder,
		maxItems: maxItems,
		logger:   log.Named("authorize"),
	}
}

type DecisionResponse struct {
	Allowed     bool         `json:"allowed"`
	Subject     rbac.Subject `json:"subject"`
	Fingerprint string       `json:"fingerprint"`
}

type GrantsResponse struct {
	Subject      rbac.Subject      `json:"subject"`
	Permissions  []string          `json:"permissions"`
	Capabilities rbac.Capabilities `json:"capabilities"`
	Fingerprint  string            `json:"fingerprint"`
}

func (h *AuthorizeHandler) Can(c echo.Context) error {
	var req CanRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if err := validator.Token("permission", req.Permission); err != nil {
		return h.reject(opCan, err)
	}
	perm, err := rbac.ParsePermission(req.Permission)
	if err != nil {
		return h.reject(opCan, err)
	}

	return h.decide(c, opCan, req.Subject, func(s rbac.Subject) (bool, error) {
		return h.engine.Can(s, perm)
	})
}

func (h *AuthorizeHandler) HasAnyPermission(c echo.Context) error {
	return h.permissions(c, opHasAnyPermission, h.engine.HasAnyPermission)
}

func (h *AuthorizeHandler) HasAllPermissions(c echo.Context) error {
	return h.permissions(c, opHasAllPermissions, h.engine.HasAllPermissions)
}

func (h *AuthorizeHandler) permissions(c echo.Context, op string, check func(rbac.Subject, []rbac.Permission) (bool, error)) error {
	var req PermissionsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if err := validator.Tokens("permissions", req.Permissions, h.maxItems); err != nil {
		return h.reject(op, err)
	}
	perms, err := rbac.ParsePermissions(req.Permissions)
	if err != nil {
		return h.reject(op, err)
	}

	return h.decide(c, op, req.Subject, func(s rbac.Subject) (bool, error) {
		return check(s, perms)
	})
}

func (h *AuthorizeHandler) HasRole(c echo.Context) error {
	var req RoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if err := validator.Token("role", req.Role); err != nil {
		return h.reject(opHasRole, err)
	}
	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return h.reject(opHasRole, err)
	}

	return h.decide(c, opHasRole, req.Subject, func(s rbac.Subject) (bool, error) {
		return h.engine.HasRole(s, role)
	})
}

func (h *AuthorizeHandler) HasAnyRole(c echo.Context) error {
	var req RolesRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if err := validator.Tokens("roles", req.Roles, h.maxItems); err != nil {
		return h.reject(opHasAnyRole, err)
	}
	roles, err := rbac.ParseRoles(req.Roles)
	if err != nil {
		return h.reject(opHasAnyRole, err)
	}

	return h.decide(c, opHasAnyRole, req.Subject, func(s rbac.Subject) (bool, error) {
		return h.engine.HasAnyRole(s, roles)
	})
}

// Grants returns the subject's exact grant set and derived capabilities.
func (h *AuthorizeHandler) Grants(c echo.Context) error {
	var req GrantsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	subject, err := h.subject(c, req.Subject)
	if err != nil {
		return h.reject(opGrants, err)
	}

	set, err := h.engine.GrantSet(subject)
	if err != nil {
		return h.reject(opGrants, err)
	}
	caps, err := h.engine.Capabilities(subject)
	if err != nil {
		return h.reject(opGrants, err)
	}
	h.recorder.ObserveDecision(opGrants, set.Len() > 0, nil)

	return c.JSON(http.StatusOK, GrantsResponse{
		Subject:      subject,
		Permissions:  set.Strings(),
		Capabilities: caps,
		Fingerprint:  h.engine.Fingerprint(),
	})
}

func (h *AuthorizeHandler) decide(c echo.Context, op string, sr SubjectRequest, check func(rbac.Subject) (bool, error)) error {
	subject, err := h.subject(c, sr)
	if err != nil {
		return h.reject(op, err)
	}

	allowed, err := check(subject)
	if err != nil {
		return h.reject(op, err)
	}
	h.recorder.ObserveDecision(op, allowed, nil)

	return c.JSON(http.StatusOK, DecisionResponse{
		Allowed:     allowed,
		Subject:     subject,
		Fingerprint: h.engine.Fingerprint(),
	})
}

// subject validates sr and fills in the role when the caller left it out.
// Readiness is checked first so an unready service does not hit the role
// store.
func (h *AuthorizeHandler) subject(c echo.Context, sr SubjectRequest) (rbac.Subject, error) {
	if err := validator.SubjectID(sr.ID); err != nil {
		return rbac.Subject{}, err
	}
	if !h.engine.Ready() {
		return rbac.Subject{}, rbac.ErrNotReady
	}
	if sr.Role != nil {
		return rbac.Subject{ID: sr.ID, Role: rbac.Role(*sr.Role)}, nil
	}

	s, err := h.resolver.Resolve(c.Request().Context(), sr.ID)
	if err != nil {
		h.logger.Error(c.Request().Context(), "resolve subject",
			slog.F("subject_id", sr.ID),
			logger.Error(err),
		)
		return rbac.Subject{}, apperrors.Unavailable(msgSubjectUnresolved)
	}
	return s, nil
}

func (h *AuthorizeHandler) reject(op string, err error) error {
	h.recorder.ObserveDecision(op, false, err)
	if _, ok := err.(*apperrors.AppError); ok {
		return err
	}
	return engineError(err)
}
