package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "authz-service/pkg/errors"
	"authz-service/pkg/rbac"
)

// CatalogHandler describes the permission vocabulary and the loaded roles.
type CatalogHandler struct {
	engine Authorizer
}

func NewCatalogHandler(engine Authorizer) *CatalogHandler {
	return &CatalogHandler{engine: engine}
}

type CatalogResponse struct {
	Permissions []rbac.Permission `json:"permissions"`
	Count       int               `json:"count"`
}

type RoleSummary struct {
	Name       rbac.Role `json:"name"`
	Rank       int       `json:"rank"`
	GrantCount int       `json:"grant_count"`
}

type RolesResponse struct {
	Roles       []RoleSummary `json:"roles"`
	Fingerprint string        `json:"fingerprint"`
}

type RoleGrantsResponse struct {
	Role        rbac.Role `json:"role"`
	Permissions []string  `json:"permissions"`
	Fingerprint string    `json:"fingerprint"`
}

// Permissions lists the closed vocabulary. It does not depend on a loaded
// table.
func (h *CatalogHandler) Permissions(c echo.Context) error {
	perms := rbac.AllPermissions()
	return c.JSON(http.StatusOK, CatalogResponse{Permissions: perms, Count: len(perms)})
}

// Roles lists the loaded table's roles lowest first.
func (h *CatalogHandler) Roles(c echo.Context) error {
	table := h.engine.Table()
	if table == nil {
		return apperrors.Unavailable(msgNotReady)
	}

	roles := table.Roles()
	out := make([]RoleSummary, 0, len(roles))
	for i, r := range roles {
		set, err := table.GrantsFor(r)
		if err != nil {
			return apperrors.InternalServer(msgInvalidQuery, err)
		}
		out = append(out, RoleSummary{Name: r, Rank: i, GrantCount: set.Len()})
	}

	return c.JSON(http.StatusOK, RolesResponse{Roles: out, Fingerprint: table.Fingerprint()})
}

// RoleGrants returns the exact grant set of one role.
func (h *CatalogHandler) RoleGrants(c echo.Context) error {
	role, err := rbac.ParseRole(c.Param(paramRole))
	if err != nil {
		return apperrors.InvalidInput(msgUnknownRole, err)
	}

	table := h.engine.Table()
	if table == nil {
		return apperrors.Unavailable(msgNotReady)
	}

	set, err := table.GrantsFor(role)
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusOK, RoleGrantsResponse{
		Role:        role,
		Permissions: set.Strings(),
		Fingerprint: table.Fingerprint(),
	})
}
