package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "authz-service/pkg/errors"
	"authz-service/pkg/rbac/echoadapter"
)

// MeHandler reports what the token holder may do.
type MeHandler struct {
	engine Authorizer
}

func NewMeHandler(engine Authorizer) *MeHandler {
	return &MeHandler{engine: engine}
}

func (h *MeHandler) Get(c echo.Context) error {
	subject, err := echoadapter.SubjectFrom(c)
	if err != nil {
		return apperrors.Unauthorized(msgNoSubject)
	}

	set, err := h.engine.GrantSet(subject)
	if err != nil {
		return engineError(err)
	}
	caps, err := h.engine.Capabilities(subject)
	if err != nil {
		return engineError(err)
	}

	return c.JSON(http.StatusOK, GrantsResponse{
		Subject:      subject,
		Permissions:  set.Strings(),
		Capabilities: caps,
		Fingerprint:  h.engine.Fingerprint(),
	})
}
