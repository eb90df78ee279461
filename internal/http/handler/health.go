package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	engine Authorizer
}

func NewHealthHandler(engine Authorizer) *HealthHandler {
	return &HealthHandler{engine: engine}
}

func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{jsonKeyStatus: statusOK})
}

// Ready answers 200 only while a validated grant table is installed.
func (h *HealthHandler) Ready(c echo.Context) error {
	if !h.engine.Ready() {
		return respondError(c, http.StatusServiceUnavailable, msgNotReady)
	}
	return c.JSON(http.StatusOK, map[string]string{
		jsonKeyStatus: statusReady,
		"fingerprint": h.engine.Fingerprint(),
	})
}
