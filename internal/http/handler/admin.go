package handler

import (
	"net/http"

	"cdr.dev/slog/v3"
	"github.com/labstack/echo/v4"

	"authz-service/pkg/logger"
	"authz-service/pkg/rbac/echoadapter"
)

type AdminHandler struct {
	reloader Reloader
	logger   slog.Logger
}

func NewAdminHandler(reloader Reloader, log slog.Logger) *AdminHandler {
	return &AdminHandler{reloader: reloader, logger: log.Named("admin")}
}

type ReloadResponse struct {
	Previous string `json:"previous_fingerprint"`
	Current  string `json:"fingerprint"`
	Changed  bool   `json:"changed"`
}

// Reload loads the grant table from the configured source. A rejected table
// leaves the served one in place and answers 422.
func (h *AdminHandler) Reload(c echo.Context) error {
	ctx := c.Request().Context()
	subject, _ := echoadapter.SubjectFrom(c)

	prev, cur, err := h.reloader.Reload(ctx)
	if err != nil {
		h.logger.Warn(ctx, "manual grant table reload rejected",
			slog.F("subject_id", subject.ID),
			logger.Error(err),
		)
		return respondError(c, http.StatusUnprocessableEntity, msgGrantTableRejected)
	}

	h.logger.Info(ctx, "manual grant table reload",
		slog.F("subject_id", subject.ID),
		slog.F("previous", prev),
		slog.F("fingerprint", cur),
	)
	return c.JSON(http.StatusOK, ReloadResponse{Previous: prev, Current: cur, Changed: prev != cur})
}
