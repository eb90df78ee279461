package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20 // Keep parser bound aligned with global body limit.
)

func bindStrictJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, msgInvalidRequestBody)
	}

	return nil
}

// SubjectRequest names the subject a query is about. When Role is omitted
// the subject's role is resolved from its id; an explicit empty role means
// the subject has none.
type SubjectRequest struct {
	ID   string  `json:"id"`
	Role *string `json:"role,omitempty"`
}

type CanRequest struct {
	Subject    SubjectRequest `json:"subject"`
	Permission string         `json:"permission"`
}

type PermissionsRequest struct {
	Subject     SubjectRequest `json:"subject"`
	Permissions []string       `json:"permissions"`
}

type RoleRequest struct {
	Subject SubjectRequest `json:"subject"`
	Role    string         `json:"role"`
}

type RolesRequest struct {
	Subject SubjectRequest `json:"subject"`
	Roles   []string       `json:"roles"`
}

type GrantsRequest struct {
	Subject SubjectRequest `json:"subject"`
}
