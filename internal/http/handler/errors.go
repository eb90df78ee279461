package handler

import (
	"errors"

	apperrors "authz-service/pkg/errors"
	"authz-service/pkg/rbac"
)

// engineError maps an engine error to a client-facing error. Unknown
// vocabulary is the caller's fault and never reads as a plain denial.
func engineError(err error) error {
	switch {
	case errors.Is(err, rbac.ErrNotReady):
		return apperrors.Unavailable(msgNotReady)
	case errors.Is(err, rbac.ErrUnknownPermission):
		return apperrors.InvalidInput(msgUnknownPermission, err)
	case errors.Is(err, rbac.ErrInvalidRole):
		return apperrors.InvalidInput(msgUnknownRole, err)
	case errors.Is(err, apperrors.ErrInvalidInput):
		return apperrors.InvalidInput(msgInvalidQuery, err)
	default:
		return apperrors.InternalServer(msgInvalidQuery, err)
	}
}
