package echoadapter

import (
	"errors"

	"github.com/labstack/echo/v4"

	"authz-service/pkg/rbac"
)

// Context keys used by the authentication middleware.
const (
	ContextKeySubjectID   = "subject_id"
	ContextKeySubjectRole = "subject_role"
)

// ErrNoSubject is returned when authentication middleware has not placed a
// subject in the request context.
var ErrNoSubject = errors.New("no authenticated subject in context")

// SetSubject stores s in the Echo context for the rbac middleware and
// handlers further down the chain.
func SetSubject(c echo.Context, s rbac.Subject) {
	c.Set(ContextKeySubjectID, s.ID)
	c.Set(ContextKeySubjectRole, string(s.Role))
}

// SubjectFrom rebuilds the subject stored by SetSubject. The role is passed
// through unvalidated; the engine treats an unknown role as holding nothing.
func SubjectFrom(c echo.Context) (rbac.Subject, error) {
	id, ok := c.Get(ContextKeySubjectID).(string)
	if !ok || id == "" {
		return rbac.Subject{}, ErrNoSubject
	}
	role, _ := c.Get(ContextKeySubjectRole).(string)
	return rbac.Subject{ID: id, Role: rbac.Role(role)}, nil
}
