package handler

import (
	"context"

	"authz-service/pkg/rbac"
)

// Consumer-side interfaces defined by handlers
// *rbac.Engine satisfies Authorizer.

type Authorizer interface {
	Ready() bool
	Fingerprint() string
	Table() *rbac.GrantTable
	Can(s rbac.Subject, p rbac.Permission) (bool, error)
	HasRole(s rbac.Subject, r rbac.Role) (bool, error)
	HasAnyRole(s rbac.Subject, roles []rbac.Role) (bool, error)
	HasAnyPermission(s rbac.Subject, perms []rbac.Permission) (bool, error)
	HasAllPermissions(s rbac.Subject, perms []rbac.Permission) (bool, error)
	GrantSet(s rbac.Subject) (rbac.PermissionSet, error)
	Capabilities(s rbac.Subject) (rbac.Capabilities, error)
}

type SubjectResolver interface {
	Resolve(ctx context.Context, identity string) (rbac.Subject, error)
}

type DecisionRecorder interface {
	ObserveDecision(operation string, allowed bool, err error)
}

// Reloader installs a freshly loaded grant table and reports the
// fingerprints before and after.
type Reloader interface {
	Reload(ctx context.Context) (previous, current string, err error)
}
