// Package rbac implements role based authorization for the dangerous-goods
// operations platform.
//
// The package has three layers:
//
//   - a closed Permission catalog (catalog.go) and Role enumeration (roles.go)
//   - an immutable GrantTable mapping each role to the exact set of
//     permissions it holds, built either from flat per-role lists or from an
//     inheritance Config whose closure is computed at construction
//   - an Engine that answers queries for a resolved Subject against the
//     currently loaded table, swapping tables atomically on reload
//
// Permission tokens follow the "domain.action[.scope]" naming convention.
// The segments are documentation only: the engine compares whole tokens and
// never interprets a ".own" or ".all" suffix.
package rbac

// Permission is an atomic capability token. Valid tokens are the constants
// declared in catalog.go; anything else is rejected by ParsePermission and by
// every query operation.
type Permission string

func (p Permission) String() string {
	return string(p)
}

// Role is a named bundle of permissions assigned to a subject.
type Role string

// RoleNone marks a subject without an assigned role. It always evaluates to
// the empty grant set.
const RoleNone Role = ""

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Subject is the caller an authorization query is evaluated for, as supplied
// by the identity collaborator. It is a value: a role change produces a new
// Subject rather than mutating an existing one.
type Subject struct {
	ID   string `json:"id" yaml:"id"`
	Role Role   `json:"role" yaml:"role"`
}

// Anonymous returns a subject with no assigned role.
func Anonymous(id string) Subject {
	return Subject{ID: id, Role: RoleNone}
}

// HasAssignedRole reports whether the subject carries a role at all. It does
// not check that the role is part of the enumeration.
func (s Subject) HasAssignedRole() bool {
	return s.Role != RoleNone
}
