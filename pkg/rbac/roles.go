package rbac

import "fmt"

const (
	RoleViewer   Role = "viewer"
	RoleDriver   Role = "driver"
	RoleOperator Role = "operator"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// hierarchy is the intended privilege order, lowest first. Grant tables are
// validated against it; nothing derives grants from it.
var hierarchy = [...]Role{
	RoleViewer,
	RoleDriver,
	RoleOperator,
	RoleManager,
	RoleAdmin,
}

var knownRoles = func() map[Role]struct{} {
	m := make(map[Role]struct{}, len(hierarchy))
	for _, r := range hierarchy {
		m[r] = struct{}{}
	}
	return m
}()

// Hierarchy returns the intended role order, lowest privilege first.
func Hierarchy() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy[:])
	return out
}

// rank is r's position in the intended hierarchy, or -1 outside it.
func rank(r Role) int {
	for i, h := range hierarchy {
		if h == r {
			return i
		}
	}
	return -1
}

// RoleExists reports whether r belongs to the role enumeration. RoleNone is
// not a member.
func RoleExists(r Role) bool {
	_, ok := knownRoles[r]
	return ok
}

// ParseRole validates a role name against the enumeration.
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !RoleExists(r) {
		return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, name)
	}
	return r, nil
}

// ParseRoles validates every name and reports all unknown ones at once.
func ParseRoles(names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	var unknown []string
	for _, name := range names {
		r, err := ParseRole(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		roles = append(roles, r)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, unknown)
	}
	return roles, nil
}
