package rbac

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/zeebo/blake3"
)

// GrantTable maps each declared role to the exact set of permissions it
// holds. It is immutable after construction and safe for concurrent use.
type GrantTable struct {
	order       []Role
	grants      map[Role]PermissionSet
	fingerprint string
}

// NewGrantTable builds a table from flat per-role lists. order lists the
// roles the table declares, lowest privilege first, and must follow
// Hierarchy(); roles may be skipped but not reordered. A role in order without
// an entry in grants holds nothing. Duplicate permissions within a list
// collapse.
//
// NewGrantTable checks vocabulary only. Callers that serve the table must
// also run ValidateHierarchy, which Engine.Load does.
func NewGrantTable(order []Role, grants map[Role][]Permission) (*GrantTable, error) {
	var result *multierror.Error

	if len(order) == 0 {
		result = multierror.Append(result, errors.New(errEmptyOrderMsg))
	}

	inOrder := make(map[Role]bool, len(order))
	var prev Role
	for _, r := range order {
		if !RoleExists(r) {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidRole, string(r)))
			continue
		}
		if inOrder[r] {
			result = multierror.Append(result, fmt.Errorf(errDuplicateRoleFmt, r))
			continue
		}
		if err := checkRank(prev, r); err != nil {
			result = multierror.Append(result, err)
		}
		inOrder[r] = true
		prev = r
	}

	for _, r := range sortedGrantRoles(grants) {
		if !inOrder[r] {
			result = multierror.Append(result, fmt.Errorf(errRoleNotInOrderFmt, r))
		}
		for _, p := range grants[r] {
			if !p.Valid() {
				result = multierror.Append(result, fmt.Errorf(errUnknownGrantFmt, r, ErrUnknownPermission, string(p)))
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	t := &GrantTable{
		order:  make([]Role, len(order)),
		grants: make(map[Role]PermissionSet, len(order)),
	}
	copy(t.order, order)
	for _, r := range order {
		t.grants[r] = NewPermissionSet(grants[r]...)
	}
	t.fingerprint = t.computeFingerprint()
	return t, nil
}

// checkRank rejects r when it sits above prev in a declared order but below
// it in the intended hierarchy.
func checkRank(prev, r Role) error {
	if prev == RoleNone || rank(prev) < rank(r) {
		return nil
	}
	return fmt.Errorf("%w: "+errOrderRankFmt, ErrHierarchyViolation, prev, r)
}

// sortedGrantRoles returns the keys of grants in a deterministic order so
// aggregated errors read the same on every run.
func sortedGrantRoles(grants map[Role][]Permission) []Role {
	out := make([]Role, 0, len(grants))
	for r := range grants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *GrantTable) computeFingerprint() string {
	h := blake3.New()
	for _, r := range t.order {
		_, _ = io.WriteString(h, string(r)+"\n")
		for _, p := range t.grants[r].Sorted() {
			_, _ = io.WriteString(h, string(p)+"\n")
		}
		_, _ = io.WriteString(h, "\x00")
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Roles returns the declared roles, lowest privilege first.
func (t *GrantTable) Roles() []Role {
	out := make([]Role, len(t.order))
	copy(out, t.order)
	return out
}

// intendedOrder is Hierarchy() filtered to the roles t declares.
func (t *GrantTable) intendedOrder() []Role {
	out := make([]Role, 0, len(t.order))
	for _, r := range hierarchy {
		if t.Declares(r) {
			out = append(out, r)
		}
	}
	return out
}

// Fingerprint identifies the table's content. Two tables with the same order
// and grants share a fingerprint.
func (t *GrantTable) Fingerprint() string {
	return t.fingerprint
}

// Declares reports whether the table has an entry for r.
func (t *GrantTable) Declares(r Role) bool {
	_, ok := t.grants[r]
	return ok
}

// GrantsFor returns the exact permission set of role. A role outside the
// enumeration is an error; an enumerated role the table does not declare
// holds nothing.
func (t *GrantTable) GrantsFor(role Role) (PermissionSet, error) {
	if !RoleExists(role) {
		return PermissionSet{}, fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
	}
	return t.grants[role], nil
}

// ValidateHierarchy asserts that every role in order holds at least the
// grants of the role before it. All violations are collected; the returned
// error wraps ErrHierarchyViolation and each violation is a
// *HierarchyViolation (see Violations).
func (t *GrantTable) ValidateHierarchy(order []Role) error {
	if len(order) == 0 {
		return fmt.Errorf("%w: %s", ErrHierarchyViolation, errHierarchyTooShortMsg)
	}
	for _, r := range order {
		if !t.Declares(r) {
			return fmt.Errorf("%w: "+errHierarchyRoleFmt, ErrHierarchyViolation, r)
		}
	}

	var result *multierror.Error
	for i := 0; i+1 < len(order); i++ {
		lower, higher := order[i], order[i+1]
		for _, p := range t.grants[lower].Missing(t.grants[higher]) {
			result = multierror.Append(result, &HierarchyViolation{
				Higher:     higher,
				Lower:      lower,
				Permission: p,
			})
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrHierarchyViolation, err)
	}
	return nil
}

// grantSet is the fail-closed lookup behind every query: RoleNone, roles
// outside the enumeration and undeclared roles all hold nothing.
func (t *GrantTable) grantSet(role Role) PermissionSet {
	return t.grants[role]
}

// GrantSet returns the permissions held by s. The set is shared with the
// table and must not be modified.
func (t *GrantTable) GrantSet(s Subject) PermissionSet {
	return t.grantSet(s.Role)
}

// Can reports whether s holds p.
func (t *GrantTable) Can(s Subject, p Permission) (bool, error) {
	if !p.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownPermission, string(p))
	}
	return t.grantSet(s.Role).Contains(p), nil
}

// HasRole reports whether s is assigned exactly r. Holding a higher role
// does not satisfy a lower one.
func (t *GrantTable) HasRole(s Subject, r Role) (bool, error) {
	return hasRole(s, r)
}

// HasAnyRole reports whether s is assigned any of roles. An empty list is
// never satisfied.
func (t *GrantTable) HasAnyRole(s Subject, roles []Role) (bool, error) {
	return hasAnyRole(s, roles)
}

// HasAnyPermission reports whether s holds at least one of perms. An empty
// list is never satisfied.
func (t *GrantTable) HasAnyPermission(s Subject, perms []Permission) (bool, error) {
	if err := validatePermissions(perms); err != nil {
		return false, err
	}
	set := t.grantSet(s.Role)
	for _, p := range perms {
		if set.Contains(p) {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions reports whether s holds every one of perms. An empty
// list is vacuously satisfied.
func (t *GrantTable) HasAllPermissions(s Subject, perms []Permission) (bool, error) {
	if err := validatePermissions(perms); err != nil {
		return false, err
	}
	set := t.grantSet(s.Role)
	for _, p := range perms {
		if !set.Contains(p) {
			return false, nil
		}
	}
	return true, nil
}

func hasRole(s Subject, r Role) (bool, error) {
	if !RoleExists(r) {
		return false, fmt.Errorf("%w: %q", ErrInvalidRole, string(r))
	}
	return s.Role == r, nil
}

func hasAnyRole(s Subject, roles []Role) (bool, error) {
	if err := validateRoles(roles); err != nil {
		return false, err
	}
	for _, r := range roles {
		if s.Role == r {
			return true, nil
		}
	}
	return false, nil
}

// validatePermissions rejects the whole query if any token is outside the
// catalog, naming every offender.
func validatePermissions(perms []Permission) error {
	var unknown []string
	for _, p := range perms {
		if !p.Valid() {
			unknown = append(unknown, string(p))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %q", ErrUnknownPermission, unknown)
	}
	return nil
}

func validateRoles(roles []Role) error {
	var unknown []string
	for _, r := range roles {
		if !RoleExists(r) {
			unknown = append(unknown, string(r))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %q", ErrInvalidRole, unknown)
	}
	return nil
}
