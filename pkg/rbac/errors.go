package rbac

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Sentinel errors for use with errors.Is().
var (
	ErrDenied             = errors.New("authorization denied")
	ErrNotReady           = errors.New("grant table not loaded")
	ErrUnknownPermission  = errors.New("unknown permission")
	ErrInvalidRole        = errors.New("invalid role")
	ErrConfiguration      = errors.New("invalid grant table configuration")
	ErrHierarchyViolation = errors.New("role hierarchy violation")
)

const (
	errNoRolesMsg           = "at least one role is required"
	errEmptyOrderMsg        = "role order is empty"
	errHierarchyOmitsFmt    = "hierarchy omits declared role %s"
	errDuplicateRoleFmt     = "role %s declared more than once"
	errRoleNotInOrderFmt    = "grants declared for role %s which is not in the role order"
	errUnknownGrantFmt      = "role %s: %w: %q"
	errUnknownParentFmt     = "role %s inherits from undeclared role %s"
	errInheritanceCycleFmt  = "inheritance cycle: %s"
	errHierarchyRoleFmt     = "hierarchy references role %s which the table does not declare"
	errHierarchyMissingFmt  = "role %s is missing permission %s granted to lower role %s"
	errHierarchyTooShortMsg = "hierarchy needs at least one role"
	errOrderRankFmt         = "hierarchy lists %s before %s, which is lower"
)

// HierarchyViolation is one missing permission found by ValidateHierarchy:
// Higher should hold Permission because Lower does.
type HierarchyViolation struct {
	Higher     Role
	Lower      Role
	Permission Permission
}

func (v *HierarchyViolation) Error() string {
	return fmt.Sprintf(errHierarchyMissingFmt, v.Higher, v.Permission, v.Lower)
}

// Violations extracts every HierarchyViolation carried by err.
func Violations(err error) []*HierarchyViolation {
	if err == nil {
		return nil
	}
	var out []*HierarchyViolation
	var walk func(error)
	walk = func(e error) {
		if v, ok := e.(*HierarchyViolation); ok {
			out = append(out, v)
			return
		}
		switch u := e.(type) {
		case *multierror.Error:
			for _, inner := range u.Errors {
				walk(inner)
			}
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	walk(err)
	return out
}
