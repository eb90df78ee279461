package rbac

import "sort"

// PermissionSet is an unordered, duplicate-free collection of permissions.
// The zero value is an empty set. Sets handed out by a GrantTable are shared
// and must not be modified; use Clone to get a private copy.
type PermissionSet struct {
	m map[Permission]struct{}
}

// NewPermissionSet builds a set from perms, dropping duplicates.
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := PermissionSet{m: make(map[Permission]struct{}, len(perms))}
	for _, p := range perms {
		s.m[p] = struct{}{}
	}
	return s
}

func (s PermissionSet) Contains(p Permission) bool {
	_, ok := s.m[p]
	return ok
}

func (s PermissionSet) Len() int {
	return len(s.m)
}

// Sorted returns the members in token order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s.m))
	for p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings is Sorted rendered as plain strings, for transport encodings.
func (s PermissionSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = string(p)
	}
	return out
}

// Missing returns the members of s that superset lacks, in token order.
func (s PermissionSet) Missing(superset PermissionSet) []Permission {
	var out []Permission
	for p := range s.m {
		if !superset.Contains(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SubsetOf reports whether every member of s is in other.
func (s PermissionSet) SubsetOf(other PermissionSet) bool {
	for p := range s.m {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

func (s PermissionSet) Clone() PermissionSet {
	out := PermissionSet{m: make(map[Permission]struct{}, len(s.m))}
	for p := range s.m {
		out.m[p] = struct{}{}
	}
	return out
}

// union returns a new set holding the members of s and extra.
func (s PermissionSet) union(extra []Permission) PermissionSet {
	out := PermissionSet{m: make(map[Permission]struct{}, len(s.m)+len(extra))}
	for p := range s.m {
		out.m[p] = struct{}{}
	}
	for _, p := range extra {
		out.m[p] = struct{}{}
	}
	return out
}
