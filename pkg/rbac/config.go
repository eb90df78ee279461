package rbac

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Config is the authored form of a grant table. Each role names at most one
// parent and lists only the permissions it adds on top of that parent; Compile
// computes the closure.
//
//	roles:
//	  - name: viewer
//	    grants: [dashboard.view]
//	  - name: driver
//	    inherits: viewer
//	    grants: [shipments.view.own]
//	hierarchy: [viewer, driver]
type Config struct {
	Roles []RoleDefinition `yaml:"roles" json:"roles"`
	// Hierarchy is the order the compiled table is validated and reported
	// in. It must follow the intended role order and defaults to the
	// declared roles in that order.
	Hierarchy []Role `yaml:"hierarchy,omitempty" json:"hierarchy,omitempty"`
}

// RoleDefinition declares one role of a Config.
type RoleDefinition struct {
	Name     Role         `yaml:"name" json:"name"`
	Inherits Role         `yaml:"inherits,omitempty" json:"inherits,omitempty"`
	Grants   []Permission `yaml:"grants,omitempty" json:"grants,omitempty"`
}

// ParseConfig decodes a YAML grant table document. Unknown fields are
// rejected so that a misspelt key cannot silently drop grants.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%w: empty document", ErrConfiguration)
		}
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// Marshal renders cfg as a YAML document ParseConfig accepts.
func (cfg Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate checks the structure of cfg without computing grants. Every
// problem found is reported in one error wrapping ErrConfiguration.
func (cfg Config) Validate() error {
	var result *multierror.Error

	if len(cfg.Roles) == 0 {
		result = multierror.Append(result, errors.New(errNoRolesMsg))
	}

	declared := make(map[Role]RoleDefinition, len(cfg.Roles))
	for _, rd := range cfg.Roles {
		if !RoleExists(rd.Name) {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidRole, string(rd.Name)))
			continue
		}
		if _, dup := declared[rd.Name]; dup {
			result = multierror.Append(result, fmt.Errorf(errDuplicateRoleFmt, rd.Name))
			continue
		}
		declared[rd.Name] = rd
		for _, p := range rd.Grants {
			if !p.Valid() {
				result = multierror.Append(result, fmt.Errorf(errUnknownGrantFmt, rd.Name, ErrUnknownPermission, string(p)))
			}
		}
	}

	for _, rd := range cfg.Roles {
		if rd.Inherits == RoleNone {
			continue
		}
		if _, ok := declared[rd.Inherits]; !ok {
			result = multierror.Append(result, fmt.Errorf(errUnknownParentFmt, rd.Name, rd.Inherits))
		}
	}

	for _, cycle := range inheritanceCycles(declared) {
		result = multierror.Append(result, fmt.Errorf(errInheritanceCycleFmt, cycle))
	}

	if len(cfg.Hierarchy) > 0 {
		seen := make(map[Role]bool, len(cfg.Hierarchy))
		var prev Role
		for _, r := range cfg.Hierarchy {
			if _, ok := declared[r]; !ok {
				result = multierror.Append(result, fmt.Errorf(errHierarchyRoleFmt, r))
				continue
			}
			if seen[r] {
				result = multierror.Append(result, fmt.Errorf(errDuplicateRoleFmt, r))
				continue
			}
			if err := checkRank(prev, r); err != nil {
				result = multierror.Append(result, err)
			}
			seen[r] = true
			prev = r
		}
		for _, r := range sortedRoles(declared) {
			if !seen[r] {
				result = multierror.Append(result, fmt.Errorf(errHierarchyOmitsFmt, r))
			}
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// inheritanceCycles returns one description per distinct cycle reachable
// through Inherits links, e.g. "viewer -> driver -> viewer".
func inheritanceCycles(declared map[Role]RoleDefinition) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Role]int, len(declared))
	var cycles []string

	for _, start := range sortedRoles(declared) {
		if state[start] != unvisited {
			continue
		}
		var path []Role
		r := start
		for {
			if state[r] == done {
				break
			}
			if state[r] == visiting {
				idx := 0
				for i, p := range path {
					if p == r {
						idx = i
						break
					}
				}
				names := make([]string, 0, len(path)-idx+1)
				for _, p := range path[idx:] {
					names = append(names, string(p))
				}
				names = append(names, string(r))
				cycles = append(cycles, strings.Join(names, " -> "))
				break
			}
			state[r] = visiting
			path = append(path, r)
			parent := declared[r].Inherits
			if _, ok := declared[parent]; !ok {
				break
			}
			r = parent
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return cycles
}

func sortedRoles(declared map[Role]RoleDefinition) []Role {
	out := make([]Role, 0, len(declared))
	for _, r := range hierarchy {
		if _, ok := declared[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Compile validates cfg, computes each role's inherited closure and returns
// a table that has already passed ValidateHierarchy.
func Compile(cfg Config) (*GrantTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	defs := make(map[Role]RoleDefinition, len(cfg.Roles))
	for _, rd := range cfg.Roles {
		defs[rd.Name] = rd
	}

	closed := make(map[Role]PermissionSet, len(defs))
	var resolve func(Role) PermissionSet
	resolve = func(r Role) PermissionSet {
		if set, ok := closed[r]; ok {
			return set
		}
		rd := defs[r]
		var base PermissionSet
		if rd.Inherits != RoleNone {
			base = resolve(rd.Inherits)
		}
		set := base.union(rd.Grants)
		closed[r] = set
		return set
	}

	order := cfg.Hierarchy
	if len(order) == 0 {
		order = sortedRoles(defs)
	}

	grants := make(map[Role][]Permission, len(defs))
	for r := range defs {
		grants[r] = resolve(r).Sorted()
	}

	t, err := NewGrantTable(order, grants)
	if err != nil {
		return nil, err
	}
	if err := t.ValidateHierarchy(t.intendedOrder()); err != nil {
		return nil, err
	}
	return t, nil
}

// MustCompile is Compile for known-good tables built at init time.
func MustCompile(cfg Config) *GrantTable {
	t, err := Compile(cfg)
	if err != nil {
		panic(fmt.Sprintf("rbac.MustCompile: %v", err))
	}
	return t
}
