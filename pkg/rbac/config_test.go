package rbac_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authz-service/pkg/rbac"
)

func validBaseConfig() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: rbac.RoleViewer, Grants: []rbac.Permission{rbac.PermDashboardView}},
			{Name: rbac.RoleDriver, Inherits: rbac.RoleViewer, Grants: []rbac.Permission{rbac.PermShipmentsViewOwn}},
			{Name: rbac.RoleOperator, Inherits: rbac.RoleDriver, Grants: []rbac.Permission{rbac.PermShipmentsViewAll}},
		},
	}
}

func TestCompileComputesInheritedClosure(t *testing.T) {
	table, err := rbac.Compile(validBaseConfig())
	require.NoError(t, err)

	assert.Equal(t, []rbac.Role{rbac.RoleViewer, rbac.RoleDriver, rbac.RoleOperator}, table.Roles())

	operator, err := table.GrantsFor(rbac.RoleOperator)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Permission{
		rbac.PermDashboardView,
		rbac.PermShipmentsViewAll,
		rbac.PermShipmentsViewOwn,
	}, operator.Sorted())

	viewer, err := table.GrantsFor(rbac.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Permission{rbac.PermDashboardView}, viewer.Sorted())
}

func TestCompileMatchesFlatAuthoring(t *testing.T) {
	compiled, err := rbac.Compile(validBaseConfig())
	require.NoError(t, err)
	flat := smallTable(t)
	assert.Equal(t, flat.Fingerprint(), compiled.Fingerprint())
}

func TestCompileResolvesParentsDeclaredLater(t *testing.T) {
	cfg := rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: rbac.RoleDriver, Inherits: rbac.RoleViewer, Grants: []rbac.Permission{rbac.PermShipmentsViewOwn}},
			{Name: rbac.RoleViewer, Grants: []rbac.Permission{rbac.PermDashboardView}},
		},
		Hierarchy: []rbac.Role{rbac.RoleViewer, rbac.RoleDriver},
	}
	table, err := rbac.Compile(cfg)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Role{rbac.RoleViewer, rbac.RoleDriver}, table.Roles())

	ok, err := table.Can(rbac.Subject{Role: rbac.RoleDriver}, rbac.PermDashboardView)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompileRejectsReversedHierarchy(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Hierarchy = []rbac.Role{rbac.RoleOperator, rbac.RoleDriver, rbac.RoleViewer}

	_, err := rbac.Compile(cfg)
	require.ErrorIs(t, err, rbac.ErrConfiguration)
	assert.ErrorIs(t, err, rbac.ErrHierarchyViolation)
	assert.Contains(t, err.Error(), "lists operator before driver")
}

// A document that inverts the role order to hide viewer holding more than
// admin must not compile.
func TestCompileRejectsDocumentInvertingRoleOrder(t *testing.T) {
	doc := `
roles:
  - name: admin
    grants: [dashboard.view]
  - name: viewer
    inherits: admin
    grants: [users.manage, settings.system.manage]
hierarchy: [admin, viewer]
`
	cfg, err := rbac.ParseConfig([]byte(doc))
	require.NoError(t, err)

	table, err := rbac.Compile(cfg)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.ErrorIs(t, err, rbac.ErrHierarchyViolation)

	// Without an explicit hierarchy the declared roles are checked in the
	// intended order and the missing admin grants are reported.
	cfg.Hierarchy = nil
	_, err = rbac.Compile(cfg)
	require.ErrorIs(t, err, rbac.ErrHierarchyViolation)
	violations := rbac.Violations(err)
	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(t, rbac.RoleAdmin, v.Higher)
		assert.Equal(t, rbac.RoleViewer, v.Lower)
	}
}

func TestCompileRejectsGrantsThatBreakMonotonicity(t *testing.T) {
	cfg := rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: rbac.RoleViewer, Grants: []rbac.Permission{rbac.PermDashboardView, rbac.PermDGView}},
			{Name: rbac.RoleDriver, Grants: []rbac.Permission{rbac.PermDashboardView}},
		},
	}

	_, err := rbac.Compile(cfg)
	require.ErrorIs(t, err, rbac.ErrHierarchyViolation)
	require.Len(t, rbac.Violations(err), 1)
	assert.Equal(t, rbac.PermDGView, rbac.Violations(err)[0].Permission)
}

func TestValidateEmptyConfig(t *testing.T) {
	err := rbac.Config{}.Validate()
	require.ErrorIs(t, err, rbac.ErrConfiguration)
	assert.Contains(t, err.Error(), "at least one role")
}

func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*rbac.Config)
		is     error
		msg    string
	}{
		{
			name: "unknown role name",
			mutate: func(c *rbac.Config) {
				c.Roles = append(c.Roles, rbac.RoleDefinition{Name: "root"})
			},
			is:  rbac.ErrInvalidRole,
			msg: "root",
		},
		{
			name: "duplicate role",
			mutate: func(c *rbac.Config) {
				c.Roles = append(c.Roles, rbac.RoleDefinition{Name: rbac.RoleViewer})
			},
			msg: "declared more than once",
		},
		{
			name: "unknown grant",
			mutate: func(c *rbac.Config) {
				c.Roles[1].Grants = append(c.Roles[1].Grants, "shipments.fly")
			},
			is:  rbac.ErrUnknownPermission,
			msg: "shipments.fly",
		},
		{
			name: "undeclared parent",
			mutate: func(c *rbac.Config) {
				c.Roles[2].Inherits = rbac.RoleManager
			},
			msg: "inherits from undeclared role manager",
		},
		{
			name: "inheritance cycle",
			mutate: func(c *rbac.Config) {
				c.Roles[0].Inherits = rbac.RoleOperator
			},
			msg: "inheritance cycle",
		},
		{
			name: "hierarchy references undeclared role",
			mutate: func(c *rbac.Config) {
				c.Hierarchy = []rbac.Role{rbac.RoleViewer, rbac.RoleDriver, rbac.RoleOperator, rbac.RoleAdmin}
			},
			msg: "hierarchy references role admin",
		},
		{
			name: "hierarchy omits declared role",
			mutate: func(c *rbac.Config) {
				c.Hierarchy = []rbac.Role{rbac.RoleViewer, rbac.RoleOperator}
			},
			msg: "hierarchy omits declared role driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			assert.ErrorIs(t, err, rbac.ErrConfiguration)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q in error, got: %v", tt.msg, err)
			}

			_, err = rbac.Compile(cfg)
			assert.ErrorIs(t, err, rbac.ErrConfiguration)
		})
	}
}

func TestValidateReportsAllProblemsAtOnce(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Roles[0].Grants = append(cfg.Roles[0].Grants, "dashboard.vew")
	cfg.Roles[2].Grants = append(cfg.Roles[2].Grants, "shipments.fly")
	cfg.Roles[1].Inherits = rbac.RoleAdmin

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"dashboard.vew", "shipments.fly", "undeclared role admin"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCycleDescription(t *testing.T) {
	cfg := rbac.Config{
		Roles: []rbac.RoleDefinition{
			{Name: rbac.RoleViewer, Inherits: rbac.RoleDriver},
			{Name: rbac.RoleDriver, Inherits: rbac.RoleViewer},
		},
	}
	err := cfg.Validate()
	require.ErrorIs(t, err, rbac.ErrConfiguration)
	assert.Contains(t, err.Error(), "viewer -> driver -> viewer")
}

func TestParseConfig(t *testing.T) {
	doc := []byte(`
roles:
  - name: viewer
    grants: [dashboard.view]
  - name: driver
    inherits: viewer
    grants:
      - shipments.view.own
hierarchy: [viewer, driver]
`)
	cfg, err := rbac.ParseConfig(doc)
	require.NoError(t, err)
	require.Len(t, cfg.Roles, 2)
	assert.Equal(t, rbac.RoleViewer, cfg.Roles[1].Inherits)

	table, err := rbac.Compile(cfg)
	require.NoError(t, err)
	set, err := table.GrantsFor(rbac.RoleDriver)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func TestParseConfigRejectsUnknownFields(t *testing.T) {
	_, err := rbac.ParseConfig([]byte("roles:\n  - name: viewer\n    grant: [dashboard.view]\n"))
	assert.ErrorIs(t, err, rbac.ErrConfiguration)

	_, err = rbac.ParseConfig([]byte(""))
	assert.ErrorIs(t, err, rbac.ErrConfiguration)
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	cfg := validBaseConfig()
	data, err := cfg.Marshal()
	require.NoError(t, err)

	parsed, err := rbac.ParseConfig(data)
	require.NoError(t, err)

	a, err := rbac.Compile(cfg)
	require.NoError(t, err)
	b, err := rbac.Compile(parsed)
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestMustCompilePanicsOnInvalidConfig(t *testing.T) {
	assert.Panics(t, func() { rbac.MustCompile(rbac.Config{}) })
}
