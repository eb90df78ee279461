package rbac_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authz-service/pkg/rbac"
)

// smallTable is viewer ⊆ driver ⊆ operator over a handful of tokens.
func smallTable(t *testing.T) *rbac.GrantTable {
	t.Helper()
	table, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleViewer, rbac.RoleDriver, rbac.RoleOperator},
		map[rbac.Role][]rbac.Permission{
			rbac.RoleViewer: {rbac.PermDashboardView},
			rbac.RoleDriver: {rbac.PermDashboardView, rbac.PermShipmentsViewOwn},
			rbac.RoleOperator: {
				rbac.PermDashboardView,
				rbac.PermShipmentsViewOwn,
				rbac.PermShipmentsViewAll,
			},
		},
	)
	require.NoError(t, err)
	require.NoError(t, table.ValidateHierarchy(table.Roles()))
	return table
}

func subject(role rbac.Role) rbac.Subject {
	return rbac.Subject{ID: "subject-1", Role: role}
}

func TestCanDriverViewsOwnShipments(t *testing.T) {
	table := smallTable(t)

	ok, err := table.Can(subject(rbac.RoleDriver), rbac.PermShipmentsViewOwn)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = table.Can(subject(rbac.RoleViewer), rbac.PermShipmentsViewOwn)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAnyPermissionOperator(t *testing.T) {
	table := smallTable(t)

	ok, err := table.HasAnyPermission(subject(rbac.RoleOperator),
		[]rbac.Permission{rbac.PermUsersManage, rbac.PermShipmentsViewAll})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHasAllPermissionsOperator(t *testing.T) {
	table := smallTable(t)

	ok, err := table.HasAllPermissions(subject(rbac.RoleOperator),
		[]rbac.Permission{rbac.PermUsersManage, rbac.PermShipmentsViewAll})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateHierarchyNamesHigherRoleAndMissingPermission(t *testing.T) {
	table, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleDriver, rbac.RoleManager},
		map[rbac.Role][]rbac.Permission{
			rbac.RoleDriver:  {rbac.PermDashboardView, rbac.PermIncidentsReport},
			rbac.RoleManager: {rbac.PermDashboardView},
		},
	)
	require.NoError(t, err)

	err = table.ValidateHierarchy(table.Roles())
	require.Error(t, err)
	assert.True(t, errors.Is(err, rbac.ErrHierarchyViolation))
	assert.Contains(t, err.Error(), "manager")
	assert.Contains(t, err.Error(), "incidents.report")

	violations := rbac.Violations(err)
	require.Len(t, violations, 1)
	assert.Equal(t, rbac.HierarchyViolation{
		Higher:     rbac.RoleManager,
		Lower:      rbac.RoleDriver,
		Permission: rbac.PermIncidentsReport,
	}, *violations[0])
}

func TestValidateHierarchyReportsEveryViolation(t *testing.T) {
	table, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleViewer, rbac.RoleDriver, rbac.RoleOperator},
		map[rbac.Role][]rbac.Permission{
			rbac.RoleViewer:   {rbac.PermDashboardView, rbac.PermDGView},
			rbac.RoleDriver:   {rbac.PermDashboardView},
			rbac.RoleOperator: {rbac.PermShipmentsViewAll},
		},
	)
	require.NoError(t, err)

	err = table.ValidateHierarchy(table.Roles())
	require.ErrorIs(t, err, rbac.ErrHierarchyViolation)

	violations := rbac.Violations(err)
	require.Len(t, violations, 2)
	assert.Equal(t, rbac.RoleDriver, violations[0].Higher)
	assert.Equal(t, rbac.PermDGView, violations[0].Permission)
	assert.Equal(t, rbac.RoleOperator, violations[1].Higher)
	assert.Equal(t, rbac.PermDashboardView, violations[1].Permission)
}

func TestValidateHierarchyRejectsUndeclaredRole(t *testing.T) {
	table := smallTable(t)
	err := table.ValidateHierarchy([]rbac.Role{rbac.RoleViewer, rbac.RoleAdmin})
	assert.ErrorIs(t, err, rbac.ErrHierarchyViolation)
	assert.Empty(t, rbac.Violations(err))

	assert.ErrorIs(t, table.ValidateHierarchy(nil), rbac.ErrHierarchyViolation)
}

func TestRoleNoneHoldsNothing(t *testing.T) {
	table := smallTable(t)
	none := rbac.Anonymous("anon")

	for _, p := range rbac.AllPermissions() {
		ok, err := table.Can(none, p)
		require.NoError(t, err)
		assert.Falsef(t, ok, "RoleNone must not hold %s", p)
	}
	assert.Equal(t, 0, table.GrantSet(none).Len())
}

func TestUnrecognizedSubjectRoleFailsClosed(t *testing.T) {
	table := smallTable(t)
	ghost := subject(rbac.Role("superuser"))

	ok, err := table.Can(ghost, rbac.PermDashboardView)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = table.HasAllPermissions(ghost, nil)
	require.NoError(t, err)
	assert.True(t, ok, "vacuous truth holds for every subject")
}

func TestUndeclaredButKnownRoleHoldsNothing(t *testing.T) {
	table := smallTable(t)

	set, err := table.GrantsFor(rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	ok, err := table.Can(subject(rbac.RoleAdmin), rbac.PermDashboardView)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantsForUnknownRole(t *testing.T) {
	table := smallTable(t)
	_, err := table.GrantsFor(rbac.Role("superuser"))
	assert.ErrorIs(t, err, rbac.ErrInvalidRole)

	_, err = table.GrantsFor(rbac.RoleNone)
	assert.ErrorIs(t, err, rbac.ErrInvalidRole)
}

func TestQueriesRejectUnknownPermission(t *testing.T) {
	table := smallTable(t)
	s := subject(rbac.RoleOperator)

	_, err := table.Can(s, "shipments.teleport")
	assert.ErrorIs(t, err, rbac.ErrUnknownPermission)

	// One bad token poisons the whole query, even when a valid one matches.
	_, err = table.HasAnyPermission(s, []rbac.Permission{rbac.PermShipmentsViewAll, "shipments.teleport"})
	assert.ErrorIs(t, err, rbac.ErrUnknownPermission)

	_, err = table.HasAllPermissions(s, []rbac.Permission{"shipments.teleport"})
	assert.ErrorIs(t, err, rbac.ErrUnknownPermission)
}

func TestEmptyPermissionLists(t *testing.T) {
	table := smallTable(t)
	for _, s := range []rbac.Subject{subject(rbac.RoleOperator), rbac.Anonymous("anon")} {
		allOK, err := table.HasAllPermissions(s, []rbac.Permission{})
		require.NoError(t, err)
		assert.True(t, allOK)

		anyOK, err := table.HasAnyPermission(s, []rbac.Permission{})
		require.NoError(t, err)
		assert.False(t, anyOK)
	}
}

func TestHasRoleIsExact(t *testing.T) {
	table := smallTable(t)

	tests := []struct {
		name     string
		subject  rbac.Role
		query    rbac.Role
		expected bool
	}{
		{"Same role", rbac.RoleOperator, rbac.RoleOperator, true},
		{"Higher does not satisfy lower", rbac.RoleAdmin, rbac.RoleViewer, false},
		{"Lower does not satisfy higher", rbac.RoleViewer, rbac.RoleAdmin, false},
		{"None matches nothing", rbac.RoleNone, rbac.RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.HasRole(subject(tt.subject), tt.query)
			require.NoError(t, err)
			if got != tt.expected {
				t.Errorf("HasRole(%s, %s) = %v, expected %v", tt.subject, tt.query, got, tt.expected)
			}
		})
	}

	_, err := table.HasRole(subject(rbac.RoleAdmin), rbac.Role("root"))
	assert.ErrorIs(t, err, rbac.ErrInvalidRole)
	_, err = table.HasRole(subject(rbac.RoleAdmin), rbac.RoleNone)
	assert.ErrorIs(t, err, rbac.ErrInvalidRole)
}

func TestHasAnyRole(t *testing.T) {
	table := smallTable(t)
	s := subject(rbac.RoleManager)

	ok, err := table.HasAnyRole(s, []rbac.Role{rbac.RoleAdmin, rbac.RoleManager})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = table.HasAnyRole(s, []rbac.Role{rbac.RoleAdmin, rbac.RoleOperator})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = table.HasAnyRole(s, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = table.HasAnyRole(s, []rbac.Role{rbac.RoleManager, "root"})
	assert.ErrorIs(t, err, rbac.ErrInvalidRole)
}

func TestQueriesAreIdempotent(t *testing.T) {
	table := smallTable(t)
	s := subject(rbac.RoleDriver)
	first, err := table.Can(s, rbac.PermShipmentsViewOwn)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := table.Can(s, rbac.PermShipmentsViewOwn)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNewGrantTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		order   []rbac.Role
		grants  map[rbac.Role][]rbac.Permission
		wantIs  []error
		wantMsg []string
	}{
		{
			name:    "empty order",
			order:   nil,
			wantIs:  []error{rbac.ErrConfiguration},
			wantMsg: []string{"role order is empty"},
		},
		{
			name:    "unknown role in order",
			order:   []rbac.Role{rbac.RoleViewer, "root"},
			wantIs:  []error{rbac.ErrConfiguration, rbac.ErrInvalidRole},
			wantMsg: []string{"root"},
		},
		{
			name:    "duplicate role",
			order:   []rbac.Role{rbac.RoleViewer, rbac.RoleViewer},
			wantIs:  []error{rbac.ErrConfiguration},
			wantMsg: []string{"declared more than once"},
		},
		{
			name:    "order against the intended hierarchy",
			order:   []rbac.Role{rbac.RoleAdmin, rbac.RoleViewer},
			wantIs:  []error{rbac.ErrConfiguration, rbac.ErrHierarchyViolation},
			wantMsg: []string{"lists admin before viewer"},
		},
		{
			name:  "grants for role outside order",
			order: []rbac.Role{rbac.RoleViewer},
			grants: map[rbac.Role][]rbac.Permission{
				rbac.RoleAdmin: {rbac.PermDashboardView},
			},
			wantIs:  []error{rbac.ErrConfiguration},
			wantMsg: []string{"admin"},
		},
		{
			name:  "unknown tokens are all reported",
			order: []rbac.Role{rbac.RoleViewer, rbac.RoleDriver},
			grants: map[rbac.Role][]rbac.Permission{
				rbac.RoleViewer: {"dashboard.vew"},
				rbac.RoleDriver: {"shipments.fly"},
			},
			wantIs:  []error{rbac.ErrConfiguration, rbac.ErrUnknownPermission},
			wantMsg: []string{"dashboard.vew", "shipments.fly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := rbac.NewGrantTable(tt.order, tt.grants)
			require.Error(t, err)
			assert.Nil(t, table)
			for _, target := range tt.wantIs {
				assert.ErrorIs(t, err, target)
			}
			for _, msg := range tt.wantMsg {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestNewGrantTableCollapsesDuplicates(t *testing.T) {
	table, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleViewer},
		map[rbac.Role][]rbac.Permission{
			rbac.RoleViewer: {rbac.PermDashboardView, rbac.PermDashboardView, rbac.PermDGView},
		},
	)
	require.NoError(t, err)
	set, err := table.GrantsFor(rbac.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, []rbac.Permission{rbac.PermDashboardView, rbac.PermDGView}, set.Sorted())
}

func TestFingerprint(t *testing.T) {
	a := smallTable(t)
	b := smallTable(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 32)

	c, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleViewer},
		map[rbac.Role][]rbac.Permission{rbac.RoleViewer: {rbac.PermDashboardView}},
	)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	// Grant order inside a list does not matter.
	d, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleViewer},
		map[rbac.Role][]rbac.Permission{rbac.RoleViewer: {rbac.PermDGView, rbac.PermDashboardView}},
	)
	require.NoError(t, err)
	e, err := rbac.NewGrantTable(
		[]rbac.Role{rbac.RoleViewer},
		map[rbac.Role][]rbac.Permission{rbac.RoleViewer: {rbac.PermDashboardView, rbac.PermDGView}},
	)
	require.NoError(t, err)
	assert.Equal(t, d.Fingerprint(), e.Fingerprint())
}

func TestPermissionSet(t *testing.T) {
	small := rbac.NewPermissionSet(rbac.PermDGView, rbac.PermSDSView)
	big := rbac.NewPermissionSet(rbac.PermDGView, rbac.PermSDSView, rbac.PermEPGView)

	assert.True(t, small.SubsetOf(big))
	assert.False(t, big.SubsetOf(small))
	assert.Empty(t, small.Missing(big))
	assert.Equal(t, []rbac.Permission{rbac.PermEPGView}, big.Missing(small))
	assert.Equal(t, []string{"dg.view", "epg.view", "sds.view"}, big.Strings())

	var zero rbac.PermissionSet
	assert.Equal(t, 0, zero.Len())
	assert.False(t, zero.Contains(rbac.PermDGView))
	assert.True(t, zero.SubsetOf(small))

	clone := big.Clone()
	assert.Equal(t, big.Sorted(), clone.Sorted())
}
