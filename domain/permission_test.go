package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission_WildcardSupremacy(t *testing.T) {
	required := []Permission{
		NewPermission(ResourceUsers, ActionRead),
		NewPermission(ResourceOrders, ActionDelete),
		Permission("definitely:not:a:permission"),
		Permission(""),
	}

	for _, sentinel := range []Permission{PermissionWildcard, PermissionSuperadmin} {
		granted := []Permission{sentinel}
		for _, req := range required {
			assert.True(t, HasPermission(granted, req), "sentinel %q should satisfy %q", sentinel, req)
		}
		assert.True(t, HasAllPermissions(granted, required))
		assert.True(t, HasAnyPermissions(granted, required))
	}
}

func TestHasPermission_StrictMembership(t *testing.T) {
	granted := []Permission{NewPermission(ResourceUsers, ActionRead)}

	assert.True(t, HasPermission(granted, NewPermission(ResourceUsers, ActionRead)))
	assert.False(t, HasPermission(granted, NewPermission(ResourceUsers, ActionDelete)))
	assert.False(t, HasPermission(granted, NewPermission(ResourceOrders, ActionRead)))
	// No prefix or substring matching.
	assert.False(t, HasPermission(granted, Permission("users")))
	assert.False(t, HasPermission(granted, Permission("users:rea")))
	assert.False(t, HasPermission(granted, Permission("users:read:extra")))
}

func TestHasPermission_EmptySets(t *testing.T) {
	assert.False(t, HasPermission(nil, NewPermission(ResourceUsers, ActionRead)))
	assert.False(t, HasPermission([]Permission{}, PermissionWildcard))

	// An empty requirement list is vacuously satisfied.
	assert.True(t, HasAllPermissions(nil, nil))
	assert.True(t, HasAllPermissions([]Permission{NewPermission(ResourceUsers, ActionRead)}, nil))

	assert.False(t, HasAnyPermissions(nil, []Permission{NewPermission(ResourceUsers, ActionRead)}))
	assert.False(t, HasAnyPermissions([]Permission{NewPermission(ResourceUsers, ActionRead)}, nil))
}

func TestHasAllPermissions(t *testing.T) {
	granted := []Permission{
		NewPermission(ResourceOrders, ActionRead),
		NewPermission(ResourceOrders, ActionUpdate),
	}

	assert.True(t, HasAllPermissions(granted, []Permission{
		NewPermission(ResourceOrders, ActionRead),
	}))
	assert.True(t, HasAllPermissions(granted, granted))
	assert.False(t, HasAllPermissions(granted, []Permission{
		NewPermission(ResourceOrders, ActionRead),
		NewPermission(ResourceOrders, ActionDelete),
	}))
}

func TestOptimizePermissions(t *testing.T) {
	t.Run("superadmin swallows everything", func(t *testing.T) {
		got := OptimizePermissions([]Permission{
			PermissionSuperadmin,
			NewPermission(ResourceUsers, ActionRead),
			NewPermission(ResourceCustomers, ActionCreate),
		})
		assert.Equal(t, []Permission{PermissionSuperadmin}, got)
	})

	t.Run("superadmin wins over wildcard", func(t *testing.T) {
		got := OptimizePermissions([]Permission{
			PermissionWildcard,
			PermissionSuperadmin,
		})
		assert.Equal(t, []Permission{PermissionSuperadmin}, got)
	})

	t.Run("wildcard swallows concrete permissions", func(t *testing.T) {
		got := OptimizePermissions([]Permission{
			NewPermission(ResourceUsers, ActionRead),
			PermissionWildcard,
		})
		assert.Equal(t, []Permission{PermissionWildcard}, got)
	})

	t.Run("deduplicates preserving order", func(t *testing.T) {
		got := OptimizePermissions([]Permission{
			NewPermission(ResourceOrders, ActionRead),
			NewPermission(ResourceUsers, ActionRead),
			NewPermission(ResourceOrders, ActionRead),
		})
		assert.Equal(t, []Permission{
			NewPermission(ResourceOrders, ActionRead),
			NewPermission(ResourceUsers, ActionRead),
		}, got)
	})
}

func TestParsePermission(t *testing.T) {
	p, err := ParsePermission("orders:update")
	require.NoError(t, err)
	assert.Equal(t, NewPermission(ResourceOrders, ActionUpdate), p)

	for _, sentinel := range []string{"*", "superadmin"} {
		p, err := ParsePermission(sentinel)
		require.NoError(t, err)
		assert.Equal(t, Permission(sentinel), p)
	}

	for _, raw := range []string{"", "orders", "orders:", ":update", "orders:fly", "rockets:read", "orders update"} {
		_, err := ParsePermission(raw)
		assert.ErrorIs(t, err, ErrBusinessRuleViolation, "raw %q", raw)
	}
}

func TestParsePermissions_OneBadRejectsAll(t *testing.T) {
	_, err := ParsePermissions([]string{"orders:read", "nope", "users:read"})
	assert.ErrorIs(t, err, ErrBusinessRuleViolation)

	perms, err := ParsePermissions([]string{"orders:read", "*"})
	require.NoError(t, err)
	assert.Len(t, perms, 2)
}

func TestAllPermissions_CoversCatalog(t *testing.T) {
	all := AllPermissions()
	assert.Len(t, all, 30)
	assert.Contains(t, all, NewPermission(ResourceMedia, ActionManage))
	assert.NotContains(t, all, PermissionWildcard)
	assert.NotContains(t, all, PermissionSuperadmin)

	for _, p := range all {
		_, err := ParsePermission(string(p))
		assert.NoError(t, err)
	}
}

func TestAuthContext(t *testing.T) {
	staff := NewStaffContext("user-1", RoleAdmin, []Permission{PermissionWildcard})
	assert.True(t, staff.IsStaff())
	assert.False(t, staff.IsCustomer())
	assert.False(t, staff.IsSuperadmin())

	root := NewStaffContext("user-2", RoleSuperadmin, []Permission{PermissionSuperadmin})
	assert.True(t, root.IsSuperadmin())

	cust := NewCustomerContext("cust-1")
	assert.True(t, cust.IsCustomer())
	assert.False(t, cust.IsStaff())
	assert.False(t, cust.IsSuperadmin())
	assert.Empty(t, cust.Permissions)
}
