package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRolePermissions(t *testing.T) {
	assert.Equal(t, []Permission{PermissionSuperadmin}, DefaultRolePermissions(RoleSuperadmin))
	assert.Equal(t, []Permission{PermissionWildcard}, DefaultRolePermissions(RoleAdmin))
	assert.Nil(t, DefaultRolePermissions("intern"))

	manager := DefaultRolePermissions(RoleManager)
	require.NotEmpty(t, manager)
	assert.True(t, HasResourcePermission(manager, ResourceOrders, ActionManage))
	assert.False(t, HasResourcePermission(manager, ResourceUsers, ActionDelete))

	staff := DefaultRolePermissions(RoleStaff)
	require.NotEmpty(t, staff)
	assert.True(t, HasResourcePermission(staff, ResourceOrders, ActionUpdate))
	assert.False(t, HasResourcePermission(staff, ResourceOrders, ActionDelete))
	assert.False(t, HasResourcePermission(staff, ResourceCustomers, ActionCreate))

	// Every default is a valid catalog entry.
	for _, name := range []string{RoleSuperadmin, RoleAdmin, RoleManager, RoleStaff} {
		for _, p := range DefaultRolePermissions(name) {
			_, err := ParsePermission(string(p))
			assert.NoError(t, err, "role %s permission %s", name, p)
		}
	}
}

func TestDefaultRolePermissions_ReturnsCopies(t *testing.T) {
	first := DefaultRolePermissions(RoleStaff)
	first[0] = PermissionSuperadmin
	second := DefaultRolePermissions(RoleStaff)
	assert.NotEqual(t, PermissionSuperadmin, second[0])
}

func TestRolePermissionSet(t *testing.T) {
	role := &Role{
		Name:        "estimator",
		Permissions: StringSlice{"orders:read", "orders:update"},
	}
	set := role.PermissionSet()
	assert.True(t, HasResourcePermission(set, ResourceOrders, ActionUpdate))
	assert.False(t, HasResourcePermission(set, ResourceOrders, ActionDelete))
}

func TestUserEffectivePermissions(t *testing.T) {
	role := &Role{
		Name:        RoleStaff,
		Permissions: StringSlice{"orders:read"},
	}

	t.Run("role defaults apply without an override", func(t *testing.T) {
		u := &User{Role: role}
		assert.True(t, HasResourcePermission(u.EffectivePermissions(), ResourceOrders, ActionRead))
	})

	t.Run("per-user override wins over the role", func(t *testing.T) {
		u := &User{
			Role:        role,
			Permissions: StringSlice{"inquiries:read"},
		}
		perms := u.EffectivePermissions()
		assert.True(t, HasResourcePermission(perms, ResourceInquiries, ActionRead))
		assert.False(t, HasResourcePermission(perms, ResourceOrders, ActionRead))
	})

	t.Run("no role and no override means no permissions", func(t *testing.T) {
		u := &User{}
		assert.Empty(t, u.EffectivePermissions())
	})
}
