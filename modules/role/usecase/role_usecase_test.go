package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
)

type fakeRoleRepo struct {
	byID    map[string]*domain.Role
	updated []*domain.Role
	deleted []string
}

func newFakeRoleRepo(roles ...*domain.Role) *fakeRoleRepo {
	byID := make(map[string]*domain.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}
	return &fakeRoleRepo{byID: byID}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *domain.Role) error {
	if role.ID == "" {
		role.ID = "role-" + role.Name
	}
	f.byID[role.ID] = role
	return nil
}

func (f *fakeRoleRepo) FindByID(_ context.Context, roleID string, _ *domain.FindOneOption) (*domain.Role, error) {
	role, ok := f.byID[roleID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeRoleRepo) FindOne(_ context.Context, filter *domain.RoleFilter, _ *domain.FindOneOption) (*domain.Role, error) {
	for _, role := range f.byID {
		if filter.Name != nil && role.Name == *filter.Name {
			return role, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeRoleRepo) FindPage(_ context.Context, _ *domain.RoleFilter, _ *domain.FindPageOption) ([]*domain.Role, *domain.Pagination, error) {
	out := make([]*domain.Role, 0, len(f.byID))
	for _, role := range f.byID {
		out = append(out, role)
	}
	return out, domain.NewPagination(1, 10, int64(len(out))), nil
}

func (f *fakeRoleRepo) Update(_ context.Context, role *domain.Role) error {
	f.updated = append(f.updated, role)
	f.byID[role.ID] = role
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, roleID string) error {
	f.deleted = append(f.deleted, roleID)
	delete(f.byID, roleID)
	return nil
}

type fakeUserCounter struct {
	count int64
}

func (f *fakeUserCounter) Count(_ context.Context, _ *domain.UserFilter) (int64, error) {
	return f.count, nil
}

func superadminCtx() *domain.AuthContext {
	return domain.NewStaffContext("root-1", domain.RoleSuperadmin, []domain.Permission{domain.PermissionSuperadmin})
}

func builtInRole() *domain.Role {
	return &domain.Role{
		SQLModel:    domain.SQLModel{ID: "role-admin"},
		Name:        domain.RoleAdmin,
		Permissions: domain.StringSlice{"*"},
		IsBuiltIn:   true,
	}
}

func customRole() *domain.Role {
	return &domain.Role{
		SQLModel:    domain.SQLModel{ID: "role-estimator"},
		Name:        "estimator",
		Permissions: domain.StringSlice{"orders:read", "orders:update"},
	}
}

func TestRoleCreate(t *testing.T) {
	t.Run("valid permissions are optimized and stored", func(t *testing.T) {
		repo := newFakeRoleRepo()
		uc := NewRoleUsecase(repo, &fakeUserCounter{})

		role, err := uc.Create(context.Background(), superadminCtx(), &domain.RoleCreateRequest{
			Name:        "estimator",
			Permissions: []string{"orders:read", "orders:read", "orders:update"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StringSlice{"orders:read", "orders:update"}, role.Permissions)
		assert.False(t, role.IsBuiltIn)
	})

	t.Run("one invalid permission rejects the whole request", func(t *testing.T) {
		repo := newFakeRoleRepo()
		uc := NewRoleUsecase(repo, &fakeUserCounter{})

		_, err := uc.Create(context.Background(), superadminCtx(), &domain.RoleCreateRequest{
			Name:        "estimator",
			Permissions: []string{"orders:read", "rockets:launch"},
		})
		assert.ErrorIs(t, err, domain.ErrBusinessRuleViolation)
		assert.Empty(t, repo.byID)
	})

	t.Run("redundant universal grant collapses", func(t *testing.T) {
		repo := newFakeRoleRepo()
		uc := NewRoleUsecase(repo, &fakeUserCounter{})

		role, err := uc.Create(context.Background(), superadminCtx(), &domain.RoleCreateRequest{
			Name:        "godmode",
			Permissions: []string{"superadmin", "users:read", "customers:create"},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StringSlice{"superadmin"}, role.Permissions)
	})

	t.Run("reserved names are refused", func(t *testing.T) {
		uc := NewRoleUsecase(newFakeRoleRepo(), &fakeUserCounter{})
		_, err := uc.Create(context.Background(), superadminCtx(), &domain.RoleCreateRequest{
			Name:        domain.RoleAdmin,
			Permissions: []string{"orders:read"},
		})
		assert.ErrorIs(t, err, domain.ErrRoleNameTaken)
	})

	t.Run("duplicate names are refused", func(t *testing.T) {
		uc := NewRoleUsecase(newFakeRoleRepo(customRole()), &fakeUserCounter{})
		_, err := uc.Create(context.Background(), superadminCtx(), &domain.RoleCreateRequest{
			Name:        "estimator",
			Permissions: []string{"orders:read"},
		})
		assert.ErrorIs(t, err, domain.ErrRoleNameTaken)
	})

	t.Run("customers cannot manage roles", func(t *testing.T) {
		uc := NewRoleUsecase(newFakeRoleRepo(), &fakeUserCounter{})
		_, err := uc.Create(context.Background(), domain.NewCustomerContext("cust-1"), &domain.RoleCreateRequest{
			Name:        "estimator",
			Permissions: []string{"orders:read"},
		})
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestRoleUpdate_BuiltInProtection(t *testing.T) {
	repo := newFakeRoleRepo(builtInRole())
	uc := NewRoleUsecase(repo, &fakeUserCounter{})

	// Even a superadmin caller gets a business-rule refusal, not a
	// permission one: the protection is structural.
	name := "renamed"
	err := uc.Update(context.Background(), superadminCtx(), "role-admin", &domain.RoleUpdateRequest{Name: &name})
	require.ErrorIs(t, err, domain.ErrRoleProtected)
	assert.NotErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Empty(t, repo.updated)
}

func TestRoleUpdate_Custom(t *testing.T) {
	repo := newFakeRoleRepo(customRole())
	uc := NewRoleUsecase(repo, &fakeUserCounter{})

	err := uc.Update(context.Background(), superadminCtx(), "role-estimator", &domain.RoleUpdateRequest{
		Permissions: []string{"orders:manage"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StringSlice{"orders:manage"}, repo.byID["role-estimator"].Permissions)
}

func TestRoleDelete(t *testing.T) {
	t.Run("built-in roles cannot be deleted", func(t *testing.T) {
		repo := newFakeRoleRepo(builtInRole())
		uc := NewRoleUsecase(repo, &fakeUserCounter{})

		err := uc.Delete(context.Background(), superadminCtx(), "role-admin")
		assert.ErrorIs(t, err, domain.ErrRoleProtected)
		assert.Empty(t, repo.deleted)
	})

	t.Run("roles still assigned to users cannot be deleted", func(t *testing.T) {
		repo := newFakeRoleRepo(customRole())
		uc := NewRoleUsecase(repo, &fakeUserCounter{count: 3})

		err := uc.Delete(context.Background(), superadminCtx(), "role-estimator")
		assert.ErrorIs(t, err, domain.ErrRoleInUse)
	})

	t.Run("unused custom roles delete fine", func(t *testing.T) {
		repo := newFakeRoleRepo(customRole())
		uc := NewRoleUsecase(repo, &fakeUserCounter{})

		require.NoError(t, uc.Delete(context.Background(), superadminCtx(), "role-estimator"))
		assert.Equal(t, []string{"role-estimator"}, repo.deleted)
	})
}
