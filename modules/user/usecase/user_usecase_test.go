package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
)

type fakeUserRepo struct {
	byID      map[string]*domain.User
	passwords map[string]string
	deleted   []string
	nextID    int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &fakeUserRepo{byID: byID, passwords: make(map[string]string)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		f.nextID++
		user.ID = fmt.Sprintf("user-%d", f.nextID)
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, userID string, _ *domain.FindOneOption) (*domain.User, error) {
	user, ok := f.byID[userID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindOne(_ context.Context, filter *domain.UserFilter, _ *domain.FindOneOption) (*domain.User, error) {
	for _, user := range f.byID {
		if filter.Email != nil && user.Email == *filter.Email {
			return user, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeUserRepo) FindPage(_ context.Context, _ *domain.UserFilter, _ *domain.FindPageOption) ([]*domain.User, *domain.Pagination, error) {
	out := make([]*domain.User, 0, len(f.byID))
	for _, user := range f.byID {
		out = append(out, user)
	}
	return out, domain.NewPagination(1, 10, int64(len(out))), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, userID string, newPassword string) error {
	f.passwords[userID] = newPassword
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	delete(f.byID, userID)
	return nil
}

type fakeRoleFinder struct {
	byID map[string]*domain.Role
}

func newFakeRoleFinder(roles ...*domain.Role) *fakeRoleFinder {
	byID := make(map[string]*domain.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}
	return &fakeRoleFinder{byID: byID}
}

func (f *fakeRoleFinder) FindByID(_ context.Context, roleID string, _ *domain.FindOneOption) (*domain.Role, error) {
	role, ok := f.byID[roleID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return role, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hashed, password string) bool { return hashed == "hashed:"+password }

func adminCtx(userID string) *domain.AuthContext {
	return domain.NewStaffContext(userID, "superadmin", []domain.Permission{
		domain.NewPermission(domain.ResourceUsers, domain.ActionManage),
	})
}

func managerRole() *domain.Role {
	return &domain.Role{
		SQLModel:    domain.SQLModel{ID: "role-manager"},
		Name:        "manager",
		Permissions: domain.StringSlice{"orders:manage", "inquiries:manage"},
	}
}

func TestUserCreate(t *testing.T) {
	repo := newFakeUserRepo()
	uc := NewUserUsecase(repo, newFakeRoleFinder(managerRole()), fakeHasher{})

	user, err := uc.Create(context.Background(), adminCtx("admin-1"), &domain.UserCreateRequest{
		Email:     "new@example.com",
		Password:  "secret123",
		FirstName: "Ada",
		LastName:  "Nguyen",
		RoleID:    "role-manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "role-manager", user.RoleID)
	assert.Equal(t, "hashed:secret123", user.Password)
	assert.Equal(t, domain.UserSTTActive, user.Status)
	require.NotNil(t, user.Role)
	assert.Equal(t, "manager", user.Role.Name)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	existing := &domain.User{
		SQLModel: domain.SQLModel{ID: "user-1"},
		Email:    "taken@example.com",
	}
	uc := NewUserUsecase(newFakeUserRepo(existing), newFakeRoleFinder(managerRole()), fakeHasher{})

	_, err := uc.Create(context.Background(), adminCtx("admin-1"), &domain.UserCreateRequest{
		Email:    "taken@example.com",
		Password: "secret123",
		RoleID:   "role-manager",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUserCreateUnknownRole(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), newFakeRoleFinder(), fakeHasher{})

	_, err := uc.Create(context.Background(), adminCtx("admin-1"), &domain.UserCreateRequest{
		Email:    "new@example.com",
		Password: "secret123",
		RoleID:   "role-ghost",
	})
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestUserCreatePermissionOverrideOptimized(t *testing.T) {
	repo := newFakeUserRepo()
	uc := NewUserUsecase(repo, newFakeRoleFinder(managerRole()), fakeHasher{})

	user, err := uc.Create(context.Background(), adminCtx("admin-1"), &domain.UserCreateRequest{
		Email:    "new@example.com",
		Password: "secret123",
		RoleID:   "role-manager",
		// the wildcard swallows the narrower grants
		Permissions: []string{"orders:read", "*", "inquiries:manage"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StringSlice{"*"}, user.Permissions)
}

func TestUserCreateRejectsCustomer(t *testing.T) {
	uc := NewUserUsecase(newFakeUserRepo(), newFakeRoleFinder(managerRole()), fakeHasher{})

	_, err := uc.Create(context.Background(), domain.NewCustomerContext("cust-1"), &domain.UserCreateRequest{
		Email:    "new@example.com",
		Password: "secret123",
		RoleID:   "role-manager",
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestUserUpdateSelfRoleChangeBlocked(t *testing.T) {
	admin := &domain.User{
		SQLModel: domain.SQLModel{ID: "admin-1"},
		Email:    "admin@example.com",
		RoleID:   "role-superadmin",
	}
	uc := NewUserUsecase(newFakeUserRepo(admin), newFakeRoleFinder(managerRole()), fakeHasher{})

	roleID := "role-manager"
	err := uc.Update(context.Background(), adminCtx("admin-1"), "admin-1", &domain.UserUpdateRequest{
		RoleID: &roleID,
	})
	assert.ErrorIs(t, err, domain.ErrSelfDemotion)
}

func TestUserUpdateSelfStatusChangeBlocked(t *testing.T) {
	admin := &domain.User{
		SQLModel: domain.SQLModel{ID: "admin-1"},
		Email:    "admin@example.com",
	}
	uc := NewUserUsecase(newFakeUserRepo(admin), newFakeRoleFinder(), fakeHasher{})

	inactive := domain.UserSTTInactive
	err := uc.Update(context.Background(), adminCtx("admin-1"), "admin-1", &domain.UserUpdateRequest{
		Status: &inactive,
	})
	assert.ErrorIs(t, err, domain.ErrSelfDemotion)
}

func TestUserUpdateStatus(t *testing.T) {
	target := &domain.User{
		SQLModel: domain.SQLModel{ID: "user-2"},
		Email:    "other@example.com",
		Status:   domain.UserSTTActive,
	}
	repo := newFakeUserRepo(target)
	uc := NewUserUsecase(repo, newFakeRoleFinder(), fakeHasher{})

	inactive := domain.UserSTTInactive
	err := uc.Update(context.Background(), adminCtx("admin-1"), "user-2", &domain.UserUpdateRequest{
		Status: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserSTTInactive, repo.byID["user-2"].Status)
}

func TestUserUpdateInvalidStatus(t *testing.T) {
	target := &domain.User{SQLModel: domain.SQLModel{ID: "user-2"}}
	uc := NewUserUsecase(newFakeUserRepo(target), newFakeRoleFinder(), fakeHasher{})

	bogus := domain.UserStatus("suspended")
	err := uc.Update(context.Background(), adminCtx("admin-1"), "user-2", &domain.UserUpdateRequest{
		Status: &bogus,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidUserStatus)
}

func TestUserChangePassword(t *testing.T) {
	self := &domain.User{
		SQLModel: domain.SQLModel{ID: "admin-1"},
		Password: "hashed:old-secret",
	}
	repo := newFakeUserRepo(self)
	uc := NewUserUsecase(repo, newFakeRoleFinder(), fakeHasher{})

	err := uc.ChangePassword(context.Background(), adminCtx("admin-1"), &domain.UserChangePasswordRequest{
		OldPassword: "old-secret",
		NewPassword: "new-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:new-secret", repo.passwords["admin-1"])
}

func TestUserChangePasswordWrongOld(t *testing.T) {
	self := &domain.User{
		SQLModel: domain.SQLModel{ID: "admin-1"},
		Password: "hashed:old-secret",
	}
	uc := NewUserUsecase(newFakeUserRepo(self), newFakeRoleFinder(), fakeHasher{})

	err := uc.ChangePassword(context.Background(), adminCtx("admin-1"), &domain.UserChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-secret",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUserDeleteSelfBlocked(t *testing.T) {
	self := &domain.User{SQLModel: domain.SQLModel{ID: "admin-1"}}
	uc := NewUserUsecase(newFakeUserRepo(self), newFakeRoleFinder(), fakeHasher{})

	err := uc.Delete(context.Background(), adminCtx("admin-1"), "admin-1")
	assert.ErrorIs(t, err, domain.ErrSelfDemotion)
}

func TestUserDelete(t *testing.T) {
	target := &domain.User{SQLModel: domain.SQLModel{ID: "user-2"}}
	repo := newFakeUserRepo(target)
	uc := NewUserUsecase(repo, newFakeRoleFinder(), fakeHasher{})

	require.NoError(t, uc.Delete(context.Background(), adminCtx("admin-1"), "user-2"))
	assert.Equal(t, []string{"user-2"}, repo.deleted)
}
