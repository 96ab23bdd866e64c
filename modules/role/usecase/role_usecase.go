package usecase

import (
	"context"
	"errors"

	"atelier-backend/authz"
	"atelier-backend/domain"
)

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	FindByID(ctx context.Context, roleID string, option *domain.FindOneOption) (*domain.Role, error)
	FindOne(ctx context.Context, filter *domain.RoleFilter, option *domain.FindOneOption) (*domain.Role, error)
	FindPage(ctx context.Context, filter *domain.RoleFilter, option *domain.FindPageOption) ([]*domain.Role, *domain.Pagination, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, roleID string) error
}

// UserCounter reports how many users still reference a role.
type UserCounter interface {
	Count(ctx context.Context, filter *domain.UserFilter) (int64, error)
}

type roleUsecase struct {
	repo  RoleRepository
	users UserCounter
	guard *authz.Guard[domain.Role, domain.RoleFilter]
}

// Roles are not customer-scoped, so the guard carries no customer allowlist
// and no ownership extractor. Role administration rides on the users
// resource in the permission catalog.
func newRoleGuard() *authz.Guard[domain.Role, domain.RoleFilter] {
	return authz.NewGuard[domain.Role, domain.RoleFilter](
		authz.Policy{Resource: domain.ResourceUsers},
		nil,
		nil,
	)
}

func NewRoleUsecase(repo RoleRepository, users UserCounter) domain.RoleUsecase {
	return &roleUsecase{
		repo:  repo,
		users: users,
		guard: newRoleGuard(),
	}
}

func (u *roleUsecase) Create(ctx context.Context, actx *domain.AuthContext, req *domain.RoleCreateRequest) (*domain.Role, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionManage); err != nil {
		return nil, err
	}

	// The whole permission list must resolve against the catalog, a single
	// bad entry rejects the request without partial application.
	perms, err := domain.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	if isProtectedRoleName(req.Name) {
		return nil, domain.ErrRoleNameTaken.WithReasonf("%q is a reserved role name", req.Name)
	}
	if err := u.checkNameAvailable(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	role := &domain.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: domain.NewStringSlice(domain.PermissionStrings(domain.OptimizePermissions(perms))),
		IsBuiltIn:   false,
	}
	if err := u.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (u *roleUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, roleID string) (*domain.Role, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	role, err := u.repo.FindByID(ctx, roleID, nil)
	if err != nil {
		return nil, domain.ErrRoleNotFound.WithWrap(err)
	}
	return role, nil
}

func (u *roleUsecase) FindByName(ctx context.Context, actx *domain.AuthContext, name string) (*domain.Role, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	role, err := u.repo.FindOne(ctx, &domain.RoleFilter{Name: &name}, nil)
	if err != nil {
		return nil, domain.ErrRoleNotFound.WithWrap(err)
	}
	return role, nil
}

func (u *roleUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.RoleFilter, option *domain.FindPageOption) ([]*domain.Role, *domain.Pagination, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	return u.repo.FindPage(ctx, filter, option)
}

func (u *roleUsecase) Update(ctx context.Context, actx *domain.AuthContext, roleID string, req *domain.RoleUpdateRequest) error {
	if err := u.guard.RequireStaff(actx, domain.ActionManage); err != nil {
		return err
	}

	role, err := u.repo.FindByID(ctx, roleID, nil)
	if err != nil {
		return domain.ErrRoleNotFound.WithWrap(err)
	}

	// Built-in roles refuse mutation structurally, no permission set makes
	// this pass, superadmin included.
	if role.IsBuiltIn {
		return domain.ErrRoleProtected
	}

	if req.Name != nil && *req.Name != role.Name {
		if isProtectedRoleName(*req.Name) {
			return domain.ErrRoleNameTaken.WithReasonf("%q is a reserved role name", *req.Name)
		}
		if err := u.checkNameAvailable(ctx, *req.Name, role.ID); err != nil {
			return err
		}
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		perms, err := domain.ParsePermissions(req.Permissions)
		if err != nil {
			return err
		}
		role.Permissions = domain.NewStringSlice(domain.PermissionStrings(domain.OptimizePermissions(perms)))
	}

	return u.repo.Update(ctx, role)
}

func (u *roleUsecase) Delete(ctx context.Context, actx *domain.AuthContext, roleID string) error {
	if err := u.guard.RequireStaff(actx, domain.ActionManage); err != nil {
		return err
	}

	role, err := u.repo.FindByID(ctx, roleID, nil)
	if err != nil {
		return domain.ErrRoleNotFound.WithWrap(err)
	}
	if role.IsBuiltIn {
		return domain.ErrRoleProtected
	}

	assigned, err := u.users.Count(ctx, &domain.UserFilter{RoleID: &role.ID})
	if err != nil {
		return err
	}
	if assigned > 0 {
		return domain.ErrRoleInUse.WithDetail("assigned_users", assigned)
	}

	return u.repo.Delete(ctx, roleID)
}

func (u *roleUsecase) checkNameAvailable(ctx context.Context, name, excludeID string) error {
	filter := &domain.RoleFilter{Name: &name}
	existing, err := u.repo.FindOne(ctx, filter, nil)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return domain.ErrRoleNameTaken
	}
	return nil
}

func isProtectedRoleName(name string) bool {
	switch name {
	case domain.RoleSuperadmin, domain.RoleAdmin, domain.RoleManager, domain.RoleStaff:
		return true
	}
	return false
}
