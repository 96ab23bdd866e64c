package usecase

import (
	"context"
	"errors"

	"atelier-backend/authz"
	"atelier-backend/domain"
)

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) bool
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, userID string, option *domain.FindOneOption) (*domain.User, error)
	FindOne(ctx context.Context, filter *domain.UserFilter, option *domain.FindOneOption) (*domain.User, error)
	FindPage(ctx context.Context, filter *domain.UserFilter, option *domain.FindPageOption) ([]*domain.User, *domain.Pagination, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID string, newPassword string) error
	Delete(ctx context.Context, userID string) error
}

// RoleFinder resolves role assignments without pulling in the full role
// usecase.
type RoleFinder interface {
	FindByID(ctx context.Context, roleID string, option *domain.FindOneOption) (*domain.Role, error)
}

type userUsecase struct {
	repo   UserRepository
	roles  RoleFinder
	hasher Hasher
	guard  *authz.Guard[domain.User, domain.UserFilter]
}

func newUserGuard() *authz.Guard[domain.User, domain.UserFilter] {
	// Staff accounts are never customer-visible, every action requires a
	// users permission.
	return authz.NewGuard[domain.User, domain.UserFilter](
		authz.Policy{Resource: domain.ResourceUsers},
		nil,
		nil,
	)
}

func NewUserUsecase(repo UserRepository, roles RoleFinder, hasher Hasher) domain.UserUsecase {
	return &userUsecase{
		repo:   repo,
		roles:  roles,
		hasher: hasher,
		guard:  newUserGuard(),
	}
}

func (u *userUsecase) Create(ctx context.Context, actx *domain.AuthContext, req *domain.UserCreateRequest) (*domain.User, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionCreate); err != nil {
		return nil, err
	}

	if err := u.checkEmailAvailable(ctx, req.Email, ""); err != nil {
		return nil, err
	}
	role, err := u.findRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	override, err := parseOverride(req.Permissions)
	if err != nil {
		return nil, err
	}

	hashed, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, domain.ErrPasswordHashFailed.WithWrap(err)
	}

	user := &domain.User{
		Email:       req.Email,
		Password:    hashed,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Status:      domain.UserSTTActive,
		RoleID:      role.ID,
		Permissions: override,
	}
	if err := u.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (u *userUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, userID string) (*domain.User, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	user, err := u.repo.FindByID(ctx, userID, &domain.FindOneOption{Preloads: []string{"Role"}})
	if err != nil {
		return nil, domain.ErrUserNotFound.WithWrap(err)
	}
	return user, nil
}

func (u *userUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.UserFilter, option *domain.FindPageOption) ([]*domain.User, *domain.Pagination, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	if option == nil {
		option = &domain.FindPageOption{}
	}
	if len(option.Preloads) == 0 {
		option.Preloads = []string{"Role"}
	}
	return u.repo.FindPage(ctx, filter, option)
}

func (u *userUsecase) Update(ctx context.Context, actx *domain.AuthContext, userID string, req *domain.UserUpdateRequest) error {
	if err := u.guard.RequireStaff(actx, domain.ActionUpdate); err != nil {
		return err
	}

	user, err := u.repo.FindByID(ctx, userID, nil)
	if err != nil {
		return domain.ErrUserNotFound.WithWrap(err)
	}

	// Nobody reassigns their own role or switches themselves off.
	if actx.UserID == user.ID && (req.RoleID != nil || req.Status != nil) {
		return domain.ErrSelfDemotion
	}

	if req.Email != nil && *req.Email != user.Email {
		if err := u.checkEmailAvailable(ctx, *req.Email, user.ID); err != nil {
			return err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		if *req.Status != domain.UserSTTActive && *req.Status != domain.UserSTTInactive {
			return domain.ErrInvalidUserStatus
		}
		user.Status = *req.Status
	}
	if req.RoleID != nil && *req.RoleID != user.RoleID {
		role, err := u.findRole(ctx, *req.RoleID)
		if err != nil {
			return err
		}
		user.RoleID = role.ID
		user.Role = nil
	}
	if req.Permissions != nil {
		override, err := parseOverride(req.Permissions)
		if err != nil {
			return err
		}
		user.Permissions = override
	}

	return u.repo.Update(ctx, user)
}

func (u *userUsecase) ChangePassword(ctx context.Context, actx *domain.AuthContext, req *domain.UserChangePasswordRequest) error {
	if actx == nil || !actx.IsStaff() {
		return domain.ErrPermissionDenied.WithReason("only staff accounts change their password here")
	}

	user, err := u.repo.FindByID(ctx, actx.UserID, nil)
	if err != nil {
		return domain.ErrUserNotFound.WithWrap(err)
	}
	if !u.hasher.Compare(user.Password, req.OldPassword) {
		return domain.ErrInvalidCredentials.WithReason("old password is incorrect")
	}

	hashed, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return domain.ErrPasswordHashFailed.WithWrap(err)
	}
	return u.repo.UpdatePassword(ctx, user.ID, hashed)
}

func (u *userUsecase) Delete(ctx context.Context, actx *domain.AuthContext, userID string) error {
	if err := u.guard.RequireStaff(actx, domain.ActionDelete); err != nil {
		return err
	}
	if actx.UserID == userID {
		return domain.ErrSelfDemotion.WithReason("users cannot delete their own account")
	}

	if _, err := u.repo.FindByID(ctx, userID, nil); err != nil {
		return domain.ErrUserNotFound.WithWrap(err)
	}
	return u.repo.Delete(ctx, userID)
}

func (u *userUsecase) findRole(ctx context.Context, roleID string) (*domain.Role, error) {
	role, err := u.roles.FindByID(ctx, roleID, nil)
	if err != nil {
		return nil, domain.ErrRoleNotFound.WithWrap(err)
	}
	return role, nil
}

// parseOverride validates a per-user permission override wholesale and
// stores it in optimized form. An empty input clears the override.
func parseOverride(raw []string) (domain.StringSlice, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	perms, err := domain.ParsePermissions(raw)
	if err != nil {
		return nil, err
	}
	return domain.PermissionStrings(domain.OptimizePermissions(perms)), nil
}

func (u *userUsecase) checkEmailAvailable(ctx context.Context, email, excludeID string) error {
	existing, err := u.repo.FindOne(ctx, &domain.UserFilter{Email: &email}, nil)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return domain.ErrEmailAlreadyExists
	}
	return nil
}
