// Package bootstrap seeds the baseline records the system needs on first
// start: the built-in roles and the superadmin account.
package bootstrap

import (
	"context"
	"errors"

	"atelier-backend/domain"
	"atelier-backend/pkg/log"
)

type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	FindOne(ctx context.Context, filter *domain.RoleFilter, option *domain.FindOneOption) (*domain.Role, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindOne(ctx context.Context, filter *domain.UserFilter, option *domain.FindOneOption) (*domain.User, error)
}

type Hasher interface {
	Hash(password string) (string, error)
}

type SuperadminConfig interface {
	SuperadminDefaultEmail() string
	SuperadminDefaultPassword() string
}

// SeedRoles creates the built-in roles if they do not exist yet. Permission
// sets of existing roles are left alone so admin edits survive restarts.
func SeedRoles(ctx context.Context, repo RoleRepository, logger log.Logger) error {
	builtIn := []struct {
		name        string
		description string
	}{
		{domain.RoleSuperadmin, "System owner with unrestricted access"},
		{domain.RoleAdmin, "Full access to every resource"},
		{domain.RoleManager, "Runs day-to-day operations"},
		{domain.RoleStaff, "Read-mostly workshop access"},
	}

	for _, r := range builtIn {
		existing, err := repo.FindOne(ctx, &domain.RoleFilter{Name: &r.name}, nil)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		if existing != nil {
			continue
		}

		role := &domain.Role{
			Name:        r.name,
			Description: r.description,
			Permissions: domain.PermissionStrings(domain.DefaultRolePermissions(r.name)),
			IsBuiltIn:   true,
		}
		if err := repo.Create(ctx, role); err != nil {
			return err
		}
		logger.Info("seeded built-in role", log.String("role", r.name))
	}
	return nil
}

// SeedSuperadmin creates the initial superadmin user when no account with
// the configured email exists.
func SeedSuperadmin(ctx context.Context, users UserRepository, roles RoleRepository, hasher Hasher, cfg SuperadminConfig, logger log.Logger) error {
	email := cfg.SuperadminDefaultEmail()

	existing, err := users.FindOne(ctx, &domain.UserFilter{Email: &email}, nil)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}

	roleName := domain.RoleSuperadmin
	role, err := roles.FindOne(ctx, &domain.RoleFilter{Name: &roleName}, nil)
	if err != nil {
		return err
	}

	hashed, err := hasher.Hash(cfg.SuperadminDefaultPassword())
	if err != nil {
		return err
	}

	user := &domain.User{
		Email:     email,
		Password:  hashed,
		FirstName: "Super",
		LastName:  "Admin",
		Status:    domain.UserSTTActive,
		RoleID:    role.ID,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}
	logger.Info("seeded superadmin account", log.String("email", email))
	return nil
}
