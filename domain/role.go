package domain

import (
	"context"
	"net/http"
)

/****************************
*        Role errors        *
****************************/
var (
	ErrRoleNotFound = &DetailedError{
		IDField:         "ROLE_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "Role not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrRoleNameTaken = &DetailedError{
		IDField:         "ROLE_NAME_TAKEN",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "A role with this name already exists",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrRoleProtected = &DetailedError{
		IDField:         "ROLE_PROTECTED",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Built-in roles cannot be modified or deleted",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
	ErrRoleInUse = &DetailedError{
		IDField:         "ROLE_IN_USE",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Role is still assigned to users",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/***************************************
*       Role entities and types       *
***************************************/

// Built-in role names. Roles carrying one of these names are seeded at
// startup and flagged protected.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

type Role struct {
	SQLModel
	Name        string      `json:"name" gorm:"type:varchar(50);unique;not null"`
	Description string      `json:"description" gorm:"type:varchar(255)"`
	Permissions StringSlice `json:"permissions" gorm:"type:jsonb"`
	IsBuiltIn   bool        `json:"is_built_in" gorm:"default:false"`
}

// PermissionSet converts the stored permission strings to typed values.
func (r *Role) PermissionSet() []Permission {
	return PermissionsFromStrings(r.Permissions)
}

// DefaultRolePermissions returns the catalog-default permission set for a
// built-in role name, nil for unknown names. The returned slice is a fresh
// copy, the defaults themselves are never mutated at runtime.
func DefaultRolePermissions(roleName string) []Permission {
	switch roleName {
	case RoleSuperadmin:
		return []Permission{PermissionSuperadmin}
	case RoleAdmin:
		return append([]Permission(nil), adminDefaults...)
	case RoleManager:
		return append([]Permission(nil), managerDefaults...)
	case RoleStaff:
		return append([]Permission(nil), staffDefaults...)
	default:
		return nil
	}
}

var adminDefaults = []Permission{PermissionWildcard}

var managerDefaults = []Permission{
	NewPermission(ResourceCustomers, ActionCreate),
	NewPermission(ResourceCustomers, ActionRead),
	NewPermission(ResourceCustomers, ActionUpdate),
	NewPermission(ResourceProducts, ActionManage),
	NewPermission(ResourceOrders, ActionManage),
	NewPermission(ResourceInquiries, ActionManage),
	NewPermission(ResourceMedia, ActionCreate),
	NewPermission(ResourceMedia, ActionRead),
	NewPermission(ResourceMedia, ActionDelete),
	NewPermission(ResourceUsers, ActionRead),
}

var staffDefaults = []Permission{
	NewPermission(ResourceCustomers, ActionRead),
	NewPermission(ResourceProducts, ActionRead),
	NewPermission(ResourceOrders, ActionRead),
	NewPermission(ResourceOrders, ActionUpdate),
	NewPermission(ResourceInquiries, ActionRead),
	NewPermission(ResourceInquiries, ActionUpdate),
	NewPermission(ResourceMedia, ActionRead),
}

type RoleFilter struct {
	ID             *string  `json:"id" form:"id"`
	IDIn           []string `json:"id_in" form:"id_in"`
	Name           *string  `json:"name" form:"name"`
	NameNe         *string  `json:"name_ne" form:"name_ne"`
	IsBuiltIn      *bool    `json:"is_built_in" form:"is_built_in"`
	SearchTerm     *string  `json:"search_term" form:"search_term"`
	IncludeDeleted *bool    `json:"include_deleted" form:"include_deleted"`
}

/**********************************************
*       Role usecase interfaces and types      *
**********************************************/
type RoleUsecase interface {
	Create(ctx context.Context, actx *AuthContext, req *RoleCreateRequest) (*Role, error)
	FindByID(ctx context.Context, actx *AuthContext, roleID string) (*Role, error)
	FindByName(ctx context.Context, actx *AuthContext, name string) (*Role, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *RoleFilter, option *FindPageOption) ([]*Role, *Pagination, error)
	Update(ctx context.Context, actx *AuthContext, roleID string, req *RoleUpdateRequest) error
	Delete(ctx context.Context, actx *AuthContext, roleID string) error
}

type RoleCreateRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

type RoleUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}
