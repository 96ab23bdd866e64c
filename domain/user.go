package domain

import (
	"context"
	"net/http"
)

/****************************
*        User errors        *
****************************/
var (
	ErrUserNotFound = &DetailedError{
		IDField:         "USER_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "User not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrEmailAlreadyExists = &DetailedError{
		IDField:         "EMAIL_ALREADY_EXISTS",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "An account with this email already exists",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrPasswordHashFailed = &DetailedError{
		IDField:         "PASSWORD_HASH_FAILED",
		StatusDescField: http.StatusText(http.StatusInternalServerError),
		ErrorField:      "Failed to hash password",
		StatusCodeField: http.StatusInternalServerError,
	}
	ErrInvalidUserStatus = &DetailedError{
		IDField:         "INVALID_USER_STATUS",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "Invalid user status",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrUserInactive = &DetailedError{
		IDField:         "USER_INACTIVE",
		StatusDescField: http.StatusText(http.StatusForbidden),
		ErrorField:      "User account is inactive",
		StatusCodeField: http.StatusForbidden,
	}
	ErrSelfDemotion = &DetailedError{
		IDField:         "SELF_DEMOTION",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Users cannot change their own role or deactivate themselves",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/***************************************
*       User entities and types       *
***************************************/
type UserStatus string

const (
	UserSTTActive   UserStatus = "active"
	UserSTTInactive UserStatus = "inactive"
)

// User is a staff account. Permissions is an optional per-user override,
// when empty the role's permission set applies.
type User struct {
	SQLModel
	Email       string      `json:"email" gorm:"type:varchar(100);unique;not null"`
	Password    string      `json:"-" gorm:"type:varchar(60);not null"`
	FirstName   string      `json:"first_name" gorm:"type:varchar(50);not null"`
	LastName    string      `json:"last_name" gorm:"type:varchar(50);not null"`
	Phone       string      `json:"phone" gorm:"type:varchar(20)"`
	Status      UserStatus  `json:"status" gorm:"type:varchar(20);default:'active'"`
	RoleID      string      `json:"role_id" gorm:"type:varchar(36);not null;index"`
	Role        *Role       `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Permissions StringSlice `json:"permissions,omitempty" gorm:"type:jsonb"`
	LastLoginAt int64       `json:"last_login_at" gorm:"default:0"`
}

func (u *User) IsActive() bool {
	return u.Status == UserSTTActive
}

// EffectivePermissions resolves the permission set this user acts with. A
// non-empty per-user override wins over the role defaults.
func (u *User) EffectivePermissions() []Permission {
	if len(u.Permissions) > 0 {
		return PermissionsFromStrings(u.Permissions)
	}
	if u.Role != nil {
		return u.Role.PermissionSet()
	}
	return nil
}

func (u *User) RoleName() string {
	if u.Role != nil {
		return u.Role.Name
	}
	return ""
}

type UserFilter struct {
	ID             *string  `json:"id" form:"id"`
	IDNe           *string  `json:"id_ne" form:"id_ne"`
	IDIn           []string `json:"id_in" form:"id_in"`
	Email          *string  `json:"email" form:"email"`
	RoleID         *string  `json:"role_id" form:"role_id"`
	Status         *string  `json:"status" form:"status"`
	SearchTerm     *string  `json:"search_term" form:"search_term"`
	IncludeDeleted *bool    `json:"include_deleted" form:"include_deleted"`
}

/**********************************************
*       User usecase interfaces and types      *
**********************************************/
type UserUsecase interface {
	Create(ctx context.Context, actx *AuthContext, req *UserCreateRequest) (*User, error)
	FindByID(ctx context.Context, actx *AuthContext, userID string) (*User, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *UserFilter, option *FindPageOption) ([]*User, *Pagination, error)
	Update(ctx context.Context, actx *AuthContext, userID string, req *UserUpdateRequest) error
	ChangePassword(ctx context.Context, actx *AuthContext, req *UserChangePasswordRequest) error
	Delete(ctx context.Context, actx *AuthContext, userID string) error
}

type UserCreateRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,min=8"`
	FirstName   string   `json:"first_name" validate:"required,max=50"`
	LastName    string   `json:"last_name" validate:"required,max=50"`
	Phone       string   `json:"phone" validate:"omitempty,phone_number"`
	RoleID      string   `json:"role_id" validate:"required,uuid"`
	Permissions []string `json:"permissions,omitempty"`
}

type UserUpdateRequest struct {
	Email       *string     `json:"email,omitempty"`
	FirstName   *string     `json:"first_name,omitempty"`
	LastName    *string     `json:"last_name,omitempty"`
	Phone       *string     `json:"phone,omitempty"`
	Status      *UserStatus `json:"status,omitempty"`
	RoleID      *string     `json:"role_id,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
}

type UserChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
