package domain

import (
	"context"
	"net/http"
)

/*******************************
*       Customer errors        *
*******************************/
var (
	ErrCustomerNotFound = &DetailedError{
		IDField:         "CUSTOMER_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "Customer not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrCustomerEmailTaken = &DetailedError{
		IDField:         "CUSTOMER_EMAIL_TAKEN",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "A customer with this email already exists",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrCustomerInactive = &DetailedError{
		IDField:         "CUSTOMER_INACTIVE",
		StatusDescField: http.StatusText(http.StatusForbidden),
		ErrorField:      "Customer account is inactive",
		StatusCodeField: http.StatusForbidden,
	}
	ErrCustomerHasOpenOrders = &DetailedError{
		IDField:         "CUSTOMER_HAS_OPEN_ORDERS",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Customer still has open orders",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/*******************************************
*       Customer entities and types       *
*******************************************/
type CustomerStatus string

const (
	CustomerSTTActive   CustomerStatus = "active"
	CustomerSTTInactive CustomerStatus = "inactive"
)

// Customer is a client account with its own credentials. Customers can only
// see and act on records that belong to them.
type Customer struct {
	SQLModel
	Email       string         `json:"email" gorm:"type:varchar(100);unique;not null"`
	Password    string         `json:"-" gorm:"type:varchar(60);not null"`
	CompanyName string         `json:"company_name" gorm:"type:varchar(100)"`
	ContactName string         `json:"contact_name" gorm:"type:varchar(100);not null"`
	Phone       string         `json:"phone" gorm:"type:varchar(20)"`
	Address     string         `json:"address" gorm:"type:varchar(255)"`
	Status      CustomerStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Notes       string         `json:"notes" gorm:"type:text"`
	LastLoginAt int64          `json:"last_login_at" gorm:"default:0"`
}

func (c *Customer) IsActive() bool {
	return c.Status == CustomerSTTActive
}

type CustomerFilter struct {
	ID             *string  `json:"id" form:"id"`
	IDIn           []string `json:"id_in" form:"id_in"`
	Email          *string  `json:"email" form:"email"`
	Status         *string  `json:"status" form:"status"`
	SearchTerm     *string  `json:"search_term" form:"search_term"`
	IncludeDeleted *bool    `json:"include_deleted" form:"include_deleted"`
}

/**************************************************
*       Customer usecase interfaces and types      *
**************************************************/
type CustomerUsecase interface {
	Create(ctx context.Context, actx *AuthContext, req *CustomerCreateRequest) (*Customer, error)
	FindByID(ctx context.Context, actx *AuthContext, customerID string) (*Customer, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *CustomerFilter, option *FindPageOption) ([]*Customer, *Pagination, error)
	Update(ctx context.Context, actx *AuthContext, customerID string, req *CustomerUpdateRequest) error
	ChangePassword(ctx context.Context, actx *AuthContext, req *CustomerChangePasswordRequest) error
	Delete(ctx context.Context, actx *AuthContext, customerID string) error
}

type CustomerCreateRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"max=100"`
	ContactName string `json:"contact_name" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"omitempty,phone_number"`
	Address     string `json:"address" validate:"max=255"`
	Notes       string `json:"notes"`
}

type CustomerUpdateRequest struct {
	Email       *string         `json:"email,omitempty"`
	CompanyName *string         `json:"company_name,omitempty"`
	ContactName *string         `json:"contact_name,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Address     *string         `json:"address,omitempty"`
	Status      *CustomerStatus `json:"status,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

type CustomerChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
