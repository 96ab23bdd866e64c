package domain

import (
	"context"
	"net/http"
)

/******************************
*       Product errors        *
******************************/
var (
	ErrProductNotFound = &DetailedError{
		IDField:         "PRODUCT_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "Product not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrProductSKUTaken = &DetailedError{
		IDField:         "PRODUCT_SKU_TAKEN",
		StatusDescField: http.StatusText(http.StatusBadRequest),
		ErrorField:      "A product with this SKU already exists",
		StatusCodeField: http.StatusBadRequest,
	}
	ErrProductArchived = &DetailedError{
		IDField:         "PRODUCT_ARCHIVED",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Archived products cannot be ordered",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/*****************************************
*       Product entities and types       *
*****************************************/
type ProductStatus string

const (
	ProductSTTDraft    ProductStatus = "draft"
	ProductSTTActive   ProductStatus = "active"
	ProductSTTArchived ProductStatus = "archived"
)

type Product struct {
	SQLModel
	SKU         string        `json:"sku" gorm:"type:varchar(50);unique;not null"`
	Name        string        `json:"name" gorm:"type:varchar(255);not null"`
	Description string        `json:"description" gorm:"type:text"`
	BasePrice   float64       `json:"base_price" gorm:"not null;default:0"`
	Currency    string        `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	Unit        string        `json:"unit" gorm:"type:varchar(20);default:'piece'"`
	LeadTimeDay int           `json:"lead_time_day" gorm:"default:0"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Attributes  JSONB         `json:"attributes" gorm:"type:jsonb"`
}

func (p *Product) IsOrderable() bool {
	return p.Status == ProductSTTActive
}

type ProductFilter struct {
	ID             *string  `json:"id" form:"id"`
	IDIn           []string `json:"id_in" form:"id_in"`
	SKU            *string  `json:"sku" form:"sku"`
	Status         *string  `json:"status" form:"status"`
	SearchTerm     *string  `json:"search_term" form:"search_term"`
	PriceGte       *float64 `json:"price_gte" form:"price_gte"`
	PriceLte       *float64 `json:"price_lte" form:"price_lte"`
	IncludeDeleted *bool    `json:"include_deleted" form:"include_deleted"`
}

/*************************************************
*       Product usecase interfaces and types      *
*************************************************/
type ProductUsecase interface {
	Create(ctx context.Context, actx *AuthContext, req *ProductCreateRequest) (*Product, error)
	FindByID(ctx context.Context, actx *AuthContext, productID string) (*Product, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *ProductFilter, option *FindPageOption) ([]*Product, *Pagination, error)
	Update(ctx context.Context, actx *AuthContext, productID string, req *ProductUpdateRequest) error
	Delete(ctx context.Context, actx *AuthContext, productID string) error
}

type ProductCreateRequest struct {
	SKU         string                 `json:"sku" validate:"required,max=50"`
	Name        string                 `json:"name" validate:"required,min=2,max=255"`
	Description string                 `json:"description"`
	BasePrice   float64                `json:"base_price" validate:"gte=0"`
	Currency    string                 `json:"currency" validate:"omitempty,len=3"`
	Unit        string                 `json:"unit" validate:"max=20"`
	LeadTimeDay int                    `json:"lead_time_day" validate:"gte=0"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}

type ProductUpdateRequest struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	BasePrice   *float64               `json:"base_price,omitempty"`
	Currency    *string                `json:"currency,omitempty"`
	Unit        *string                `json:"unit,omitempty"`
	LeadTimeDay *int                   `json:"lead_time_day,omitempty"`
	Status      *ProductStatus         `json:"status,omitempty"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
}
