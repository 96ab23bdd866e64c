package domain

import (
	"context"
	"fmt"
	"net/http"
)

/****************************
*       Order errors        *
****************************/
var (
	ErrOrderNotFound = &DetailedError{
		IDField:         "ORDER_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "Order not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrOrderInvalidTransition = &DetailedError{
		IDField:         "ORDER_INVALID_TRANSITION",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Order status transition is not allowed",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
	ErrOrderStaleTransition = &DetailedError{
		IDField:         "ORDER_STALE_TRANSITION",
		StatusDescField: http.StatusText(http.StatusConflict),
		ErrorField:      "Order changed since it was read, reload and retry",
		StatusCodeField: http.StatusConflict,
	}
	ErrOrderClosed = &DetailedError{
		IDField:         "ORDER_CLOSED",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Order is in a terminal status and cannot change",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
	ErrOrderQuoteRequired = &DetailedError{
		IDField:         "ORDER_QUOTE_REQUIRED",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "A quote amount and expiry are required to quote an order",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/***************************************
*       Order entities and types       *
***************************************/

type OrderStatus string

const (
	OrderStatusRequested    OrderStatus = "requested"
	OrderStatusQuoted       OrderStatus = "quoted"
	OrderStatusExpired      OrderStatus = "expired"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusCompleted    OrderStatus = "completed"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusDelivered    OrderStatus = "delivered"
	OrderStatusCanceled     OrderStatus = "canceled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusRequested, OrderStatusQuoted, OrderStatusExpired,
		OrderStatusConfirmed, OrderStatusInProduction, OrderStatusCompleted,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// Order is a made-to-order job. Its status is never stored, it is derived
// from the lifecycle timestamps below (unix millis, zero means unset).
type Order struct {
	SQLModel
	CustomerID  string  `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	ProductID   string  `json:"product_id" gorm:"type:varchar(36);index"`
	Title       string  `json:"title" gorm:"type:varchar(255);not null"`
	Description string  `json:"description" gorm:"type:text"`
	Quantity    int     `json:"quantity" gorm:"not null;default:1"`
	QuoteAmount float64 `json:"quote_amount"`
	Currency    string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	Notes       string  `json:"notes" gorm:"type:text"`
	CreatedBy   string  `json:"created_by" gorm:"type:varchar(36)"`

	QuotedAt            int64 `json:"quoted_at" gorm:"default:0"`
	QuoteExpiresAt      int64 `json:"quote_expires_at" gorm:"default:0"`
	ConfirmedAt         int64 `json:"confirmed_at" gorm:"default:0"`
	ProductionStartedAt int64 `json:"production_started_at" gorm:"default:0"`
	CompletedAt         int64 `json:"completed_at" gorm:"default:0"`
	ShippedAt           int64 `json:"shipped_at" gorm:"default:0"`
	DeliveredAt         int64 `json:"delivered_at" gorm:"default:0"`
	CanceledAt          int64 `json:"canceled_at" gorm:"default:0"`
}

// CalculateStatus derives the order status at the given instant. Timestamps
// are checked from most to least advanced so a fully stamped order resolves
// to its furthest stage. A quoted order whose quote expiry has passed reads
// as expired without any write.
func (o *Order) CalculateStatus(now int64) OrderStatus {
	switch {
	case o.CanceledAt != 0:
		return OrderStatusCanceled
	case o.DeliveredAt != 0:
		return OrderStatusDelivered
	case o.ShippedAt != 0:
		return OrderStatusShipped
	case o.CompletedAt != 0:
		return OrderStatusCompleted
	case o.ProductionStartedAt != 0:
		return OrderStatusInProduction
	case o.ConfirmedAt != 0:
		return OrderStatusConfirmed
	case o.QuotedAt != 0:
		if o.QuoteExpiresAt != 0 && now >= o.QuoteExpiresAt {
			return OrderStatusExpired
		}
		return OrderStatusQuoted
	default:
		return OrderStatusRequested
	}
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusRequested:    {OrderStatusQuoted},
	OrderStatusQuoted:       {OrderStatusConfirmed, OrderStatusExpired},
	OrderStatusExpired:      {OrderStatusQuoted},
	OrderStatusConfirmed:    {OrderStatusInProduction},
	OrderStatusInProduction: {OrderStatusCompleted},
	OrderStatusCompleted:    {OrderStatusShipped},
	OrderStatusShipped:      {OrderStatusDelivered},
}

// CanTransitionOrder reports whether from may move to to. Every non-terminal
// status may cancel.
func CanTransitionOrder(from, to OrderStatus) bool {
	if to == OrderStatusCanceled {
		return !from.IsTerminal()
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextOrderStatuses lists the statuses reachable from from, cancel included.
func NextOrderStatuses(from OrderStatus) []OrderStatus {
	next := append([]OrderStatus(nil), orderTransitions[from]...)
	if !from.IsTerminal() {
		next = append(next, OrderStatusCanceled)
	}
	return next
}

// OrderTransitionFields returns the column updates that move an order into
// the target status at the given instant. quoteExpiresAt is only consulted
// for transitions into quoted.
func OrderTransitionFields(to OrderStatus, now int64, quoteExpiresAt int64) (map[string]interface{}, error) {
	switch to {
	case OrderStatusQuoted:
		if quoteExpiresAt <= now {
			return nil, ErrOrderQuoteRequired.WithReason("quote expiry must be in the future")
		}
		return map[string]interface{}{
			"quoted_at":        now,
			"quote_expires_at": quoteExpiresAt,
		}, nil
	case OrderStatusExpired:
		// Force the stored expiry into the past so the derived status
		// stays expired even if it was stamped with a later deadline.
		return map[string]interface{}{"quote_expires_at": now}, nil
	case OrderStatusConfirmed:
		return map[string]interface{}{"confirmed_at": now}, nil
	case OrderStatusInProduction:
		return map[string]interface{}{"production_started_at": now}, nil
	case OrderStatusCompleted:
		return map[string]interface{}{"completed_at": now}, nil
	case OrderStatusShipped:
		return map[string]interface{}{"shipped_at": now}, nil
	case OrderStatusDelivered:
		return map[string]interface{}{"delivered_at": now}, nil
	case OrderStatusCanceled:
		return map[string]interface{}{"canceled_at": now}, nil
	default:
		return nil, ErrOrderInvalidTransition.WithReason(fmt.Sprintf("cannot transition into %s", to))
	}
}

type OrderFilter struct {
	ID             *string  `json:"id" form:"id"`
	IDIn           []string `json:"id_in" form:"id_in"`
	CustomerID     *string  `json:"customer_id" form:"customer_id"`
	ProductID      *string  `json:"product_id" form:"product_id"`
	CreatedBy      *string  `json:"created_by" form:"created_by"`
	Status         *string  `json:"status" form:"status"`
	SearchTerm     *string  `json:"search_term" form:"search_term"`
	CreatedAtGte   *int64   `json:"created_at_gte" form:"created_at_gte"`
	CreatedAtLte   *int64   `json:"created_at_lte" form:"created_at_lte"`
	IncludeDeleted *bool    `json:"include_deleted" form:"include_deleted"`
}

/***********************************************
*       Order usecase interfaces and types      *
***********************************************/
type OrderUsecase interface {
	Create(ctx context.Context, actx *AuthContext, req *OrderCreateRequest) (*Order, error)
	FindByID(ctx context.Context, actx *AuthContext, orderID string) (*Order, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *OrderFilter, option *FindPageOption) ([]*Order, *Pagination, error)
	Update(ctx context.Context, actx *AuthContext, orderID string, req *OrderUpdateRequest) error
	Transition(ctx context.Context, actx *AuthContext, orderID string, req *OrderTransitionRequest) (*Order, error)
}

type OrderCreateRequest struct {
	CustomerID  string  `json:"customer_id" validate:"required,uuid"`
	ProductID   string  `json:"product_id" validate:"omitempty,uuid"`
	Title       string  `json:"title" validate:"required,min=2,max=255"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Currency    string  `json:"currency" validate:"omitempty,len=3"`
	Notes       string  `json:"notes"`
	CreatedBy   string  `json:"-"`
}

type OrderUpdateRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	ProductID   *string  `json:"product_id,omitempty"`
	QuoteAmount *float64 `json:"quote_amount,omitempty"`
}

type OrderTransitionRequest struct {
	// Status the caller saw when deciding to transition. Guards against
	// acting on a stale read.
	FromStatus OrderStatus `json:"from_status" validate:"required"`
	ToStatus   OrderStatus `json:"to_status" validate:"required"`

	// Quote details, required when transitioning into quoted.
	QuoteAmount    *float64 `json:"quote_amount,omitempty"`
	QuoteExpiresAt *int64   `json:"quote_expires_at,omitempty"`
}
