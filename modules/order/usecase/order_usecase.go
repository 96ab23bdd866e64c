package usecase

import (
	"context"

	"atelier-backend/authz"
	"atelier-backend/domain"
	"atelier-backend/pkg/utils"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, orderID string, option *domain.FindOneOption) (*domain.Order, error)
	FindPage(ctx context.Context, filter *domain.OrderFilter, option *domain.FindPageOption) ([]*domain.Order, *domain.Pagination, error)
	UpdateFields(ctx context.Context, orderID string, fields map[string]any) error
	Transition(ctx context.Context, orderID string, fields map[string]any, fromStatus domain.OrderStatus, now int64) (int64, error)
}

type CustomerFinder interface {
	FindByID(ctx context.Context, customerID string, option *domain.FindOneOption) (*domain.Customer, error)
}

type ProductFinder interface {
	FindByID(ctx context.Context, productID string, option *domain.FindOneOption) (*domain.Product, error)
}

type orderUsecase struct {
	repo      OrderRepository
	customers CustomerFinder
	products  ProductFinder
	guard     *authz.Guard[domain.Order, domain.OrderFilter]
	now       func() int64
}

func newOrderGuard() *authz.Guard[domain.Order, domain.OrderFilter] {
	return authz.NewGuard(
		authz.Policy{
			Resource: domain.ResourceOrders,
			CustomerActions: map[domain.Action]authz.Decision{
				domain.ActionCreate: authz.Allow(),
				domain.ActionRead:   authz.Allow(),
			},
		},
		func(o *domain.Order) string { return o.CustomerID },
		func(actx *domain.AuthContext, f *domain.OrderFilter) *domain.OrderFilter {
			if f == nil {
				f = &domain.OrderFilter{}
			}
			f.CustomerID = &actx.UserID
			return f
		},
	)
}

func NewOrderUsecase(repo OrderRepository, customers CustomerFinder, products ProductFinder) domain.OrderUsecase {
	return &orderUsecase{
		repo:      repo,
		customers: customers,
		products:  products,
		guard:     newOrderGuard(),
		now:       utils.NowUnixMillis,
	}
}

func (u *orderUsecase) Create(ctx context.Context, actx *domain.AuthContext, req *domain.OrderCreateRequest) (*domain.Order, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionCreate); err != nil {
		return nil, err
	}

	// Customers always order for themselves, whatever the request says.
	customerID := req.CustomerID
	if actx.IsCustomer() {
		customerID = actx.UserID
	}

	customer, err := u.customers.FindByID(ctx, customerID, nil)
	if err != nil {
		return nil, domain.ErrCustomerNotFound.WithWrap(err)
	}
	if !customer.IsActive() {
		return nil, domain.ErrCustomerInactive
	}

	if req.ProductID != "" {
		product, err := u.products.FindByID(ctx, req.ProductID, nil)
		if err != nil {
			return nil, domain.ErrProductNotFound.WithWrap(err)
		}
		if !product.IsOrderable() {
			return nil, domain.ErrProductArchived
		}
	}

	order := &domain.Order{
		CustomerID:  customerID,
		ProductID:   req.ProductID,
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Currency:    req.Currency,
		Notes:       req.Notes,
		CreatedBy:   actx.UserID,
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}
	if err := u.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (u *orderUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, orderID string) (*domain.Order, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	order, err := u.repo.FindByID(ctx, orderID, nil)
	if err != nil {
		return nil, domain.ErrOrderNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (u *orderUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.OrderFilter, option *domain.FindPageOption) ([]*domain.Order, *domain.Pagination, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	filter = u.guard.ScopeFilter(actx, filter)
	return u.repo.FindPage(ctx, filter, option)
}

func (u *orderUsecase) Update(ctx context.Context, actx *domain.AuthContext, orderID string, req *domain.OrderUpdateRequest) error {
	if err := u.guard.RequirePermission(actx, domain.ActionUpdate); err != nil {
		return err
	}

	order, err := u.repo.FindByID(ctx, orderID, nil)
	if err != nil {
		return domain.ErrOrderNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, order); err != nil {
		return err
	}
	if order.CalculateStatus(u.now()).IsTerminal() {
		return domain.ErrOrderClosed
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return domain.ErrBadRequest.WithReason("quantity must be at least 1")
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.ProductID != nil {
		fields["product_id"] = *req.ProductID
	}
	if req.QuoteAmount != nil {
		fields["quote_amount"] = *req.QuoteAmount
	}
	if len(fields) == 0 {
		return nil
	}
	return u.repo.UpdateFields(ctx, orderID, fields)
}

// Transition moves an order along its lifecycle. The caller asserts the
// status it believes the order is in; both the in-memory validation and the
// conditional write re-check that assertion, so a concurrent transition that
// lands first makes this one fail instead of silently overwriting it.
func (u *orderUsecase) Transition(ctx context.Context, actx *domain.AuthContext, orderID string, req *domain.OrderTransitionRequest) (*domain.Order, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionUpdate); err != nil {
		return nil, err
	}

	order, err := u.repo.FindByID(ctx, orderID, nil)
	if err != nil {
		return nil, domain.ErrOrderNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, order); err != nil {
		return nil, err
	}

	now := u.now()
	current := order.CalculateStatus(now)
	if current != req.FromStatus {
		return nil, domain.ErrOrderStaleTransition.
			WithReasonf("order is %s, not %s", current, req.FromStatus)
	}
	if !domain.CanTransitionOrder(req.FromStatus, req.ToStatus) {
		return nil, domain.ErrOrderInvalidTransition.
			WithReasonf("%s cannot move to %s", req.FromStatus, req.ToStatus)
	}

	var quoteExpiresAt int64
	if req.ToStatus == domain.OrderStatusQuoted {
		if req.QuoteAmount == nil || req.QuoteExpiresAt == nil {
			return nil, domain.ErrOrderQuoteRequired
		}
		quoteExpiresAt = *req.QuoteExpiresAt
	}

	fields, err := domain.OrderTransitionFields(req.ToStatus, now, quoteExpiresAt)
	if err != nil {
		return nil, err
	}
	if req.ToStatus == domain.OrderStatusQuoted {
		fields["quote_amount"] = *req.QuoteAmount
	}

	rows, err := u.repo.Transition(ctx, orderID, fields, req.FromStatus, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrOrderStaleTransition
	}

	updated, err := u.repo.FindByID(ctx, orderID, nil)
	if err != nil {
		return nil, domain.ErrOrderNotFound.WithWrap(err)
	}
	return updated, nil
}
