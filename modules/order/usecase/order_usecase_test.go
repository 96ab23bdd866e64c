package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
)

type fakeOrderRepo struct {
	byID map[string]*domain.Order

	// forcedRows overrides the affected-row count Transition reports, to
	// simulate a concurrent writer landing first.
	forcedRows  *int64
	transitions int
}

func newFakeOrderRepo(orders ...*domain.Order) *fakeOrderRepo {
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return &fakeOrderRepo{byID: byID}
}

func (f *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = "ord-new"
	}
	f.byID[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, orderID string, _ *domain.FindOneOption) (*domain.Order, error) {
	order, ok := f.byID[orderID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (f *fakeOrderRepo) FindPage(_ context.Context, filter *domain.OrderFilter, _ *domain.FindPageOption) ([]*domain.Order, *domain.Pagination, error) {
	var out []*domain.Order
	for _, o := range f.byID {
		if filter != nil && filter.CustomerID != nil && o.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, o)
	}
	return out, domain.NewPagination(1, 10, int64(len(out))), nil
}

func (f *fakeOrderRepo) UpdateFields(_ context.Context, orderID string, fields map[string]any) error {
	return applyOrderFields(f.byID[orderID], fields)
}

func (f *fakeOrderRepo) Transition(_ context.Context, orderID string, fields map[string]any, fromStatus domain.OrderStatus, now int64) (int64, error) {
	f.transitions++
	if f.forcedRows != nil {
		return *f.forcedRows, nil
	}
	order, ok := f.byID[orderID]
	if !ok || order.CalculateStatus(now) != fromStatus {
		return 0, nil
	}
	if err := applyOrderFields(order, fields); err != nil {
		return 0, err
	}
	return 1, nil
}

func applyOrderFields(order *domain.Order, fields map[string]any) error {
	for column, value := range fields {
		switch column {
		case "quoted_at":
			order.QuotedAt = value.(int64)
		case "quote_expires_at":
			order.QuoteExpiresAt = value.(int64)
		case "quote_amount":
			order.QuoteAmount = value.(float64)
		case "confirmed_at":
			order.ConfirmedAt = value.(int64)
		case "production_started_at":
			order.ProductionStartedAt = value.(int64)
		case "completed_at":
			order.CompletedAt = value.(int64)
		case "shipped_at":
			order.ShippedAt = value.(int64)
		case "delivered_at":
			order.DeliveredAt = value.(int64)
		case "canceled_at":
			order.CanceledAt = value.(int64)
		case "title":
			order.Title = value.(string)
		case "notes":
			order.Notes = value.(string)
		case "quantity":
			order.Quantity = value.(int)
		}
	}
	return nil
}

type fakeCustomerFinder struct {
	customers map[string]*domain.Customer
}

func (f *fakeCustomerFinder) FindByID(_ context.Context, customerID string, _ *domain.FindOneOption) (*domain.Customer, error) {
	c, ok := f.customers[customerID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return c, nil
}

type fakeProductFinder struct {
	products map[string]*domain.Product
}

func (f *fakeProductFinder) FindByID(_ context.Context, productID string, _ *domain.FindOneOption) (*domain.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return p, nil
}

func activeCustomer(id string) *domain.Customer {
	return &domain.Customer{
		SQLModel: domain.SQLModel{ID: id},
		Status:   domain.CustomerSTTActive,
	}
}

func newTestOrderUsecase(repo *fakeOrderRepo, customerIDs ...string) *orderUsecase {
	customers := map[string]*domain.Customer{}
	for _, id := range customerIDs {
		customers[id] = activeCustomer(id)
	}
	uc := NewOrderUsecase(repo, &fakeCustomerFinder{customers: customers}, &fakeProductFinder{}).(*orderUsecase)
	return uc
}

func staffWith(perms ...domain.Permission) *domain.AuthContext {
	return domain.NewStaffContext("staff-1", domain.RoleStaff, perms)
}

func ordersUpdate() domain.Permission {
	return domain.NewPermission(domain.ResourceOrders, domain.ActionUpdate)
}

func TestOrderTransition_RequestedToQuoted(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:   domain.SQLModel{ID: "ord-1"},
		CustomerID: "cust-1",
	})
	uc := newTestOrderUsecase(repo)

	amount := 1500.0
	expiry := time.Now().UnixMilli() + 72*3600_000
	order, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus:     domain.OrderStatusRequested,
		ToStatus:       domain.OrderStatusQuoted,
		QuoteAmount:    &amount,
		QuoteExpiresAt: &expiry,
	})
	require.NoError(t, err)
	assert.NotZero(t, order.QuotedAt)
	assert.Equal(t, expiry, order.QuoteExpiresAt)
	assert.Equal(t, amount, order.QuoteAmount)
	assert.Equal(t, domain.OrderStatusQuoted, order.CalculateStatus(time.Now().UnixMilli()))
}

func TestOrderTransition_QuoteDetailsRequired(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:   domain.SQLModel{ID: "ord-1"},
		CustomerID: "cust-1",
	})
	uc := newTestOrderUsecase(repo)

	_, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus: domain.OrderStatusRequested,
		ToStatus:   domain.OrderStatusQuoted,
	})
	assert.ErrorIs(t, err, domain.ErrOrderQuoteRequired)
}

func TestOrderTransition_StaleFromStatus(t *testing.T) {
	now := time.Now().UnixMilli()
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:    domain.SQLModel{ID: "ord-1"},
		CustomerID:  "cust-1",
		QuotedAt:    now - 1000,
		ConfirmedAt: now - 500,
	})
	uc := newTestOrderUsecase(repo)

	// The caller believes the order is still quoted, it is confirmed.
	_, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus: domain.OrderStatusQuoted,
		ToStatus:   domain.OrderStatusConfirmed,
	})
	assert.ErrorIs(t, err, domain.ErrOrderStaleTransition)
	assert.Zero(t, repo.transitions, "no write may be attempted on a stale assertion")
}

func TestOrderTransition_RaceLosesCleanly(t *testing.T) {
	now := time.Now().UnixMilli()
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:       domain.SQLModel{ID: "ord-1"},
		CustomerID:     "cust-1",
		QuotedAt:       now - 1000,
		QuoteExpiresAt: now + 3600_000,
	})
	// The in-memory check passes but the conditional write reports zero
	// rows, as when a concurrent transition landed in between.
	var zero int64
	repo.forcedRows = &zero
	uc := newTestOrderUsecase(repo)

	_, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus: domain.OrderStatusQuoted,
		ToStatus:   domain.OrderStatusConfirmed,
	})
	assert.ErrorIs(t, err, domain.ErrOrderStaleTransition)
}

func TestOrderTransition_InvalidEdge(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:   domain.SQLModel{ID: "ord-1"},
		CustomerID: "cust-1",
	})
	uc := newTestOrderUsecase(repo)

	_, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus: domain.OrderStatusRequested,
		ToStatus:   domain.OrderStatusDelivered,
	})
	assert.ErrorIs(t, err, domain.ErrOrderInvalidTransition)
}

func TestOrderTransition_UniversalCancel(t *testing.T) {
	now := time.Now().UnixMilli()
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:       domain.SQLModel{ID: "ord-1"},
		CustomerID:     "cust-1",
		QuotedAt:       now - 1000,
		QuoteExpiresAt: now + 3600_000,
	})
	uc := newTestOrderUsecase(repo)

	// canceled is not in quoted's adjacency list, cancellation is allowed
	// from every non-terminal status anyway.
	order, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus: domain.OrderStatusQuoted,
		ToStatus:   domain.OrderStatusCanceled,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCanceled, order.CalculateStatus(now))
}

func TestOrderTransition_ExpiredRequote(t *testing.T) {
	now := time.Now().UnixMilli()
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:       domain.SQLModel{ID: "ord-1"},
		CustomerID:     "cust-1",
		QuotedAt:       now - 120_000,
		QuoteExpiresAt: now - 1000,
	})
	uc := newTestOrderUsecase(repo)

	amount := 1800.0
	expiry := now + 48*3600_000
	order, err := uc.Transition(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderTransitionRequest{
		FromStatus:     domain.OrderStatusExpired,
		ToStatus:       domain.OrderStatusQuoted,
		QuoteAmount:    &amount,
		QuoteExpiresAt: &expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusQuoted, order.CalculateStatus(now))
}

func TestOrderTransition_Authorization(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:   domain.SQLModel{ID: "ord-1"},
		CustomerID: "cust-1",
	})
	uc := newTestOrderUsecase(repo)

	req := &domain.OrderTransitionRequest{
		FromStatus: domain.OrderStatusRequested,
		ToStatus:   domain.OrderStatusCanceled,
	}

	t.Run("staff without orders update is denied", func(t *testing.T) {
		_, err := uc.Transition(context.Background(), staffWith(
			domain.NewPermission(domain.ResourceOrders, domain.ActionRead),
		), "ord-1", req)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
		assert.Zero(t, repo.transitions)
	})

	t.Run("customers cannot transition even their own orders", func(t *testing.T) {
		_, err := uc.Transition(context.Background(), domain.NewCustomerContext("cust-1"), "ord-1", req)
		assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}

func TestOrderFindByID_Ownership(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:   domain.SQLModel{ID: "ord-1"},
		CustomerID: "cust-2",
	})
	uc := newTestOrderUsecase(repo)

	order, err := uc.FindByID(context.Background(), domain.NewCustomerContext("cust-1"), "ord-1")
	assert.ErrorIs(t, err, domain.ErrOwnershipViolation)
	assert.Nil(t, order)

	order, err = uc.FindByID(context.Background(), domain.NewCustomerContext("cust-2"), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
}

func TestOrderFindPage_CustomerScoping(t *testing.T) {
	repo := newFakeOrderRepo(
		&domain.Order{SQLModel: domain.SQLModel{ID: "ord-1"}, CustomerID: "cust-1"},
		&domain.Order{SQLModel: domain.SQLModel{ID: "ord-2"}, CustomerID: "cust-2"},
	)
	uc := newTestOrderUsecase(repo)

	orders, _, err := uc.FindPage(context.Background(), domain.NewCustomerContext("cust-1"), nil, nil)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ord-1", orders[0].ID)
}

func TestOrderCreate(t *testing.T) {
	t.Run("customer orders are pinned to the caller", func(t *testing.T) {
		repo := newFakeOrderRepo()
		uc := newTestOrderUsecase(repo, "cust-1")

		order, err := uc.Create(context.Background(), domain.NewCustomerContext("cust-1"), &domain.OrderCreateRequest{
			CustomerID: "cust-2",
			Title:      "Walnut dining table",
			Quantity:   1,
		})
		require.NoError(t, err)
		assert.Equal(t, "cust-1", order.CustomerID)
	})

	t.Run("staff must name an existing customer", func(t *testing.T) {
		repo := newFakeOrderRepo()
		uc := newTestOrderUsecase(repo, "cust-1")

		_, err := uc.Create(context.Background(), staffWith(
			domain.NewPermission(domain.ResourceOrders, domain.ActionCreate),
		), &domain.OrderCreateRequest{
			CustomerID: "cust-missing",
			Title:      "Walnut dining table",
			Quantity:   1,
		})
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func TestOrderUpdate_TerminalOrderIsFrozen(t *testing.T) {
	repo := newFakeOrderRepo(&domain.Order{
		SQLModel:   domain.SQLModel{ID: "ord-1"},
		CustomerID: "cust-1",
		CanceledAt: time.Now().UnixMilli(),
	})
	uc := newTestOrderUsecase(repo)

	title := "new title"
	err := uc.Update(context.Background(), staffWith(ordersUpdate()), "ord-1", &domain.OrderUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, domain.ErrOrderClosed)
}
