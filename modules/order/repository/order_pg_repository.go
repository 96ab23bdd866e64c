package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"atelier-backend/database"
	"atelier-backend/domain"
)

type OrderRepository struct {
	sqlHandler *database.SQLHandler[domain.Order, domain.OrderFilter]
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	sqlHandler := database.NewSQLHandler[domain.Order](db, applyFilter)
	return &OrderRepository{
		sqlHandler: sqlHandler,
	}
}

func applyFilter(qb *gorm.DB, filter *domain.OrderFilter) *gorm.DB {
	if filter == nil {
		return qb
	}

	if filter.ID != nil {
		qb = qb.Where("id = ?", *filter.ID)
	}
	if len(filter.IDIn) > 0 {
		qb = qb.Where("id IN (?)", filter.IDIn)
	}
	if filter.CustomerID != nil {
		qb = qb.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProductID != nil {
		qb = qb.Where("product_id = ?", *filter.ProductID)
	}
	if filter.CreatedBy != nil {
		qb = qb.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.CreatedAtGte != nil {
		qb = qb.Where("created_at >= ?", *filter.CreatedAtGte)
	}
	if filter.CreatedAtLte != nil {
		qb = qb.Where("created_at <= ?", *filter.CreatedAtLte)
	}
	if filter.Status != nil {
		qb = whereStatus(qb, domain.OrderStatus(*filter.Status))
	}
	if filter.SearchTerm != nil {
		qb = database.ApplySearch(qb, *filter.SearchTerm, "title", "description", "notes")
	}
	if filter.IncludeDeleted == nil || !*filter.IncludeDeleted {
		qb = qb.Where("deleted_at = 0")
	}

	return qb
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.sqlHandler.Create(ctx, order)
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID string, option *domain.FindOneOption) (*domain.Order, error) {
	return r.sqlHandler.FindByID(ctx, orderID, option)
}

func (r *OrderRepository) FindOne(ctx context.Context, filter *domain.OrderFilter, option *domain.FindOneOption) (*domain.Order, error) {
	return r.sqlHandler.FindOne(ctx, filter, option)
}

func (r *OrderRepository) FindPage(ctx context.Context, filter *domain.OrderFilter, option *domain.FindPageOption) ([]*domain.Order, *domain.Pagination, error) {
	return r.sqlHandler.FindPage(ctx, filter, option)
}

func (r *OrderRepository) UpdateFields(ctx context.Context, orderID string, fields map[string]any) error {
	return r.sqlHandler.UpdateFields(ctx, orderID, fields)
}

func (r *OrderRepository) Count(ctx context.Context, filter *domain.OrderFilter) (int64, error) {
	return r.sqlHandler.Count(ctx, filter)
}

// Transition writes the stamp fields only while the row's derived status
// still equals fromStatus. The predicate reconstructs the status derivation
// in SQL, so two racing transitions cannot both pass validation against the
// same snapshot: the second write matches zero rows.
func (r *OrderRepository) Transition(ctx context.Context, orderID string, fields map[string]any, fromStatus domain.OrderStatus, now int64) (int64, error) {
	conds, ok := statusPredicate(fromStatus, now)
	if !ok {
		return 0, domain.ErrOrderInvalidTransition.WithReasonf("no order can leave status %s", fromStatus)
	}
	return r.sqlHandler.UpdateFieldsWhere(ctx, orderID, fields, conds...)
}

// whereStatus narrows a query to rows whose derived status matches at the
// time of the query. Terminal statuses are matched by their stamps directly,
// the rest reuse the transition predicate.
func whereStatus(qb *gorm.DB, status domain.OrderStatus) *gorm.DB {
	switch status {
	case domain.OrderStatusCanceled:
		return qb.Where("canceled_at <> 0")
	case domain.OrderStatusDelivered:
		return qb.Where("canceled_at = 0 AND delivered_at <> 0")
	}
	conds, ok := statusPredicate(status, time.Now().UnixMilli())
	if !ok {
		return qb
	}
	for _, cond := range conds {
		qb = qb.Where(cond.Query, cond.Args...)
	}
	return qb
}

// statusPredicate translates a derived status into the SQL conditions an
// order row must satisfy to currently be in it. Terminal statuses have no
// predicate, nothing transitions out of them.
func statusPredicate(status domain.OrderStatus, now int64) ([]database.Cond, bool) {
	notReached := func(columns ...string) []database.Cond {
		conds := make([]database.Cond, 0, len(columns)+1)
		conds = append(conds, database.Where("canceled_at = 0"))
		for _, column := range columns {
			conds = append(conds, database.Where(column+" = 0"))
		}
		return conds
	}

	switch status {
	case domain.OrderStatusRequested:
		return notReached("delivered_at", "shipped_at", "completed_at",
			"production_started_at", "confirmed_at", "quoted_at"), true
	case domain.OrderStatusQuoted:
		conds := notReached("delivered_at", "shipped_at", "completed_at",
			"production_started_at", "confirmed_at")
		return append(conds,
			database.Where("quoted_at <> 0"),
			database.Where("(quote_expires_at = 0 OR quote_expires_at > ?)", now),
		), true
	case domain.OrderStatusExpired:
		conds := notReached("delivered_at", "shipped_at", "completed_at",
			"production_started_at", "confirmed_at")
		return append(conds,
			database.Where("quoted_at <> 0"),
			database.Where("quote_expires_at <> 0 AND quote_expires_at <= ?", now),
		), true
	case domain.OrderStatusConfirmed:
		conds := notReached("delivered_at", "shipped_at", "completed_at", "production_started_at")
		return append(conds, database.Where("confirmed_at <> 0")), true
	case domain.OrderStatusInProduction:
		conds := notReached("delivered_at", "shipped_at", "completed_at")
		return append(conds, database.Where("production_started_at <> 0")), true
	case domain.OrderStatusCompleted:
		conds := notReached("delivered_at", "shipped_at")
		return append(conds, database.Where("completed_at <> 0")), true
	case domain.OrderStatusShipped:
		conds := notReached("delivered_at")
		return append(conds, database.Where("shipped_at <> 0")), true
	default:
		return nil, false
	}
}
