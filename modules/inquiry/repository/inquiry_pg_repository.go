package repository

import (
	"context"

	"gorm.io/gorm"

	"atelier-backend/database"
	"atelier-backend/domain"
)

type InquiryRepository struct {
	sqlHandler *database.SQLHandler[domain.Inquiry, domain.InquiryFilter]
}

func NewInquiryRepository(db *gorm.DB) *InquiryRepository {
	sqlHandler := database.NewSQLHandler[domain.Inquiry](db, applyFilter)
	return &InquiryRepository{
		sqlHandler: sqlHandler,
	}
}

func applyFilter(qb *gorm.DB, filter *domain.InquiryFilter) *gorm.DB {
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
	if filter.AssigneeID != nil {
		qb = qb.Where("assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", int(*filter.Status))
	}
	if filter.CreatedAtGte != nil {
		qb = qb.Where("created_at >= ?", *filter.CreatedAtGte)
	}
	if filter.CreatedAtLte != nil {
		qb = qb.Where("created_at <= ?", *filter.CreatedAtLte)
	}
	if filter.SearchTerm != nil {
		qb = database.ApplySearch(qb, *filter.SearchTerm, "subject", "body", "contact_name", "contact_email")
	}
	if filter.IncludeDeleted == nil || !*filter.IncludeDeleted {
		qb = qb.Where("deleted_at = 0")
	}

	return qb
}

func (r *InquiryRepository) Create(ctx context.Context, inquiry *domain.Inquiry) error {
	return r.sqlHandler.Create(ctx, inquiry)
}

func (r *InquiryRepository) FindByID(ctx context.Context, inquiryID string, option *domain.FindOneOption) (*domain.Inquiry, error) {
	return r.sqlHandler.FindByID(ctx, inquiryID, option)
}

func (r *InquiryRepository) FindPage(ctx context.Context, filter *domain.InquiryFilter, option *domain.FindPageOption) ([]*domain.Inquiry, *domain.Pagination, error) {
	return r.sqlHandler.FindPage(ctx, filter, option)
}

func (r *InquiryRepository) UpdateFields(ctx context.Context, inquiryID string, fields map[string]any) error {
	return r.sqlHandler.UpdateFields(ctx, inquiryID, fields)
}

// Transition writes the status change and its timestamp in one statement,
// guarded by the stored status still being fromStatus. Zero affected rows
// means a concurrent transition won.
func (r *InquiryRepository) Transition(ctx context.Context, inquiryID string, fields map[string]any, fromStatus domain.InquiryStatus) (int64, error) {
	return r.sqlHandler.UpdateFieldsWhere(ctx, inquiryID, fields,
		database.Where("status = ?", int(fromStatus)),
	)
}

// DeleteWhileNew soft-deletes the inquiry only if it is still untouched.
func (r *InquiryRepository) DeleteWhileNew(ctx context.Context, inquiryID string, now int64) (int64, error) {
	return r.sqlHandler.UpdateFieldsWhere(ctx, inquiryID,
		map[string]any{"deleted_at": now},
		database.Where("status = ?", int(domain.InquiryStatusNew)),
	)
}

func (r *InquiryRepository) Count(ctx context.Context, filter *domain.InquiryFilter) (int64, error) {
	return r.sqlHandler.Count(ctx, filter)
}
