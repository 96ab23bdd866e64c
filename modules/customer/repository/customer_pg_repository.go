package repository

import (
	"context"

	"gorm.io/gorm"

	"atelier-backend/database"
	"atelier-backend/domain"
)

type CustomerRepository struct {
	sqlHandler *database.SQLHandler[domain.Customer, domain.CustomerFilter]
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	sqlHandler := database.NewSQLHandler[domain.Customer](db, applyFilter)
	return &CustomerRepository{
		sqlHandler: sqlHandler,
	}
}

func applyFilter(qb *gorm.DB, filter *domain.CustomerFilter) *gorm.DB {
	if filter == nil {
		return qb
	}

	if filter.ID != nil {
		qb = qb.Where("id = ?", *filter.ID)
	}
	if len(filter.IDIn) > 0 {
		qb = qb.Where("id IN (?)", filter.IDIn)
	}
	if filter.Email != nil {
		qb = qb.Where("email = ?", *filter.Email)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if filter.SearchTerm != nil {
		qb = database.ApplySearch(qb, *filter.SearchTerm, "email", "company_name", "contact_name", "phone")
	}
	if filter.IncludeDeleted == nil || !*filter.IncludeDeleted {
		qb = qb.Where("deleted_at = 0")
	}

	return qb
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.sqlHandler.Create(ctx, customer)
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID string, option *domain.FindOneOption) (*domain.Customer, error) {
	return r.sqlHandler.FindByID(ctx, customerID, option)
}

func (r *CustomerRepository) FindOne(ctx context.Context, filter *domain.CustomerFilter, option *domain.FindOneOption) (*domain.Customer, error) {
	return r.sqlHandler.FindOne(ctx, filter, option)
}

func (r *CustomerRepository) FindPage(ctx context.Context, filter *domain.CustomerFilter, option *domain.FindPageOption) ([]*domain.Customer, *domain.Pagination, error) {
	return r.sqlHandler.FindPage(ctx, filter, option)
}

func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.sqlHandler.Update(ctx, customer)
}

func (r *CustomerRepository) UpdateFields(ctx context.Context, customerID string, fields map[string]any) error {
	return r.sqlHandler.UpdateFields(ctx, customerID, fields)
}

func (r *CustomerRepository) UpdatePassword(ctx context.Context, customerID string, newPassword string) error {
	return r.sqlHandler.UpdateFields(ctx, customerID, map[string]any{
		"password": newPassword,
	})
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID string) error {
	return r.sqlHandler.DeleteByID(ctx, customerID)
}

func (r *CustomerRepository) Count(ctx context.Context, filter *domain.CustomerFilter) (int64, error) {
	return r.sqlHandler.Count(ctx, filter)
}
