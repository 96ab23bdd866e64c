package repository

import (
	"context"

	"gorm.io/gorm"

	"atelier-backend/database"
	"atelier-backend/domain"
)

type ProductRepository struct {
	sqlHandler *database.SQLHandler[domain.Product, domain.ProductFilter]
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	sqlHandler := database.NewSQLHandler[domain.Product](db, applyFilter)
	return &ProductRepository{
		sqlHandler: sqlHandler,
	}
}

func applyFilter(qb *gorm.DB, filter *domain.ProductFilter) *gorm.DB {
	if filter == nil {
		return qb
	}

	if filter.ID != nil {
		qb = qb.Where("id = ?", *filter.ID)
	}
	if len(filter.IDIn) > 0 {
		qb = qb.Where("id IN (?)", filter.IDIn)
	}
	if filter.SKU != nil {
		qb = qb.Where("sku = ?", *filter.SKU)
	}
	if filter.Status != nil {
		qb = qb.Where("status = ?", *filter.Status)
	}
	if filter.PriceGte != nil {
		qb = qb.Where("base_price >= ?", *filter.PriceGte)
	}
	if filter.PriceLte != nil {
		qb = qb.Where("base_price <= ?", *filter.PriceLte)
	}
	if filter.SearchTerm != nil {
		qb = database.ApplySearch(qb, *filter.SearchTerm, "sku", "name", "description")
	}
	if filter.IncludeDeleted == nil || !*filter.IncludeDeleted {
		qb = qb.Where("deleted_at = 0")
	}

	return qb
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.sqlHandler.Create(ctx, product)
}

func (r *ProductRepository) FindByID(ctx context.Context, productID string, option *domain.FindOneOption) (*domain.Product, error) {
	return r.sqlHandler.FindByID(ctx, productID, option)
}

func (r *ProductRepository) FindOne(ctx context.Context, filter *domain.ProductFilter, option *domain.FindOneOption) (*domain.Product, error) {
	return r.sqlHandler.FindOne(ctx, filter, option)
}

func (r *ProductRepository) FindPage(ctx context.Context, filter *domain.ProductFilter, option *domain.FindPageOption) ([]*domain.Product, *domain.Pagination, error) {
	return r.sqlHandler.FindPage(ctx, filter, option)
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.sqlHandler.Update(ctx, product)
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	return r.sqlHandler.DeleteByID(ctx, productID)
}

func (r *ProductRepository) Count(ctx context.Context, filter *domain.ProductFilter) (int64, error) {
	return r.sqlHandler.Count(ctx, filter)
}
