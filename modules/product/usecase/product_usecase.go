package usecase

import (
	"context"
	"errors"

	"atelier-backend/authz"
	"atelier-backend/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, productID string, option *domain.FindOneOption) (*domain.Product, error)
	FindOne(ctx context.Context, filter *domain.ProductFilter, option *domain.FindOneOption) (*domain.Product, error)
	FindPage(ctx context.Context, filter *domain.ProductFilter, option *domain.FindPageOption) ([]*domain.Product, *domain.Pagination, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, productID string) error
}

type OrderCounter interface {
	Count(ctx context.Context, filter *domain.OrderFilter) (int64, error)
}

type productUsecase struct {
	repo   ProductRepository
	orders OrderCounter
	guard  *authz.Guard[domain.Product, domain.ProductFilter]
}

func newProductGuard() *authz.Guard[domain.Product, domain.ProductFilter] {
	activeOnly := string(domain.ProductSTTActive)
	return authz.NewGuard[domain.Product, domain.ProductFilter](
		authz.Policy{
			Resource: domain.ResourceProducts,
			// Customers browse the catalog but only see active items.
			CustomerActions: map[domain.Action]authz.Decision{
				domain.ActionRead: authz.Allow(),
			},
		},
		// Products have no owner, customer reads are scoped by status
		// instead.
		nil,
		func(actx *domain.AuthContext, f *domain.ProductFilter) *domain.ProductFilter {
			if f == nil {
				f = &domain.ProductFilter{}
			}
			f.Status = &activeOnly
			return f
		},
	)
}

func NewProductUsecase(repo ProductRepository, orders OrderCounter) domain.ProductUsecase {
	return &productUsecase{
		repo:   repo,
		orders: orders,
		guard:  newProductGuard(),
	}
}

func (u *productUsecase) Create(ctx context.Context, actx *domain.AuthContext, req *domain.ProductCreateRequest) (*domain.Product, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionCreate); err != nil {
		return nil, err
	}

	existing, err := u.repo.FindOne(ctx, &domain.ProductFilter{SKU: &req.SKU}, nil)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrProductSKUTaken
	}

	product := &domain.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Currency:    req.Currency,
		Unit:        req.Unit,
		LeadTimeDay: req.LeadTimeDay,
		Status:      domain.ProductSTTDraft,
		Attributes:  req.Attributes,
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}
	if product.Unit == "" {
		product.Unit = "piece"
	}
	if err := u.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (u *productUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, productID string) (*domain.Product, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	product, err := u.repo.FindByID(ctx, productID, nil)
	if err != nil {
		return nil, domain.ErrProductNotFound.WithWrap(err)
	}
	// Drafts and archived items stay internal.
	if !actx.IsStaff() && !product.IsOrderable() {
		return nil, domain.ErrProductNotFound
	}
	return product, nil
}

func (u *productUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.ProductFilter, option *domain.FindPageOption) ([]*domain.Product, *domain.Pagination, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	filter = u.guard.ScopeFilter(actx, filter)
	return u.repo.FindPage(ctx, filter, option)
}

func (u *productUsecase) Update(ctx context.Context, actx *domain.AuthContext, productID string, req *domain.ProductUpdateRequest) error {
	if err := u.guard.RequireStaff(actx, domain.ActionUpdate); err != nil {
		return err
	}

	product, err := u.repo.FindByID(ctx, productID, nil)
	if err != nil {
		return domain.ErrProductNotFound.WithWrap(err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.Currency != nil {
		product.Currency = *req.Currency
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.LeadTimeDay != nil {
		product.LeadTimeDay = *req.LeadTimeDay
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if req.Attributes != nil {
		product.Attributes = req.Attributes
	}

	return u.repo.Update(ctx, product)
}

func (u *productUsecase) Delete(ctx context.Context, actx *domain.AuthContext, productID string) error {
	if err := u.guard.RequireStaff(actx, domain.ActionDelete); err != nil {
		return err
	}

	product, err := u.repo.FindByID(ctx, productID, nil)
	if err != nil {
		return domain.ErrProductNotFound.WithWrap(err)
	}

	referenced, err := u.orders.Count(ctx, &domain.OrderFilter{ProductID: &product.ID})
	if err != nil {
		return err
	}
	if referenced > 0 {
		return domain.ErrBusinessRuleViolation.
			WithReason("products referenced by orders can only be archived").
			WithDetail("orders", referenced)
	}

	return u.repo.Delete(ctx, productID)
}
