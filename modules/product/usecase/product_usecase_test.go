package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
)

type fakeProductRepo struct {
	byID       map[string]*domain.Product
	lastFilter *domain.ProductFilter
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &fakeProductRepo{byID: byID}
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = "prod-new"
	}
	f.byID[product.ID] = product
	return nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, productID string, _ *domain.FindOneOption) (*domain.Product, error) {
	product, ok := f.byID[productID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *product
	return &clone, nil
}

func (f *fakeProductRepo) FindOne(_ context.Context, filter *domain.ProductFilter, _ *domain.FindOneOption) (*domain.Product, error) {
	for _, p := range f.byID {
		if filter != nil && filter.SKU != nil && p.SKU == *filter.SKU {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (f *fakeProductRepo) FindPage(_ context.Context, filter *domain.ProductFilter, _ *domain.FindPageOption) ([]*domain.Product, *domain.Pagination, error) {
	f.lastFilter = filter
	var out []*domain.Product
	for _, p := range f.byID {
		if filter != nil && filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, domain.NewPagination(1, 10, int64(len(out))), nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	f.byID[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, productID string) error {
	delete(f.byID, productID)
	return nil
}

type fakeOrderCounter struct {
	count int64
}

func (f *fakeOrderCounter) Count(_ context.Context, _ *domain.OrderFilter) (int64, error) {
	return f.count, nil
}

func catalogProduct(id, sku string, status domain.ProductStatus) *domain.Product {
	p := &domain.Product{
		SKU:    sku,
		Name:   "Product " + sku,
		Status: status,
	}
	p.ID = id
	return p
}

func staffProductContext(actions ...domain.Action) *domain.AuthContext {
	perms := make([]domain.Permission, 0, len(actions))
	for _, a := range actions {
		perms = append(perms, domain.NewPermission(domain.ResourceProducts, a))
	}
	return domain.NewStaffContext("staff-1", "manager", perms)
}

func TestProductGuardScoping(t *testing.T) {
	guard := newProductGuard()

	t.Run("customer filter is forced to active", func(t *testing.T) {
		f := guard.ScopeFilter(domain.NewCustomerContext("cust-1"), nil)
		require.NotNil(t, f)
		require.NotNil(t, f.Status)
		assert.Equal(t, string(domain.ProductSTTActive), *f.Status)
	})

	t.Run("customer cannot pick another status", func(t *testing.T) {
		draft := string(domain.ProductSTTDraft)
		f := guard.ScopeFilter(domain.NewCustomerContext("cust-1"), &domain.ProductFilter{Status: &draft})
		require.NotNil(t, f.Status)
		assert.Equal(t, string(domain.ProductSTTActive), *f.Status)
	})

	t.Run("staff filter passes through", func(t *testing.T) {
		assert.Nil(t, guard.ScopeFilter(staffProductContext(domain.ActionRead), nil))
	})
}

func TestProductFindPage(t *testing.T) {
	repo := newFakeProductRepo(
		catalogProduct("prod-1", "SKU-1", domain.ProductSTTActive),
		catalogProduct("prod-2", "SKU-2", domain.ProductSTTDraft),
	)
	u := NewProductUsecase(repo, &fakeOrderCounter{})

	t.Run("customer only sees active items", func(t *testing.T) {
		products, _, err := u.FindPage(context.Background(), domain.NewCustomerContext("cust-1"), nil, nil)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "SKU-1", products[0].SKU)
	})

	t.Run("staff sees everything", func(t *testing.T) {
		products, _, err := u.FindPage(context.Background(), staffProductContext(domain.ActionRead), nil, nil)
		require.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Nil(t, repo.lastFilter)
	})
}

func TestProductFindByID(t *testing.T) {
	repo := newFakeProductRepo(
		catalogProduct("prod-1", "SKU-1", domain.ProductSTTActive),
		catalogProduct("prod-2", "SKU-2", domain.ProductSTTDraft),
	)
	u := NewProductUsecase(repo, &fakeOrderCounter{})

	t.Run("drafts stay hidden from customers", func(t *testing.T) {
		_, err := u.FindByID(context.Background(), domain.NewCustomerContext("cust-1"), "prod-2")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("staff can load a draft", func(t *testing.T) {
		product, err := u.FindByID(context.Background(), staffProductContext(domain.ActionRead), "prod-2")
		require.NoError(t, err)
		assert.Equal(t, domain.ProductSTTDraft, product.Status)
	})
}

func TestProductWritesAreStaffOnly(t *testing.T) {
	repo := newFakeProductRepo(catalogProduct("prod-1", "SKU-1", domain.ProductSTTActive))
	u := NewProductUsecase(repo, &fakeOrderCounter{})
	customer := domain.NewCustomerContext("cust-1")

	_, err := u.Create(context.Background(), customer, &domain.ProductCreateRequest{SKU: "SKU-9", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	err = u.Delete(context.Background(), customer, "prod-1")
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestProductDeleteBlockedWhenReferenced(t *testing.T) {
	repo := newFakeProductRepo(catalogProduct("prod-1", "SKU-1", domain.ProductSTTActive))
	u := NewProductUsecase(repo, &fakeOrderCounter{count: 3})

	err := u.Delete(context.Background(), staffProductContext(domain.ActionDelete), "prod-1")
	assert.ErrorIs(t, err, domain.ErrBusinessRuleViolation)
}
