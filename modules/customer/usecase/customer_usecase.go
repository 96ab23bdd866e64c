package usecase

import (
	"context"
	"errors"

	"atelier-backend/authz"
	"atelier-backend/domain"
	"atelier-backend/pkg/utils"
	"atelier-backend/validator"
)

type Hasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) bool
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, customerID string, option *domain.FindOneOption) (*domain.Customer, error)
	FindOne(ctx context.Context, filter *domain.CustomerFilter, option *domain.FindOneOption) (*domain.Customer, error)
	FindPage(ctx context.Context, filter *domain.CustomerFilter, option *domain.FindPageOption) ([]*domain.Customer, *domain.Pagination, error)
	Update(ctx context.Context, customer *domain.Customer) error
	UpdatePassword(ctx context.Context, customerID string, newPassword string) error
	Delete(ctx context.Context, customerID string) error
}

// OrderCounter reports how many orders match a filter, used to block
// deleting customers with open work.
type OrderCounter interface {
	Count(ctx context.Context, filter *domain.OrderFilter) (int64, error)
}

type customerUsecase struct {
	repo   CustomerRepository
	orders OrderCounter
	hasher Hasher
	guard  *authz.Guard[domain.Customer, domain.CustomerFilter]
}

func newCustomerGuard() *authz.Guard[domain.Customer, domain.CustomerFilter] {
	return authz.NewGuard(
		authz.Policy{
			Resource: domain.ResourceCustomers,
			// A customer may read and update their own record. Creation
			// and deletion of accounts is staff work, registration goes
			// through the auth flow instead.
			CustomerActions: map[domain.Action]authz.Decision{
				domain.ActionRead:   authz.Allow(),
				domain.ActionUpdate: authz.Allow(),
			},
		},
		func(c *domain.Customer) string { return c.ID },
		func(actx *domain.AuthContext, f *domain.CustomerFilter) *domain.CustomerFilter {
			if f == nil {
				f = &domain.CustomerFilter{}
			}
			f.ID = &actx.UserID
			return f
		},
	)
}

func NewCustomerUsecase(repo CustomerRepository, orders OrderCounter, hasher Hasher) domain.CustomerUsecase {
	return &customerUsecase{
		repo:   repo,
		orders: orders,
		hasher: hasher,
		guard:  newCustomerGuard(),
	}
}

func (u *customerUsecase) Create(ctx context.Context, actx *domain.AuthContext, req *domain.CustomerCreateRequest) (*domain.Customer, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionCreate); err != nil {
		return nil, err
	}

	if err := u.checkEmailAvailable(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	hashed, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, domain.ErrPasswordHashFailed.WithWrap(err)
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	customer := &domain.Customer{
		Email:       req.Email,
		Password:    hashed,
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Phone:       phone,
		Address:     req.Address,
		Status:      domain.CustomerSTTActive,
		Notes:       req.Notes,
	}
	if err := u.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (u *customerUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, customerID string) (*domain.Customer, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	customer, err := u.repo.FindByID(ctx, customerID, nil)
	if err != nil {
		return nil, domain.ErrCustomerNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (u *customerUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.CustomerFilter, option *domain.FindPageOption) ([]*domain.Customer, *domain.Pagination, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	filter = u.guard.ScopeFilter(actx, filter)
	return u.repo.FindPage(ctx, filter, option)
}

func (u *customerUsecase) Update(ctx context.Context, actx *domain.AuthContext, customerID string, req *domain.CustomerUpdateRequest) error {
	if err := u.guard.RequirePermission(actx, domain.ActionUpdate); err != nil {
		return err
	}

	customer, err := u.repo.FindByID(ctx, customerID, nil)
	if err != nil {
		return domain.ErrCustomerNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, customer); err != nil {
		return err
	}

	if req.Email != nil && *req.Email != customer.Email {
		if err := u.checkEmailAvailable(ctx, *req.Email, customer.ID); err != nil {
			return err
		}
		customer.Email = *req.Email
	}
	if req.CompanyName != nil {
		customer.CompanyName = *req.CompanyName
	}
	if req.ContactName != nil {
		customer.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return err
		}
		customer.Phone = phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	// Status and internal notes stay staff-only even on an owned row.
	if req.Status != nil || req.Notes != nil {
		if !actx.IsStaff() {
			return domain.ErrPermissionDenied.
				WithReason("status and notes can only be changed by staff")
		}
		if req.Status != nil {
			customer.Status = *req.Status
		}
		if req.Notes != nil {
			customer.Notes = *req.Notes
		}
	}

	return u.repo.Update(ctx, customer)
}

func (u *customerUsecase) ChangePassword(ctx context.Context, actx *domain.AuthContext, req *domain.CustomerChangePasswordRequest) error {
	if actx == nil || !actx.IsCustomer() {
		return domain.ErrPermissionDenied.WithReason("only customer accounts change their password here")
	}

	customer, err := u.repo.FindByID(ctx, actx.UserID, nil)
	if err != nil {
		return domain.ErrCustomerNotFound.WithWrap(err)
	}
	if !u.hasher.Compare(customer.Password, req.OldPassword) {
		return domain.ErrInvalidCredentials
	}

	hashed, err := u.hasher.Hash(req.NewPassword)
	if err != nil {
		return domain.ErrPasswordHashFailed.WithWrap(err)
	}
	return u.repo.UpdatePassword(ctx, customer.ID, hashed)
}

func (u *customerUsecase) Delete(ctx context.Context, actx *domain.AuthContext, customerID string) error {
	if err := u.guard.RequireStaff(actx, domain.ActionDelete); err != nil {
		return err
	}

	customer, err := u.repo.FindByID(ctx, customerID, nil)
	if err != nil {
		return domain.ErrCustomerNotFound.WithWrap(err)
	}

	open, err := u.orders.Count(ctx, &domain.OrderFilter{CustomerID: &customer.ID})
	if err != nil {
		return err
	}
	if open > 0 {
		return domain.ErrCustomerHasOpenOrders.WithDetail("orders", open)
	}

	return u.repo.Delete(ctx, customerID)
}

// normalizePhone stores numbers in E.164 so lookups and dedup don't depend
// on how the caller typed them. Empty stays empty, the field is optional.
func normalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	formatted, err := utils.FormatE164(raw, validator.DefaultPhoneRegion)
	if err != nil {
		return "", domain.ErrBadRequest.WithReason("phone number is not valid").WithWrap(err)
	}
	return formatted, nil
}

func (u *customerUsecase) checkEmailAvailable(ctx context.Context, email, excludeID string) error {
	existing, err := u.repo.FindOne(ctx, &domain.CustomerFilter{Email: &email}, nil)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return domain.ErrCustomerEmailTaken
	}
	return nil
}
