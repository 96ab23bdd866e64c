package usecase

import (
	"context"

	"atelier-backend/authz"
	"atelier-backend/domain"
	"atelier-backend/pkg/log"
	"atelier-backend/pkg/utils"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *domain.Inquiry) error
	FindByID(ctx context.Context, inquiryID string, option *domain.FindOneOption) (*domain.Inquiry, error)
	FindPage(ctx context.Context, filter *domain.InquiryFilter, option *domain.FindPageOption) ([]*domain.Inquiry, *domain.Pagination, error)
	UpdateFields(ctx context.Context, inquiryID string, fields map[string]any) error
	Transition(ctx context.Context, inquiryID string, fields map[string]any, fromStatus domain.InquiryStatus) (int64, error)
	DeleteWhileNew(ctx context.Context, inquiryID string, now int64) (int64, error)
}

// Notifier tells the inquiry contact about status decisions. Failures are
// logged, never surfaced: the transition has already committed.
type Notifier interface {
	InquiryAccepted(ctx context.Context, inquiry *domain.Inquiry) error
	InquiryRejected(ctx context.Context, inquiry *domain.Inquiry) error
}

type inquiryUsecase struct {
	repo     InquiryRepository
	notifier Notifier
	logger   log.Logger
	guard    *authz.Guard[domain.Inquiry, domain.InquiryFilter]
	now      func() int64
}

func newInquiryGuard() *authz.Guard[domain.Inquiry, domain.InquiryFilter] {
	return authz.NewGuard(
		authz.Policy{
			Resource: domain.ResourceInquiries,
			// Customers submit and read their own inquiries, every
			// transition is staff work.
			CustomerActions: map[domain.Action]authz.Decision{
				domain.ActionCreate: authz.Allow(),
				domain.ActionRead:   authz.Allow(),
			},
		},
		func(i *domain.Inquiry) string { return i.CustomerID },
		func(actx *domain.AuthContext, f *domain.InquiryFilter) *domain.InquiryFilter {
			if f == nil {
				f = &domain.InquiryFilter{}
			}
			f.CustomerID = &actx.UserID
			return f
		},
	)
}

func NewInquiryUsecase(repo InquiryRepository, notifier Notifier, logger log.Logger) domain.InquiryUsecase {
	return &inquiryUsecase{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		guard:    newInquiryGuard(),
		now:      utils.NowUnixMillis,
	}
}

// Create accepts a nil context: public walk-in submissions reach this path
// without any session. Authenticated customers get pinned to their own ID.
func (u *inquiryUsecase) Create(ctx context.Context, actx *domain.AuthContext, req *domain.InquiryCreateRequest) (*domain.Inquiry, error) {
	if actx != nil {
		if err := u.guard.RequirePermission(actx, domain.ActionCreate); err != nil {
			return nil, err
		}
	}

	inquiry := &domain.Inquiry{
		CustomerID:   req.CustomerID,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Subject:      req.Subject,
		Body:         req.Body,
		Status:       domain.InquiryStatusNew,
	}
	switch {
	case actx == nil:
		// Anonymous submission carries no ownership or author.
		inquiry.CustomerID = ""
		inquiry.CreatedBy = ""
	case actx.IsCustomer():
		inquiry.CustomerID = actx.UserID
		inquiry.CreatedBy = actx.UserID
	default:
		inquiry.CreatedBy = actx.UserID
	}

	if err := u.repo.Create(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (u *inquiryUsecase) FindByID(ctx context.Context, actx *domain.AuthContext, inquiryID string) (*domain.Inquiry, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, err
	}

	inquiry, err := u.repo.FindByID(ctx, inquiryID, nil)
	if err != nil {
		return nil, domain.ErrInquiryNotFound.WithWrap(err)
	}
	if err := u.guard.CheckAccess(actx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (u *inquiryUsecase) FindPage(ctx context.Context, actx *domain.AuthContext, filter *domain.InquiryFilter, option *domain.FindPageOption) ([]*domain.Inquiry, *domain.Pagination, error) {
	if err := u.guard.RequirePermission(actx, domain.ActionRead); err != nil {
		return nil, nil, err
	}
	filter = u.guard.ScopeFilter(actx, filter)
	return u.repo.FindPage(ctx, filter, option)
}

func (u *inquiryUsecase) Update(ctx context.Context, actx *domain.AuthContext, inquiryID string, req *domain.InquiryUpdateRequest) error {
	if err := u.guard.RequireStaff(actx, domain.ActionUpdate); err != nil {
		return err
	}

	inquiry, err := u.repo.FindByID(ctx, inquiryID, nil)
	if err != nil {
		return domain.ErrInquiryNotFound.WithWrap(err)
	}
	if inquiry.Status.IsTerminal() {
		return domain.ErrInquiryInvalidTransition.
			WithReasonf("inquiry is %s and can no longer change", inquiry.Status)
	}

	fields := map[string]any{}
	if req.ContactName != nil {
		fields["contact_name"] = *req.ContactName
	}
	if req.ContactEmail != nil {
		fields["contact_email"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		fields["contact_phone"] = *req.ContactPhone
	}
	if req.Subject != nil {
		fields["subject"] = *req.Subject
	}
	if req.Body != nil {
		fields["body"] = *req.Body
	}
	if req.AssigneeID != nil {
		fields["assignee_id"] = *req.AssigneeID
	}
	if len(fields) == 0 {
		return nil
	}
	return u.repo.UpdateFields(ctx, inquiryID, fields)
}

// Transition moves an inquiry along its lifecycle, staff only. The stored
// status is the source of truth: the conditional write re-checks it so a
// stale caller cannot clobber a concurrent decision.
func (u *inquiryUsecase) Transition(ctx context.Context, actx *domain.AuthContext, inquiryID string, req *domain.InquiryTransitionRequest) (*domain.Inquiry, error) {
	if err := u.guard.RequireStaff(actx, domain.ActionUpdate); err != nil {
		return nil, err
	}

	inquiry, err := u.repo.FindByID(ctx, inquiryID, nil)
	if err != nil {
		return nil, domain.ErrInquiryNotFound.WithWrap(err)
	}

	if inquiry.Status != req.FromStatus {
		return nil, domain.ErrInquiryStaleTransition.
			WithReasonf("inquiry is %s, not %s", inquiry.Status, req.FromStatus)
	}
	if !domain.CanTransitionInquiry(req.FromStatus, req.ToStatus) {
		return nil, domain.ErrInquiryInvalidTransition.
			WithReasonf("%s cannot move to %s", req.FromStatus, req.ToStatus)
	}

	fields, err := domain.InquiryTransitionFields(req.ToStatus, u.now())
	if err != nil {
		return nil, err
	}
	if req.AssigneeID != "" {
		fields["assignee_id"] = req.AssigneeID
	}

	rows, err := u.repo.Transition(ctx, inquiryID, fields, req.FromStatus)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrInquiryStaleTransition
	}

	updated, err := u.repo.FindByID(ctx, inquiryID, nil)
	if err != nil {
		return nil, domain.ErrInquiryNotFound.WithWrap(err)
	}

	u.notifyDecision(ctx, updated, req.ToStatus)
	return updated, nil
}

func (u *inquiryUsecase) Delete(ctx context.Context, actx *domain.AuthContext, inquiryID string) error {
	if err := u.guard.RequireStaff(actx, domain.ActionDelete); err != nil {
		return err
	}

	inquiry, err := u.repo.FindByID(ctx, inquiryID, nil)
	if err != nil {
		return domain.ErrInquiryNotFound.WithWrap(err)
	}
	if !inquiry.IsDeletable() {
		return domain.ErrInquiryNotDeletable.
			WithReasonf("inquiry is %s", inquiry.Status)
	}

	rows, err := u.repo.DeleteWhileNew(ctx, inquiryID, u.now())
	if err != nil {
		return err
	}
	if rows == 0 {
		// Someone transitioned it between our read and the delete.
		return domain.ErrInquiryNotDeletable
	}
	return nil
}

func (u *inquiryUsecase) notifyDecision(ctx context.Context, inquiry *domain.Inquiry, to domain.InquiryStatus) {
	if u.notifier == nil || inquiry.ContactEmail == "" {
		return
	}

	var err error
	switch to {
	case domain.InquiryStatusAccepted:
		err = u.notifier.InquiryAccepted(ctx, inquiry)
	case domain.InquiryStatusRejected:
		err = u.notifier.InquiryRejected(ctx, inquiry)
	default:
		return
	}
	if err != nil {
		u.logger.Warn("inquiry notification failed",
			log.String("inquiry_id", inquiry.ID),
			log.String("status", to.String()),
			log.Error(err))
	}
}
