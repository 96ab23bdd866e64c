package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier-backend/domain"
	"atelier-backend/pkg/log"
)

type fakeInquiryRepo struct {
	byID        map[string]*domain.Inquiry
	transitions int
	forcedRows  *int64
}

func newFakeInquiryRepo(inquiries ...*domain.Inquiry) *fakeInquiryRepo {
	byID := make(map[string]*domain.Inquiry, len(inquiries))
	for _, i := range inquiries {
		byID[i.ID] = i
	}
	return &fakeInquiryRepo{byID: byID}
}

func (f *fakeInquiryRepo) Create(_ context.Context, inquiry *domain.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = "inq-new"
	}
	f.byID[inquiry.ID] = inquiry
	return nil
}

func (f *fakeInquiryRepo) FindByID(_ context.Context, inquiryID string, _ *domain.FindOneOption) (*domain.Inquiry, error) {
	inquiry, ok := f.byID[inquiryID]
	if !ok || inquiry.DeletedAt != 0 {
		return nil, domain.ErrRecordNotFound
	}
	clone := *inquiry
	return &clone, nil
}

func (f *fakeInquiryRepo) FindPage(_ context.Context, filter *domain.InquiryFilter, _ *domain.FindPageOption) ([]*domain.Inquiry, *domain.Pagination, error) {
	var out []*domain.Inquiry
	for _, i := range f.byID {
		if filter != nil && filter.CustomerID != nil && i.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, i)
	}
	return out, domain.NewPagination(1, 10, int64(len(out))), nil
}

func (f *fakeInquiryRepo) UpdateFields(_ context.Context, inquiryID string, fields map[string]any) error {
	applyInquiryFields(f.byID[inquiryID], fields)
	return nil
}

func (f *fakeInquiryRepo) Transition(_ context.Context, inquiryID string, fields map[string]any, fromStatus domain.InquiryStatus) (int64, error) {
	f.transitions++
	if f.forcedRows != nil {
		return *f.forcedRows, nil
	}
	inquiry, ok := f.byID[inquiryID]
	if !ok || inquiry.Status != fromStatus {
		return 0, nil
	}
	applyInquiryFields(inquiry, fields)
	return 1, nil
}

func (f *fakeInquiryRepo) DeleteWhileNew(_ context.Context, inquiryID string, now int64) (int64, error) {
	inquiry, ok := f.byID[inquiryID]
	if !ok || inquiry.Status != domain.InquiryStatusNew {
		return 0, nil
	}
	inquiry.DeletedAt = now
	return 1, nil
}

func applyInquiryFields(inquiry *domain.Inquiry, fields map[string]any) {
	for column, value := range fields {
		switch column {
		case "status":
			inquiry.Status = domain.InquiryStatus(value.(int))
		case "accepted_at":
			inquiry.AcceptedAt = value.(int64)
		case "rejected_at":
			inquiry.RejectedAt = value.(int64)
		case "started_at":
			inquiry.StartedAt = value.(int64)
		case "closed_at":
			inquiry.ClosedAt = value.(int64)
		case "assignee_id":
			inquiry.AssigneeID = value.(string)
		case "subject":
			inquiry.Subject = value.(string)
		}
	}
}

type recordingNotifier struct {
	accepted []string
	rejected []string
}

func (n *recordingNotifier) InquiryAccepted(_ context.Context, inquiry *domain.Inquiry) error {
	n.accepted = append(n.accepted, inquiry.ID)
	return nil
}

func (n *recordingNotifier) InquiryRejected(_ context.Context, inquiry *domain.Inquiry) error {
	n.rejected = append(n.rejected, inquiry.ID)
	return nil
}

func newTestInquiryUsecase(repo *fakeInquiryRepo) (*inquiryUsecase, *recordingNotifier) {
	notifier := &recordingNotifier{}
	uc := NewInquiryUsecase(repo, notifier, log.NewNopLogger()).(*inquiryUsecase)
	return uc, notifier
}

func inquiriesStaff(actions ...domain.Action) *domain.AuthContext {
	perms := make([]domain.Permission, len(actions))
	for i, a := range actions {
		perms[i] = domain.NewPermission(domain.ResourceInquiries, a)
	}
	return domain.NewStaffContext("staff-1", domain.RoleStaff, perms)
}

func newInquiry(id, customerID string, status domain.InquiryStatus) *domain.Inquiry {
	return &domain.Inquiry{
		SQLModel:     domain.SQLModel{ID: id},
		CustomerID:   customerID,
		ContactEmail: "contact@example.com",
		Subject:      "Custom cabinet run",
		Status:       status,
	}
}

func TestInquiryCreate(t *testing.T) {
	t.Run("anonymous submission lands as new with no author", func(t *testing.T) {
		repo := newFakeInquiryRepo()
		uc, _ := newTestInquiryUsecase(repo)

		inquiry, err := uc.Create(context.Background(), nil, &domain.InquiryCreateRequest{
			ContactName:  "Walk-in",
			ContactEmail: "lead@example.com",
			Subject:      "Quote for shelving",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.InquiryStatusNew, inquiry.Status)
		assert.Empty(t, inquiry.CreatedBy)
		assert.Empty(t, inquiry.CustomerID)
	})

	t.Run("customer submissions are pinned to the caller", func(t *testing.T) {
		repo := newFakeInquiryRepo()
		uc, _ := newTestInquiryUsecase(repo)

		inquiry, err := uc.Create(context.Background(), domain.NewCustomerContext("cust-1"), &domain.InquiryCreateRequest{
			CustomerID: "cust-2",
			Subject:    "Repair job",
		})
		require.NoError(t, err)
		assert.Equal(t, "cust-1", inquiry.CustomerID)
		assert.Equal(t, "cust-1", inquiry.CreatedBy)
	})
}

func TestInquiryFindByID_Ownership(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "cust-2", domain.InquiryStatusNew))
	uc, _ := newTestInquiryUsecase(repo)

	// cust-1 reading cust-2's inquiry gets an ownership violation and no
	// data back.
	inquiry, err := uc.FindByID(context.Background(), domain.NewCustomerContext("cust-1"), "inq-1")
	assert.ErrorIs(t, err, domain.ErrOwnershipViolation)
	assert.Nil(t, inquiry)

	inquiry, err = uc.FindByID(context.Background(), domain.NewCustomerContext("cust-2"), "inq-1")
	require.NoError(t, err)
	assert.Equal(t, "inq-1", inquiry.ID)
}

func TestInquiryTransition_PermissionGate(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "", domain.InquiryStatusNew))
	uc, _ := newTestInquiryUsecase(repo)

	// Read-only staff cannot transition, and the status must not move.
	_, err := uc.Transition(context.Background(), inquiriesStaff(domain.ActionRead), "inq-1", &domain.InquiryTransitionRequest{
		FromStatus: domain.InquiryStatusNew,
		ToStatus:   domain.InquiryStatusAccepted,
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, domain.InquiryStatusNew, repo.byID["inq-1"].Status)
	assert.Zero(t, repo.transitions)
}

func TestInquiryTransition_CustomerDenied(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "cust-1", domain.InquiryStatusNew))
	uc, _ := newTestInquiryUsecase(repo)

	// Even the owner cannot transition their own inquiry.
	_, err := uc.Transition(context.Background(), domain.NewCustomerContext("cust-1"), "inq-1", &domain.InquiryTransitionRequest{
		FromStatus: domain.InquiryStatusNew,
		ToStatus:   domain.InquiryStatusAccepted,
	})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestInquiryTransition_HappyPath(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "cust-1", domain.InquiryStatusNew))
	uc, notifier := newTestInquiryUsecase(repo)

	inquiry, err := uc.Transition(context.Background(), inquiriesStaff(domain.ActionUpdate), "inq-1", &domain.InquiryTransitionRequest{
		FromStatus: domain.InquiryStatusNew,
		ToStatus:   domain.InquiryStatusAccepted,
		AssigneeID: "staff-2",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusAccepted, inquiry.Status)
	assert.NotZero(t, inquiry.AcceptedAt)
	assert.Equal(t, "staff-2", inquiry.AssigneeID)
	assert.Equal(t, []string{"inq-1"}, notifier.accepted)
}

func TestInquiryTransition_RejectNotifies(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "", domain.InquiryStatusNew))
	uc, notifier := newTestInquiryUsecase(repo)

	inquiry, err := uc.Transition(context.Background(), inquiriesStaff(domain.ActionUpdate), "inq-1", &domain.InquiryTransitionRequest{
		FromStatus: domain.InquiryStatusNew,
		ToStatus:   domain.InquiryStatusRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InquiryStatusRejected, inquiry.Status)
	assert.NotZero(t, inquiry.RejectedAt)
	assert.Equal(t, []string{"inq-1"}, notifier.rejected)
}

func TestInquiryTransition_IllegalEdges(t *testing.T) {
	cases := []struct {
		name string
		from domain.InquiryStatus
		to   domain.InquiryStatus
	}{
		{"new cannot close directly", domain.InquiryStatusNew, domain.InquiryStatusClosed},
		{"accepted cannot be rejected", domain.InquiryStatusAccepted, domain.InquiryStatusRejected},
		{"closed is terminal", domain.InquiryStatusClosed, domain.InquiryStatusInProgress},
		{"rejected is terminal", domain.InquiryStatusRejected, domain.InquiryStatusAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeInquiryRepo(newInquiry("inq-1", "", tc.from))
			uc, _ := newTestInquiryUsecase(repo)

			_, err := uc.Transition(context.Background(), inquiriesStaff(domain.ActionUpdate), "inq-1", &domain.InquiryTransitionRequest{
				FromStatus: tc.from,
				ToStatus:   tc.to,
			})
			assert.ErrorIs(t, err, domain.ErrInquiryInvalidTransition)
		})
	}
}

func TestInquiryTransition_Stale(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "", domain.InquiryStatusAccepted))
	uc, _ := newTestInquiryUsecase(repo)

	_, err := uc.Transition(context.Background(), inquiriesStaff(domain.ActionUpdate), "inq-1", &domain.InquiryTransitionRequest{
		FromStatus: domain.InquiryStatusNew,
		ToStatus:   domain.InquiryStatusAccepted,
	})
	assert.ErrorIs(t, err, domain.ErrInquiryStaleTransition)
}

func TestInquiryTransition_RaceLosesCleanly(t *testing.T) {
	repo := newFakeInquiryRepo(newInquiry("inq-1", "", domain.InquiryStatusNew))
	var zero int64
	repo.forcedRows = &zero
	uc, notifier := newTestInquiryUsecase(repo)

	_, err := uc.Transition(context.Background(), inquiriesStaff(domain.ActionUpdate), "inq-1", &domain.InquiryTransitionRequest{
		FromStatus: domain.InquiryStatusNew,
		ToStatus:   domain.InquiryStatusAccepted,
	})
	assert.ErrorIs(t, err, domain.ErrInquiryStaleTransition)
	assert.Empty(t, notifier.accepted)
}

func TestInquiryDelete(t *testing.T) {
	t.Run("new inquiries delete fine", func(t *testing.T) {
		repo := newFakeInquiryRepo(newInquiry("inq-1", "", domain.InquiryStatusNew))
		uc, _ := newTestInquiryUsecase(repo)

		err := uc.Delete(context.Background(), inquiriesStaff(domain.ActionDelete), "inq-1")
		require.NoError(t, err)
		assert.NotZero(t, repo.byID["inq-1"].DeletedAt)
	})

	t.Run("engaged inquiries cannot be deleted", func(t *testing.T) {
		for _, status := range []domain.InquiryStatus{
			domain.InquiryStatusAccepted, domain.InquiryStatusRejected,
			domain.InquiryStatusInProgress, domain.InquiryStatusClosed,
		} {
			repo := newFakeInquiryRepo(newInquiry("inq-1", "", status))
			uc, _ := newTestInquiryUsecase(repo)

			err := uc.Delete(context.Background(), inquiriesStaff(domain.ActionDelete), "inq-1")
			assert.ErrorIs(t, err, domain.ErrInquiryNotDeletable, "status %s", status)
		}
	})
}

func TestInquiryFindPage_CustomerScoping(t *testing.T) {
	repo := newFakeInquiryRepo(
		newInquiry("inq-1", "cust-1", domain.InquiryStatusNew),
		newInquiry("inq-2", "cust-2", domain.InquiryStatusNew),
	)
	uc, _ := newTestInquiryUsecase(repo)

	inquiries, _, err := uc.FindPage(context.Background(), domain.NewCustomerContext("cust-1"), nil, nil)
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, "inq-1", inquiries[0].ID)
}
