package domain

import (
	"context"
	"net/http"
)

/******************************
*       Inquiry errors        *
******************************/
var (
	ErrInquiryNotFound = &DetailedError{
		IDField:         "INQUIRY_NOT_FOUND",
		StatusDescField: http.StatusText(http.StatusNotFound),
		ErrorField:      "Inquiry not found",
		StatusCodeField: http.StatusNotFound,
	}
	ErrInquiryInvalidTransition = &DetailedError{
		IDField:         "INQUIRY_INVALID_TRANSITION",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Inquiry status transition is not allowed",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
	ErrInquiryStaleTransition = &DetailedError{
		IDField:         "INQUIRY_STALE_TRANSITION",
		StatusDescField: http.StatusText(http.StatusConflict),
		ErrorField:      "Inquiry changed since it was read, reload and retry",
		StatusCodeField: http.StatusConflict,
	}
	ErrInquiryNotDeletable = &DetailedError{
		IDField:         "INQUIRY_NOT_DELETABLE",
		StatusDescField: http.StatusText(http.StatusUnprocessableEntity),
		ErrorField:      "Only new inquiries can be deleted",
		StatusCodeField: http.StatusUnprocessableEntity,
	}
)

/*****************************************
*       Inquiry entities and types       *
*****************************************/

// InquiryStatus values are persisted as integers, the numeric order is part
// of the storage contract and must not change.
type InquiryStatus int

const (
	InquiryStatusRejected   InquiryStatus = 0
	InquiryStatusNew        InquiryStatus = 1
	InquiryStatusAccepted   InquiryStatus = 2
	InquiryStatusInProgress InquiryStatus = 3
	InquiryStatusClosed     InquiryStatus = 4
)

func (s InquiryStatus) IsValid() bool {
	return s >= InquiryStatusRejected && s <= InquiryStatusClosed
}

// IsTerminal reports whether no further transition may leave this status.
func (s InquiryStatus) IsTerminal() bool {
	return s == InquiryStatusRejected || s == InquiryStatusClosed
}

func (s InquiryStatus) String() string {
	switch s {
	case InquiryStatusRejected:
		return "rejected"
	case InquiryStatusNew:
		return "new"
	case InquiryStatusAccepted:
		return "accepted"
	case InquiryStatusInProgress:
		return "in_progress"
	case InquiryStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Inquiry is an inbound sales request. CustomerID is empty for walk-in
// prospects who only leave contact details.
type Inquiry struct {
	SQLModel
	CustomerID   string        `json:"customer_id" gorm:"type:varchar(36);index"`
	ContactName  string        `json:"contact_name" gorm:"type:varchar(100)"`
	ContactEmail string        `json:"contact_email" gorm:"type:varchar(255)"`
	ContactPhone string        `json:"contact_phone" gorm:"type:varchar(20)"`
	Subject      string        `json:"subject" gorm:"type:varchar(255);not null"`
	Body         string        `json:"body" gorm:"type:text"`
	Status       InquiryStatus `json:"status" gorm:"not null;default:1"`
	AssigneeID   string        `json:"assignee_id" gorm:"type:varchar(36)"`
	CreatedBy    string        `json:"created_by" gorm:"type:varchar(36)"`

	AcceptedAt int64 `json:"accepted_at" gorm:"default:0"`
	RejectedAt int64 `json:"rejected_at" gorm:"default:0"`
	StartedAt  int64 `json:"started_at" gorm:"default:0"`
	ClosedAt   int64 `json:"closed_at" gorm:"default:0"`
}

func (i *Inquiry) IsDeletable() bool {
	return i.Status == InquiryStatusNew
}

var inquiryTransitions = map[InquiryStatus][]InquiryStatus{
	InquiryStatusNew:        {InquiryStatusAccepted, InquiryStatusRejected},
	InquiryStatusAccepted:   {InquiryStatusInProgress},
	InquiryStatusInProgress: {InquiryStatusClosed},
}

func CanTransitionInquiry(from, to InquiryStatus) bool {
	for _, next := range inquiryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InquiryTransitionFields returns the column updates for moving into the
// target status at the given instant. The status change and its timestamp
// always travel in the same write.
func InquiryTransitionFields(to InquiryStatus, now int64) (map[string]interface{}, error) {
	fields := map[string]interface{}{"status": int(to)}
	switch to {
	case InquiryStatusAccepted:
		fields["accepted_at"] = now
	case InquiryStatusRejected:
		fields["rejected_at"] = now
	case InquiryStatusInProgress:
		fields["started_at"] = now
	case InquiryStatusClosed:
		fields["closed_at"] = now
	default:
		return nil, ErrInquiryInvalidTransition.WithReason("cannot transition into " + to.String())
	}
	return fields, nil
}

type InquiryFilter struct {
	ID             *string        `json:"id" form:"id"`
	IDIn           []string       `json:"id_in" form:"id_in"`
	CustomerID     *string        `json:"customer_id" form:"customer_id"`
	AssigneeID     *string        `json:"assignee_id" form:"assignee_id"`
	Status         *InquiryStatus `json:"status" form:"status"`
	SearchTerm     *string        `json:"search_term" form:"search_term"`
	CreatedAtGte   *int64         `json:"created_at_gte" form:"created_at_gte"`
	CreatedAtLte   *int64         `json:"created_at_lte" form:"created_at_lte"`
	IncludeDeleted *bool          `json:"include_deleted" form:"include_deleted"`
}

/*************************************************
*       Inquiry usecase interfaces and types      *
*************************************************/
type InquiryUsecase interface {
	Create(ctx context.Context, actx *AuthContext, req *InquiryCreateRequest) (*Inquiry, error)
	FindByID(ctx context.Context, actx *AuthContext, inquiryID string) (*Inquiry, error)
	FindPage(ctx context.Context, actx *AuthContext, filter *InquiryFilter, option *FindPageOption) ([]*Inquiry, *Pagination, error)
	Update(ctx context.Context, actx *AuthContext, inquiryID string, req *InquiryUpdateRequest) error
	Transition(ctx context.Context, actx *AuthContext, inquiryID string, req *InquiryTransitionRequest) (*Inquiry, error)
	Delete(ctx context.Context, actx *AuthContext, inquiryID string) error
}

type InquiryCreateRequest struct {
	CustomerID   string `json:"customer_id" validate:"omitempty,uuid"`
	ContactName  string `json:"contact_name" validate:"max=100"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone" validate:"omitempty,phone_number"`
	Subject      string `json:"subject" validate:"required,min=2,max=255"`
	Body         string `json:"body"`
	CreatedBy    string `json:"-"`
}

type InquiryUpdateRequest struct {
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Subject      *string `json:"subject,omitempty"`
	Body         *string `json:"body,omitempty"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
}

type InquiryTransitionRequest struct {
	// Status the caller saw when deciding to transition. Guards against
	// acting on a stale read.
	FromStatus InquiryStatus `json:"from_status"`
	ToStatus   InquiryStatus `json:"to_status" validate:"inquiry_status"`
	AssigneeID string        `json:"assignee_id" validate:"omitempty,uuid"`
}
