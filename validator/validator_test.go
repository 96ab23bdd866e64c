package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"atelier-backend/domain"
)

func TestValidateInquiryTransition(t *testing.T) {
	v := New()

	t.Run("rejected is a valid target status", func(t *testing.T) {
		// rejected is the zero value of InquiryStatus, a required tag would
		// refuse it and make the new to rejected transition unreachable.
		req := &domain.InquiryTransitionRequest{
			FromStatus: domain.InquiryStatusNew,
			ToStatus:   domain.InquiryStatusRejected,
		}
		assert.NoError(t, v.ValidateStruct(req))
	})

	t.Run("every catalog status passes", func(t *testing.T) {
		for _, status := range []domain.InquiryStatus{
			domain.InquiryStatusRejected,
			domain.InquiryStatusNew,
			domain.InquiryStatusAccepted,
			domain.InquiryStatusInProgress,
			domain.InquiryStatusClosed,
		} {
			req := &domain.InquiryTransitionRequest{ToStatus: status}
			assert.NoError(t, v.ValidateStruct(req), "status %s", status)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		req := &domain.InquiryTransitionRequest{ToStatus: domain.InquiryStatus(9)}
		assert.Error(t, v.ValidateStruct(req))
	})
}

func TestValidatePhoneNumberTag(t *testing.T) {
	v := New()

	valid := &domain.InquiryCreateRequest{Subject: "quote request", ContactPhone: "+14155552671"}
	assert.NoError(t, v.ValidateStruct(valid))

	invalid := &domain.InquiryCreateRequest{Subject: "quote request", ContactPhone: "not-a-phone"}
	assert.Error(t, v.ValidateStruct(invalid))
}
