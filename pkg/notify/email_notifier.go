// Package notify sends customer-facing notifications for workflow events.
package notify

import (
	"context"
	"fmt"

	"atelier-backend/domain"
	"atelier-backend/pkg/email"
)

type EmailNotifier struct {
	client email.Client
	from   string
}

func NewEmailNotifier(client email.Client, from string) *EmailNotifier {
	return &EmailNotifier{
		client: client,
		from:   from,
	}
}

func (n *EmailNotifier) InquiryAccepted(ctx context.Context, inquiry *domain.Inquiry) error {
	to := inquiry.ContactEmail
	if to == "" {
		return nil
	}
	return n.client.Send(ctx, &email.Message{
		From:    n.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Your inquiry %q was accepted", inquiry.Subject),
		Text: fmt.Sprintf(
			"Hello %s,\n\nGood news, we accepted your inquiry %q and will follow up with details shortly.\n",
			inquiry.ContactName, inquiry.Subject,
		),
		Tags: map[string]string{
			"event":      "inquiry_accepted",
			"inquiry_id": inquiry.ID,
		},
	})
}

func (n *EmailNotifier) InquiryRejected(ctx context.Context, inquiry *domain.Inquiry) error {
	to := inquiry.ContactEmail
	if to == "" {
		return nil
	}
	return n.client.Send(ctx, &email.Message{
		From:    n.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Update on your inquiry %q", inquiry.Subject),
		Text: fmt.Sprintf(
			"Hello %s,\n\nUnfortunately we cannot take on your inquiry %q at this time. Feel free to reach out again.\n",
			inquiry.ContactName, inquiry.Subject,
		),
		Tags: map[string]string{
			"event":      "inquiry_rejected",
			"inquiry_id": inquiry.ID,
		},
	})
}
