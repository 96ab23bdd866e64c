package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient implements Client using the SendGrid v3 mail API.
type SendGridClient struct {
	client *sendgrid.Client
	config *Config
	logger Logger
}

func NewSendGridClient(config *Config, logger Logger) (*SendGridClient, error) {
	if config.SendGridAPIKey == "" {
		return nil, NewError("create_sendgrid_client", "sendgrid", ErrProviderNotConfigured)
	}

	return &SendGridClient{
		client: sendgrid.NewSendClient(config.SendGridAPIKey),
		config: config,
		logger: logger,
	}, nil
}

func (sg *SendGridClient) Send(ctx context.Context, message *Message) error {
	if err := validateMessage(message, sg.config.DefaultFrom); err != nil {
		return err
	}

	sgMessage := sg.buildSendGridMessage(message)

	var lastErr error
	for attempt := 0; attempt <= sg.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sg.config.RetryDelay * time.Duration(attempt)):
			}
		}

		response, err := sg.client.Send(sgMessage)
		if err == nil && response.StatusCode >= 200 && response.StatusCode < 300 {
			sg.logger.Debug("Email sent successfully via SendGrid",
				"to", message.To,
				"subject", message.Subject,
				"status_code", response.StatusCode,
				"attempt", attempt+1,
			)
			return nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("SendGrid API returned status %d: %s", response.StatusCode, response.Body)
		}

		sg.logger.Debug("Email send attempt failed",
			"attempt", attempt+1,
			"error", lastErr.Error(),
		)
	}

	return NewError("send", "sendgrid", lastErr)
}

func (sg *SendGridClient) SendBulk(ctx context.Context, messages []*Message) error {
	for _, message := range messages {
		if err := sg.Send(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func (sg *SendGridClient) ValidateEmail(email string) error {
	return validateAddress(email)
}

func (sg *SendGridClient) Close() error {
	sg.logger.Info("SendGrid client closed")
	return nil
}

func (sg *SendGridClient) getFromAddress(from string) string {
	if from == "" {
		return sg.config.DefaultFrom
	}
	return from
}

func (sg *SendGridClient) buildSendGridMessage(message *Message) *mail.SGMailV3 {
	fromEmail := mail.NewEmail(sg.config.SendGridFromName, sg.getFromAddress(message.From))

	sgMessage := mail.NewV3Mail()
	sgMessage.SetFrom(fromEmail)
	sgMessage.Subject = message.Subject

	personalization := mail.NewPersonalization()
	for _, to := range message.To {
		personalization.AddTos(mail.NewEmail("", to))
	}
	for _, cc := range message.CC {
		personalization.AddCCs(mail.NewEmail("", cc))
	}
	for _, bcc := range message.BCC {
		personalization.AddBCCs(mail.NewEmail("", bcc))
	}
	sgMessage.AddPersonalizations(personalization)

	if message.Text != "" {
		sgMessage.AddContent(mail.NewContent("text/plain", message.Text))
	}
	if message.HTML != "" {
		sgMessage.AddContent(mail.NewContent("text/html", message.HTML))
	}

	for _, attachment := range message.Attachments {
		sgAttachment := mail.NewAttachment()
		sgAttachment.SetFilename(attachment.Filename)
		sgAttachment.SetContent(base64.StdEncoding.EncodeToString(attachment.Content))
		sgAttachment.SetType(attachment.ContentType)
		if attachment.Inline {
			sgAttachment.SetDisposition("inline")
			if attachment.ContentID != "" {
				sgAttachment.SetContentID(attachment.ContentID)
			}
		}
		sgMessage.AddAttachment(sgAttachment)
	}

	if message.ReplyTo != "" {
		sgMessage.SetReplyTo(mail.NewEmail("", message.ReplyTo))
	}

	return sgMessage
}
