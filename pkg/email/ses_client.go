package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESClient struct {
	client *ses.Client
	config *Config
	logger Logger
}

func NewSESClient(emailConfig *Config, logger Logger) (*SESClient, error) {
	if emailConfig.SESAccessKey == "" || emailConfig.SESSecretKey == "" {
		return nil, NewError("create_ses_client", "ses", ErrProviderNotConfigured)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(emailConfig.SESRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			emailConfig.SESAccessKey,
			emailConfig.SESSecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, NewError("create_ses_config", "ses", err)
	}

	client := &SESClient{
		client: ses.NewFromConfig(cfg),
		config: emailConfig,
		logger: logger,
	}

	// Fails fast on bad credentials instead of at first send.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping SES service: %w", err)
	}

	return client, nil
}

func (s *SESClient) ping(ctx context.Context) error {
	_, err := s.client.GetSendStatistics(ctx, &ses.GetSendStatisticsInput{})
	return err
}

func (s *SESClient) Send(ctx context.Context, message *Message) error {
	if err := validateMessage(message, s.config.DefaultFrom); err != nil {
		return err
	}

	input := s.buildSESInput(message)

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.RetryDelay * time.Duration(attempt)):
			}
		}

		_, err := s.client.SendEmail(ctx, input)
		if err == nil {
			s.logger.Debug("Email sent successfully via SES",
				"to", message.To,
				"subject", message.Subject,
				"attempt", attempt+1,
			)
			return nil
		}

		lastErr = err
		s.logger.Debug("Email send attempt failed",
			"attempt", attempt+1,
			"error", err.Error(),
		)
	}

	return NewError("send", "ses", lastErr)
}

// SendBulk sends sequentially, SES has no bulk call for raw messages.
func (s *SESClient) SendBulk(ctx context.Context, messages []*Message) error {
	for _, message := range messages {
		if err := s.Send(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func (s *SESClient) ValidateEmail(email string) error {
	return validateAddress(email)
}

func (s *SESClient) Close() error {
	s.logger.Info("SES client closed")
	return nil
}

func (s *SESClient) getFromAddress(from string) string {
	if from == "" {
		return s.config.DefaultFrom
	}
	return from
}

func (s *SESClient) buildSESInput(message *Message) *ses.SendEmailInput {
	input := &ses.SendEmailInput{
		Source: aws.String(s.getFromAddress(message.From)),
		Destination: &types.Destination{
			ToAddresses: message.To,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(message.Subject),
			},
		},
	}

	body := &types.Body{}
	if message.Text != "" {
		body.Text = &types.Content{
			Data: aws.String(message.Text),
		}
	}
	if message.HTML != "" {
		body.Html = &types.Content{
			Data: aws.String(message.HTML),
		}
	}
	input.Message.Body = body

	if len(message.CC) > 0 {
		input.Destination.CcAddresses = message.CC
	}
	if len(message.BCC) > 0 {
		input.Destination.BccAddresses = message.BCC
	}
	if message.ReplyTo != "" {
		input.ReplyToAddresses = []string{message.ReplyTo}
	}

	return input
}
