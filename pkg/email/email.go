package email

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

type Provider string

const (
	SES      Provider = "ses"
	SendGrid Provider = "sendgrid"
	Mock     Provider = "mock"
)

var (
	ErrInvalidProvider       = errors.New("invalid email provider")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrMissingRecipients     = errors.New("no recipients specified")
	ErrMissingSubject        = errors.New("subject is required")
	ErrMissingContent        = errors.New("email content is required")
	ErrProviderNotConfigured = errors.New("email provider not properly configured")
)

type Error struct {
	Operation string
	Provider  string
	Err       error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("email %s operation failed for provider '%s': %v", e.Operation, e.Provider, e.Err)
	}
	return fmt.Sprintf("email %s operation failed: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the specified operation, provider, and underlying error
func NewError(operation, provider string, err error) *Error {
	return &Error{
		Operation: operation,
		Provider:  provider,
		Err:       err,
	}
}

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type Client interface {
	Send(ctx context.Context, message *Message) error
	SendBulk(ctx context.Context, messages []*Message) error
	ValidateEmail(email string) error
	Close() error
}

type Message struct {
	From        string            `json:"from"`
	To          []string          `json:"to"`
	CC          []string          `json:"cc,omitempty"`
	BCC         []string          `json:"bcc,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text,omitempty"`
	HTML        string            `json:"html,omitempty"`
	Attachments []*Attachment     `json:"attachments,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	Content     []byte `json:"content"`
	ContentType string `json:"content_type"`
	Inline      bool   `json:"inline,omitempty"`
	ContentID   string `json:"content_id,omitempty"`
}

type Config struct {
	Provider    string `json:"provider" yaml:"provider"`
	DefaultFrom string `json:"default_from" yaml:"default_from"`

	SESRegion    string `json:"ses_region" yaml:"ses_region"`
	SESAccessKey string `json:"ses_access_key" yaml:"ses_access_key"`
	SESSecretKey string `json:"ses_secret_key" yaml:"ses_secret_key"`

	SendGridAPIKey   string `json:"sendgrid_api_key" yaml:"sendgrid_api_key"`
	SendGridFromName string `json:"sendgrid_from_name" yaml:"sendgrid_from_name"`

	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// Mock settings, for tests and local development.
	MockDelay    time.Duration `json:"mock_delay" yaml:"mock_delay"`
	MockFailRate float64       `json:"mock_fail_rate" yaml:"mock_fail_rate"`
}

func (c *Config) setDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.SESRegion == "" {
		c.SESRegion = "us-east-1"
	}
}

// GetClientFromConfig creates an email client for the configured provider.
func GetClientFromConfig(config *Config, logger Logger) (Client, error) {
	config.setDefaults()

	switch Provider(config.Provider) {
	case SES:
		client, err := NewSESClient(config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SES client: %w", err)
		}
		logger.Info("SES email client created successfully",
			"region", config.SESRegion,
			"default_from", config.DefaultFrom,
		)
		return client, nil
	case SendGrid:
		client, err := NewSendGridClient(config, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create SendGrid client: %w", err)
		}
		logger.Info("SendGrid email client created successfully",
			"default_from", config.DefaultFrom,
			"from_name", config.SendGridFromName,
		)
		return client, nil
	case Mock:
		client := NewMockClient(config, logger)
		logger.Info("Mock email client created successfully",
			"delay", config.MockDelay,
			"fail_rate", config.MockFailRate,
		)
		return client, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, config.Provider)
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validateAddress(email string) error {
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validateMessage(message *Message, defaultFrom string) error {
	if len(message.To) == 0 {
		return ErrMissingRecipients
	}
	if message.Subject == "" {
		return ErrMissingSubject
	}
	if message.Text == "" && message.HTML == "" {
		return ErrMissingContent
	}

	from := message.From
	if from == "" {
		from = defaultFrom
	}
	if err := validateAddress(from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	for _, to := range message.To {
		if err := validateAddress(to); err != nil {
			return fmt.Errorf("invalid to address %s: %w", to, err)
		}
	}
	return nil
}
