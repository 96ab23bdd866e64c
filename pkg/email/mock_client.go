package email

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// MockClient records messages instead of sending them. Used in local
// development and in tests that want to inspect what would have gone out.
type MockClient struct {
	config     *Config
	logger     Logger
	sentEmails []MockSentEmail
	mu         sync.RWMutex
}

type MockSentEmail struct {
	Message *Message  `json:"message"`
	SentAt  time.Time `json:"sent_at"`
	Status  string    `json:"status"` // sent or failed
	Error   string    `json:"error,omitempty"`
}

func NewMockClient(config *Config, logger Logger) *MockClient {
	return &MockClient{
		config:     config,
		logger:     logger,
		sentEmails: make([]MockSentEmail, 0),
	}
}

func (m *MockClient) Send(ctx context.Context, message *Message) error {
	if err := validateMessage(message, m.config.DefaultFrom); err != nil {
		return err
	}

	if m.config.MockDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.MockDelay):
		}
	}

	if m.shouldFail() {
		err := fmt.Errorf("mock email send failure (simulated)")
		m.record(MockSentEmail{
			Message: message,
			SentAt:  time.Now(),
			Status:  "failed",
			Error:   err.Error(),
		})
		return NewError("send", "mock", err)
	}

	m.record(MockSentEmail{
		Message: message,
		SentAt:  time.Now(),
		Status:  "sent",
	})

	m.logger.Debug("Mock email sent successfully",
		"to", message.To,
		"subject", message.Subject,
		"delay", m.config.MockDelay,
	)

	return nil
}

func (m *MockClient) SendBulk(ctx context.Context, messages []*Message) error {
	for _, message := range messages {
		if err := m.Send(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockClient) ValidateEmail(email string) error {
	return validateAddress(email)
}

func (m *MockClient) Close() error {
	m.mu.RLock()
	total := len(m.sentEmails)
	m.mu.RUnlock()

	m.logger.Info("Mock email client closed", "total_sent", total)
	return nil
}

// GetSentEmails returns a copy of everything recorded so far.
func (m *MockClient) GetSentEmails() []MockSentEmail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emails := make([]MockSentEmail, len(m.sentEmails))
	copy(emails, m.sentEmails)
	return emails
}

// GetLastSentEmail returns the most recent record, or nil.
func (m *MockClient) GetLastSentEmail() *MockSentEmail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.sentEmails) == 0 {
		return nil
	}
	return &m.sentEmails[len(m.sentEmails)-1]
}

// ClearSentEmails resets the recorded history.
func (m *MockClient) ClearSentEmails() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentEmails = m.sentEmails[:0]
}

func (m *MockClient) shouldFail() bool {
	if m.config.MockFailRate <= 0 {
		return false
	}
	return rand.Float64() < m.config.MockFailRate
}

func (m *MockClient) record(email MockSentEmail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentEmails = append(m.sentEmails, email)
}
