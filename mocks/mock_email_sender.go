package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coverscan/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendSubmissionReceipt(ctx context.Context, toEmail, toName string, sub *domain.Submission) error {
	args := m.Called(ctx, toEmail, toName, sub)
	return args.Error(0)
}
