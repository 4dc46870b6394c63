package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverscan/internal/domain"
)

// MockSubmissionAuditRepo is a mock implementation of port.SubmissionAuditRepository.
type MockSubmissionAuditRepo struct {
	mock.Mock
}

func (m *MockSubmissionAuditRepo) Create(ctx context.Context, entry *domain.SubmissionAuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSubmissionAuditRepo) ListBySubmission(ctx context.Context, tenantID, submissionID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	args := m.Called(ctx, tenantID, submissionID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SubmissionAuditEntry), args.Int(1), args.Error(2)
}
