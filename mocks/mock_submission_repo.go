package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverscan/internal/domain"
	"coverscan/internal/port"
)

// MockSubmissionRepo is a mock implementation of port.SubmissionRepository.
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission, pages []domain.SubmissionPage) error {
	args := m.Called(ctx, sub, pages)
	return args.Error(0)
}

func (m *MockSubmissionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionRepo) ListPages(ctx context.Context, tenantID, submissionID uuid.UUID) ([]domain.SubmissionPage, error) {
	args := m.Called(ctx, tenantID, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubmissionPage), args.Error(1)
}

func (m *MockSubmissionRepo) MarkProcessing(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSubmissionRepo) SaveResult(ctx context.Context, tenantID, id uuid.UUID, record, warnings json.RawMessage, provider string) error {
	args := m.Called(ctx, tenantID, id, record, warnings, provider)
	return args.Error(0)
}

func (m *MockSubmissionRepo) MarkFailed(ctx context.Context, tenantID, id uuid.UUID, processingError string) error {
	args := m.Called(ctx, tenantID, id, processingError)
	return args.Error(0)
}

func (m *MockSubmissionRepo) MarkQueued(ctx context.Context, tenantID, id uuid.UUID, nextRetryAt time.Time) error {
	args := m.Called(ctx, tenantID, id, nextRetryAt)
	return args.Error(0)
}

func (m *MockSubmissionRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Submission, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) UpdateRecord(ctx context.Context, tenantID, id uuid.UUID, record, warnings json.RawMessage) error {
	args := m.Called(ctx, tenantID, id, record, warnings)
	return args.Error(0)
}

func (m *MockSubmissionRepo) SetReview(ctx context.Context, tenantID, id uuid.UUID, status domain.ReviewStatus, reviewedBy uuid.UUID, notes string) error {
	args := m.Called(ctx, tenantID, id, status, reviewedBy, notes)
	return args.Error(0)
}

func (m *MockSubmissionRepo) ResetReview(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSubmissionRepo) MarkSubmitted(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSubmissionRepo) ListCompleted(ctx context.Context, offset, limit int) ([]domain.Submission, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}
