package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverscan/internal/appform"
	"coverscan/internal/domain"
	"coverscan/internal/port"
	"coverscan/internal/service"
)

// MockSubmissionService is a mock implementation of service.SubmissionService.
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) CreateAndProcess(ctx context.Context, input *service.CreateSubmissionInput) (*domain.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) GetByID(ctx context.Context, tenantID, subID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, tenantID, subID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) List(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionService) ListPages(ctx context.Context, tenantID, subID uuid.UUID) ([]domain.SubmissionPage, error) {
	args := m.Called(ctx, tenantID, subID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubmissionPage), args.Error(1)
}

func (m *MockSubmissionService) Retry(ctx context.Context, tenantID, subID, userID uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, tenantID, subID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) UpdateRecord(ctx context.Context, input *service.UpdateRecordInput) (*service.RecordView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordView), args.Error(1)
}

func (m *MockSubmissionService) AddEntity(ctx context.Context, input *service.EntityInput) (*service.RecordView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordView), args.Error(1)
}

func (m *MockSubmissionService) EditEntityFields(ctx context.Context, input *service.EditEntityInput) (*service.RecordView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordView), args.Error(1)
}

func (m *MockSubmissionService) RemoveEntity(ctx context.Context, input *service.RemoveEntityInput) (*service.RecordView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordView), args.Error(1)
}

func (m *MockSubmissionService) DuplicateEntity(ctx context.Context, input *service.EntityInput) (*service.RecordView, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordView), args.Error(1)
}

func (m *MockSubmissionService) GetDependencies(ctx context.Context, tenantID, subID uuid.UUID, collection appform.CollectionName, entityID string) ([]appform.Dependency, error) {
	args := m.Called(ctx, tenantID, subID, collection, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appform.Dependency), args.Error(1)
}

func (m *MockSubmissionService) CheckConsistency(ctx context.Context, tenantID, subID uuid.UUID) (*service.ConsistencyReport, error) {
	args := m.Called(ctx, tenantID, subID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConsistencyReport), args.Error(1)
}

func (m *MockSubmissionService) UpdateReview(ctx context.Context, input *service.UpdateReviewInput) (*domain.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) Submit(ctx context.Context, input *service.SubmitInput) (*domain.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) ListAudit(ctx context.Context, tenantID, subID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	args := m.Called(ctx, tenantID, subID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SubmissionAuditEntry), args.Int(1), args.Error(2)
}

func (m *MockSubmissionService) ListForExport(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) ProcessSubmission(ctx context.Context, sub *domain.Submission) {
	m.Called(ctx, sub)
}
