package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"coverscan/internal/domain"
)

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	Status       domain.ProcessingStatus
	ReviewStatus domain.ReviewStatus
	FormType     domain.FormType
	Offset       int
	Limit        int
}

// SubmissionRepository defines the contract for submission persistence.
// All tenant-facing methods include tenantID for tenant isolation; the
// queue and batch methods work across tenants for system jobs.
type SubmissionRepository interface {
	// Create inserts the submission and its page rows in one transaction.
	Create(ctx context.Context, sub *domain.Submission, pages []domain.SubmissionPage) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Submission, error)
	List(ctx context.Context, tenantID uuid.UUID, filter SubmissionFilter) ([]domain.Submission, int, error)
	ListPages(ctx context.Context, tenantID, submissionID uuid.UUID) ([]domain.SubmissionPage, error)

	// Processing lifecycle.
	MarkProcessing(ctx context.Context, tenantID, id uuid.UUID) error
	SaveResult(ctx context.Context, tenantID, id uuid.UUID, record, warnings json.RawMessage, provider string) error
	MarkFailed(ctx context.Context, tenantID, id uuid.UUID, processingError string) error
	MarkQueued(ctx context.Context, tenantID, id uuid.UUID, nextRetryAt time.Time) error
	// ClaimQueued atomically flips due queued submissions to processing and
	// returns them; concurrent workers never claim the same row.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Submission, error)

	// Editing and review.
	UpdateRecord(ctx context.Context, tenantID, id uuid.UUID, record, warnings json.RawMessage) error
	SetReview(ctx context.Context, tenantID, id uuid.UUID, status domain.ReviewStatus, reviewedBy uuid.UUID, notes string) error
	// ResetReview returns an edited submission to pending review and clears
	// the previous reviewer.
	ResetReview(ctx context.Context, tenantID, id uuid.UUID) error
	MarkSubmitted(ctx context.Context, tenantID, id uuid.UUID) error

	// ListCompleted pages through completed submissions across all tenants;
	// used by the batch resync job.
	ListCompleted(ctx context.Context, offset, limit int) ([]domain.Submission, error)
}

// SubmissionAuditRepository defines the contract for submission audit trail persistence.
type SubmissionAuditRepository interface {
	Create(ctx context.Context, entry *domain.SubmissionAuditEntry) error
	ListBySubmission(ctx context.Context, tenantID, submissionID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error)
}
