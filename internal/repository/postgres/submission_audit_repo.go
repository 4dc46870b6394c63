package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coverscan/internal/domain"
	"coverscan/internal/port"
)

type submissionAuditRepo struct {
	db *sqlx.DB
}

// NewSubmissionAuditRepo creates a new PostgreSQL-backed SubmissionAuditRepository.
func NewSubmissionAuditRepo(db *sqlx.DB) port.SubmissionAuditRepository {
	return &submissionAuditRepo{db: db}
}

func (r *submissionAuditRepo) Create(ctx context.Context, entry *domain.SubmissionAuditEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submission_audit_log (id, tenant_id, submission_id, user_id, action, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.TenantID, entry.SubmissionID, entry.UserID, entry.Action, entry.Detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("submissionAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *submissionAuditRepo) ListBySubmission(ctx context.Context, tenantID, submissionID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM submission_audit_log WHERE tenant_id = $1 AND submission_id = $2`,
		tenantID, submissionID)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionAuditRepo.ListBySubmission count: %w", err)
	}

	var entries []domain.SubmissionAuditEntry
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM submission_audit_log
		 WHERE tenant_id = $1 AND submission_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		tenantID, submissionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionAuditRepo.ListBySubmission: %w", err)
	}
	return entries, total, nil
}
