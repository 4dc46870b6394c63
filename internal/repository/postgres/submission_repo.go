package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coverscan/internal/domain"
	"coverscan/internal/port"
)

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission, pages []domain.SubmissionPage) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("submissionRepo.Create begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO submissions (
		id, tenant_id, form_type, status, processing_error, parser_provider,
		record_data, sync_warnings, page_count, retry_count, next_retry_at,
		processed_at, review_status, reviewed_by, reviewed_at, reviewer_notes,
		submitted_at, created_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16,
		$17, $18, $19, $20
	)`

	_, err = tx.ExecContext(ctx, query,
		sub.ID, sub.TenantID, sub.FormType, sub.Status, sub.ProcessingError, sub.ParserProvider,
		sub.RecordData, sub.SyncWarnings, sub.PageCount, sub.RetryCount, sub.NextRetryAt,
		sub.ProcessedAt, sub.ReviewStatus, sub.ReviewedBy, sub.ReviewedAt, sub.ReviewerNotes,
		sub.SubmittedAt, sub.CreatedBy, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.Create: %w", err)
	}

	pageQuery := `INSERT INTO submission_pages (id, submission_id, tenant_id, file_id, page_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range pages {
		pages[i].ID = uuid.New()
		pages[i].SubmissionID = sub.ID
		pages[i].TenantID = sub.TenantID
		pages[i].CreatedAt = now
		_, err = tx.ExecContext(ctx, pageQuery,
			pages[i].ID, pages[i].SubmissionID, pages[i].TenantID,
			pages[i].FileID, pages[i].PageNumber, pages[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("submissionRepo.Create page %d: %w", pages[i].PageNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("submissionRepo.Create commit: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.GetContext(ctx, &sub,
		"SELECT * FROM submissions WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetByID: %w", err)
	}
	return &sub, nil
}

// buildSubmissionWhere constructs a dynamic WHERE clause for submission queries.
// It returns the clause string (starting with "WHERE") and the positional arguments.
func buildSubmissionWhere(tenantID uuid.UUID, filter port.SubmissionFilter) (clause string, args []interface{}) {
	args = []interface{}{tenantID}
	clause = "WHERE tenant_id = $1"
	argN := 2

	if filter.Status != "" {
		clause += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, filter.Status)
		argN++
	}
	if filter.ReviewStatus != "" {
		clause += fmt.Sprintf(" AND review_status = $%d", argN)
		args = append(args, filter.ReviewStatus)
		argN++
	}
	if filter.FormType != "" {
		clause += fmt.Sprintf(" AND form_type = $%d", argN)
		args = append(args, filter.FormType)
		argN++ //nolint:ineffassign // argN kept incremented for consistency
	}

	return clause, args
}

func (r *submissionRepo) List(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, int, error) {
	whereClause, args := buildSubmissionWhere(tenantID, filter)

	var total int
	err := r.db.GetContext(ctx, &total,
		fmt.Sprintf("SELECT COUNT(*) FROM submissions %s", whereClause), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List count: %w", err)
	}

	var subs []domain.Submission
	query := fmt.Sprintf(`SELECT * FROM submissions %s
		ORDER BY created_at DESC OFFSET %d LIMIT %d`,
		whereClause, filter.Offset, filter.Limit)
	err = r.db.SelectContext(ctx, &subs, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List: %w", err)
	}
	return subs, total, nil
}

func (r *submissionRepo) ListPages(ctx context.Context, tenantID, submissionID uuid.UUID) ([]domain.SubmissionPage, error) {
	var pages []domain.SubmissionPage
	err := r.db.SelectContext(ctx, &pages,
		`SELECT * FROM submission_pages
		 WHERE submission_id = $1 AND tenant_id = $2
		 ORDER BY page_number ASC`,
		submissionID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("submissionRepo.ListPages: %w", err)
	}
	return pages, nil
}

func (r *submissionRepo) MarkProcessing(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET status = $1, processing_error = '', updated_at = $2
		 WHERE id = $3 AND tenant_id = $4`,
		domain.ProcessingStatusProcessing, time.Now().UTC(), id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.MarkProcessing: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) SaveResult(ctx context.Context, tenantID, id uuid.UUID, record, warnings json.RawMessage, provider string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET
			status = $1, record_data = $2, sync_warnings = $3, parser_provider = $4,
			processing_error = '', processed_at = $5, next_retry_at = NULL, updated_at = $5
		 WHERE id = $6 AND tenant_id = $7`,
		domain.ProcessingStatusCompleted, record, warnings, provider, now, id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.SaveResult: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) MarkFailed(ctx context.Context, tenantID, id uuid.UUID, processingError string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET status = $1, processing_error = $2, next_retry_at = NULL, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5`,
		domain.ProcessingStatusFailed, processingError, time.Now().UTC(), id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.MarkFailed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) MarkQueued(ctx context.Context, tenantID, id uuid.UUID, nextRetryAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET
			status = $1, retry_count = retry_count + 1, next_retry_at = $2, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5`,
		domain.ProcessingStatusQueued, nextRetryAt, time.Now().UTC(), id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.MarkQueued: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Submission, error) {
	// SKIP LOCKED keeps concurrent workers from claiming the same rows.
	var subs []domain.Submission
	err := r.db.SelectContext(ctx, &subs,
		`UPDATE submissions SET status = $1, next_retry_at = NULL, updated_at = $2
		 WHERE id IN (
			SELECT id FROM submissions
			WHERE status = $3 AND next_retry_at <= $2
			ORDER BY next_retry_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $4
		 )
		 RETURNING *`,
		domain.ProcessingStatusProcessing, time.Now().UTC(), domain.ProcessingStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("submissionRepo.ClaimQueued: %w", err)
	}
	return subs, nil
}

func (r *submissionRepo) UpdateRecord(ctx context.Context, tenantID, id uuid.UUID, record, warnings json.RawMessage) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET record_data = $1, sync_warnings = $2, updated_at = $3
		 WHERE id = $4 AND tenant_id = $5`,
		record, warnings, time.Now().UTC(), id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.UpdateRecord: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) SetReview(ctx context.Context, tenantID, id uuid.UUID, status domain.ReviewStatus, reviewedBy uuid.UUID, notes string) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET
			review_status = $1, reviewed_by = $2, reviewed_at = $3, reviewer_notes = $4, updated_at = $3
		 WHERE id = $5 AND tenant_id = $6`,
		status, reviewedBy, now, notes, id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.SetReview: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) ResetReview(ctx context.Context, tenantID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET
			review_status = $1, reviewed_by = NULL, reviewed_at = NULL, updated_at = $2
		 WHERE id = $3 AND tenant_id = $4`,
		domain.ReviewStatusPending, time.Now().UTC(), id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.ResetReview: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) MarkSubmitted(ctx context.Context, tenantID, id uuid.UUID) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET submitted_at = $1, updated_at = $1
		 WHERE id = $2 AND tenant_id = $3 AND submitted_at IS NULL`,
		now, id, tenantID)
	if err != nil {
		return fmt.Errorf("submissionRepo.MarkSubmitted: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAlreadySubmitted
	}
	return nil
}

func (r *submissionRepo) ListCompleted(ctx context.Context, offset, limit int) ([]domain.Submission, error) {
	var subs []domain.Submission
	err := r.db.SelectContext(ctx, &subs,
		`SELECT * FROM submissions WHERE status = $1
		 ORDER BY created_at ASC OFFSET $2 LIMIT $3`,
		domain.ProcessingStatusCompleted, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("submissionRepo.ListCompleted: %w", err)
	}
	return subs, nil
}
