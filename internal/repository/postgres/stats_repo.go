package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coverscan/internal/domain"
	"coverscan/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const tenantSubmissionStatsQuery = `SELECT
	COUNT(*) AS total_submissions,
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS status_pending,
	COUNT(CASE WHEN status = 'processing' THEN 1 END) AS status_processing,
	COUNT(CASE WHEN status = 'queued' THEN 1 END) AS status_queued,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS status_completed,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS status_failed,
	COUNT(CASE WHEN review_status = 'pending_review' THEN 1 END) AS review_pending,
	COUNT(CASE WHEN review_status = 'approved' THEN 1 END) AS review_approved,
	COUNT(CASE WHEN review_status = 'rejected' THEN 1 END) AS review_rejected,
	COUNT(CASE WHEN form_type = 'auto' THEN 1 END) AS form_auto,
	COUNT(CASE WHEN form_type = 'home' THEN 1 END) AS form_home,
	COUNT(CASE WHEN submitted_at IS NOT NULL THEN 1 END) AS submitted
FROM submissions WHERE tenant_id = $1`

const userSubmissionStatsQuery = `SELECT
	COUNT(*) AS total_submissions,
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS status_pending,
	COUNT(CASE WHEN status = 'processing' THEN 1 END) AS status_processing,
	COUNT(CASE WHEN status = 'queued' THEN 1 END) AS status_queued,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS status_completed,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS status_failed,
	COUNT(CASE WHEN review_status = 'pending_review' THEN 1 END) AS review_pending,
	COUNT(CASE WHEN review_status = 'approved' THEN 1 END) AS review_approved,
	COUNT(CASE WHEN review_status = 'rejected' THEN 1 END) AS review_rejected,
	COUNT(CASE WHEN form_type = 'auto' THEN 1 END) AS form_auto,
	COUNT(CASE WHEN form_type = 'home' THEN 1 END) AS form_home,
	COUNT(CASE WHEN submitted_at IS NOT NULL THEN 1 END) AS submitted
FROM submissions WHERE tenant_id = $1 AND created_by = $2`

func (r *statsRepo) GetTenantStats(ctx context.Context, tenantID uuid.UUID) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, tenantSubmissionStatsQuery, tenantID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetTenantStats submissions: %w", err)
	}

	var filesCount int
	if err := r.db.GetContext(ctx, &filesCount,
		"SELECT COUNT(*) FROM file_metadata WHERE tenant_id = $1 AND status != $2",
		tenantID, domain.FileStatusDeleted); err != nil {
		return nil, fmt.Errorf("statsRepo.GetTenantStats files: %w", err)
	}
	stats.TotalFiles = filesCount

	return &stats, nil
}

func (r *statsRepo) GetUserStats(ctx context.Context, tenantID, userID uuid.UUID) (*domain.Stats, error) {
	var stats domain.Stats
	if err := r.db.GetContext(ctx, &stats, userSubmissionStatsQuery, tenantID, userID); err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats submissions: %w", err)
	}

	var filesCount int
	if err := r.db.GetContext(ctx, &filesCount,
		`SELECT COUNT(*) FROM file_metadata
		 WHERE tenant_id = $1 AND uploaded_by = $2 AND status != $3`,
		tenantID, userID, domain.FileStatusDeleted); err != nil {
		return nil, fmt.Errorf("statsRepo.GetUserStats files: %w", err)
	}
	stats.TotalFiles = filesCount

	return &stats, nil
}
