package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated agency tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User represents an authenticated user belonging to a tenant.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FileMeta stores metadata about an uploaded page scan.
type FileMeta struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TenantID     uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	UploadedBy   uuid.UUID  `db:"uploaded_by" json:"uploaded_by"`
	FileName     string     `db:"file_name" json:"file_name"`
	OriginalName string     `db:"original_name" json:"original_name"`
	FileType     FileType   `db:"file_type" json:"file_type"`
	FileSize     int64      `db:"file_size" json:"file_size"`
	S3Bucket     string     `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string     `db:"s3_key" json:"s3_key"`
	ContentType  string     `db:"content_type" json:"content_type"`
	Status       FileStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Submission is one scanned application form working its way from page
// uploads through recognition, review, and final submission. RecordData and
// SyncWarnings hold the canonical record and the synchronizer's warnings as
// JSONB; services decode them into appform types.
type Submission struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	TenantID        uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	FormType        FormType         `db:"form_type" json:"form_type"`
	Status          ProcessingStatus `db:"status" json:"status"`
	ProcessingError string           `db:"processing_error" json:"processing_error,omitempty"`
	ParserProvider  string           `db:"parser_provider" json:"parser_provider,omitempty"`
	RecordData      json.RawMessage  `db:"record_data" json:"record_data,omitempty"`
	SyncWarnings    json.RawMessage  `db:"sync_warnings" json:"sync_warnings,omitempty"`
	PageCount       int              `db:"page_count" json:"page_count"`
	RetryCount      int              `db:"retry_count" json:"retry_count"`
	NextRetryAt     *time.Time       `db:"next_retry_at" json:"next_retry_at,omitempty"`
	ProcessedAt     *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
	ReviewStatus    ReviewStatus     `db:"review_status" json:"review_status"`
	ReviewedBy      *uuid.UUID       `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewerNotes   string           `db:"reviewer_notes" json:"reviewer_notes,omitempty"`
	SubmittedAt     *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedBy       uuid.UUID        `db:"created_by" json:"created_by"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// SubmissionPage links a submission to one uploaded page scan in order.
type SubmissionPage struct {
	ID           uuid.UUID `db:"id" json:"id"`
	SubmissionID uuid.UUID `db:"submission_id" json:"submission_id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	FileID       uuid.UUID `db:"file_id" json:"file_id"`
	PageNumber   int       `db:"page_number" json:"page_number"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SubmissionAuditEntry is one row of a submission's audit trail. UserID is
// nil for actions taken by the system (processing, queue retries).
type SubmissionAuditEntry struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	TenantID     uuid.UUID   `db:"tenant_id" json:"tenant_id"`
	SubmissionID uuid.UUID   `db:"submission_id" json:"submission_id"`
	UserID       *uuid.UUID  `db:"user_id" json:"user_id,omitempty"`
	Action       AuditAction `db:"action" json:"action"`
	Detail       string      `db:"detail" json:"detail,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// Stats aggregates submission and file counts for a tenant or a user.
type Stats struct {
	TotalSubmissions int `db:"total_submissions" json:"total_submissions"`
	StatusPending    int `db:"status_pending" json:"status_pending"`
	StatusProcessing int `db:"status_processing" json:"status_processing"`
	StatusQueued     int `db:"status_queued" json:"status_queued"`
	StatusCompleted  int `db:"status_completed" json:"status_completed"`
	StatusFailed     int `db:"status_failed" json:"status_failed"`
	ReviewPending    int `db:"review_pending" json:"review_pending"`
	ReviewApproved   int `db:"review_approved" json:"review_approved"`
	ReviewRejected   int `db:"review_rejected" json:"review_rejected"`
	FormAuto         int `db:"form_auto" json:"form_auto"`
	FormHome         int `db:"form_home" json:"form_home"`
	Submitted        int `db:"submitted" json:"submitted"`
	TotalFiles       int `db:"total_files" json:"total_files"`
}
