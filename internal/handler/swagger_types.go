package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"coverscan/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// LoginRequest represents the login request body.
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required" example:"acme"`
	Email      string `json:"email" binding:"required" example:"admin@acme.com"`
	Password   string `json:"password" binding:"required" example:"securepassword123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// CreateSubmissionRequest represents the create submission request body.
type CreateSubmissionRequest struct {
	FormType    domain.FormType `json:"form_type" binding:"required" example:"auto"`
	PageFileIDs []uuid.UUID     `json:"page_file_ids" binding:"required,min=1"`
}

// UpdateRecordRequest represents the whole-record replacement request body.
type UpdateRecordRequest struct {
	Record json.RawMessage `json:"record" binding:"required" swaggertype:"object"`
}

// AddEntityRequest represents the add entity request body.
type AddEntityRequest struct {
	Collection string `json:"collection" binding:"required" example:"vehicles"`
}

// EditEntityRequest represents the field-level entity edit request body.
// A null value clears the field.
type EditEntityRequest struct {
	Fields map[string]*string `json:"fields" binding:"required"`
}

// ReviewSubmissionRequest represents the review decision request body.
type ReviewSubmissionRequest struct {
	Status string `json:"status" binding:"required" example:"approved"`
	Notes  string `json:"notes" example:"Checked against the scanned pages. Looks right."`
}

// SubmitRequest represents the submit options request body.
type SubmitRequest struct {
	Force bool `json:"force" example:"false"`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	Email    string          `json:"email" binding:"required" example:"jane.doe@acme.com"`
	Password string          `json:"password" binding:"required" example:"securepassword123"`
	FullName string          `json:"full_name" example:"Jane Doe"`
	Role     domain.UserRole `json:"role" binding:"required" example:"member"`
}

// UpdateUserRequest represents the update user request body.
type UpdateUserRequest struct {
	Email    *string          `json:"email" example:"jane.smith@acme.com"`
	FullName *string          `json:"full_name" example:"Jane Smith"`
	Role     *domain.UserRole `json:"role" example:"admin"`
	IsActive *bool            `json:"is_active" example:"true"`
}

// CreateTenantRequest represents the create tenant request body.
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required" example:"Acme Insurance Agency"`
	Slug string `json:"slug" binding:"required" example:"acme"`
}

// UpdateTenantRequest represents the update tenant request body.
type UpdateTenantRequest struct {
	Name     *string `json:"name" example:"Acme Insurance Group"`
	Slug     *string `json:"slug" example:"acme-group"`
	IsActive *bool   `json:"is_active" example:"false"`
}

// --- Response Types ---

// TokenResponse represents the authentication token response.
type TokenResponse struct {
	AccessToken  string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string    `json:"refresh_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt    time.Time `json:"expires_at" example:"2025-01-15T10:30:00Z"`
}

// IdentityResponse represents the authenticated caller's identity.
type IdentityResponse struct {
	TenantID uuid.UUID       `json:"tenant_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID   uuid.UUID       `json:"user_id" example:"987fcdeb-51a2-3bc4-d567-890123456789"`
	Email    string          `json:"email" example:"jane.doe@acme.com"`
	Role     domain.UserRole `json:"role" example:"member"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// FileWithDownloadURL represents a file with its download URL.
type FileWithDownloadURL struct {
	File        domain.FileMeta `json:"file"`
	DownloadURL string          `json:"download_url" example:"https://s3.amazonaws.com/coverscan-uploads/...?X-Amz-Signature=..."`
}

// SubmissionDetail represents a submission together with its page scans.
type SubmissionDetail struct {
	Submission *domain.Submission      `json:"submission"`
	Pages      []domain.SubmissionPage `json:"pages"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponse wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
