package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTenantInactive      = errors.New("tenant is inactive")
	ErrUserInactive        = errors.New("user is inactive")
	ErrInsufficientRole    = errors.New("insufficient role for this action")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDuplicateEmail      = errors.New("email already exists for this tenant")
	ErrDuplicateTenantSlug = errors.New("tenant slug already exists")
	ErrUploadFailed        = errors.New("file upload to storage failed")

	// Submission lifecycle.
	ErrInvalidFormType      = errors.New("invalid form type")
	ErrFileNotUploaded      = errors.New("referenced file is not in uploaded status")
	ErrTooManyPages         = errors.New("submission exceeds the page limit")
	ErrProcessingIncomplete = errors.New("submission has not finished processing")
	ErrNotRetryable         = errors.New("submission is not in a retryable state")
	ErrAlreadySubmitted     = errors.New("submission has already been submitted")
	ErrInvalidRecordData    = errors.New("record data does not match expected format")

	// Record editing.
	ErrUnknownCollection = errors.New("unknown collection name")
	ErrUnknownField      = errors.New("unknown field name for this collection")
	ErrCollectionFull    = errors.New("collection is at its maximum size")
	ErrDeletionBlocked   = errors.New("entity has dependent items")
	ErrConsistencyIssues = errors.New("record has unresolved consistency issues")
)
