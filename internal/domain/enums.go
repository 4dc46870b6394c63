package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ValidUserRoles enumerates the assignable roles.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// FormType distinguishes the two supported application form kinds.
type FormType string

const (
	FormTypeAuto FormType = "auto"
	FormTypeHome FormType = "home"
)

// Valid reports whether the form type is one of the supported kinds.
func (f FormType) Valid() bool {
	return f == FormTypeAuto || f == FormTypeHome
}

// ProcessingStatus represents the recognition lifecycle of a submission.
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusQueued     ProcessingStatus = "queued"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// ReviewStatus represents the human review lifecycle of a submission.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending_review"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Valid reports whether the review status is one a reviewer may set.
func (r ReviewStatus) Valid() bool {
	return r == ReviewStatusPending || r == ReviewStatusApproved || r == ReviewStatusRejected
}

// AuditAction identifies an entry in a submission's audit trail.
type AuditAction string

const (
	AuditCreated              AuditAction = "created"
	AuditProcessed            AuditAction = "processed"
	AuditFailed               AuditAction = "failed"
	AuditQueued               AuditAction = "queued"
	AuditRetried              AuditAction = "retried"
	AuditRecordEdited         AuditAction = "record_edited"
	AuditEntityAdded          AuditAction = "entity_added"
	AuditEntityRemoved        AuditAction = "entity_removed"
	AuditEntityDuplicated     AuditAction = "entity_duplicated"
	AuditReferencesReassigned AuditAction = "references_reassigned"
	AuditReviewUpdated        AuditAction = "review_updated"
	AuditSubmitted            AuditAction = "submitted"
	AuditResynced             AuditAction = "resynced"
)

// DeletePolicy controls what happens to dependent items when an entity with
// inbound references is removed.
type DeletePolicy string

const (
	// DeletePolicyBlock refuses the removal while dependents exist.
	DeletePolicyBlock DeletePolicy = "block"
	// DeletePolicyCascade removes the dependents along with the entity.
	DeletePolicyCascade DeletePolicy = "cascade"
	// DeletePolicyOrphan removes only the entity and leaves dependents to
	// the synchronizer's posture.
	DeletePolicyOrphan DeletePolicy = "orphan"
)

// Valid reports whether the policy is one of the three supported modes.
func (p DeletePolicy) Valid() bool {
	return p == DeletePolicyBlock || p == DeletePolicyCascade || p == DeletePolicyOrphan
}
