package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"coverscan/internal/appform"
	"coverscan/internal/config"
	"coverscan/internal/domain"
	"coverscan/internal/merge"
	"coverscan/internal/parser"
	"coverscan/internal/port"
	"coverscan/internal/reconcile"
	"coverscan/internal/validator"
)

const processTimeout = 5 * time.Minute

// exportBatchSize bounds the per-query page size when streaming CSV exports.
const exportBatchSize = 500

// CreateSubmissionInput is the DTO for creating a submission and triggering recognition.
type CreateSubmissionInput struct {
	TenantID    uuid.UUID
	CreatedBy   uuid.UUID
	FormType    domain.FormType
	PageFileIDs []uuid.UUID
}

// UpdateRecordInput is the DTO for a whole-record edit.
type UpdateRecordInput struct {
	TenantID     uuid.UUID
	SubmissionID uuid.UUID
	UserID       uuid.UUID
	Record       json.RawMessage
}

// EntityInput addresses one entity inside a submission's record.
type EntityInput struct {
	TenantID     uuid.UUID
	SubmissionID uuid.UUID
	UserID       uuid.UUID
	Collection   appform.CollectionName
	EntityID     string
}

// EditEntityInput is the DTO for field-level entity edits. A nil value
// clears the field; a non-nil value becomes a high-confidence, unflagged
// human entry.
type EditEntityInput struct {
	EntityInput
	Fields map[string]*string
}

// RemoveEntityInput is the DTO for a guarded entity removal.
type RemoveEntityInput struct {
	EntityInput
	Policy domain.DeletePolicy
}

// UpdateReviewInput is the DTO for approving or rejecting a submission.
type UpdateReviewInput struct {
	TenantID     uuid.UUID
	SubmissionID uuid.UUID
	ReviewerID   uuid.UUID
	Status       domain.ReviewStatus
	Notes        string
}

// SubmitInput is the DTO for finalizing a submission.
type SubmitInput struct {
	TenantID     uuid.UUID
	SubmissionID uuid.UUID
	UserID       uuid.UUID
	Force        bool
}

// RecordView pairs the record state after a mutation with what the
// synchronization pass did to it.
type RecordView struct {
	SubmissionID uuid.UUID         `json:"submission_id"`
	Record       *appform.Record   `json:"record"`
	Warnings     []string          `json:"warnings"`
	SyncChanges  reconcile.Changes `json:"sync_changes"`
}

// ConsistencyReport is the read-only checker outcome for one submission.
type ConsistencyReport struct {
	Issues  []validator.Issue `json:"issues"`
	Summary validator.Summary `json:"summary"`
}

// SubmissionService defines the submission lifecycle contract: intake,
// recognition, record editing, review, and final submission.
type SubmissionService interface {
	CreateAndProcess(ctx context.Context, input *CreateSubmissionInput) (*domain.Submission, error)
	GetByID(ctx context.Context, tenantID, subID uuid.UUID) (*domain.Submission, error)
	List(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, int, error)
	ListPages(ctx context.Context, tenantID, subID uuid.UUID) ([]domain.SubmissionPage, error)
	Retry(ctx context.Context, tenantID, subID, userID uuid.UUID) (*domain.Submission, error)

	UpdateRecord(ctx context.Context, input *UpdateRecordInput) (*RecordView, error)
	AddEntity(ctx context.Context, input *EntityInput) (*RecordView, error)
	EditEntityFields(ctx context.Context, input *EditEntityInput) (*RecordView, error)
	RemoveEntity(ctx context.Context, input *RemoveEntityInput) (*RecordView, error)
	DuplicateEntity(ctx context.Context, input *EntityInput) (*RecordView, error)
	GetDependencies(ctx context.Context, tenantID, subID uuid.UUID, collection appform.CollectionName, entityID string) ([]appform.Dependency, error)
	CheckConsistency(ctx context.Context, tenantID, subID uuid.UUID) (*ConsistencyReport, error)

	UpdateReview(ctx context.Context, input *UpdateReviewInput) (*domain.Submission, error)
	Submit(ctx context.Context, input *SubmitInput) (*domain.Submission, error)
	ListAudit(ctx context.Context, tenantID, subID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error)
	ListForExport(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, error)

	// ProcessSubmission runs the recognition pipeline for a submission
	// already marked processing. It is called by the background goroutine
	// and by the queue worker.
	ProcessSubmission(ctx context.Context, sub *domain.Submission)
}

type submissionService struct {
	subRepo   port.SubmissionRepository
	fileRepo  port.FileMetaRepository
	userRepo  port.UserRepository
	auditRepo port.SubmissionAuditRepository
	storage   port.ObjectStorage
	pages     port.PageSetParser
	checker   *validator.Engine
	email     port.EmailSender
	cfg       *config.Config
}

// NewSubmissionService creates a new SubmissionService implementation.
func NewSubmissionService(
	subRepo port.SubmissionRepository,
	fileRepo port.FileMetaRepository,
	userRepo port.UserRepository,
	auditRepo port.SubmissionAuditRepository,
	storage port.ObjectStorage,
	pages port.PageSetParser,
	checker *validator.Engine,
	email port.EmailSender,
	cfg *config.Config,
) SubmissionService {
	return &submissionService{
		subRepo:   subRepo,
		fileRepo:  fileRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		storage:   storage,
		pages:     pages,
		checker:   checker,
		email:     email,
		cfg:       cfg,
	}
}

// audit records a submission mutation in the audit trail. Failures are
// logged but never block business logic.
func (s *submissionService) audit(ctx context.Context, tenantID, subID uuid.UUID, userID *uuid.UUID, action domain.AuditAction, detail string) {
	if s.auditRepo == nil {
		return
	}
	entry := &domain.SubmissionAuditEntry{
		ID:           uuid.New(),
		TenantID:     tenantID,
		SubmissionID: subID,
		UserID:       userID,
		Action:       action,
		Detail:       detail,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("submissionService.audit: failed to write %s entry for %s: %v", action, subID, err)
	}
}

func (s *submissionService) CreateAndProcess(ctx context.Context, input *CreateSubmissionInput) (*domain.Submission, error) {
	if !input.FormType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormType, input.FormType)
	}
	if len(input.PageFileIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one page is required", domain.ErrTooManyPages)
	}
	if max := s.cfg.Limits.MaxPages; max > 0 && len(input.PageFileIDs) > max {
		return nil, fmt.Errorf("%w: %d pages exceeds limit of %d", domain.ErrTooManyPages, len(input.PageFileIDs), max)
	}

	// Every referenced file must exist in this tenant and be fully uploaded.
	for _, fileID := range input.PageFileIDs {
		file, err := s.fileRepo.GetByID(ctx, input.TenantID, fileID)
		if err != nil {
			return nil, fmt.Errorf("looking up page file %s: %w", fileID, err)
		}
		if file.Status != domain.FileStatusUploaded {
			return nil, fmt.Errorf("%w: file %s is %s", domain.ErrFileNotUploaded, fileID, file.Status)
		}
	}

	sub := &domain.Submission{
		ID:           uuid.New(),
		TenantID:     input.TenantID,
		FormType:     input.FormType,
		Status:       domain.ProcessingStatusPending,
		ReviewStatus: domain.ReviewStatusPending,
		PageCount:    len(input.PageFileIDs),
		CreatedBy:    input.CreatedBy,
	}
	pages := make([]domain.SubmissionPage, 0, len(input.PageFileIDs))
	for i, fileID := range input.PageFileIDs {
		pages = append(pages, domain.SubmissionPage{
			ID:           uuid.New(),
			SubmissionID: sub.ID,
			TenantID:     input.TenantID,
			FileID:       fileID,
			PageNumber:   i + 1,
		})
	}

	log.Printf("submissionService.CreateAndProcess: creating submission %s with %d page(s) (tenant %s)",
		sub.ID, len(pages), input.TenantID)

	if err := s.subRepo.Create(ctx, sub, pages); err != nil {
		return nil, fmt.Errorf("creating submission: %w", err)
	}
	s.audit(ctx, sub.TenantID, sub.ID, &input.CreatedBy, domain.AuditCreated,
		fmt.Sprintf("form_type=%s pages=%d", sub.FormType, sub.PageCount))

	// Copy before launching the goroutine so the caller's value is
	// independent of background work.
	result := *sub

	go s.processInBackground(sub.TenantID, sub.ID)

	return &result, nil
}

func (s *submissionService) processInBackground(tenantID, subID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	log.Printf("submissionService.processInBackground: starting recognition for submission %s", subID)

	if err := s.subRepo.MarkProcessing(ctx, tenantID, subID); err != nil {
		log.Printf("submissionService.processInBackground: failed to mark %s processing: %v", subID, err)
		return
	}
	sub, err := s.subRepo.GetByID(ctx, tenantID, subID)
	if err != nil {
		log.Printf("submissionService.processInBackground: failed to get submission %s: %v", subID, err)
		return
	}
	s.ProcessSubmission(ctx, sub)
}

// ProcessSubmission runs the pipeline: download page bytes, parse each page
// into a partial record, merge in page order, assign ids, pad collections to
// their minimums, synchronize references, and persist the result. Rate
// limits queue the submission for the worker; anything else fails it.
func (s *submissionService) ProcessSubmission(ctx context.Context, sub *domain.Submission) {
	pages, err := s.subRepo.ListPages(ctx, sub.TenantID, sub.ID)
	if err != nil {
		s.failProcessing(ctx, sub, fmt.Sprintf("listing pages: %v", err))
		return
	}
	if len(pages) == 0 {
		s.failProcessing(ctx, sub, "submission has no pages")
		return
	}

	inputs := make([]port.PageInput, 0, len(pages))
	for _, page := range pages {
		file, err := s.fileRepo.GetByID(ctx, sub.TenantID, page.FileID)
		if err != nil {
			s.failProcessing(ctx, sub, fmt.Sprintf("looking up page %d file: %v", page.PageNumber, err))
			return
		}
		raw, err := s.storage.Download(ctx, file.S3Bucket, file.S3Key)
		if err != nil {
			s.failProcessing(ctx, sub, fmt.Sprintf("downloading page %d: %v", page.PageNumber, err))
			return
		}
		inputs = append(inputs, port.PageInput{
			FileBytes:   raw,
			ContentType: file.ContentType,
			FormType:    sub.FormType,
		})
	}

	partials, err := s.pages.ParsePages(ctx, inputs)
	if err != nil {
		s.handleProcessError(ctx, sub, err)
		return
	}

	rec := merge.Merge(partials)
	appform.EnsureIDs(rec)
	appform.PadToMin(&rec.Collections, s.collectionLimits())
	res := reconcile.Synchronize(rec.Collections, s.syncOptions())
	rec.Collections = res.State

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		s.failProcessing(ctx, sub, fmt.Sprintf("encoding record: %v", err))
		return
	}
	if err := s.subRepo.SaveResult(ctx, sub.TenantID, sub.ID, recordJSON, marshalWarnings(res.Warnings), s.pages.Name()); err != nil {
		log.Printf("submissionService.ProcessSubmission: failed to save result for %s: %v", sub.ID, err)
		return
	}

	s.audit(ctx, sub.TenantID, sub.ID, nil, domain.AuditProcessed,
		fmt.Sprintf("provider=%s pages=%d warnings=%d", s.pages.Name(), len(pages), len(res.Warnings)))
	log.Printf("submissionService.ProcessSubmission: submission %s completed (%d page(s), %d warning(s))",
		sub.ID, len(pages), len(res.Warnings))
}

// handleProcessError queues the submission on a provider rate limit while
// retries remain; everything else is a permanent failure.
func (s *submissionService) handleProcessError(ctx context.Context, sub *domain.Submission, parseErr error) {
	var rlErr *parser.RateLimitError
	if errors.As(parseErr, &rlErr) && sub.RetryCount < s.maxRetries() {
		retryAt := time.Now().UTC().Add(rlErr.RetryAfter)
		if err := s.subRepo.MarkQueued(ctx, sub.TenantID, sub.ID, retryAt); err != nil {
			log.Printf("submissionService.handleProcessError: failed to queue %s: %v", sub.ID, err)
			return
		}
		s.audit(ctx, sub.TenantID, sub.ID, nil, domain.AuditQueued,
			fmt.Sprintf("provider=%s retry_at=%s attempt=%d", rlErr.Provider, retryAt.Format(time.RFC3339), sub.RetryCount+1))
		log.Printf("submissionService.handleProcessError: submission %s queued for retry after %s", sub.ID, retryAt.Format(time.RFC3339))
		return
	}
	s.failProcessing(ctx, sub, fmt.Sprintf("parsing pages: %v", parseErr))
}

func (s *submissionService) failProcessing(ctx context.Context, sub *domain.Submission, errMsg string) {
	log.Printf("submissionService.failProcessing: submission %s failed: %s", sub.ID, errMsg)
	if err := s.subRepo.MarkFailed(ctx, sub.TenantID, sub.ID, errMsg); err != nil {
		log.Printf("submissionService.failProcessing: failed to update status for %s: %v", sub.ID, err)
	}
	s.audit(ctx, sub.TenantID, sub.ID, nil, domain.AuditFailed, errMsg)
}

func (s *submissionService) GetByID(ctx context.Context, tenantID, subID uuid.UUID) (*domain.Submission, error) {
	return s.subRepo.GetByID(ctx, tenantID, subID)
}

func (s *submissionService) List(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, int, error) {
	return s.subRepo.List(ctx, tenantID, filter)
}

func (s *submissionService) ListPages(ctx context.Context, tenantID, subID uuid.UUID) ([]domain.SubmissionPage, error) {
	return s.subRepo.ListPages(ctx, tenantID, subID)
}

func (s *submissionService) Retry(ctx context.Context, tenantID, subID, userID uuid.UUID) (*domain.Submission, error) {
	sub, err := s.subRepo.GetByID(ctx, tenantID, subID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.ProcessingStatusFailed && sub.Status != domain.ProcessingStatusQueued {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrNotRetryable, sub.Status)
	}

	if err := s.subRepo.MarkProcessing(ctx, tenantID, subID); err != nil {
		return nil, fmt.Errorf("marking submission processing: %w", err)
	}
	sub.Status = domain.ProcessingStatusProcessing
	sub.ProcessingError = ""
	s.audit(ctx, tenantID, subID, &userID, domain.AuditRetried, fmt.Sprintf("attempt=%d", sub.RetryCount+1))

	result := *sub
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		s.ProcessSubmission(bgCtx, sub)
	}()
	return &result, nil
}

// loadRecord fetches the submission and decodes its record for an editing
// operation. Editing requires completed recognition and an unsubmitted
// record.
func (s *submissionService) loadRecord(ctx context.Context, tenantID, subID uuid.UUID) (*domain.Submission, *appform.Record, error) {
	sub, err := s.subRepo.GetByID(ctx, tenantID, subID)
	if err != nil {
		return nil, nil, err
	}
	if sub.Status != domain.ProcessingStatusCompleted {
		return nil, nil, fmt.Errorf("%w: status is %s", domain.ErrProcessingIncomplete, sub.Status)
	}
	if sub.SubmittedAt != nil {
		return nil, nil, domain.ErrAlreadySubmitted
	}
	rec, err := decodeStoredRecord(sub.RecordData)
	if err != nil {
		return nil, nil, err
	}
	return sub, rec, nil
}

// persistRecord synchronizes a mutated record, writes it back, and resets
// the review state so a reviewer sees the edit.
func (s *submissionService) persistRecord(ctx context.Context, sub *domain.Submission, rec *appform.Record) (*RecordView, error) {
	res := reconcile.Synchronize(rec.Collections, s.syncOptions())
	rec.Collections = res.State

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	if err := s.subRepo.UpdateRecord(ctx, sub.TenantID, sub.ID, recordJSON, marshalWarnings(res.Warnings)); err != nil {
		return nil, err
	}
	if sub.ReviewStatus != domain.ReviewStatusPending {
		if err := s.subRepo.ResetReview(ctx, sub.TenantID, sub.ID); err != nil {
			log.Printf("submissionService.persistRecord: failed to reset review for %s: %v", sub.ID, err)
		}
	}
	return &RecordView{
		SubmissionID: sub.ID,
		Record:       rec,
		Warnings:     res.Warnings,
		SyncChanges:  res.Changes,
	}, nil
}

func (s *submissionService) UpdateRecord(ctx context.Context, input *UpdateRecordInput) (*RecordView, error) {
	sub, _, err := s.loadRecord(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	rec, err := decodeEditedRecord(input.Record)
	if err != nil {
		return nil, err
	}
	appform.EnsureIDs(rec)
	if err := s.checkCollectionLimits(&rec.Collections); err != nil {
		return nil, err
	}

	view, err := s.persistRecord(ctx, sub, rec)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditRecordEdited, "full record replaced")
	return view, nil
}

func (s *submissionService) AddEntity(ctx context.Context, input *EntityInput) (*RecordView, error) {
	if !input.Collection.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, input.Collection)
	}
	sub, rec, err := s.loadRecord(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	limits := s.collectionLimits()
	if max := limits[input.Collection].Max; max > 0 && rec.Collections.Len(input.Collection) >= max {
		return nil, fmt.Errorf("%w: %s is capped at %d", domain.ErrCollectionFull, input.Collection, max)
	}
	newID := rec.Collections.Append(input.Collection)

	view, err := s.persistRecord(ctx, sub, rec)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditEntityAdded,
		fmt.Sprintf("collection=%s entity=%s", input.Collection, newID))
	return view, nil
}

func (s *submissionService) EditEntityFields(ctx context.Context, input *EditEntityInput) (*RecordView, error) {
	if !input.Collection.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, input.Collection)
	}
	sub, rec, err := s.loadRecord(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	fields, ok := rec.Collections.EntityFieldMap(input.Collection, input.EntityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, input.Collection, input.EntityID)
	}
	for name, value := range input.Fields {
		f, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q on %s", domain.ErrUnknownField, name, input.Collection)
		}
		if value == nil {
			*f = f.Cleared()
		} else {
			*f = f.WithValue(*value)
		}
	}

	view, err := s.persistRecord(ctx, sub, rec)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditRecordEdited,
		fmt.Sprintf("collection=%s entity=%s fields=%d", input.Collection, input.EntityID, len(input.Fields)))
	return view, nil
}

func (s *submissionService) RemoveEntity(ctx context.Context, input *RemoveEntityInput) (*RecordView, error) {
	if !input.Collection.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, input.Collection)
	}
	policy := input.Policy
	if policy == "" {
		policy = domain.DeletePolicyBlock
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("%w: unknown policy %q", domain.ErrDeletionBlocked, input.Policy)
	}

	sub, rec, err := s.loadRecord(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	c := &rec.Collections

	var cascaded int
	switch input.Collection {
	case appform.ColVehicles:
		check := reconcile.CanDeleteVehicle(input.EntityID, c.Deductibles, c.Lienholders)
		if !check.CanDelete {
			switch policy {
			case domain.DeletePolicyBlock:
				return nil, fmt.Errorf("%w: %s", domain.ErrDeletionBlocked, check.Warning.Message)
			case domain.DeletePolicyCascade:
				cascaded = s.cascadeVehicle(c, input.EntityID)
			}
			// orphan: leave dependents to the synchronizer's posture
		}
	case appform.ColDrivers:
		check := reconcile.CanDeleteDriver(input.EntityID, c.Accidents, c.Tickets)
		if !check.CanDelete {
			switch policy {
			case domain.DeletePolicyBlock:
				return nil, fmt.Errorf("%w: %s", domain.ErrDeletionBlocked, check.Warning.Message)
			case domain.DeletePolicyCascade:
				cascaded = s.cascadeDriver(c, input.EntityID)
			}
		}
	}

	if !c.Remove(input.Collection, input.EntityID) {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, input.Collection, input.EntityID)
	}

	view, err := s.persistRecord(ctx, sub, rec)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditEntityRemoved,
		fmt.Sprintf("collection=%s entity=%s policy=%s cascaded=%d", input.Collection, input.EntityID, policy, cascaded))
	return view, nil
}

// cascadeVehicle removes every deductible and lienholder referencing the
// vehicle and returns how many went with it.
func (s *submissionService) cascadeVehicle(c *appform.Collections, vehicleID string) int {
	n := 0
	for _, dep := range appform.VehicleDependencies(vehicleID, c.Deductibles, c.Lienholders) {
		switch dep.Type {
		case "deductible":
			if c.Remove(appform.ColDeductibles, dep.ID) {
				n++
			}
		case "lienholder":
			if c.Remove(appform.ColLienholders, dep.ID) {
				n++
			}
		}
	}
	return n
}

// cascadeDriver removes every accident and ticket referencing the driver.
func (s *submissionService) cascadeDriver(c *appform.Collections, driverID string) int {
	n := 0
	for _, dep := range appform.DriverDependencies(driverID, c.Accidents, c.Tickets) {
		switch dep.Type {
		case "accident":
			if c.Remove(appform.ColAccidents, dep.ID) {
				n++
			}
		case "ticket":
			if c.Remove(appform.ColTickets, dep.ID) {
				n++
			}
		}
	}
	return n
}

func (s *submissionService) DuplicateEntity(ctx context.Context, input *EntityInput) (*RecordView, error) {
	if !input.Collection.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, input.Collection)
	}
	sub, rec, err := s.loadRecord(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	c := &rec.Collections

	limits := s.collectionLimits()
	if max := limits[input.Collection].Max; max > 0 && c.Len(input.Collection) >= max {
		return nil, fmt.Errorf("%w: %s is capped at %d", domain.ErrCollectionFull, input.Collection, max)
	}

	newID, ok := c.Duplicate(input.Collection, input.EntityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, input.Collection, input.EntityID)
	}

	// Duplicating a vehicle carries its deductibles and lienholders along,
	// re-pointed at the copy.
	reassigned := 0
	if input.Collection == appform.ColVehicles {
		clonedDeds := cloneDeductiblesFor(c.Deductibles, input.EntityID)
		clonedLiens := cloneLienholdersFor(c.Lienholders, input.EntityID)
		if max := limits[appform.ColDeductibles].Max; max > 0 && len(c.Deductibles)+len(clonedDeds) > max {
			return nil, fmt.Errorf("%w: %s is capped at %d", domain.ErrCollectionFull, appform.ColDeductibles, max)
		}
		if max := limits[appform.ColLienholders].Max; max > 0 && len(c.Lienholders)+len(clonedLiens) > max {
			return nil, fmt.Errorf("%w: %s is capped at %d", domain.ErrCollectionFull, appform.ColLienholders, max)
		}
		var n int
		clonedDeds, clonedLiens, n = reconcile.ReassignVehicleReferences(input.EntityID, newID, clonedDeds, clonedLiens)
		c.Deductibles = append(c.Deductibles, clonedDeds...)
		c.Lienholders = append(c.Lienholders, clonedLiens...)
		reassigned = n
	}

	view, err := s.persistRecord(ctx, sub, rec)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditEntityDuplicated,
		fmt.Sprintf("collection=%s source=%s copy=%s", input.Collection, input.EntityID, newID))
	if reassigned > 0 {
		s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditReferencesReassigned,
			fmt.Sprintf("from=%s to=%s count=%d", input.EntityID, newID, reassigned))
	}
	return view, nil
}

// cloneDeductiblesFor copies, under fresh ids, every deductible referencing
// the vehicle.
func cloneDeductiblesFor(deductibles []appform.Deductible, vehicleID string) []appform.Deductible {
	var clones []appform.Deductible
	for i := range deductibles {
		if v := deductibles[i].VehicleRef.Value; v != nil && *v == vehicleID {
			clone := deductibles[i]
			clone.ID = uuid.NewString()
			clones = append(clones, clone)
		}
	}
	return clones
}

func cloneLienholdersFor(lienholders []appform.Lienholder, vehicleID string) []appform.Lienholder {
	var clones []appform.Lienholder
	for i := range lienholders {
		if v := lienholders[i].VehicleRef.Value; v != nil && *v == vehicleID {
			clone := lienholders[i]
			clone.ID = uuid.NewString()
			clones = append(clones, clone)
		}
	}
	return clones
}

func (s *submissionService) GetDependencies(ctx context.Context, tenantID, subID uuid.UUID, collection appform.CollectionName, entityID string) ([]appform.Dependency, error) {
	if !collection.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCollection, collection)
	}
	sub, err := s.subRepo.GetByID(ctx, tenantID, subID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.ProcessingStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrProcessingIncomplete, sub.Status)
	}
	rec, err := decodeStoredRecord(sub.RecordData)
	if err != nil {
		return nil, err
	}
	c := &rec.Collections

	switch collection {
	case appform.ColVehicles:
		if c.FindVehicle(entityID) == nil {
			return nil, fmt.Errorf("%w: vehicle %s", domain.ErrNotFound, entityID)
		}
		return appform.VehicleDependencies(entityID, c.Deductibles, c.Lienholders), nil
	case appform.ColDrivers:
		if c.FindDriver(entityID) == nil {
			return nil, fmt.Errorf("%w: driver %s", domain.ErrNotFound, entityID)
		}
		return appform.DriverDependencies(entityID, c.Accidents, c.Tickets), nil
	}
	// Only vehicles and drivers are referenced by other entities.
	return []appform.Dependency{}, nil
}

func (s *submissionService) CheckConsistency(ctx context.Context, tenantID, subID uuid.UUID) (*ConsistencyReport, error) {
	sub, err := s.subRepo.GetByID(ctx, tenantID, subID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.ProcessingStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrProcessingIncomplete, sub.Status)
	}
	rec, err := decodeStoredRecord(sub.RecordData)
	if err != nil {
		return nil, err
	}
	issues := s.checker.Check(&rec.Collections)
	return &ConsistencyReport{Issues: issues, Summary: validator.Summarize(issues)}, nil
}

func (s *submissionService) UpdateReview(ctx context.Context, input *UpdateReviewInput) (*domain.Submission, error) {
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown review status %q", domain.ErrInvalidRecordData, input.Status)
	}
	sub, err := s.subRepo.GetByID(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.ProcessingStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrProcessingIncomplete, sub.Status)
	}

	if err := s.subRepo.SetReview(ctx, input.TenantID, input.SubmissionID, input.Status, input.ReviewerID, input.Notes); err != nil {
		return nil, fmt.Errorf("updating review status: %w", err)
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.ReviewerID, domain.AuditReviewUpdated,
		fmt.Sprintf("status=%s", input.Status))

	return s.subRepo.GetByID(ctx, input.TenantID, input.SubmissionID)
}

func (s *submissionService) Submit(ctx context.Context, input *SubmitInput) (*domain.Submission, error) {
	sub, err := s.subRepo.GetByID(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.ProcessingStatusCompleted {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrProcessingIncomplete, sub.Status)
	}

	if !input.Force {
		rec, err := decodeStoredRecord(sub.RecordData)
		if err != nil {
			return nil, err
		}
		if issues := s.checker.Check(&rec.Collections); len(issues) > 0 {
			return nil, fmt.Errorf("%w: %d issue(s) found", domain.ErrConsistencyIssues, len(issues))
		}
	}

	if err := s.subRepo.MarkSubmitted(ctx, input.TenantID, input.SubmissionID); err != nil {
		return nil, err
	}
	s.audit(ctx, input.TenantID, input.SubmissionID, &input.UserID, domain.AuditSubmitted,
		fmt.Sprintf("force=%t", input.Force))

	sub, err = s.subRepo.GetByID(ctx, input.TenantID, input.SubmissionID)
	if err != nil {
		return nil, err
	}

	s.sendReceipt(input.TenantID, input.UserID, sub)
	return sub, nil
}

// sendReceipt emails a submission confirmation in the background. Delivery
// failures are logged and never surface to the caller.
func (s *submissionService) sendReceipt(tenantID, userID uuid.UUID, sub *domain.Submission) {
	if s.email == nil {
		return
	}
	snapshot := *sub
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.userRepo.GetByID(ctx, tenantID, userID)
		if err != nil {
			log.Printf("submissionService.sendReceipt: failed to look up user %s: %v", userID, err)
			return
		}
		if err := s.email.SendSubmissionReceipt(ctx, user.Email, user.FullName, &snapshot); err != nil {
			log.Printf("submissionService.sendReceipt: failed to email %s for submission %s: %v", user.Email, snapshot.ID, err)
		}
	}()
}

func (s *submissionService) ListAudit(ctx context.Context, tenantID, subID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	if _, err := s.subRepo.GetByID(ctx, tenantID, subID); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.ListBySubmission(ctx, tenantID, subID, offset, limit)
}

func (s *submissionService) ListForExport(ctx context.Context, tenantID uuid.UUID, filter port.SubmissionFilter) ([]domain.Submission, error) {
	var all []domain.Submission
	filter.Offset = 0
	filter.Limit = exportBatchSize
	for {
		batch, _, err := s.subRepo.List(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize {
			return all, nil
		}
		filter.Offset += exportBatchSize
	}
}

func (s *submissionService) maxRetries() int {
	if s.cfg.Queue.MaxRetries > 0 {
		return s.cfg.Queue.MaxRetries
	}
	return 5
}

func (s *submissionService) syncOptions() reconcile.Options {
	return reconcile.Options{
		AutoCreateDeductibles:     s.cfg.Sync.AutoCreateDeductibles,
		RemoveOrphanedDeductibles: s.cfg.Sync.RemoveOrphanedDeductibles,
		RemoveOrphanedLienholders: s.cfg.Sync.RemoveOrphanedLienholders,
		ClearOrphanedDriverRefs:   s.cfg.Sync.ClearOrphanedDriverRefs,
	}
}

// collectionLimits builds the per-collection cardinalities from config,
// falling back to the printed-form defaults.
func (s *submissionService) collectionLimits() appform.CollectionLimits {
	limits := appform.DefaultLimits()
	override := func(name appform.CollectionName, max int) {
		if max > 0 {
			l := limits[name]
			l.Max = max
			limits[name] = l
		}
	}
	override(appform.ColVehicles, s.cfg.Limits.MaxVehicles)
	override(appform.ColDrivers, s.cfg.Limits.MaxDrivers)
	override(appform.ColDeductibles, s.cfg.Limits.MaxDeductibles)
	override(appform.ColLienholders, s.cfg.Limits.MaxLienholders)
	override(appform.ColAccidents, s.cfg.Limits.MaxAccidents)
	override(appform.ColTickets, s.cfg.Limits.MaxTickets)
	override(appform.ColClaims, s.cfg.Limits.MaxClaims)
	override(appform.ColScheduledItems, s.cfg.Limits.MaxScheduledItems)
	return limits
}

func (s *submissionService) checkCollectionLimits(c *appform.Collections) error {
	limits := s.collectionLimits()
	for _, name := range appform.AllCollections {
		if max := limits[name].Max; max > 0 && c.Len(name) > max {
			return fmt.Errorf("%w: %s is capped at %d", domain.ErrCollectionFull, name, max)
		}
	}
	return nil
}

// decodeStoredRecord decodes a record previously written by this service.
// Corruption maps to ErrInvalidRecordData.
func decodeStoredRecord(raw json.RawMessage) (*appform.Record, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: record is empty", domain.ErrInvalidRecordData)
	}
	rec := appform.NewRecord()
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecordData, err)
	}
	return rec, nil
}

// decodeEditedRecord decodes a caller-supplied record strictly; unknown
// fields are rejected so typos do not silently drop data.
func decodeEditedRecord(raw json.RawMessage) (*appform.Record, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: record is empty", domain.ErrInvalidRecordData)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	rec := appform.NewRecord()
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecordData, err)
	}
	return rec, nil
}

func marshalWarnings(warnings []string) json.RawMessage {
	if len(warnings) == 0 {
		return json.RawMessage("[]")
	}
	raw, err := json.Marshal(warnings)
	if err != nil {
		return json.RawMessage("[]")
	}
	return raw
}
