package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"coverscan/internal/appform"
	"coverscan/internal/config"
	"coverscan/internal/domain"
	"coverscan/internal/parser"
	"coverscan/internal/port"
	"coverscan/internal/service"
	"coverscan/internal/validator"
	"coverscan/mocks"
)

func testSubmissionConfig() *config.Config {
	return &config.Config{
		Limits: config.LimitsConfig{
			MaxPages:    5,
			MaxVehicles: 2,
		},
		Queue: config.QueueConfig{MaxRetries: 3},
	}
}

func setupSubmissionService() (service.SubmissionService, *mocks.MockSubmissionRepo, *mocks.MockFileMetaRepo, *mocks.MockUserRepo, *mocks.MockSubmissionAuditRepo, *mocks.MockObjectStorage, *mocks.MockPageSetParser, *mocks.MockEmailSender) {
	subRepo := new(mocks.MockSubmissionRepo)
	fileRepo := new(mocks.MockFileMetaRepo)
	userRepo := new(mocks.MockUserRepo)
	auditRepo := new(mocks.MockSubmissionAuditRepo)
	storage := new(mocks.MockObjectStorage)
	pages := new(mocks.MockPageSetParser)
	email := new(mocks.MockEmailSender)

	checker := validator.NewEngine(validator.DefaultRegistry())
	svc := service.NewSubmissionService(subRepo, fileRepo, userRepo, auditRepo, storage, pages, checker, email, testSubmissionConfig())
	return svc, subRepo, fileRepo, userRepo, auditRepo, storage, pages, email
}

func uploadedPageFile(tenantID uuid.UUID, key string) *domain.FileMeta {
	return &domain.FileMeta{
		ID:          uuid.New(),
		TenantID:    tenantID,
		FileName:    key,
		ContentType: "application/pdf",
		S3Bucket:    "test-bucket",
		S3Key:       key,
		Status:      domain.FileStatusUploaded,
	}
}

// completedSubmission builds a submission whose recognition already
// finished, holding the given record.
func completedSubmission(tenantID uuid.UUID, rec *appform.Record) *domain.Submission {
	raw, _ := json.Marshal(rec)
	return &domain.Submission{
		ID:           uuid.New(),
		TenantID:     tenantID,
		FormType:     domain.FormTypeAuto,
		Status:       domain.ProcessingStatusCompleted,
		ReviewStatus: domain.ReviewStatusPending,
		RecordData:   raw,
		PageCount:    1,
		CreatedBy:    uuid.New(),
	}
}

// recordWithVehicle returns a record holding one vehicle and no coverage.
func recordWithVehicle() (*appform.Record, string) {
	rec := appform.NewRecord()
	v := appform.NewVehicle()
	v.Make = appform.NewFieldWith("HONDA", appform.ConfidenceHigh)
	rec.Collections.Vehicles = append(rec.Collections.Vehicles, v)
	return rec, v.ID
}

// recordWithCoveredVehicle returns a record holding one vehicle and a
// deductible referencing it, so the consistency checker finds nothing.
func recordWithCoveredVehicle() (*appform.Record, string, string) {
	rec, vehicleID := recordWithVehicle()
	d := appform.NewDeductibleForVehicle(vehicleID)
	rec.Collections.Deductibles = append(rec.Collections.Deductibles, d)
	return rec, vehicleID, d.ID
}

func strPtr(s string) *string { return &s }

// --- CreateAndProcess ---

func TestSubmissionService_CreateAndProcess_Success(t *testing.T) {
	svc, subRepo, fileRepo, _, auditRepo, storage, pages, _ := setupSubmissionService()
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	file1 := uploadedPageFile(tenantID, "pages/1.pdf")
	file2 := uploadedPageFile(tenantID, "pages/2.pdf")
	fileRepo.On("GetByID", mock.Anything, tenantID, file1.ID).Return(file1, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file2.ID).Return(file2, nil)

	subRepo.On("Create", mock.Anything, mock.MatchedBy(func(sub *domain.Submission) bool {
		return sub.TenantID == tenantID &&
			sub.Status == domain.ProcessingStatusPending &&
			sub.ReviewStatus == domain.ReviewStatusPending &&
			sub.PageCount == 2
	}), mock.MatchedBy(func(pageRows []domain.SubmissionPage) bool {
		return len(pageRows) == 2 && pageRows[0].PageNumber == 1 && pageRows[1].PageNumber == 2
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	// Recognition runs in the background; the mocks allow it to complete
	// without being part of this test's assertions.
	subRepo.On("MarkProcessing", mock.Anything, tenantID, mock.Anything).Return(nil).Maybe()
	subRepo.On("GetByID", mock.Anything, tenantID, mock.Anything).
		Return(&domain.Submission{ID: uuid.New(), TenantID: tenantID, Status: domain.ProcessingStatusProcessing}, nil).Maybe()
	subRepo.On("ListPages", mock.Anything, tenantID, mock.Anything).Return([]domain.SubmissionPage{}, nil).Maybe()
	subRepo.On("MarkFailed", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil).Maybe()
	storage.On("Download", mock.Anything, mock.Anything, mock.Anything).Return([]byte("page"), nil).Maybe()
	pages.On("ParsePages", mock.Anything, mock.Anything).Return([]*appform.Record{}, nil).Maybe()
	pages.On("Name").Return("claude").Maybe()

	sub, err := svc.CreateAndProcess(ctx, &service.CreateSubmissionInput{
		TenantID:    tenantID,
		CreatedBy:   userID,
		FormType:    domain.FormTypeAuto,
		PageFileIDs: []uuid.UUID{file1.ID, file2.ID},
	})

	assert.NoError(t, err)
	assert.NotNil(t, sub)
	assert.Equal(t, domain.ProcessingStatusPending, sub.Status)
	assert.Equal(t, domain.ReviewStatusPending, sub.ReviewStatus)
	assert.Equal(t, 2, sub.PageCount)
	assert.Equal(t, userID, sub.CreatedBy)

	time.Sleep(100 * time.Millisecond)
	subRepo.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
}

func TestSubmissionService_CreateAndProcess_InvalidFormType(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()

	sub, err := svc.CreateAndProcess(context.Background(), &service.CreateSubmissionInput{
		TenantID:    uuid.New(),
		CreatedBy:   uuid.New(),
		FormType:    domain.FormType("boat"),
		PageFileIDs: []uuid.UUID{uuid.New()},
	})

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrInvalidFormType)
	subRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_CreateAndProcess_NoPages(t *testing.T) {
	svc, _, _, _, _, _, _, _ := setupSubmissionService()

	sub, err := svc.CreateAndProcess(context.Background(), &service.CreateSubmissionInput{
		TenantID:  uuid.New(),
		CreatedBy: uuid.New(),
		FormType:  domain.FormTypeAuto,
	})

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrTooManyPages)
	assert.Contains(t, err.Error(), "at least one page")
}

func TestSubmissionService_CreateAndProcess_TooManyPages(t *testing.T) {
	svc, _, _, _, _, _, _, _ := setupSubmissionService()

	fileIDs := make([]uuid.UUID, 6)
	for i := range fileIDs {
		fileIDs[i] = uuid.New()
	}

	sub, err := svc.CreateAndProcess(context.Background(), &service.CreateSubmissionInput{
		TenantID:    uuid.New(),
		CreatedBy:   uuid.New(),
		FormType:    domain.FormTypeAuto,
		PageFileIDs: fileIDs,
	})

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrTooManyPages)
}

func TestSubmissionService_CreateAndProcess_FileNotUploaded(t *testing.T) {
	svc, subRepo, fileRepo, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	pending := uploadedPageFile(tenantID, "pages/1.pdf")
	pending.Status = domain.FileStatusPending
	fileRepo.On("GetByID", mock.Anything, tenantID, pending.ID).Return(pending, nil)

	sub, err := svc.CreateAndProcess(context.Background(), &service.CreateSubmissionInput{
		TenantID:    tenantID,
		CreatedBy:   uuid.New(),
		FormType:    domain.FormTypeAuto,
		PageFileIDs: []uuid.UUID{pending.ID},
	})

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrFileNotUploaded)
	subRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_CreateAndProcess_FileLookupFails(t *testing.T) {
	svc, _, fileRepo, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()
	fileID := uuid.New()

	fileRepo.On("GetByID", mock.Anything, tenantID, fileID).Return(nil, domain.ErrNotFound)

	sub, err := svc.CreateAndProcess(context.Background(), &service.CreateSubmissionInput{
		TenantID:    tenantID,
		CreatedBy:   uuid.New(),
		FormType:    domain.FormTypeAuto,
		PageFileIDs: []uuid.UUID{fileID},
	})

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "looking up page file")
}

func TestSubmissionService_CreateAndProcess_RepoCreateFails(t *testing.T) {
	svc, subRepo, fileRepo, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	file := uploadedPageFile(tenantID, "pages/1.pdf")
	fileRepo.On("GetByID", mock.Anything, tenantID, file.ID).Return(file, nil)
	subRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	sub, err := svc.CreateAndProcess(context.Background(), &service.CreateSubmissionInput{
		TenantID:    tenantID,
		CreatedBy:   uuid.New(),
		FormType:    domain.FormTypeAuto,
		PageFileIDs: []uuid.UUID{file.ID},
	})

	assert.Nil(t, sub)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating submission")
}

// --- ProcessSubmission ---

func TestSubmissionService_ProcessSubmission_Success(t *testing.T) {
	svc, subRepo, fileRepo, _, auditRepo, storage, pages, _ := setupSubmissionService()
	ctx := context.Background()
	tenantID := uuid.New()

	sub := &domain.Submission{
		ID:       uuid.New(),
		TenantID: tenantID,
		FormType: domain.FormTypeAuto,
		Status:   domain.ProcessingStatusProcessing,
	}
	file1 := uploadedPageFile(tenantID, "pages/1.pdf")
	file2 := uploadedPageFile(tenantID, "pages/2.pdf")
	pageRows := []domain.SubmissionPage{
		{ID: uuid.New(), SubmissionID: sub.ID, TenantID: tenantID, FileID: file1.ID, PageNumber: 1},
		{ID: uuid.New(), SubmissionID: sub.ID, TenantID: tenantID, FileID: file2.ID, PageNumber: 2},
	}

	subRepo.On("ListPages", mock.Anything, tenantID, sub.ID).Return(pageRows, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file1.ID).Return(file1, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file2.ID).Return(file2, nil)
	storage.On("Download", mock.Anything, "test-bucket", "pages/1.pdf").Return([]byte("page-1"), nil)
	storage.On("Download", mock.Anything, "test-bucket", "pages/2.pdf").Return([]byte("page-2"), nil)

	partial1 := appform.NewRecord()
	partial1.Applicant.FirstName = appform.NewFieldWith("JOHN", appform.ConfidenceHigh)
	partial2 := appform.NewRecord()
	vehicle := appform.NewVehicle()
	vehicle.Make = appform.NewFieldWith("HONDA", appform.ConfidenceHigh)
	partial2.Collections.Vehicles = append(partial2.Collections.Vehicles, vehicle)

	pages.On("ParsePages", mock.Anything, mock.MatchedBy(func(inputs []port.PageInput) bool {
		return len(inputs) == 2 &&
			string(inputs[0].FileBytes) == "page-1" &&
			inputs[0].ContentType == "application/pdf" &&
			inputs[0].FormType == domain.FormTypeAuto
	})).Return([]*appform.Record{partial1, partial2}, nil)
	pages.On("Name").Return("claude")

	var savedRecord json.RawMessage
	subRepo.On("SaveResult", mock.Anything, tenantID, sub.ID, mock.MatchedBy(func(raw json.RawMessage) bool {
		savedRecord = raw
		return true
	}), mock.Anything, "claude").Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditProcessed && e.UserID == nil
	})).Return(nil)

	svc.ProcessSubmission(ctx, sub)

	subRepo.AssertExpectations(t)
	pages.AssertExpectations(t)
	auditRepo.AssertExpectations(t)

	var rec appform.Record
	assert.NoError(t, json.Unmarshal(savedRecord, &rec))
	assert.Equal(t, "JOHN", *rec.Applicant.FirstName.Value)
	assert.Len(t, rec.Collections.Vehicles, 1)
	assert.Equal(t, "HONDA", *rec.Collections.Vehicles[0].Make.Value)
	assert.NotEmpty(t, rec.Collections.Vehicles[0].ID)
}

func TestSubmissionService_ProcessSubmission_RateLimited_Queues(t *testing.T) {
	svc, subRepo, fileRepo, _, auditRepo, storage, pages, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := &domain.Submission{
		ID:         uuid.New(),
		TenantID:   tenantID,
		FormType:   domain.FormTypeAuto,
		Status:     domain.ProcessingStatusProcessing,
		RetryCount: 0,
	}
	file := uploadedPageFile(tenantID, "pages/1.pdf")
	pageRows := []domain.SubmissionPage{
		{ID: uuid.New(), SubmissionID: sub.ID, TenantID: tenantID, FileID: file.ID, PageNumber: 1},
	}

	subRepo.On("ListPages", mock.Anything, tenantID, sub.ID).Return(pageRows, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file.ID).Return(file, nil)
	storage.On("Download", mock.Anything, "test-bucket", "pages/1.pdf").Return([]byte("page-1"), nil)
	pages.On("ParsePages", mock.Anything, mock.Anything).
		Return(nil, parser.NewRateLimitError("claude", errors.New("too many requests"), 30))

	subRepo.On("MarkQueued", mock.Anything, tenantID, sub.ID, mock.MatchedBy(func(retryAt time.Time) bool {
		return retryAt.After(time.Now().UTC())
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditQueued
	})).Return(nil)

	svc.ProcessSubmission(context.Background(), sub)

	subRepo.AssertExpectations(t)
	subRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_ProcessSubmission_RateLimited_RetriesExhausted(t *testing.T) {
	svc, subRepo, fileRepo, _, auditRepo, storage, pages, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := &domain.Submission{
		ID:         uuid.New(),
		TenantID:   tenantID,
		FormType:   domain.FormTypeAuto,
		Status:     domain.ProcessingStatusProcessing,
		RetryCount: 3,
	}
	file := uploadedPageFile(tenantID, "pages/1.pdf")
	pageRows := []domain.SubmissionPage{
		{ID: uuid.New(), SubmissionID: sub.ID, TenantID: tenantID, FileID: file.ID, PageNumber: 1},
	}

	subRepo.On("ListPages", mock.Anything, tenantID, sub.ID).Return(pageRows, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file.ID).Return(file, nil)
	storage.On("Download", mock.Anything, "test-bucket", "pages/1.pdf").Return([]byte("page-1"), nil)
	pages.On("ParsePages", mock.Anything, mock.Anything).
		Return(nil, parser.NewRateLimitError("claude", errors.New("too many requests"), 30))

	subRepo.On("MarkFailed", mock.Anything, tenantID, sub.ID, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditFailed
	})).Return(nil)

	svc.ProcessSubmission(context.Background(), sub)

	subRepo.AssertExpectations(t)
	subRepo.AssertNotCalled(t, "MarkQueued", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_ProcessSubmission_ParseFailure_MarksFailed(t *testing.T) {
	svc, subRepo, fileRepo, _, auditRepo, storage, pages, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := &domain.Submission{
		ID:       uuid.New(),
		TenantID: tenantID,
		FormType: domain.FormTypeAuto,
		Status:   domain.ProcessingStatusProcessing,
	}
	file := uploadedPageFile(tenantID, "pages/1.pdf")
	pageRows := []domain.SubmissionPage{
		{ID: uuid.New(), SubmissionID: sub.ID, TenantID: tenantID, FileID: file.ID, PageNumber: 1},
	}

	subRepo.On("ListPages", mock.Anything, tenantID, sub.ID).Return(pageRows, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file.ID).Return(file, nil)
	storage.On("Download", mock.Anything, "test-bucket", "pages/1.pdf").Return([]byte("page-1"), nil)
	pages.On("ParsePages", mock.Anything, mock.Anything).Return(nil, errors.New("model exploded"))

	subRepo.On("MarkFailed", mock.Anything, tenantID, sub.ID, mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc.ProcessSubmission(context.Background(), sub)

	subRepo.AssertExpectations(t)
	subRepo.AssertNotCalled(t, "SaveResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_ProcessSubmission_DownloadFailure_MarksFailed(t *testing.T) {
	svc, subRepo, fileRepo, _, auditRepo, storage, pages, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := &domain.Submission{
		ID:       uuid.New(),
		TenantID: tenantID,
		FormType: domain.FormTypeAuto,
		Status:   domain.ProcessingStatusProcessing,
	}
	file := uploadedPageFile(tenantID, "pages/1.pdf")
	pageRows := []domain.SubmissionPage{
		{ID: uuid.New(), SubmissionID: sub.ID, TenantID: tenantID, FileID: file.ID, PageNumber: 1},
	}

	subRepo.On("ListPages", mock.Anything, tenantID, sub.ID).Return(pageRows, nil)
	fileRepo.On("GetByID", mock.Anything, tenantID, file.ID).Return(file, nil)
	storage.On("Download", mock.Anything, "test-bucket", "pages/1.pdf").Return(nil, errors.New("s3 unreachable"))
	subRepo.On("MarkFailed", mock.Anything, tenantID, sub.ID, mock.MatchedBy(func(msg string) bool {
		return len(msg) > 0
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc.ProcessSubmission(context.Background(), sub)

	subRepo.AssertExpectations(t)
	pages.AssertNotCalled(t, "ParsePages", mock.Anything, mock.Anything)
}

// --- Retry ---

func TestSubmissionService_Retry_FromFailed(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()
	userID := uuid.New()

	failed := &domain.Submission{
		ID:              uuid.New(),
		TenantID:        tenantID,
		FormType:        domain.FormTypeAuto,
		Status:          domain.ProcessingStatusFailed,
		ProcessingError: "parsing pages: model exploded",
		RetryCount:      1,
	}
	subRepo.On("GetByID", mock.Anything, tenantID, failed.ID).Return(failed, nil)
	subRepo.On("MarkProcessing", mock.Anything, tenantID, failed.ID).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditRetried
	})).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	// The rerun happens in the background; let it fail quietly.
	subRepo.On("ListPages", mock.Anything, tenantID, failed.ID).Return([]domain.SubmissionPage{}, nil).Maybe()
	subRepo.On("MarkFailed", mock.Anything, tenantID, failed.ID, mock.Anything).Return(nil).Maybe()

	sub, err := svc.Retry(context.Background(), tenantID, failed.ID, userID)

	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessingStatusProcessing, sub.Status)
	assert.Empty(t, sub.ProcessingError)

	time.Sleep(100 * time.Millisecond)
	subRepo.AssertExpectations(t)
}

func TestSubmissionService_Retry_FromQueued(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	queued := &domain.Submission{
		ID:         uuid.New(),
		TenantID:   tenantID,
		FormType:   domain.FormTypeAuto,
		Status:     domain.ProcessingStatusQueued,
		RetryCount: 2,
	}
	subRepo.On("GetByID", mock.Anything, tenantID, queued.ID).Return(queued, nil)
	subRepo.On("MarkProcessing", mock.Anything, tenantID, queued.ID).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	subRepo.On("ListPages", mock.Anything, tenantID, queued.ID).Return([]domain.SubmissionPage{}, nil).Maybe()
	subRepo.On("MarkFailed", mock.Anything, tenantID, queued.ID, mock.Anything).Return(nil).Maybe()

	sub, err := svc.Retry(context.Background(), tenantID, queued.ID, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, domain.ProcessingStatusProcessing, sub.Status)
	time.Sleep(100 * time.Millisecond)
}

func TestSubmissionService_Retry_NotRetryable(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	completed := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, completed.ID).Return(completed, nil)

	sub, err := svc.Retry(context.Background(), tenantID, completed.ID, uuid.New())

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrNotRetryable)
	subRepo.AssertNotCalled(t, "MarkProcessing", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_Retry_NotFound(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()
	subID := uuid.New()

	subRepo.On("GetByID", mock.Anything, tenantID, subID).Return(nil, domain.ErrNotFound)

	sub, err := svc.Retry(context.Background(), tenantID, subID, uuid.New())

	assert.Nil(t, sub)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- UpdateRecord ---

func TestSubmissionService_UpdateRecord_Success(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, _, _ := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	edited, _, _ := recordWithCoveredVehicle()
	edited.Applicant.FirstName = appform.NewFieldWith("JANE", appform.ConfidenceHigh)
	editedJSON, _ := json.Marshal(edited)

	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditRecordEdited
	})).Return(nil)

	view, err := svc.UpdateRecord(context.Background(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Record:       editedJSON,
	})

	assert.NoError(t, err)
	assert.Equal(t, sub.ID, view.SubmissionID)
	assert.Equal(t, "JANE", *view.Record.Applicant.FirstName.Value)
	assert.True(t, view.SyncChanges.Empty())
	subRepo.AssertExpectations(t)
	subRepo.AssertNotCalled(t, "ResetReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_UpdateRecord_ResetsNonPendingReview(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, _, _ := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	sub.ReviewStatus = domain.ReviewStatusApproved
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	subRepo.On("ResetReview", mock.Anything, tenantID, sub.ID).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	editedJSON, _ := json.Marshal(rec)
	_, err := svc.UpdateRecord(context.Background(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Record:       editedJSON,
	})

	assert.NoError(t, err)
	subRepo.AssertExpectations(t)
}

func TestSubmissionService_UpdateRecord_RejectsUnknownFields(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.UpdateRecord(context.Background(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Record:       json.RawMessage(`{"bogus_section": true}`),
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrInvalidRecordData)
	subRepo.AssertNotCalled(t, "UpdateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_UpdateRecord_ProcessingIncomplete(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	sub.Status = domain.ProcessingStatusProcessing
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.UpdateRecord(context.Background(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		Record:       json.RawMessage(`{}`),
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrProcessingIncomplete)
}

func TestSubmissionService_UpdateRecord_AlreadySubmitted(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	now := time.Now().UTC()
	sub.SubmittedAt = &now
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.UpdateRecord(context.Background(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		Record:       json.RawMessage(`{}`),
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
}

func TestSubmissionService_UpdateRecord_OverCollectionCap(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	// Three vehicles against a cap of two.
	over := appform.NewRecord()
	for i := 0; i < 3; i++ {
		over.Collections.Vehicles = append(over.Collections.Vehicles, appform.NewVehicle())
	}
	overJSON, _ := json.Marshal(over)

	view, err := svc.UpdateRecord(context.Background(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		Record:       overJSON,
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrCollectionFull)
	subRepo.AssertNotCalled(t, "UpdateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- AddEntity ---

func TestSubmissionService_AddEntity_Success(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditEntityAdded
	})).Return(nil)

	view, err := svc.AddEntity(context.Background(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Collection:   appform.ColDrivers,
	})

	assert.NoError(t, err)
	assert.Len(t, view.Record.Collections.Drivers, 1)
	assert.NotEmpty(t, view.Record.Collections.Drivers[0].ID)
}

func TestSubmissionService_AddEntity_CollectionFull(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec := appform.NewRecord()
	rec.Collections.Vehicles = append(rec.Collections.Vehicles, appform.NewVehicle(), appform.NewVehicle())
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.AddEntity(context.Background(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		Collection:   appform.ColVehicles,
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrCollectionFull)
}

func TestSubmissionService_AddEntity_UnknownCollection(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()

	view, err := svc.AddEntity(context.Background(), &service.EntityInput{
		TenantID:     uuid.New(),
		SubmissionID: uuid.New(),
		Collection:   appform.CollectionName("boats"),
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
	subRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

// --- EditEntityFields ---

func TestSubmissionService_EditEntityFields_Success(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID, _ := recordWithCoveredVehicle()
	rec.Collections.Vehicles[0].Vin = appform.NewFieldWith("1HGBH41JXMN109186", appform.ConfidenceLow)
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	view, err := svc.EditEntityFields(context.Background(), &service.EditEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			UserID:       uuid.New(),
			Collection:   appform.ColVehicles,
			EntityID:     vehicleID,
		},
		Fields: map[string]*string{
			"make": strPtr("TOYOTA"),
			"vin":  nil,
		},
	})

	assert.NoError(t, err)
	edited := view.Record.Collections.Vehicles[0]
	assert.Equal(t, "TOYOTA", *edited.Make.Value)
	assert.Equal(t, appform.ConfidenceHigh, edited.Make.Confidence)
	assert.False(t, edited.Make.Flagged)
	assert.Nil(t, edited.Vin.Value)
}

func TestSubmissionService_EditEntityFields_UnknownField(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID := recordWithVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.EditEntityFields(context.Background(), &service.EditEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			Collection:   appform.ColVehicles,
			EntityID:     vehicleID,
		},
		Fields: map[string]*string{"horsepower": strPtr("400")},
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
	subRepo.AssertNotCalled(t, "UpdateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_EditEntityFields_EntityNotFound(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.EditEntityFields(context.Background(), &service.EditEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			Collection:   appform.ColVehicles,
			EntityID:     uuid.NewString(),
		},
		Fields: map[string]*string{"make": strPtr("FORD")},
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- RemoveEntity ---

func TestSubmissionService_RemoveEntity_BlockedByDependents(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID, _ := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.RemoveEntity(context.Background(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			Collection:   appform.ColVehicles,
			EntityID:     vehicleID,
		},
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrDeletionBlocked)
	subRepo.AssertNotCalled(t, "UpdateRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_RemoveEntity_CascadeRemovesDependents(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID, _ := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditEntityRemoved
	})).Return(nil)

	view, err := svc.RemoveEntity(context.Background(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			UserID:       uuid.New(),
			Collection:   appform.ColVehicles,
			EntityID:     vehicleID,
		},
		Policy: domain.DeletePolicyCascade,
	})

	assert.NoError(t, err)
	assert.Empty(t, view.Record.Collections.Vehicles)
	assert.Empty(t, view.Record.Collections.Deductibles)
}

func TestSubmissionService_RemoveEntity_OrphanKeepsDependents(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID, deductibleID := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	view, err := svc.RemoveEntity(context.Background(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			UserID:       uuid.New(),
			Collection:   appform.ColVehicles,
			EntityID:     vehicleID,
		},
		Policy: domain.DeletePolicyOrphan,
	})

	assert.NoError(t, err)
	assert.Empty(t, view.Record.Collections.Vehicles)
	assert.Len(t, view.Record.Collections.Deductibles, 1)
	assert.Equal(t, deductibleID, view.Record.Collections.Deductibles[0].ID)
	assert.NotEmpty(t, view.Warnings)
}

func TestSubmissionService_RemoveEntity_NoDependents(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID := recordWithVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	view, err := svc.RemoveEntity(context.Background(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			UserID:       uuid.New(),
			Collection:   appform.ColVehicles,
			EntityID:     vehicleID,
		},
	})

	assert.NoError(t, err)
	assert.Empty(t, view.Record.Collections.Vehicles)
}

func TestSubmissionService_RemoveEntity_NotFound(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.RemoveEntity(context.Background(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: sub.ID,
			Collection:   appform.ColDrivers,
			EntityID:     uuid.NewString(),
		},
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmissionService_RemoveEntity_InvalidPolicy(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()

	view, err := svc.RemoveEntity(context.Background(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     uuid.New(),
			SubmissionID: uuid.New(),
			Collection:   appform.ColVehicles,
			EntityID:     uuid.NewString(),
		},
		Policy: domain.DeletePolicy("nuke"),
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrDeletionBlocked)
	subRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

// --- DuplicateEntity ---

func TestSubmissionService_DuplicateEntity_Driver(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec := appform.NewRecord()
	driver := appform.NewDriver()
	driver.FirstName = appform.NewFieldWith("ALICE", appform.ConfidenceHigh)
	rec.Collections.Drivers = append(rec.Collections.Drivers, driver)
	sub := completedSubmission(tenantID, rec)

	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditEntityDuplicated
	})).Return(nil)

	view, err := svc.DuplicateEntity(context.Background(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Collection:   appform.ColDrivers,
		EntityID:     driver.ID,
	})

	assert.NoError(t, err)
	assert.Len(t, view.Record.Collections.Drivers, 2)
	assert.NotEqual(t, view.Record.Collections.Drivers[0].ID, view.Record.Collections.Drivers[1].ID)
	assert.Equal(t, "ALICE", *view.Record.Collections.Drivers[1].FirstName.Value)
}

func TestSubmissionService_DuplicateEntity_VehicleCarriesCoverage(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID, _ := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	subRepo.On("UpdateRecord", mock.Anything, tenantID, sub.ID, mock.Anything, mock.Anything).Return(nil)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	view, err := svc.DuplicateEntity(context.Background(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
		Collection:   appform.ColVehicles,
		EntityID:     vehicleID,
	})

	assert.NoError(t, err)
	assert.Len(t, view.Record.Collections.Vehicles, 2)
	assert.Len(t, view.Record.Collections.Deductibles, 2)

	copyID := view.Record.Collections.Vehicles[1].ID
	assert.NotEqual(t, vehicleID, copyID)
	cloned := view.Record.Collections.Deductibles[1]
	assert.Equal(t, copyID, *cloned.VehicleRef.Value)
}

func TestSubmissionService_DuplicateEntity_CollectionFull(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec := appform.NewRecord()
	v1 := appform.NewVehicle()
	rec.Collections.Vehicles = append(rec.Collections.Vehicles, v1, appform.NewVehicle())
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.DuplicateEntity(context.Background(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		Collection:   appform.ColVehicles,
		EntityID:     v1.ID,
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrCollectionFull)
}

func TestSubmissionService_DuplicateEntity_NotFound(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	view, err := svc.DuplicateEntity(context.Background(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		Collection:   appform.ColDrivers,
		EntityID:     uuid.NewString(),
	})

	assert.Nil(t, view)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- GetDependencies ---

func TestSubmissionService_GetDependencies_Vehicle(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID, deductibleID := recordWithCoveredVehicle()
	lien := appform.NewLienholder()
	lien.VehicleRef = appform.NewFieldWith(vehicleID, appform.ConfidenceHigh)
	rec.Collections.Lienholders = append(rec.Collections.Lienholders, lien)
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	deps, err := svc.GetDependencies(context.Background(), tenantID, sub.ID, appform.ColVehicles, vehicleID)

	assert.NoError(t, err)
	assert.Len(t, deps, 2)
	types := map[string]string{}
	for _, d := range deps {
		types[d.Type] = d.ID
	}
	assert.Equal(t, deductibleID, types["deductible"])
	assert.Equal(t, lien.ID, types["lienholder"])
}

func TestSubmissionService_GetDependencies_Driver(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec := appform.NewRecord()
	driver := appform.NewDriver()
	rec.Collections.Drivers = append(rec.Collections.Drivers, driver)
	accident := appform.NewAccident()
	accident.DriverRef = appform.NewFieldWith(driver.ID, appform.ConfidenceHigh)
	rec.Collections.Accidents = append(rec.Collections.Accidents, accident)
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	deps, err := svc.GetDependencies(context.Background(), tenantID, sub.ID, appform.ColDrivers, driver.ID)

	assert.NoError(t, err)
	assert.Len(t, deps, 1)
	assert.Equal(t, "accident", deps[0].Type)
	assert.Equal(t, accident.ID, deps[0].ID)
}

func TestSubmissionService_GetDependencies_UnreferencedCollection(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec := appform.NewRecord()
	claimID := rec.Collections.Append(appform.ColClaims)
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	deps, err := svc.GetDependencies(context.Background(), tenantID, sub.ID, appform.ColClaims, claimID)

	assert.NoError(t, err)
	assert.Empty(t, deps)
}

func TestSubmissionService_GetDependencies_VehicleNotFound(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	deps, err := svc.GetDependencies(context.Background(), tenantID, sub.ID, appform.ColVehicles, uuid.NewString())

	assert.Nil(t, deps)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmissionService_GetDependencies_ProcessingIncomplete(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	sub.Status = domain.ProcessingStatusPending
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	deps, err := svc.GetDependencies(context.Background(), tenantID, sub.ID, appform.ColVehicles, uuid.NewString())

	assert.Nil(t, deps)
	assert.ErrorIs(t, err, domain.ErrProcessingIncomplete)
}

func TestSubmissionService_GetDependencies_UnknownCollection(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()

	deps, err := svc.GetDependencies(context.Background(), uuid.New(), uuid.New(), appform.CollectionName("boats"), uuid.NewString())

	assert.Nil(t, deps)
	assert.ErrorIs(t, err, domain.ErrUnknownCollection)
	subRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

// --- CheckConsistency ---

func TestSubmissionService_CheckConsistency_CleanRecord(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, _, _ := recordWithCoveredVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	report, err := svc.CheckConsistency(context.Background(), tenantID, sub.ID)

	assert.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 0, report.Summary.Total)
}

func TestSubmissionService_CheckConsistency_FindsOrphanedDeductible(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec := appform.NewRecord()
	orphan := appform.NewDeductibleForVehicle(uuid.NewString())
	rec.Collections.Deductibles = append(rec.Collections.Deductibles, orphan)
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	report, err := svc.CheckConsistency(context.Background(), tenantID, sub.ID)

	assert.NoError(t, err)
	assert.NotEmpty(t, report.Issues)
	assert.Equal(t, validator.IssueOrphanedDeductible, report.Issues[0].Type)
	assert.Equal(t, orphan.ID, report.Issues[0].ItemID)
	assert.Equal(t, 1, report.Summary.ByType[validator.IssueOrphanedDeductible])
}

func TestSubmissionService_CheckConsistency_FindsMissingDeductible(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, vehicleID := recordWithVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	report, err := svc.CheckConsistency(context.Background(), tenantID, sub.ID)

	assert.NoError(t, err)
	assert.Len(t, report.Issues, 1)
	assert.Equal(t, validator.IssueMissingDeductible, report.Issues[0].Type)
	assert.Equal(t, vehicleID, report.Issues[0].ItemID)
}

func TestSubmissionService_CheckConsistency_ProcessingIncomplete(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	sub.Status = domain.ProcessingStatusFailed
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	report, err := svc.CheckConsistency(context.Background(), tenantID, sub.ID)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrProcessingIncomplete)
}

// --- UpdateReview ---

func TestSubmissionService_UpdateReview_Approve(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()
	reviewerID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	approved := *sub
	approved.ReviewStatus = domain.ReviewStatusApproved
	approved.ReviewedBy = &reviewerID

	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil).Once()
	subRepo.On("SetReview", mock.Anything, tenantID, sub.ID, domain.ReviewStatusApproved, reviewerID, "looks right").Return(nil)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(&approved, nil).Once()
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditReviewUpdated
	})).Return(nil)

	result, err := svc.UpdateReview(context.Background(), &service.UpdateReviewInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		ReviewerID:   reviewerID,
		Status:       domain.ReviewStatusApproved,
		Notes:        "looks right",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusApproved, result.ReviewStatus)
	subRepo.AssertExpectations(t)
}

func TestSubmissionService_UpdateReview_InvalidStatus(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()

	result, err := svc.UpdateReview(context.Background(), &service.UpdateReviewInput{
		TenantID:     uuid.New(),
		SubmissionID: uuid.New(),
		ReviewerID:   uuid.New(),
		Status:       domain.ReviewStatus("maybe"),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidRecordData)
	subRepo.AssertNotCalled(t, "SetReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_UpdateReview_ProcessingIncomplete(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	sub.Status = domain.ProcessingStatusProcessing
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	result, err := svc.UpdateReview(context.Background(), &service.UpdateReviewInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		ReviewerID:   uuid.New(),
		Status:       domain.ReviewStatusRejected,
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProcessingIncomplete)
}

// --- Submit ---

func TestSubmissionService_Submit_Success(t *testing.T) {
	svc, subRepo, _, userRepo, auditRepo, _, _, email := setupSubmissionService()
	tenantID := uuid.New()
	userID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	now := time.Now().UTC()
	submitted := *sub
	submitted.SubmittedAt = &now

	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil).Once()
	subRepo.On("MarkSubmitted", mock.Anything, tenantID, sub.ID).Return(nil)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(&submitted, nil).Once()
	auditRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == domain.AuditSubmitted
	})).Return(nil)

	user := &domain.User{ID: userID, TenantID: tenantID, Email: "agent@acme.test", FullName: "Test Agent"}
	userRepo.On("GetByID", mock.Anything, tenantID, userID).Return(user, nil).Maybe()
	email.On("SendSubmissionReceipt", mock.Anything, "agent@acme.test", "Test Agent", mock.Anything).Return(nil).Maybe()

	result, err := svc.Submit(context.Background(), &service.SubmitInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       userID,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result.SubmittedAt)

	time.Sleep(100 * time.Millisecond)
	subRepo.AssertExpectations(t)
}

func TestSubmissionService_Submit_BlockedByConsistencyIssues(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	rec, _ := recordWithVehicle()
	sub := completedSubmission(tenantID, rec)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	result, err := svc.Submit(context.Background(), &service.SubmitInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrConsistencyIssues)
	subRepo.AssertNotCalled(t, "MarkSubmitted", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_Submit_ForceBypassesChecker(t *testing.T) {
	svc, subRepo, _, userRepo, auditRepo, _, _, email := setupSubmissionService()
	tenantID := uuid.New()
	userID := uuid.New()

	rec, _ := recordWithVehicle()
	sub := completedSubmission(tenantID, rec)
	now := time.Now().UTC()
	submitted := *sub
	submitted.SubmittedAt = &now

	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil).Once()
	subRepo.On("MarkSubmitted", mock.Anything, tenantID, sub.ID).Return(nil)
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(&submitted, nil).Once()
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	userRepo.On("GetByID", mock.Anything, tenantID, userID).
		Return(&domain.User{ID: userID, Email: "agent@acme.test", FullName: "Test Agent"}, nil).Maybe()
	email.On("SendSubmissionReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	result, err := svc.Submit(context.Background(), &service.SubmitInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       userID,
		Force:        true,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result.SubmittedAt)
	time.Sleep(100 * time.Millisecond)
}

func TestSubmissionService_Submit_ProcessingIncomplete(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	sub.Status = domain.ProcessingStatusQueued
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	result, err := svc.Submit(context.Background(), &service.SubmitInput{
		TenantID:     tenantID,
		SubmissionID: sub.ID,
		UserID:       uuid.New(),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProcessingIncomplete)
}

// --- ListAudit ---

func TestSubmissionService_ListAudit_Success(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)
	entries := []domain.SubmissionAuditEntry{
		{ID: uuid.New(), TenantID: tenantID, SubmissionID: sub.ID, Action: domain.AuditCreated},
		{ID: uuid.New(), TenantID: tenantID, SubmissionID: sub.ID, Action: domain.AuditProcessed},
	}
	auditRepo.On("ListBySubmission", mock.Anything, tenantID, sub.ID, 0, 50).Return(entries, 2, nil)

	result, total, err := svc.ListAudit(context.Background(), tenantID, sub.ID, 0, 50)

	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, result, 2)
}

func TestSubmissionService_ListAudit_SubmissionNotFound(t *testing.T) {
	svc, subRepo, _, _, auditRepo, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()
	subID := uuid.New()

	subRepo.On("GetByID", mock.Anything, tenantID, subID).Return(nil, domain.ErrNotFound)

	result, total, err := svc.ListAudit(context.Background(), tenantID, subID, 0, 50)

	assert.Nil(t, result)
	assert.Zero(t, total)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	auditRepo.AssertNotCalled(t, "ListBySubmission", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- ListForExport ---

func TestSubmissionService_ListForExport_SingleBatch(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	batch := []domain.Submission{
		{ID: uuid.New(), TenantID: tenantID},
		{ID: uuid.New(), TenantID: tenantID},
	}
	subRepo.On("List", mock.Anything, tenantID, mock.MatchedBy(func(f port.SubmissionFilter) bool {
		return f.Offset == 0 && f.Limit == 500
	})).Return(batch, 2, nil)

	result, err := svc.ListForExport(context.Background(), tenantID, port.SubmissionFilter{})

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestSubmissionService_ListForExport_PaginatesUntilShortBatch(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	full := make([]domain.Submission, 500)
	for i := range full {
		full[i] = domain.Submission{ID: uuid.New(), TenantID: tenantID}
	}
	tail := []domain.Submission{{ID: uuid.New(), TenantID: tenantID}}

	subRepo.On("List", mock.Anything, tenantID, mock.MatchedBy(func(f port.SubmissionFilter) bool {
		return f.Offset == 0 && f.Limit == 500
	})).Return(full, 501, nil)
	subRepo.On("List", mock.Anything, tenantID, mock.MatchedBy(func(f port.SubmissionFilter) bool {
		return f.Offset == 500 && f.Limit == 500
	})).Return(tail, 501, nil)

	result, err := svc.ListForExport(context.Background(), tenantID, port.SubmissionFilter{})

	assert.NoError(t, err)
	assert.Len(t, result, 501)
	subRepo.AssertExpectations(t)
}

// --- GetByID / ListPages ---

func TestSubmissionService_GetByID_Success(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()

	sub := completedSubmission(tenantID, appform.NewRecord())
	subRepo.On("GetByID", mock.Anything, tenantID, sub.ID).Return(sub, nil)

	result, err := svc.GetByID(context.Background(), tenantID, sub.ID)

	assert.NoError(t, err)
	assert.Equal(t, sub.ID, result.ID)
}

func TestSubmissionService_ListPages_Success(t *testing.T) {
	svc, subRepo, _, _, _, _, _, _ := setupSubmissionService()
	tenantID := uuid.New()
	subID := uuid.New()

	pageRows := []domain.SubmissionPage{
		{ID: uuid.New(), SubmissionID: subID, TenantID: tenantID, FileID: uuid.New(), PageNumber: 1},
	}
	subRepo.On("ListPages", mock.Anything, tenantID, subID).Return(pageRows, nil)

	result, err := svc.ListPages(context.Background(), tenantID, subID)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 1, result[0].PageNumber)
}
