package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coverscan/internal/appform"
	"coverscan/internal/csvexport"
	"coverscan/internal/domain"
	"coverscan/internal/port"
	"coverscan/internal/service"
)

// SubmissionHandler handles submission lifecycle endpoints.
type SubmissionHandler struct {
	submissionService service.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// Create handles POST /api/v1/submissions
// @Summary Create a submission
// @Description Create a submission from uploaded page scans and start recognition in the background
// @Tags submissions
// @Accept json
// @Produce json
// @Param request body CreateSubmissionRequest true "Submission details"
// @Success 201 {object} Response{data=domain.Submission} "Submission created, recognition started"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Page file not found"
// @Security BearerAuth
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var req struct {
		FormType    domain.FormType `json:"form_type" binding:"required"`
		PageFileIDs []uuid.UUID     `json:"page_file_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "form_type and page_file_ids are required")
		return
	}

	sub, err := h.submissionService.CreateAndProcess(c.Request.Context(), &service.CreateSubmissionInput{
		TenantID:    tenantID,
		CreatedBy:   userID,
		FormType:    req.FormType,
		PageFileIDs: req.PageFileIDs,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, sub)
}

// List handles GET /api/v1/submissions
// @Summary List submissions
// @Description List the tenant's submissions, newest first, with optional status filters
// @Tags submissions
// @Produce json
// @Param status query string false "Processing status filter" Enums(pending, processing, queued, completed, failed)
// @Param review_status query string false "Review status filter" Enums(pending_review, approved, rejected)
// @Param form_type query string false "Form type filter" Enums(auto, home)
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Submission} "Submissions"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	filter := port.SubmissionFilter{
		Status:       domain.ProcessingStatus(c.Query("status")),
		ReviewStatus: domain.ReviewStatus(c.Query("review_status")),
		FormType:     domain.FormType(c.Query("form_type")),
		Offset:       offset,
		Limit:        limit,
	}

	subs, total, err := h.submissionService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/submissions/:id
// @Summary Get submission by ID
// @Description Get a submission with its recognized record, sync warnings, and page list
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Success 200 {object} Response{data=SubmissionDetail} "Submission details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Security BearerAuth
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	sub, err := h.submissionService.GetByID(c.Request.Context(), tenantID, subID)
	if err != nil {
		HandleError(c, err)
		return
	}
	pages, err := h.submissionService.ListPages(c.Request.Context(), tenantID, subID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, SubmissionDetail{Submission: sub, Pages: pages})
}

// Retry handles POST /api/v1/submissions/:id/retry
// @Summary Retry recognition
// @Description Re-run recognition for a failed or queued submission
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Success 202 {object} Response{data=domain.Submission} "Recognition restarted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Failure 409 {object} ErrorResponseBody "Submission is not retryable"
// @Security BearerAuth
// @Router /submissions/{id}/retry [post]
func (h *SubmissionHandler) Retry(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	sub, err := h.submissionService.Retry(c.Request.Context(), tenantID, subID, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, sub)
}

// UpdateRecord handles PUT /api/v1/submissions/:id/record
// @Summary Replace the record
// @Description Replace the whole recognized record; the result is resynchronized and review is reset
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param request body UpdateRecordRequest true "Full record"
// @Success 200 {object} Response{data=service.RecordView} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Invalid record data"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Failure 409 {object} ErrorResponseBody "Already submitted or collection over its cap"
// @Security BearerAuth
// @Router /submissions/{id}/record [put]
func (h *SubmissionHandler) UpdateRecord(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "record is required")
		return
	}

	view, err := h.submissionService.UpdateRecord(c.Request.Context(), &service.UpdateRecordInput{
		TenantID:     tenantID,
		SubmissionID: subID,
		UserID:       userID,
		Record:       req.Record,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// AddEntity handles POST /api/v1/submissions/:id/entities
// @Summary Add an entity
// @Description Append a default entity to one of the record's collections
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param request body AddEntityRequest true "Collection name"
// @Success 200 {object} Response{data=service.RecordView} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Unknown collection"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Failure 409 {object} ErrorResponseBody "Collection at its maximum size"
// @Security BearerAuth
// @Router /submissions/{id}/entities [post]
func (h *SubmissionHandler) AddEntity(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	var req struct {
		Collection appform.CollectionName `json:"collection" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "collection is required")
		return
	}

	view, err := h.submissionService.AddEntity(c.Request.Context(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: subID,
		UserID:       userID,
		Collection:   req.Collection,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// EditEntity handles PATCH /api/v1/submissions/:id/entities/:collection/:entityID
// @Summary Edit entity fields
// @Description Set or clear individual fields on an entity; set values become high-confidence, unflagged human entries
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param collection path string true "Collection name"
// @Param entityID path string true "Entity ID"
// @Param request body EditEntityRequest true "Field values (null clears)"
// @Success 200 {object} Response{data=service.RecordView} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Unknown collection or field"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission or entity not found"
// @Security BearerAuth
// @Router /submissions/{id}/entities/{collection}/{entityID} [patch]
func (h *SubmissionHandler) EditEntity(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	var req struct {
		Fields map[string]*string `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Fields) == 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fields is required and must not be empty")
		return
	}

	view, err := h.submissionService.EditEntityFields(c.Request.Context(), &service.EditEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: subID,
			UserID:       userID,
			Collection:   appform.CollectionName(c.Param("collection")),
			EntityID:     c.Param("entityID"),
		},
		Fields: req.Fields,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// RemoveEntity handles DELETE /api/v1/submissions/:id/entities/:collection/:entityID
// @Summary Remove an entity
// @Description Remove an entity under a deletion policy: block (default) refuses while dependents exist, cascade removes them, orphan leaves them to the synchronizer
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param collection path string true "Collection name"
// @Param entityID path string true "Entity ID"
// @Param policy query string false "Deletion policy" Enums(block, cascade, orphan) default(block)
// @Success 200 {object} Response{data=service.RecordView} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Unknown collection"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission or entity not found"
// @Failure 409 {object} ErrorResponseBody "Deletion blocked by dependents"
// @Security BearerAuth
// @Router /submissions/{id}/entities/{collection}/{entityID} [delete]
func (h *SubmissionHandler) RemoveEntity(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	view, err := h.submissionService.RemoveEntity(c.Request.Context(), &service.RemoveEntityInput{
		EntityInput: service.EntityInput{
			TenantID:     tenantID,
			SubmissionID: subID,
			UserID:       userID,
			Collection:   appform.CollectionName(c.Param("collection")),
			EntityID:     c.Param("entityID"),
		},
		Policy: domain.DeletePolicy(c.DefaultQuery("policy", string(domain.DeletePolicyBlock))),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// DuplicateEntity handles POST /api/v1/submissions/:id/entities/:collection/:entityID/duplicate
// @Summary Duplicate an entity
// @Description Clone an entity under a fresh ID; duplicating a vehicle also clones its deductibles and lienholders, re-pointed at the copy
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param collection path string true "Collection name"
// @Param entityID path string true "Entity ID"
// @Success 200 {object} Response{data=service.RecordView} "Updated record"
// @Failure 400 {object} ErrorResponseBody "Unknown collection"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission or entity not found"
// @Failure 409 {object} ErrorResponseBody "Collection at its maximum size"
// @Security BearerAuth
// @Router /submissions/{id}/entities/{collection}/{entityID}/duplicate [post]
func (h *SubmissionHandler) DuplicateEntity(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	view, err := h.submissionService.DuplicateEntity(c.Request.Context(), &service.EntityInput{
		TenantID:     tenantID,
		SubmissionID: subID,
		UserID:       userID,
		Collection:   appform.CollectionName(c.Param("collection")),
		EntityID:     c.Param("entityID"),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}

// GetDependencies handles GET /api/v1/submissions/:id/entities/:collection/:entityID/dependencies
// @Summary List entity dependencies
// @Description List the items that still reference an entity, as shown before a removal
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param collection path string true "Collection name"
// @Param entityID path string true "Entity ID"
// @Success 200 {object} Response{data=[]appform.Dependency} "Dependencies"
// @Failure 400 {object} ErrorResponseBody "Unknown collection"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission or entity not found"
// @Security BearerAuth
// @Router /submissions/{id}/entities/{collection}/{entityID}/dependencies [get]
func (h *SubmissionHandler) GetDependencies(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	deps, err := h.submissionService.GetDependencies(c.Request.Context(), tenantID, subID,
		appform.CollectionName(c.Param("collection")), c.Param("entityID"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, deps)
}

// CheckConsistency handles GET /api/v1/submissions/:id/consistency
// @Summary Check record consistency
// @Description Run the consistency checker over the record without modifying it
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Success 200 {object} Response{data=service.ConsistencyReport} "Consistency report"
// @Failure 400 {object} ErrorResponseBody "Submission not processed yet"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Security BearerAuth
// @Router /submissions/{id}/consistency [get]
func (h *SubmissionHandler) CheckConsistency(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	report, err := h.submissionService.CheckConsistency(c.Request.Context(), tenantID, subID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// UpdateReview handles POST /api/v1/submissions/:id/review
// @Summary Review a submission
// @Description Approve or reject a processed submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param request body ReviewSubmissionRequest true "Review decision"
// @Success 200 {object} Response{data=domain.Submission} "Updated submission"
// @Failure 400 {object} ErrorResponseBody "Invalid status or submission not processed"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Security BearerAuth
// @Router /submissions/{id}/review [post]
func (h *SubmissionHandler) UpdateReview(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	var req ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "status is required")
		return
	}

	sub, err := h.submissionService.UpdateReview(c.Request.Context(), &service.UpdateReviewInput{
		TenantID:     tenantID,
		SubmissionID: subID,
		ReviewerID:   userID,
		Status:       domain.ReviewStatus(req.Status),
		Notes:        req.Notes,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// Submit handles POST /api/v1/submissions/:id/submit
// @Summary Finalize a submission
// @Description Submit the reviewed record; refused while consistency issues remain unless forced
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param request body SubmitRequest false "Submit options"
// @Success 200 {object} Response{data=domain.Submission} "Submitted"
// @Failure 400 {object} ErrorResponseBody "Submission not processed yet"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Failure 409 {object} ErrorResponseBody "Consistency issues or already submitted"
// @Security BearerAuth
// @Router /submissions/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	tenantID, userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	// The body is optional; force defaults to false.
	var req SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid submit options")
			return
		}
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), &service.SubmitInput{
		TenantID:     tenantID,
		SubmissionID: subID,
		UserID:       userID,
		Force:        req.Force,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, sub)
}

// ListAudit handles GET /api/v1/submissions/:id/audit
// @Summary List the audit trail
// @Description List the submission's audit entries, newest first
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID (UUID)"
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Page size (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.SubmissionAuditEntry} "Audit entries"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Submission not found"
// @Security BearerAuth
// @Router /submissions/{id}/audit [get]
func (h *SubmissionHandler) ListAudit(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}
	subID, ok := parseSubmissionID(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	entries, total, err := h.submissionService.ListAudit(c.Request.Context(), tenantID, subID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/submissions/export/csv
// @Summary Export submissions as CSV
// @Description Download the tenant's submissions as a CSV file, with applicant and entity-count columns for completed records
// @Tags submissions
// @Produce text/csv
// @Param status query string false "Processing status filter" Enums(pending, processing, queued, completed, failed)
// @Param review_status query string false "Review status filter" Enums(pending_review, approved, rejected)
// @Param form_type query string false "Form type filter" Enums(auto, home)
// @Success 200 {file} file "CSV download"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /submissions/export/csv [get]
func (h *SubmissionHandler) ExportCSV(c *gin.Context) {
	tenantID, _, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	filter := port.SubmissionFilter{
		Status:       domain.ProcessingStatus(c.Query("status")),
		ReviewStatus: domain.ReviewStatus(c.Query("review_status")),
		FormType:     domain.FormType(c.Query("form_type")),
	}
	subs, err := h.submissionService.ListForExport(c.Request.Context(), tenantID, filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename("submissions")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Writer.Write(csvexport.BOM)

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteSubmissions(subs); err != nil {
		return
	}
	w.Flush()
}

// parseSubmissionID parses the :id path param. Returns false if invalid
// (error response already written).
func parseSubmissionID(c *gin.Context) (uuid.UUID, bool) {
	subID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid submission ID")
		return uuid.Nil, false
	}
	return subID, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
