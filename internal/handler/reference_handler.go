package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"coverscan/internal/service"
)

// ReferenceHandler serves lookup data used by the editing UI.
type ReferenceHandler struct {
	referenceService service.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(referenceService service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// SearchVehicleMakes handles GET /api/v1/reference/vehicle-makes
// @Summary Search vehicle makes and models
// @Description Prefix search over the vehicle make/model reference table, for typeahead in the record editor
// @Tags reference
// @Produce json
// @Param q query string true "Search prefix"
// @Param limit query int false "Maximum results (max 25)" default(25)
// @Success 200 {object} Response{data=[]port.VehicleMakeEntry} "Matching makes and models"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /reference/vehicle-makes [get]
func (h *ReferenceHandler) SearchVehicleMakes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))

	entries, err := h.referenceService.SearchVehicleMakes(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entries)
}
