package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/service"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/response"
)

// SubstitutionHandler exposes the substitute matcher.
type SubstitutionHandler struct {
	substitutes *service.SubstitutionService
}

// NewSubstitutionHandler constructs SubstitutionHandler.
func NewSubstitutionHandler(substitutes *service.SubstitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{substitutes: substitutes}
}

// Find godoc
// @Summary Find substitute therapists for a slot
// @Tags Substitutions
// @Produce json
// @Param id path string true "Original therapist ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Start time (HH:MM)"
// @Param end query string true "End time (HH:MM)"
// @Param beneficiaryId query string false "Beneficiary for continuity scoring"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/substitutes [get]
func (h *SubstitutionHandler) Find(c *gin.Context) {
	date := c.Query("date")
	start := c.Query("start")
	end := c.Query("end")
	if date == "" || start == "" || end == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date, start and end are required"))
		return
	}
	candidates, err := h.substitutes.FindSubstitutes(c.Request.Context(), c.Param("id"), date, start, end, c.Query("beneficiaryId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, nil)
}
