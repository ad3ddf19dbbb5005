package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/service"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/response"
)

// AvailabilityHandler exposes therapist availability endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Get godoc
// @Summary Get a therapist's availability record
// @Tags Availability
// @Produce json
// @Param id path string true "Therapist ID"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	availability, err := h.availability.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Upsert godoc
// @Summary Create or replace a therapist's availability record
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Therapist ID"
// @Param payload body service.UpsertAvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/availability [put]
func (h *AvailabilityHandler) Upsert(c *gin.Context) {
	var req service.UpsertAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	availability, err := h.availability.Upsert(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Check godoc
// @Summary Check whether a therapist is available for a slot
// @Tags Availability
// @Produce json
// @Param id path string true "Therapist ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Start time (HH:MM)"
// @Param end query string true "End time (HH:MM)"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/availability/check [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	date := c.Query("date")
	start := c.Query("start")
	end := c.Query("end")
	if date == "" || start == "" || end == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date, start and end are required"))
		return
	}
	decision, err := h.availability.CheckAvailability(c.Request.Context(), c.Param("id"), date, start, end, "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision, nil)
}
