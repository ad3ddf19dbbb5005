package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/internal/service"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/response"
)

// TherapistHandler exposes therapist directory endpoints.
type TherapistHandler struct {
	therapists *service.TherapistService
}

// NewTherapistHandler constructs TherapistHandler.
func NewTherapistHandler(therapists *service.TherapistService) *TherapistHandler {
	return &TherapistHandler{therapists: therapists}
}

// List godoc
// @Summary List therapists
// @Tags Therapists
// @Produce json
// @Param search query string false "Search by name or email"
// @Param department query string false "Filter by department"
// @Param specialization query string false "Filter by specialization"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /therapists [get]
func (h *TherapistHandler) List(c *gin.Context) {
	var filter models.TherapistFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Department = c.Query("department")
	filter.Specialization = c.Query("specialization")
	if active := c.Query("active"); active != "" {
		if active == "true" {
			v := true
			filter.Active = &v
		} else if active == "false" {
			v := false
			filter.Active = &v
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	therapists, pagination, err := h.therapists.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, therapists, pagination)
}

// Get godoc
// @Summary Get therapist detail
// @Tags Therapists
// @Produce json
// @Param id path string true "Therapist ID"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id} [get]
func (h *TherapistHandler) Get(c *gin.Context) {
	therapist, err := h.therapists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, therapist, nil)
}

// Create godoc
// @Summary Register a therapist
// @Tags Therapists
// @Accept json
// @Produce json
// @Param payload body service.UpsertTherapistRequest true "Therapist payload"
// @Success 201 {object} response.Envelope
// @Router /therapists [post]
func (h *TherapistHandler) Create(c *gin.Context) {
	var req service.UpsertTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	therapist, err := h.therapists.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, therapist)
}

// Update godoc
// @Summary Update a therapist
// @Tags Therapists
// @Accept json
// @Produce json
// @Param id path string true "Therapist ID"
// @Param payload body service.UpsertTherapistRequest true "Therapist payload"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id} [put]
func (h *TherapistHandler) Update(c *gin.Context) {
	var req service.UpsertTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	therapist, err := h.therapists.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, therapist, nil)
}

// Delete godoc
// @Summary Deactivate a therapist
// @Tags Therapists
// @Produce json
// @Param id path string true "Therapist ID"
// @Success 204
// @Router /therapists/{id} [delete]
func (h *TherapistHandler) Delete(c *gin.Context) {
	if err := h.therapists.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
