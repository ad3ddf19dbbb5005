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

// BeneficiaryHandler exposes beneficiary directory endpoints.
type BeneficiaryHandler struct {
	beneficiaries *service.BeneficiaryService
}

// NewBeneficiaryHandler constructs BeneficiaryHandler.
func NewBeneficiaryHandler(beneficiaries *service.BeneficiaryService) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaries: beneficiaries}
}

// List godoc
// @Summary List beneficiaries
// @Tags Beneficiaries
// @Produce json
// @Param search query string false "Search by name"
// @Param department query string false "Filter by department"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /beneficiaries [get]
func (h *BeneficiaryHandler) List(c *gin.Context) {
	var filter models.BeneficiaryFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Department = c.Query("department")
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

	beneficiaries, pagination, err := h.beneficiaries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, beneficiaries, pagination)
}

// Get godoc
// @Summary Get beneficiary detail
// @Tags Beneficiaries
// @Produce json
// @Param id path string true "Beneficiary ID"
// @Success 200 {object} response.Envelope
// @Router /beneficiaries/{id} [get]
func (h *BeneficiaryHandler) Get(c *gin.Context) {
	beneficiary, err := h.beneficiaries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, beneficiary, nil)
}

// Create godoc
// @Summary Register a beneficiary
// @Tags Beneficiaries
// @Accept json
// @Produce json
// @Param payload body service.UpsertBeneficiaryRequest true "Beneficiary payload"
// @Success 201 {object} response.Envelope
// @Router /beneficiaries [post]
func (h *BeneficiaryHandler) Create(c *gin.Context) {
	var req service.UpsertBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	beneficiary, err := h.beneficiaries.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, beneficiary)
}

// Update godoc
// @Summary Update a beneficiary
// @Tags Beneficiaries
// @Accept json
// @Produce json
// @Param id path string true "Beneficiary ID"
// @Param payload body service.UpsertBeneficiaryRequest true "Beneficiary payload"
// @Success 200 {object} response.Envelope
// @Router /beneficiaries/{id} [put]
func (h *BeneficiaryHandler) Update(c *gin.Context) {
	var req service.UpsertBeneficiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	beneficiary, err := h.beneficiaries.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, beneficiary, nil)
}

// Delete godoc
// @Summary Deactivate a beneficiary
// @Tags Beneficiaries
// @Produce json
// @Param id path string true "Beneficiary ID"
// @Success 204
// @Router /beneficiaries/{id} [delete]
func (h *BeneficiaryHandler) Delete(c *gin.Context) {
	if err := h.beneficiaries.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
