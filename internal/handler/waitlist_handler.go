package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/models"
	"github.com/rehasoft/rehab-center-api/internal/service"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/response"
)

// WaitlistHandler exposes waitlist endpoints.
type WaitlistHandler struct {
	waitlist *service.WaitlistService
}

// NewWaitlistHandler constructs WaitlistHandler.
func NewWaitlistHandler(waitlist *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

// List godoc
// @Summary List waitlist entries
// @Tags Waitlist
// @Produce json
// @Param department query string false "Filter by department"
// @Param beneficiaryId query string false "Filter by beneficiary"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /waitlist [get]
func (h *WaitlistHandler) List(c *gin.Context) {
	var filter models.WaitlistFilter
	filter.Department = c.Query("department")
	filter.BeneficiaryID = c.Query("beneficiaryId")
	filter.Status = c.Query("status")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	entries, pagination, err := h.waitlist.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Get godoc
// @Summary Get waitlist entry detail
// @Tags Waitlist
// @Produce json
// @Param id path string true "Waitlist entry ID"
// @Success 200 {object} response.Envelope
// @Router /waitlist/{id} [get]
func (h *WaitlistHandler) Get(c *gin.Context) {
	entry, err := h.waitlist.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Create godoc
// @Summary Register a waitlist entry
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param payload body service.CreateWaitlistEntryRequest true "Waitlist payload"
// @Success 201 {object} response.Envelope
// @Router /waitlist [post]
func (h *WaitlistHandler) Create(c *gin.Context) {
	var req service.CreateWaitlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.waitlist.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

type respondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// Respond godoc
// @Summary Respond to a slot offer
// @Tags Waitlist
// @Accept json
// @Produce json
// @Param id path string true "Waitlist entry ID"
// @Param payload body respondRequest true "Accept or decline"
// @Success 200 {object} response.Envelope
// @Router /waitlist/{id}/respond [post]
func (h *WaitlistHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.waitlist.Respond(c.Request.Context(), c.Param("id"), *req.Accept)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ExpireStale godoc
// @Summary Expire stale offers
// @Tags Waitlist
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /waitlist/expire [post]
func (h *WaitlistHandler) ExpireStale(c *gin.Context) {
	expired, err := h.waitlist.ExpireStale(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"expired": expired}, nil)
}
