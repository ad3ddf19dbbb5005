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

// SessionHandler exposes therapy session endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// List godoc
// @Summary List therapy sessions
// @Tags Sessions
// @Produce json
// @Param therapistId query string false "Filter by therapist"
// @Param beneficiaryId query string false "Filter by beneficiary"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param dateTo query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.TherapistID = c.Query("therapistId")
	filter.BeneficiaryID = c.Query("beneficiaryId")
	filter.Status = strings.ToUpper(c.Query("status"))
	filter.DateFrom = c.Query("dateFrom")
	filter.DateTo = c.Query("dateTo")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sessions, pagination, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get godoc
// @Summary Get session detail
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Schedule godoc
// @Summary Book a therapy session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.ScheduleSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Schedule(c *gin.Context) {
	var req service.ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Reschedule godoc
// @Summary Move a session to a new slot
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.RescheduleSessionRequest true "New slot"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/reschedule [put]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Update session status
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body updateStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/status [patch]
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.sessions.UpdateStatus(c.Request.Context(), c.Param("id"), models.SessionStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Document godoc
// @Summary Attach SOAP documentation to a completed session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.DocumentSessionRequest true "SOAP note"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/notes [post]
func (h *SessionHandler) Document(c *gin.Context) {
	var req service.DocumentSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	note, err := h.sessions.Document(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// GetNote godoc
// @Summary Get a session's SOAP note
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/notes [get]
func (h *SessionHandler) GetNote(c *gin.Context) {
	note, err := h.sessions.GetNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, note, nil)
}
