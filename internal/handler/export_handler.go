package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/service"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/response"
)

// ExportHandler serves downloadable schedule exports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Schedule godoc
// @Summary Export a therapist's schedule as CSV or PDF
// @Tags Exports
// @Produce text/csv,application/pdf
// @Param id path string true "Therapist ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /therapists/{id}/schedule/export [get]
func (h *ExportHandler) Schedule(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from and to are required"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.exports.TherapistSchedule(c.Request.Context(), c.Param("id"), from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
