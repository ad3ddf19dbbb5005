package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rehasoft/rehab-center-api/internal/service"
	appErrors "github.com/rehasoft/rehab-center-api/pkg/errors"
	"github.com/rehasoft/rehab-center-api/pkg/response"
)

// NotificationHandler exposes the notification inbox.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List godoc
// @Summary List a recipient's notifications
// @Tags Notifications
// @Produce json
// @Param recipientId query string true "Recipient ID"
// @Param limit query int false "Max items"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	recipientID := c.Query("recipientId")
	if recipientID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "recipientId is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notifications.List(c.Request.Context(), recipientID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, nil)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
