package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/services"
	"github.com/openshelf/openshelf/pkg/mail"
	"github.com/openshelf/openshelf/pkg/response"
)

// NotificationHandler exposes the overdue-notification HTTP surface.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(db *gorm.DB, gateway mail.Gateway) (*NotificationHandler, error) {
	service, err := services.NewNotificationService(db, gateway)
	if err != nil {
		return nil, err
	}
	return &NotificationHandler{service: service}, nil
}

// SendOverdue dispatches one overdue notification. The HTTP call succeeds
// regardless of delivery outcome; the outcome itself is the payload.
func (h *NotificationHandler) SendOverdue(c *gin.Context) {
	var input services.SendOverdueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, errBadPayload)
		return
	}

	outcome, err := h.service.SendOverdue(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// SendBulk dispatches a batch of overdue notifications sequentially.
func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var payload struct {
		Notifications []services.SendOverdueInput `json:"notifications"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, errBadPayload)
		return
	}

	outcome, err := h.service.SendBulk(c.Request.Context(), payload.Notifications)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// SendTest sends a fixed template to verify configuration. Unlike the other
// send paths, a gateway failure here surfaces as an HTTP error.
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var payload struct {
		To   string `json:"to" validate:"required"`
		Name string `json:"name"`
	}
	if !bindAndValidate(c, &payload) {
		return
	}

	outcome := h.service.SendTest(c.Request.Context(), payload.To, payload.Name)
	if !outcome.Success {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   outcome.Error,
			"message": "Failed to send test email",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"messageId": outcome.MessageID,
		"message":   "Test email sent successfully",
	})
}

// Stats returns ledger counts and the ten most recent records.
func (h *NotificationHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// History returns one ledger page. Page and limit default on absent or
// non-numeric values.
func (h *NotificationHandler) History(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	history, err := h.service.History(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, history)
}

// Delete removes one ledger row.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification deleted successfully",
	})
}

// Retry re-dispatches a stored notification and overwrites its outcome.
func (h *NotificationHandler) Retry(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	outcome, err := h.service.Retry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
