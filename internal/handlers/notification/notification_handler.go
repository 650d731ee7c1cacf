// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"
	"strconv"

	"cobramax-service/internal/pkg/response"
	notifyService "cobramax-service/internal/service/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	notifyService *notifyService.NotificationService
	logger        *zap.Logger
}

func NewNotificationHandler(svc *notifyService.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifyService: svc,
		logger:        logger,
	}
}

// Flush triggers the pending notification dispatch manually
func (h *NotificationHandler) Flush(c *gin.Context) {
	report, err := h.notifyService.Flush(c.Request.Context())
	if err != nil {
		h.logger.Error("manual notification flush failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to flush notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "notifications flushed", report)
}

// ListByCustomer returns a customer's notification history
func (h *NotificationHandler) ListByCustomer(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || customerID <= 0 {
		response.ValidationError(c, "invalid customer id", err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.notifyService.ListByCustomer(c.Request.Context(), customerID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "", items)
}
