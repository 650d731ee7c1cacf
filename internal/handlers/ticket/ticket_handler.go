// internal/handlers/ticket/ticket_handler.go
package ticket

import (
	"errors"
	"net/http"
	"strconv"

	"cobramax-service/internal/domain/chatbot"
	"cobramax-service/internal/middleware"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/pkg/response"
	"cobramax-service/internal/repository/postgres"
	chatService "cobramax-service/internal/service/chatbot"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	chatService *chatService.ChatService
	logger      *zap.Logger
}

func NewTicketHandler(svc *chatService.ChatService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		chatService: svc,
		logger:      logger,
	}
}

// List returns tickets filtered by the query parameters
func (h *TicketHandler) List(c *gin.Context) {
	filter := postgres.TicketFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			response.ValidationError(c, "invalid customer_id", err)
			return
		}
		filter.CustomerID = id
	}

	tickets, err := h.chatService.ListTickets(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list tickets failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list tickets", err)
		return
	}

	response.Success(c, http.StatusOK, "", tickets)
}

// UpdateStatus moves a ticket through its workflow
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, "invalid ticket id", err)
		return
	}

	var req chatbot.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	userID := middleware.MustGetUserID(c)
	ticket, err := h.chatService.UpdateTicketStatus(c.Request.Context(), id, req.Status, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "ticket not found")
			return
		}
		h.logger.Error("update ticket status failed", zap.Int64("ticket_id", id), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to update ticket", err)
		return
	}

	h.logger.Info("ticket status updated",
		zap.Int64("ticket_id", id),
		zap.String("status", req.Status),
		zap.Int64("actor_id", userID),
	)

	response.Success(c, http.StatusOK, "ticket updated", ticket)
}
