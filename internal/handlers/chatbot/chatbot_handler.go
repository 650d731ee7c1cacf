// internal/handlers/chatbot/chatbot_handler.go
package chatbot

import (
	"errors"
	"net/http"
	"strconv"

	"cobramax-service/internal/domain/chatbot"
	"cobramax-service/internal/middleware"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/pkg/response"
	chatService "cobramax-service/internal/service/chatbot"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatbotHandler struct {
	chatService *chatService.ChatService
	logger      *zap.Logger
}

func NewChatbotHandler(svc *chatService.ChatService, logger *zap.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		chatService: svc,
		logger:      logger,
	}
}

// SendMessage handles one inbound chat message. The reply payload is the raw
// widget contract, not the standard envelope.
func (h *ChatbotHandler) SendMessage(c *gin.Context) {
	var req chatbot.SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid_json", "No se pudo leer el mensaje")
		return
	}

	userID := middleware.MustGetUserID(c)
	resp, err := h.chatService.SendMessage(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrEmptyMessage):
			response.Fail(c, http.StatusBadRequest, "empty_message", "El mensaje no puede estar vacío")
		case errors.Is(err, xerrors.ErrRateLimited):
			response.Fail(c, http.StatusTooManyRequests, "rate_limited", "Has enviado demasiados mensajes, espera un momento")
		case errors.Is(err, xerrors.ErrNotFound):
			response.Fail(c, http.StatusNotFound, "not_found", "No encontramos una cuenta de cliente asociada")
		default:
			h.logger.Error("send message failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			response.Fail(c, http.StatusInternalServerError, "internal_error", "Ocurrió un error procesando tu mensaje")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetHistory returns the caller's active conversation messages.
func (h *ChatbotHandler) GetHistory(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	views, conversationID, err := h.chatService.GetHistory(c.Request.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "not_found", "No encontramos una cuenta de cliente asociada")
			return
		}
		h.logger.Error("get history failed", zap.Int64("user_id", userID), zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "internal_error", "No se pudo cargar el historial")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"conversacion_id": conversationID,
		"mensajes":        views,
	})
}

// ConversationMessages returns one conversation's messages. A conversation
// that exists but belongs to someone else reads as not found.
func (h *ChatbotHandler) ConversationMessages(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || conversationID <= 0 {
		response.Fail(c, http.StatusBadRequest, "invalid_input", "Identificador de conversación inválido")
		return
	}

	userID := middleware.MustGetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	views, err := h.chatService.GetConversationMessages(c.Request.Context(), userID, conversationID, limit)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, "not_found", "Conversación no encontrada")
			return
		}
		h.logger.Error("conversation messages failed",
			zap.Int64("conversation_id", conversationID), zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "internal_error", "No se pudieron cargar los mensajes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"conversacion_id": conversationID,
		"mensajes":        views,
	})
}

// CreateTicket opens a support ticket from the chat widget.
func (h *ChatbotHandler) CreateTicket(c *gin.Context) {
	var req chatbot.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid_json", "No se pudo leer la solicitud")
		return
	}

	userID := middleware.MustGetUserID(c)
	ticket, err := h.chatService.CreateTicket(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrInvalidInput):
			response.Fail(c, http.StatusBadRequest, "invalid_input", "Título y descripción son obligatorios")
		case errors.Is(err, xerrors.ErrNotFound):
			response.Fail(c, http.StatusNotFound, "not_found", "Conversación no encontrada")
		default:
			h.logger.Error("create ticket failed", zap.Int64("user_id", userID), zap.Error(err))
			response.Fail(c, http.StatusInternalServerError, "internal_error", "No se pudo crear el ticket")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"ticket_id": ticket.ID,
		"mensaje":   "Ticket creado correctamente",
	})
}

// Search answers a free text FAQ consultation.
func (h *ChatbotHandler) Search(c *gin.Context) {
	var req chatbot.SearchRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid_json", "Consulta vacía")
		return
	}

	resp, err := h.chatService.Search(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.Fail(c, http.StatusBadRequest, "invalid_input", "Consulta vacía")
			return
		}
		h.logger.Error("faq search failed", zap.Error(err))
		response.Fail(c, http.StatusInternalServerError, "internal_error", "No se pudo realizar la búsqueda")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PopularFAQs lists the most consulted FAQs for the widget's quick buttons.
func (h *ChatbotHandler) PopularFAQs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))

	faqs, err := h.chatService.PopularFAQs(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("popular faqs failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to load faqs", err)
		return
	}

	suggestions := make([]chatbot.FAQSuggestion, 0, len(faqs))
	for _, f := range faqs {
		suggestions = append(suggestions, chatbot.FAQSuggestion{ID: f.ID, Question: f.Question})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"preguntas": suggestions,
	})
}
