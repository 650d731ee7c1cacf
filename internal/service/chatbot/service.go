// internal/service/chatbot/service.go
package chatbot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cobramax-service/internal/config"
	"cobramax-service/internal/domain/chatbot"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/pkg/ratelimit"
	"cobramax-service/internal/repository/postgres"

	"go.uber.org/zap"
)

const apologyReply = "Lo siento, en este momento no puedo procesar tu consulta. " +
	"Por favor intenta nuevamente en unos minutos o crea un ticket de soporte " +
	"para que un agente te atienda."

type ChatService struct {
	faqRepo      *postgres.FAQRepository
	convRepo     *postgres.ConversationRepository
	ticketRepo   *postgres.TicketRepository
	customerRepo *postgres.CustomerRepository
	limiter      *ratelimit.Limiter
	engine       *Engine
	completer    Completer // nil when no API key is configured
	cfg          config.ChatbotConfig
	logger       *zap.Logger
}

func NewChatService(
	faqRepo *postgres.FAQRepository,
	convRepo *postgres.ConversationRepository,
	ticketRepo *postgres.TicketRepository,
	customerRepo *postgres.CustomerRepository,
	limiter *ratelimit.Limiter,
	completer Completer,
	cfg config.ChatbotConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		faqRepo:      faqRepo,
		convRepo:     convRepo,
		ticketRepo:   ticketRepo,
		customerRepo: customerRepo,
		limiter:      limiter,
		engine:       NewEngine(),
		completer:    completer,
		cfg:          cfg,
		logger:       logger,
	}
}

// SendMessage runs the full pipeline for one inbound chat message: rate
// limit, conversation lookup, local routing, AI fallback, persistence.
// Writes that happen after the reply is resolved are logged, never returned;
// the customer already has their answer.
func (s *ChatService) SendMessage(ctx context.Context, userID int64, req *chatbot.SendMessageRequest) (*chatbot.SendMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, xerrors.ErrEmptyMessage
	}

	cust, err := s.customerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.limiter.AllowChatMessage(ctx, userID, s.cfg.RateLimit, s.cfg.RateWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	conv, err := s.convRepo.GetOrCreateActive(ctx, cust.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation: %w", err)
	}

	userMsg := &chatbot.Message{
		ConversationID: conv.ID,
		Sender:         chatbot.SenderCustomer,
		Body:           message,
	}
	if err := s.convRepo.AddMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	faqs, err := s.faqRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to load faqs", zap.Error(err))
		faqs = nil
	}

	resp := &chatbot.SendMessageResponse{
		Success:        true,
		ConversacionID: conv.ID,
	}

	var faqID sql.NullInt64
	result := s.engine.Route(message, faqs)
	switch {
	case result.Escalate:
		resp.Respuesta = result.Reply
		if id, err := s.escalateToAgent(ctx, cust.ID, conv.ID, message); err != nil {
			s.logger.Error("failed to escalate to agent",
				zap.Int64("conversation_id", conv.ID), zap.Error(err))
			resp.SugerirTicket = true
		} else {
			resp.TicketID = id
		}

	case result.Matched:
		resp.Respuesta = result.Reply
		resp.SugerirTicket = result.SuggestTicket
		if result.FAQ != nil {
			faqID = sql.NullInt64{Int64: result.FAQ.ID, Valid: true}
			if err := s.faqRepo.IncrementTimesAsked(ctx, result.FAQ.ID); err != nil {
				s.logger.Error("failed to increment faq counter",
					zap.Int64("faq_id", result.FAQ.ID), zap.Error(err))
			}
		}

	case s.completer != nil:
		reply, err := s.askAI(ctx, conv.ID, message)
		switch {
		case err == nil:
			resp.Respuesta = reply
		case errors.Is(err, xerrors.ErrRateLimited):
			return nil, err
		default:
			s.logger.Error("ai backend unavailable",
				zap.Int64("conversation_id", conv.ID), zap.Error(err))
			resp.Success = false
			resp.Error = "ai_unavailable"
			resp.Respuesta = apologyReply
			resp.SugerirTicket = true
			if s.cfg.AutoTicketOnError {
				if id, tErr := s.escalate(ctx, cust.ID, conv.ID, message, err); tErr != nil {
					s.logger.Error("failed to create escalation ticket", zap.Error(tErr))
				} else {
					resp.TicketID = id
				}
			}
		}

	default:
		resp.Respuesta = result.Reply
		resp.SugerirTicket = true
	}

	botMsg := &chatbot.Message{
		ConversationID: conv.ID,
		Sender:         chatbot.SenderBot,
		Body:           resp.Respuesta,
		FAQID:          faqID,
	}
	if err := s.convRepo.AddMessage(ctx, botMsg); err != nil {
		s.logger.Error("failed to store bot reply",
			zap.Int64("conversation_id", conv.ID), zap.Error(err))
	}

	return resp, nil
}

// askAI calls the completion backend with the recent conversation, bounded by
// the configured request timeout.
func (s *ChatService) askAI(ctx context.Context, conversationID int64, message string) (string, error) {
	history, err := s.convRepo.ListMessages(ctx, conversationID, historyDepth)
	if err != nil {
		s.logger.Error("failed to load history for ai", zap.Error(err))
		history = nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	return s.completer.Complete(ctx, history, message)
}

// escalate opens a ticket when the AI backend stays down, so the consultation
// is not lost.
func (s *ChatService) escalate(ctx context.Context, customerID, conversationID int64, message string, cause error) (int64, error) {
	return s.openEscalationTicket(ctx, customerID, conversationID,
		"Consulta no resuelta por el asistente",
		fmt.Sprintf("El cliente escribió: %s", message),
		fmt.Sprintf("Ticket automático por falla del asistente: %v", cause),
	)
}

// escalateToAgent opens a ticket because the customer explicitly asked for a
// human.
func (s *ChatService) escalateToAgent(ctx context.Context, customerID, conversationID int64, message string) (int64, error) {
	return s.openEscalationTicket(ctx, customerID, conversationID,
		"Atención por agente solicitada",
		fmt.Sprintf("El cliente pidió hablar con un agente. Mensaje: %s", message),
		"Derivación solicitada desde el chat",
	)
}

func (s *ChatService) openEscalationTicket(ctx context.Context, customerID, conversationID int64, title, description, eventDetail string) (int64, error) {
	ticket := &chatbot.Ticket{
		CustomerID:     customerID,
		ConversationID: sql.NullInt64{Int64: conversationID, Valid: true},
		Title:          title,
		Description:    description,
		Category:       chatbot.CategoryGeneral,
		Priority:       chatbot.PriorityMedium,
		Status:         chatbot.TicketOpen,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return 0, err
	}

	ev := &chatbot.TicketEvent{
		TicketID: ticket.ID,
		Action:   "creado",
		Detail:   eventDetail,
	}
	if err := s.ticketRepo.AddEvent(ctx, ev); err != nil {
		s.logger.Error("failed to record ticket event",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	if err := s.convRepo.UpdateStatus(ctx, conversationID, chatbot.ConversationEscalated); err != nil {
		s.logger.Error("failed to escalate conversation",
			zap.Int64("conversation_id", conversationID), zap.Error(err))
	}

	return ticket.ID, nil
}

// GetHistory returns the caller's active conversation as serializable views.
func (s *ChatService) GetHistory(ctx context.Context, userID int64, limit int) ([]chatbot.MessageView, int64, error) {
	cust, err := s.customerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	conv, err := s.convRepo.GetOrCreateActive(ctx, cust.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open conversation: %w", err)
	}

	msgs, err := s.convRepo.ListMessages(ctx, conv.ID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load history: %w", err)
	}

	views := make([]chatbot.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, chatbot.MessageView{
			Sender:    m.Sender,
			Body:      m.Body,
			Timestamp: m.CreatedAt,
		})
	}
	return views, conv.ID, nil
}

// GetConversationMessages returns the messages of one conversation, provided
// it belongs to the caller. Foreign conversations are indistinguishable from
// missing ones.
func (s *ChatService) GetConversationMessages(ctx context.Context, userID, conversationID int64, limit int) ([]chatbot.MessageView, error) {
	cust, err := s.customerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.CustomerID != cust.ID {
		return nil, xerrors.ErrNotFound
	}

	msgs, err := s.convRepo.ListMessages(ctx, conv.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	views := make([]chatbot.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, chatbot.MessageView{
			Sender:    m.Sender,
			Body:      m.Body,
			Timestamp: m.CreatedAt,
		})
	}
	return views, nil
}

// CreateTicket opens a support ticket on behalf of the authenticated
// customer. When the ticket references a conversation the conversation is
// flipped to derivada.
func (s *ChatService) CreateTicket(ctx context.Context, userID int64, req *chatbot.CreateTicketRequest) (*chatbot.Ticket, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, xerrors.ErrInvalidInput
	}

	cust, err := s.customerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = chatbot.CategoryGeneral
	}
	priority := req.Priority
	if priority == "" {
		priority = chatbot.PriorityMedium
	}

	ticket := &chatbot.Ticket{
		CustomerID:  cust.ID,
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      chatbot.TicketOpen,
		CreatedBy:   sql.NullInt64{Int64: userID, Valid: true},
	}

	if req.ConversationID != 0 {
		conv, err := s.convRepo.FindByID(ctx, req.ConversationID)
		if err != nil {
			return nil, err
		}
		if conv.CustomerID != cust.ID {
			return nil, xerrors.ErrNotFound
		}
		ticket.ConversationID = sql.NullInt64{Int64: conv.ID, Valid: true}
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	ev := &chatbot.TicketEvent{
		TicketID: ticket.ID,
		UserID:   sql.NullInt64{Int64: userID, Valid: true},
		Action:   "creado",
		Detail:   "Ticket creado desde el chat",
	}
	if err := s.ticketRepo.AddEvent(ctx, ev); err != nil {
		s.logger.Error("failed to record ticket event",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	if ticket.ConversationID.Valid {
		if err := s.convRepo.UpdateStatus(ctx, ticket.ConversationID.Int64, chatbot.ConversationEscalated); err != nil {
			s.logger.Error("failed to escalate conversation",
				zap.Int64("conversation_id", ticket.ConversationID.Int64), zap.Error(err))
		}
	}

	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *ChatService) ListTickets(ctx context.Context, filter postgres.TicketFilter) ([]chatbot.Ticket, error) {
	return s.ticketRepo.List(ctx, filter)
}

// UpdateTicketStatus moves a ticket through its workflow and records who did
// it.
func (s *ChatService) UpdateTicketStatus(ctx context.Context, ticketID int64, status string, actorID int64) (*chatbot.Ticket, error) {
	if _, err := s.ticketRepo.FindByID(ctx, ticketID); err != nil {
		return nil, err
	}

	actor := sql.NullInt64{Int64: actorID, Valid: actorID != 0}
	if err := s.ticketRepo.UpdateStatus(ctx, ticketID, status, actor); err != nil {
		return nil, err
	}

	ev := &chatbot.TicketEvent{
		TicketID: ticketID,
		UserID:   actor,
		Action:   "estado",
		Detail:   fmt.Sprintf("Estado cambiado a %s", status),
	}
	if err := s.ticketRepo.AddEvent(ctx, ev); err != nil {
		s.logger.Error("failed to record ticket event",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
	}

	return s.ticketRepo.FindByID(ctx, ticketID)
}

// Search answers a free-text consultation against the FAQ base; the best hit
// becomes the reply and up to three alternatives come back as suggestions.
func (s *ChatService) Search(ctx context.Context, query string) (*chatbot.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, xerrors.ErrInvalidInput
	}

	hits, err := s.faqRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search faqs: %w", err)
	}

	if len(hits) == 0 {
		return &chatbot.SearchResponse{
			Success:       true,
			SugerirTicket: true,
			Mensaje:       "No encontramos una respuesta para tu consulta. Puedes crear un ticket de soporte.",
		}, nil
	}

	best := hits[0]
	if err := s.faqRepo.IncrementTimesAsked(ctx, best.ID); err != nil {
		s.logger.Error("failed to increment faq counter",
			zap.Int64("faq_id", best.ID), zap.Error(err))
	}

	resp := &chatbot.SearchResponse{
		Success:         true,
		Respuesta:       best.Answer,
		RelatedQuestion: best.Question,
		Category:        best.Category,
	}
	for _, h := range hits[1:] {
		if len(resp.Suggestions) == 3 {
			break
		}
		resp.Suggestions = append(resp.Suggestions, chatbot.FAQSuggestion{
			ID:       h.ID,
			Question: h.Question,
		})
	}
	return resp, nil
}

// PopularFAQs lists the most consulted entries for the widget's quick
// buttons.
func (s *ChatService) PopularFAQs(ctx context.Context, limit int) ([]chatbot.FAQ, error) {
	return s.faqRepo.ListPopular(ctx, limit)
}
