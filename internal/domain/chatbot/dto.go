// internal/domain/chatbot/dto.go
package chatbot

import "time"

// SendMessageRequest accepts both JSON and form encoded bodies; the frontend
// still posts form data from the legacy chat widget.
type SendMessageRequest struct {
	Message string `json:"message" form:"message"`
}

// SendMessageResponse is the wire format the chat widget consumes. Field
// names are part of the contract.
type SendMessageResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	Respuesta      string `json:"respuesta"`
	SugerirTicket  bool   `json:"sugerir_ticket"`
	ConversacionID int64  `json:"conversacion_id"`
	TicketID       int64  `json:"ticket_id,omitempty"`
}

type CreateTicketRequest struct {
	Title          string `json:"titulo"`
	Description    string `json:"descripcion"`
	Category       string `json:"categoria"`
	Priority       string `json:"prioridad"`
	ConversationID int64  `json:"conversacion_id"`
}

type SearchRequest struct {
	Query string `json:"consulta" form:"consulta" binding:"required"`
}

type SearchResponse struct {
	Success         bool            `json:"success"`
	Respuesta       string          `json:"respuesta,omitempty"`
	RelatedQuestion string          `json:"pregunta_relacionada,omitempty"`
	Category        string          `json:"categoria,omitempty"`
	Suggestions     []FAQSuggestion `json:"sugerencias,omitempty"`
	SugerirTicket   bool            `json:"sugerir_ticket,omitempty"`
	Mensaje         string          `json:"mensaje,omitempty"`
}

type FAQSuggestion struct {
	ID       int64  `json:"id"`
	Question string `json:"pregunta"`
}

// MessageView serializes one history entry.
type MessageView struct {
	Sender    string    `json:"tipo"`
	Body      string    `json:"contenido"`
	Timestamp time.Time `json:"timestamp"`
}

// UpdateTicketStatusRequest moves a ticket through its workflow.
type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=abierto en_progreso esperando_cliente resuelto cerrado"`
}
