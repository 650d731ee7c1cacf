// internal/domain/chatbot/entity.go
package chatbot

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// FAQ categories.
const (
	CategoryPayments  = "pagos"
	CategoryTechnical = "tecnico"
	CategoryService   = "servicio"
	CategoryGeneral   = "general"
	CategoryAccount   = "cuenta"
)

type FAQ struct {
	ID         int64          `json:"id" db:"id"`
	Question   string         `json:"question" db:"question"`
	Answer     string         `json:"answer" db:"answer"`
	Category   string         `json:"category" db:"category"`
	Keywords   pq.StringArray `json:"keywords" db:"keywords"`
	IsActive   bool           `json:"is_active" db:"is_active"`
	TimesAsked int64          `json:"times_asked" db:"times_asked"`
	CreatedBy  sql.NullInt64  `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// Conversation statuses.
const (
	ConversationActive    = "activa"
	ConversationResolved  = "resuelta"
	ConversationEscalated = "derivada"
)

// Conversation is a chat session. At most one activa conversation exists per
// customer; the repository enforces this with get-or-create.
type Conversation struct {
	ID           int64         `json:"id" db:"id"`
	CustomerID   int64         `json:"customer_id" db:"customer_id"`
	Status       string        `json:"status" db:"status"`
	StartedAt    time.Time     `json:"started_at" db:"started_at"`
	EndedAt      sql.NullTime  `json:"ended_at,omitempty" db:"ended_at"`
	AgentID      sql.NullInt64 `json:"agent_id,omitempty" db:"agent_id"`
	Satisfaction sql.NullInt16 `json:"satisfaction,omitempty" db:"satisfaction"`
}

// Message senders.
const (
	SenderCustomer = "usuario"
	SenderBot      = "bot"
	SenderAgent    = "agente"
)

// Message is append-only, ordered by CreatedAt.
type Message struct {
	ID             int64         `json:"id" db:"id"`
	ConversationID int64         `json:"conversation_id" db:"conversation_id"`
	Sender         string        `json:"sender" db:"sender"`
	Body           string        `json:"body" db:"body"`
	FAQID          sql.NullInt64 `json:"faq_id,omitempty" db:"faq_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// Ticket priorities and statuses.
const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
	PriorityUrgent = "urgente"
)

const (
	TicketOpen       = "abierto"
	TicketInProgress = "en_progreso"
	TicketWaiting    = "esperando_cliente"
	TicketResolved   = "resuelto"
	TicketClosed     = "cerrado"
)

type Ticket struct {
	ID             int64         `json:"id" db:"id"`
	CustomerID     int64         `json:"customer_id" db:"customer_id"`
	ConversationID sql.NullInt64 `json:"conversation_id,omitempty" db:"conversation_id"`
	Title          string        `json:"title" db:"title"`
	Description    string        `json:"description" db:"description"`
	Priority       string        `json:"priority" db:"priority"`
	Status         string        `json:"status" db:"status"`
	Category       string        `json:"category" db:"category"`
	AgentID        sql.NullInt64 `json:"agent_id,omitempty" db:"agent_id"`
	CreatedBy      sql.NullInt64 `json:"created_by,omitempty" db:"created_by"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
	ClosedAt       sql.NullTime  `json:"closed_at,omitempty" db:"closed_at"`
}

// TicketEvent is one audit row in a ticket's history.
type TicketEvent struct {
	ID        int64         `json:"id" db:"id"`
	TicketID  int64         `json:"ticket_id" db:"ticket_id"`
	UserID    sql.NullInt64 `json:"user_id,omitempty" db:"user_id"`
	Action    string        `json:"action" db:"action"`
	Detail    string        `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
