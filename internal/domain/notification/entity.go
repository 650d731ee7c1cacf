// internal/domain/notification/entity.go
package notification

import (
	"database/sql"
	"time"
)

// Notification types.
const (
	TypePaymentReminder = "pago"
	TypeDueDate         = "vencimiento"
	TypeConfirmation    = "confirmacion"
	TypePromotion       = "promocion"
	TypeSupport         = "soporte"
	TypeGeneral         = "general"
)

// Delivery channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
)

// Delivery statuses.
const (
	StatusPending = "pendiente"
	StatusSent    = "enviado"
	StatusFailed  = "fallido"
	StatusRead    = "leido"
)

type Notification struct {
	ID         int64         `json:"id" db:"id"`
	CustomerID int64         `json:"customer_id" db:"customer_id"`
	ZoneID     sql.NullInt64 `json:"zone_id,omitempty" db:"zone_id"`
	Type       string        `json:"type" db:"type"`
	Channel    string        `json:"channel" db:"channel"`
	Status     string        `json:"status" db:"status"`

	Subject sql.NullString `json:"subject,omitempty" db:"subject"`
	Message string         `json:"message" db:"message"`

	ScheduledFor sql.NullTime   `json:"scheduled_for,omitempty" db:"scheduled_for"`
	SentAt       sql.NullTime   `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt       sql.NullTime   `json:"read_at,omitempty" db:"read_at"`
	ExternalID   sql.NullString `json:"external_id,omitempty" db:"external_id"`
	LastError    sql.NullString `json:"last_error,omitempty" db:"last_error"`
	Attempts     int            `json:"attempts" db:"attempts"`

	CreatedBy sql.NullInt64 `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// CanSend reports whether the notification is due for delivery.
func (n *Notification) CanSend(now time.Time) bool {
	if n.Status != StatusPending {
		return false
	}
	if n.ScheduledFor.Valid && n.ScheduledFor.Time.After(now) {
		return false
	}
	return true
}

// Template is a reusable message body with {placeholder} variables.
type Template struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"`
	Content   string    `json:"content" db:"content"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
