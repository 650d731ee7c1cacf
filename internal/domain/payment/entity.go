// internal/domain/payment/entity.go
package payment

import (
	"database/sql"
	"time"
)

const (
	StatusPending   = "pendiente"
	StatusCompleted = "completado"
	StatusRejected  = "rechazado"
	StatusReversed  = "revertido"
)

const (
	MethodCash     = "efectivo"
	MethodYape     = "yape"
	MethodPlin     = "plin"
	MethodTransfer = "transferencia"
	MethodCard     = "tarjeta"
	MethodDeposit  = "deposito"
)

type Payment struct {
	ID         int64   `json:"id" db:"id"`
	CustomerID int64   `json:"customer_id" db:"customer_id"`
	Amount     float64 `json:"amount" db:"amount"`
	Method     string  `json:"method" db:"method"`
	Status     string  `json:"status" db:"status"`

	// Unique, generated on creation
	TransactionCode string `json:"transaction_code" db:"transaction_code"`

	PaidAt time.Time      `json:"paid_at" db:"paid_at"`
	Notes  sql.NullString `json:"notes,omitempty" db:"notes"`

	// Validation and audit
	ValidatedBy  sql.NullInt64 `json:"validated_by,omitempty" db:"validated_by"`
	ValidatedAt  sql.NullTime  `json:"validated_at,omitempty" db:"validated_at"`
	RegisteredBy int64         `json:"registered_by" db:"registered_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanEdit reports whether the payment is still mutable.
func (p *Payment) CanEdit() bool {
	return p.Status == StatusPending || p.Status == StatusRejected
}

// CanValidate reports whether the payment can be moved to completado.
func (p *Payment) CanValidate() bool {
	return p.Status == StatusPending && !p.ValidatedBy.Valid
}

// Account event kinds recorded whenever the state machine acts.
const (
	EventAlert     = "alerta"
	EventCutoff    = "corte"
	EventReconnect = "reconexion"
)

// AccountEvent is the audit trail row for an automatic status change. It
// doubles as the domain event emitted by the payment completion operation.
type AccountEvent struct {
	ID         int64         `json:"id" db:"id"`
	CustomerID int64         `json:"customer_id" db:"customer_id"`
	Kind       string        `json:"kind" db:"kind"`
	Detail     string        `json:"detail" db:"detail"`
	CreatedBy  sql.NullInt64 `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
