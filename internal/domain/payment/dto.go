// internal/domain/payment/dto.go
package payment

import "time"

type CreatePaymentRequest struct {
	CustomerID int64     `json:"customer_id" binding:"required"`
	Amount     float64   `json:"amount" binding:"required,gt=0"`
	Method     string    `json:"method" binding:"required,oneof=efectivo yape plin transferencia tarjeta deposito"`
	PaidAt     time.Time `json:"paid_at"`
	Notes      string    `json:"notes"`
}

// CompletionResult reports what the completado transition did, including the
// domain events it produced.
type CompletionResult struct {
	Payment     *Payment       `json:"payment"`
	DebtAfter   float64        `json:"debt_after"`
	StatusAfter string         `json:"status_after"`
	Events      []AccountEvent `json:"events,omitempty"`
}
