// internal/service/billing/transitions.go
package billing

import (
	"fmt"

	"cobramax-service/internal/config"
	"cobramax-service/internal/domain/customer"
	"cobramax-service/internal/domain/payment"
)

// Transition is the decision the state machine takes for one customer. A nil
// transition means the account stays as it is.
type Transition struct {
	NewStatus string
	Event     string
	Detail    string
}

// EvaluateCycle applies the daily rules to one account:
//
//	day within [AlertDayFrom, AlertDayTo], debt > 0, activo    -> moroso + alerta
//	day past CutoffDay, debt > 0, not yet suspendido           -> suspendido + corte
//
// The cutoff rule wins when both apply. Accounts marked inactivo are managed
// manually and never touched here.
func EvaluateCycle(status string, debt float64, day int, cfg config.BillingConfig) *Transition {
	if debt <= 0 || status == customer.StatusInactive {
		return nil
	}

	if day > cfg.CutoffDay && status != customer.StatusSuspended {
		return &Transition{
			NewStatus: customer.StatusSuspended,
			Event:     payment.EventCutoff,
			Detail:    fmt.Sprintf("Suspensión automática por deuda de S/ %.2f", debt),
		}
	}

	if day >= cfg.AlertDayFrom && day <= cfg.AlertDayTo && status == customer.StatusActive {
		return &Transition{
			NewStatus: customer.StatusDefaulter,
			Event:     payment.EventAlert,
			Detail:    fmt.Sprintf("Cuenta en mora con deuda de S/ %.2f", debt),
		}
	}

	return nil
}

// EvaluateReconnection runs after a payment clears: a settled account that was
// cut or in mora comes back to activo.
func EvaluateReconnection(status string, debt float64) *Transition {
	if debt > 0 {
		return nil
	}
	if status != customer.StatusSuspended && status != customer.StatusDefaulter {
		return nil
	}
	return &Transition{
		NewStatus: customer.StatusActive,
		Event:     payment.EventReconnect,
		Detail:    "Reconexión automática por pago de deuda",
	}
}
