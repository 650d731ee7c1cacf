// internal/service/billing/service.go
package billing

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cobramax-service/internal/config"
	"cobramax-service/internal/domain/customer"
	"cobramax-service/internal/domain/payment"
	"cobramax-service/internal/domain/zone"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PaymentStore persists payments. The Tx variant participates in a
// transaction owned by the caller.
type PaymentStore interface {
	Create(ctx context.Context, p *payment.Payment) error
	FindByID(ctx context.Context, id int64) (*payment.Payment, error)
	TransitionStatusTx(ctx context.Context, tx pgx.Tx, id int64, from, to string, validatedBy sql.NullInt64) error
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]payment.Payment, error)
}

type CustomerStore interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	FindByUserID(ctx context.Context, userID int64) (*customer.Customer, error)
	UpdateAccountState(ctx context.Context, id int64, debt float64, status string) error
	ApplyDebtDeltaTx(ctx context.Context, tx pgx.Tx, id int64, delta float64) (float64, string, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status string) error
	ListNotSuspendedWithDebt(ctx context.Context) ([]customer.Customer, error)
}

type EventStore interface {
	Create(ctx context.Context, ev *payment.AccountEvent) error
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]payment.AccountEvent, error)
}

type ZoneStore interface {
	FindByID(ctx context.Context, id int64) (*zone.Zone, error)
}

// TxRunner scopes a group of writes to one transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Notifier lets the state machine enqueue customer notifications without
// depending on the notification service. Errors are the implementor's to
// handle; the billing flow never fails on them.
type Notifier interface {
	NotifyAccountEvent(ctx context.Context, cust *customer.Customer, kind, detail string) error
	NotifyPaymentConfirmation(ctx context.Context, cust *customer.Customer, amount float64) error
}

// CycleReport summarizes one daily run.
type CycleReport struct {
	Evaluated int `json:"evaluated"`
	Alerts    int `json:"alerts"`
	Cutoffs   int `json:"cutoffs"`
}

type BillingService struct {
	paymentRepo  PaymentStore
	customerRepo CustomerStore
	eventRepo    EventStore
	zoneRepo     ZoneStore
	db           TxRunner
	notifier     Notifier // nil disables outbound notifications
	cfg          config.BillingConfig
	logger       *zap.Logger
	now          func() time.Time
}

func NewBillingService(
	paymentRepo PaymentStore,
	customerRepo CustomerStore,
	eventRepo EventStore,
	zoneRepo ZoneStore,
	db TxRunner,
	notifier Notifier,
	cfg config.BillingConfig,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		eventRepo:    eventRepo,
		zoneRepo:     zoneRepo,
		db:           db,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// GenerateTransactionCode returns a fresh PAGO-XXXXXXXX code.
func GenerateTransactionCode() string {
	b := make([]byte, 4)
	rand.Read(b)
	return "PAGO-" + strings.ToUpper(hex.EncodeToString(b))
}

// CreatePayment registers a pendiente payment against a customer.
func (s *BillingService) CreatePayment(ctx context.Context, req *payment.CreatePaymentRequest, registeredBy int64) (*payment.Payment, error) {
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	p := &payment.Payment{
		CustomerID:      req.CustomerID,
		Amount:          req.Amount,
		Method:          req.Method,
		Status:          payment.StatusPending,
		TransactionCode: GenerateTransactionCode(),
		PaidAt:          paidAt,
		Notes:           sql.NullString{String: req.Notes, Valid: req.Notes != ""},
		RegisteredBy:    registeredBy,
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return p, nil
}

func (s *BillingService) GetPayment(ctx context.Context, id int64) (*payment.Payment, error) {
	return s.paymentRepo.FindByID(ctx, id)
}

func (s *BillingService) ListPayments(ctx context.Context, customerID int64, limit int) ([]payment.Payment, error) {
	return s.paymentRepo.ListByCustomer(ctx, customerID, limit)
}

// CompletePayment validates a pendiente payment. The status flip, the debt
// decrement and the reconnection check commit as one transaction, so the debt
// effect applies exactly once per payment: a payment already completado is
// rejected with a conflict, and a failed account write rolls the completion
// back. Side effects after the commit (events, notifications) are logged and
// swallowed.
func (s *BillingService) CompletePayment(ctx context.Context, paymentID, validatorID int64) (*payment.CompletionResult, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !p.CanValidate() {
		return nil, xerrors.ErrConflict
	}

	cust, err := s.customerRepo.FindByID(ctx, p.CustomerID)
	if err != nil {
		return nil, err
	}

	validator := sql.NullInt64{Int64: validatorID, Valid: validatorID != 0}

	var (
		debtAfter   float64
		statusAfter string
		recon       *Transition
	)
	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.TransitionStatusTx(ctx, tx, p.ID, payment.StatusPending, payment.StatusCompleted, validator); err != nil {
			return err
		}

		debt, status, err := s.customerRepo.ApplyDebtDeltaTx(ctx, tx, p.CustomerID, -p.Amount)
		if err != nil {
			return err
		}
		debtAfter, statusAfter = debt, status

		if tr := EvaluateReconnection(status, debt); tr != nil {
			if err := s.customerRepo.UpdateStatusTx(ctx, tx, p.CustomerID, tr.NewStatus); err != nil {
				return err
			}
			statusAfter = tr.NewStatus
			recon = tr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Status = payment.StatusCompleted
	p.ValidatedBy = validator
	cust.CurrentDebt = debtAfter
	cust.Status = statusAfter

	var events []payment.AccountEvent
	if recon != nil {
		events = append(events, s.recordEvent(ctx, cust, recon))
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyPaymentConfirmation(ctx, cust, p.Amount); err != nil {
			s.logger.Error("failed to notify payment confirmation",
				zap.Int64("customer_id", cust.ID),
				zap.Error(err),
			)
		}
	}

	return &payment.CompletionResult{
		Payment:     p,
		DebtAfter:   debtAfter,
		StatusAfter: statusAfter,
		Events:      events,
	}, nil
}

// RejectPayment moves a pendiente payment to rechazado.
func (s *BillingService) RejectPayment(ctx context.Context, paymentID, validatorID int64) (*payment.Payment, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != payment.StatusPending {
		return nil, xerrors.ErrConflict
	}

	validator := sql.NullInt64{Int64: validatorID, Valid: validatorID != 0}
	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		return s.paymentRepo.TransitionStatusTx(ctx, tx, p.ID, payment.StatusPending, payment.StatusRejected, validator)
	})
	if err != nil {
		return nil, err
	}
	p.Status = payment.StatusRejected
	return p, nil
}

// RevertPayment undoes a completado payment, restoring the debt it had
// cleared in the same transaction. The account status is left to the next
// daily cycle.
func (s *BillingService) RevertPayment(ctx context.Context, paymentID, actorID int64) (*payment.Payment, error) {
	p, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != payment.StatusCompleted {
		return nil, xerrors.ErrConflict
	}

	actor := sql.NullInt64{Int64: actorID, Valid: actorID != 0}
	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.TransitionStatusTx(ctx, tx, p.ID, payment.StatusCompleted, payment.StatusReversed, actor); err != nil {
			return err
		}
		_, _, err := s.customerRepo.ApplyDebtDeltaTx(ctx, tx, p.CustomerID, p.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.Status = payment.StatusReversed
	return p, nil
}

// RunCycle evaluates every indebted account against today's rules. It keeps
// going on per-customer errors so one bad row does not stall collections.
func (s *BillingService) RunCycle(ctx context.Context) (*CycleReport, error) {
	customers, err := s.customerRepo.ListNotSuspendedWithDebt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indebted customers: %w", err)
	}

	day := s.now().Day()
	report := &CycleReport{Evaluated: len(customers)}

	for i := range customers {
		cust := &customers[i]
		tr := EvaluateCycle(cust.Status, cust.CurrentDebt, day, s.cfg)
		if tr == nil {
			continue
		}

		if err := s.customerRepo.UpdateAccountState(ctx, cust.ID, cust.CurrentDebt, tr.NewStatus); err != nil {
			s.logger.Error("failed to apply cycle transition",
				zap.Int64("customer_id", cust.ID),
				zap.String("status", tr.NewStatus),
				zap.Error(err),
			)
			continue
		}

		s.recordEvent(ctx, cust, tr)
		switch tr.Event {
		case payment.EventAlert:
			report.Alerts++
		case payment.EventCutoff:
			report.Cutoffs++
		}
	}

	s.logger.Info("billing cycle finished",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("alerts", report.Alerts),
		zap.Int("cutoffs", report.Cutoffs),
	)
	return report, nil
}

// recordEvent writes the audit row and notifies the customer. Neither failure
// propagates.
func (s *BillingService) recordEvent(ctx context.Context, cust *customer.Customer, tr *Transition) payment.AccountEvent {
	ev := payment.AccountEvent{
		CustomerID: cust.ID,
		Kind:       tr.Event,
		Detail:     tr.Detail,
	}
	if err := s.eventRepo.Create(ctx, &ev); err != nil {
		s.logger.Error("failed to record account event",
			zap.Int64("customer_id", cust.ID),
			zap.String("kind", tr.Event),
			zap.Error(err),
		)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAccountEvent(ctx, cust, tr.Event, tr.Detail); err != nil {
			s.logger.Error("failed to notify account event",
				zap.Int64("customer_id", cust.ID),
				zap.String("kind", tr.Event),
				zap.Error(err),
			)
		}
	}
	return ev
}

// GetAccountView assembles the self-service summary for the authenticated
// customer.
func (s *BillingService) GetAccountView(ctx context.Context, userID int64) (*customer.AccountView, error) {
	cust, err := s.customerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &customer.AccountView{
		FullName:    cust.FullName,
		Plan:        cust.Plan,
		Speed:       cust.Speed,
		MonthlyFee:  cust.MonthlyFee,
		CurrentDebt: cust.CurrentDebt,
		Status:      cust.Status,
	}

	if z, err := s.zoneRepo.FindByID(ctx, cust.ZoneID); err == nil {
		view.Zone = z.Name
	}
	return view, nil
}

// ListAccountEvents returns the audit trail of one customer.
func (s *BillingService) ListAccountEvents(ctx context.Context, customerID int64, limit int) ([]payment.AccountEvent, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByCustomer(ctx, customerID, limit)
}
