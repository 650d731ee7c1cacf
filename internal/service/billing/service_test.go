package billing

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"cobramax-service/internal/config"
	"cobramax-service/internal/domain/customer"
	"cobramax-service/internal/domain/payment"
	"cobramax-service/internal/domain/zone"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// txState models transaction semantics for the fakes: writes issued inside
// WithTx stage here and apply only when the callback returns nil.
type txState struct {
	staged []func()
}

type fakeDB struct {
	state   *txState
	commits int
}

func (f *fakeDB) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.state.staged = nil
	if err := fn(nil); err != nil {
		f.state.staged = nil
		return err
	}
	for _, apply := range f.state.staged {
		apply()
	}
	f.commits++
	return nil
}

type fakePaymentStore struct {
	state *txState
	p     *payment.Payment
}

func (f *fakePaymentStore) Create(_ context.Context, p *payment.Payment) error {
	p.ID = 1
	f.p = p
	return nil
}

func (f *fakePaymentStore) FindByID(_ context.Context, id int64) (*payment.Payment, error) {
	if f.p == nil || f.p.ID != id {
		return nil, xerrors.ErrNotFound
	}
	cp := *f.p
	return &cp, nil
}

func (f *fakePaymentStore) TransitionStatusTx(_ context.Context, _ pgx.Tx, id int64, from, to string, validatedBy sql.NullInt64) error {
	if f.p == nil || f.p.ID != id || f.p.Status != from {
		return xerrors.ErrConflict
	}
	f.state.staged = append(f.state.staged, func() {
		f.p.Status = to
		if validatedBy.Valid {
			f.p.ValidatedBy = validatedBy
		}
	})
	return nil
}

func (f *fakePaymentStore) ListByCustomer(_ context.Context, _ int64, _ int) ([]payment.Payment, error) {
	if f.p == nil {
		return nil, nil
	}
	return []payment.Payment{*f.p}, nil
}

type fakeCustomerStore struct {
	state   *txState
	c       *customer.Customer
	debtErr error // returned by ApplyDebtDeltaTx when set
}

func (f *fakeCustomerStore) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	if f.c == nil || f.c.ID != id {
		return nil, xerrors.ErrNotFound
	}
	cp := *f.c
	return &cp, nil
}

func (f *fakeCustomerStore) FindByUserID(_ context.Context, userID int64) (*customer.Customer, error) {
	if f.c == nil || !f.c.UserID.Valid || f.c.UserID.Int64 != userID {
		return nil, xerrors.ErrNotFound
	}
	cp := *f.c
	return &cp, nil
}

func (f *fakeCustomerStore) UpdateAccountState(_ context.Context, id int64, debt float64, status string) error {
	if f.c == nil || f.c.ID != id {
		return xerrors.ErrNotFound
	}
	f.c.CurrentDebt = debt
	f.c.Status = status
	return nil
}

func (f *fakeCustomerStore) ApplyDebtDeltaTx(_ context.Context, _ pgx.Tx, id int64, delta float64) (float64, string, error) {
	if f.debtErr != nil {
		return 0, "", f.debtErr
	}
	if f.c == nil || f.c.ID != id {
		return 0, "", xerrors.ErrNotFound
	}
	debt := f.c.CurrentDebt + delta
	f.state.staged = append(f.state.staged, func() { f.c.CurrentDebt = debt })
	return debt, f.c.Status, nil
}

func (f *fakeCustomerStore) UpdateStatusTx(_ context.Context, _ pgx.Tx, id int64, status string) error {
	if f.c == nil || f.c.ID != id {
		return xerrors.ErrNotFound
	}
	f.state.staged = append(f.state.staged, func() { f.c.Status = status })
	return nil
}

func (f *fakeCustomerStore) ListNotSuspendedWithDebt(_ context.Context) ([]customer.Customer, error) {
	if f.c == nil || f.c.CurrentDebt <= 0 || f.c.Status == customer.StatusSuspended {
		return nil, nil
	}
	return []customer.Customer{*f.c}, nil
}

type fakeEventStore struct {
	events []payment.AccountEvent
}

func (f *fakeEventStore) Create(_ context.Context, ev *payment.AccountEvent) error {
	ev.ID = int64(len(f.events) + 1)
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeEventStore) ListByCustomer(_ context.Context, _ int64, _ int) ([]payment.AccountEvent, error) {
	return f.events, nil
}

type fakeZoneStore struct{}

func (fakeZoneStore) FindByID(_ context.Context, id int64) (*zone.Zone, error) {
	return &zone.Zone{ID: id, Name: "Centro"}, nil
}

type fakeNotifier struct {
	confirmations []float64
	eventKinds    []string
}

func (f *fakeNotifier) NotifyAccountEvent(_ context.Context, _ *customer.Customer, kind, _ string) error {
	f.eventKinds = append(f.eventKinds, kind)
	return nil
}

func (f *fakeNotifier) NotifyPaymentConfirmation(_ context.Context, _ *customer.Customer, amount float64) error {
	f.confirmations = append(f.confirmations, amount)
	return nil
}

type billingFixture struct {
	svc      *BillingService
	payments *fakePaymentStore
	accounts *fakeCustomerStore
	events   *fakeEventStore
	notifier *fakeNotifier
	db       *fakeDB
}

func newBillingFixture(p *payment.Payment, c *customer.Customer) *billingFixture {
	state := &txState{}
	f := &billingFixture{
		payments: &fakePaymentStore{state: state, p: p},
		accounts: &fakeCustomerStore{state: state, c: c},
		events:   &fakeEventStore{},
		notifier: &fakeNotifier{},
		db:       &fakeDB{state: state},
	}
	f.svc = NewBillingService(
		f.payments, f.accounts, f.events, fakeZoneStore{},
		f.db, f.notifier,
		config.BillingConfig{AlertDayFrom: 8, AlertDayTo: 10, CutoffDay: 10},
		zap.NewNop(),
	)
	return f
}

func TestCompletePaymentAppliesDebtOnce(t *testing.T) {
	f := newBillingFixture(
		&payment.Payment{ID: 10, CustomerID: 5, Amount: 50, Status: payment.StatusPending},
		&customer.Customer{ID: 5, CurrentDebt: 120, Status: customer.StatusActive},
	)

	res, err := f.svc.CompletePayment(context.Background(), 10, 3)
	if err != nil {
		t.Fatalf("CompletePayment failed: %v", err)
	}
	if res.DebtAfter != 70 || f.accounts.c.CurrentDebt != 70 {
		t.Fatalf("debt = %v / %v, want 70", res.DebtAfter, f.accounts.c.CurrentDebt)
	}
	if f.payments.p.Status != payment.StatusCompleted {
		t.Fatalf("payment status = %q, want completado", f.payments.p.Status)
	}
	if !f.payments.p.ValidatedBy.Valid || f.payments.p.ValidatedBy.Int64 != 3 {
		t.Fatalf("validator not recorded: %+v", f.payments.p.ValidatedBy)
	}
	if len(f.notifier.confirmations) != 1 || f.notifier.confirmations[0] != 50 {
		t.Fatalf("expected one confirmation for 50, got %v", f.notifier.confirmations)
	}
	if len(f.events.events) != 0 {
		t.Fatalf("plain completion must not record account events, got %v", f.events.events)
	}

	// A second validation of the same payment is a conflict and must not
	// touch the balance again.
	if _, err := f.svc.CompletePayment(context.Background(), 10, 3); !errors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("second completion: got %v, want ErrConflict", err)
	}
	if f.accounts.c.CurrentDebt != 70 {
		t.Fatalf("debt changed on conflicting completion: %v", f.accounts.c.CurrentDebt)
	}
}

func TestCompletePaymentReconnectsSuspendedAccount(t *testing.T) {
	f := newBillingFixture(
		&payment.Payment{ID: 11, CustomerID: 5, Amount: 80, Status: payment.StatusPending},
		&customer.Customer{ID: 5, CurrentDebt: 80, Status: customer.StatusSuspended},
	)

	res, err := f.svc.CompletePayment(context.Background(), 11, 3)
	if err != nil {
		t.Fatalf("CompletePayment failed: %v", err)
	}
	if res.StatusAfter != customer.StatusActive || f.accounts.c.Status != customer.StatusActive {
		t.Fatalf("status = %q / %q, want activo", res.StatusAfter, f.accounts.c.Status)
	}
	if len(res.Events) != 1 || res.Events[0].Kind != payment.EventReconnect {
		t.Fatalf("expected one reconexion event, got %+v", res.Events)
	}
	if len(f.notifier.eventKinds) != 1 || f.notifier.eventKinds[0] != payment.EventReconnect {
		t.Fatalf("expected reconexion notification, got %v", f.notifier.eventKinds)
	}
	if len(f.notifier.confirmations) != 1 {
		t.Fatalf("expected a payment confirmation, got %v", f.notifier.confirmations)
	}
}

// A failed account write must roll the completion back: the payment stays
// pendiente and a retry applies the debt exactly once.
func TestCompletePaymentRollsBackOnAccountError(t *testing.T) {
	f := newBillingFixture(
		&payment.Payment{ID: 12, CustomerID: 5, Amount: 30, Status: payment.StatusPending},
		&customer.Customer{ID: 5, CurrentDebt: 90, Status: customer.StatusActive},
	)
	f.accounts.debtErr = errors.New("connection reset")

	if _, err := f.svc.CompletePayment(context.Background(), 12, 3); err == nil {
		t.Fatal("expected an error when the account write fails")
	}
	if f.payments.p.Status != payment.StatusPending {
		t.Fatalf("payment status = %q, want pendiente after rollback", f.payments.p.Status)
	}
	if f.accounts.c.CurrentDebt != 90 {
		t.Fatalf("debt = %v, want 90 untouched", f.accounts.c.CurrentDebt)
	}
	if f.db.commits != 0 {
		t.Fatalf("commits = %d, want 0", f.db.commits)
	}
	if len(f.notifier.confirmations) != 0 {
		t.Fatalf("no confirmation should go out for a failed completion")
	}

	// Retry once the store recovers.
	f.accounts.debtErr = nil
	res, err := f.svc.CompletePayment(context.Background(), 12, 3)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if res.DebtAfter != 60 || f.accounts.c.CurrentDebt != 60 {
		t.Fatalf("debt = %v / %v, want 60", res.DebtAfter, f.accounts.c.CurrentDebt)
	}
}

func TestRevertPaymentRestoresDebt(t *testing.T) {
	f := newBillingFixture(
		&payment.Payment{ID: 13, CustomerID: 5, Amount: 40, Status: payment.StatusCompleted},
		&customer.Customer{ID: 5, CurrentDebt: 0, Status: customer.StatusActive},
	)

	p, err := f.svc.RevertPayment(context.Background(), 13, 2)
	if err != nil {
		t.Fatalf("RevertPayment failed: %v", err)
	}
	if p.Status != payment.StatusReversed || f.payments.p.Status != payment.StatusReversed {
		t.Fatalf("payment status = %q, want revertido", f.payments.p.Status)
	}
	if f.accounts.c.CurrentDebt != 40 {
		t.Fatalf("debt = %v, want 40 restored", f.accounts.c.CurrentDebt)
	}
	// Status is left for the next cycle to evaluate.
	if f.accounts.c.Status != customer.StatusActive {
		t.Fatalf("status = %q, revert must not rewrite it", f.accounts.c.Status)
	}
}

func TestRejectPaymentRequiresPending(t *testing.T) {
	f := newBillingFixture(
		&payment.Payment{ID: 14, CustomerID: 5, Amount: 40, Status: payment.StatusCompleted},
		&customer.Customer{ID: 5, CurrentDebt: 10, Status: customer.StatusActive},
	)

	if _, err := f.svc.RejectPayment(context.Background(), 14, 2); !errors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}
