// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"cobramax-service/internal/domain/customer"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `
	id, user_id, full_name, dni, phone, alt_phone, email, address,
	plan, speed, monthly_fee, current_debt, status, due_day, zone_id,
	installed_at, created_at, updated_at
`

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.UserID, &c.FullName, &c.DNI, &c.Phone, &c.AltPhone,
		&c.Email, &c.Address, &c.Plan, &c.Speed, &c.MonthlyFee,
		&c.CurrentDebt, &c.Status, &c.DueDay, &c.ZoneID,
		&c.InstalledAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	return scanCustomer(r.db.QueryRow(ctx, query, id))
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID int64) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE user_id = $1`, customerColumns)
	return scanCustomer(r.db.QueryRow(ctx, query, userID))
}

// UpdateAccountState persists the debt balance and status produced by the
// billing state machine.
func (r *CustomerRepository) UpdateAccountState(ctx context.Context, id int64, debt float64, status string) error {
	query := `
		UPDATE customers
		SET current_debt = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, debt, status)
	if err != nil {
		return fmt.Errorf("failed to update account state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ApplyDebtDeltaTx adjusts the balance atomically inside tx and returns the
// resulting debt and the current status.
func (r *CustomerRepository) ApplyDebtDeltaTx(ctx context.Context, tx pgx.Tx, id int64, delta float64) (float64, string, error) {
	query := `
		UPDATE customers
		SET current_debt = current_debt + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING current_debt, status
	`

	var debt float64
	var status string
	err := tx.QueryRow(ctx, query, id, delta).Scan(&debt, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", xerrors.ErrNotFound
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to apply debt delta: %w", err)
	}
	return debt, status, nil
}

// UpdateStatusTx writes only the account status inside tx.
func (r *CustomerRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, status string) error {
	query := `UPDATE customers SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update customer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ListWithDebt returns customers with a positive balance, optionally
// restricted to the given statuses.
func (r *CustomerRepository) ListWithDebt(ctx context.Context, statuses ...string) ([]customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE current_debt > 0`, customerColumns)
	args := []interface{}{}
	if len(statuses) > 0 {
		query += ` AND status = ANY($1)`
		args = append(args, statuses)
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers with debt: %w", err)
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// ListNotSuspendedWithDebt returns every indebted customer that has not been
// cut off yet. Used by the cycle job after the cutoff day.
func (r *CustomerRepository) ListNotSuspendedWithDebt(ctx context.Context) ([]customer.Customer, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM customers WHERE current_debt > 0 AND status <> $1 ORDER BY id`,
		customerColumns,
	)

	rows, err := r.db.Query(ctx, query, customer.StatusSuspended)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers pending cutoff: %w", err)
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}
