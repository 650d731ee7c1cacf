// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cobramax-service/internal/domain/payment"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (customer_id, amount, method, status, transaction_code, paid_at, notes, registered_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.CustomerID, p.Amount, p.Method, p.Status, p.TransactionCode,
		p.PaidAt, p.Notes, p.RegisteredBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `
		SELECT id, customer_id, amount, method, status, transaction_code,
		       paid_at, notes, validated_by, validated_at, registered_by,
		       created_at, updated_at
		FROM payments
		WHERE id = $1
	`

	var p payment.Payment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CustomerID, &p.Amount, &p.Method, &p.Status,
		&p.TransactionCode, &p.PaidAt, &p.Notes, &p.ValidatedBy,
		&p.ValidatedAt, &p.RegisteredBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return &p, nil
}

// TransitionStatusTx moves a payment from one status to another inside tx.
// The starting status is part of the WHERE clause, so a payment that already
// left it reports a conflict instead of being written twice.
func (r *PaymentRepository) TransitionStatusTx(ctx context.Context, tx pgx.Tx, id int64, from, to string, validatedBy sql.NullInt64) error {
	query := `
		UPDATE payments
		SET status = $3,
		    validated_by = COALESCE($4, validated_by),
		    validated_at = CASE WHEN $4 IS NOT NULL THEN NOW() ELSE validated_at END,
		    updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := tx.Exec(ctx, query, id, from, to, validatedBy)
	if err != nil {
		return fmt.Errorf("failed to transition payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrConflict
	}
	return nil
}

// ListByCustomer returns the customer's payments, newest first.
func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]payment.Payment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, customer_id, amount, method, status, transaction_code,
		       paid_at, notes, validated_by, validated_at, registered_by,
		       created_at, updated_at
		FROM payments
		WHERE customer_id = $1
		ORDER BY paid_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		var p payment.Payment
		err := rows.Scan(
			&p.ID, &p.CustomerID, &p.Amount, &p.Method, &p.Status,
			&p.TransactionCode, &p.PaidAt, &p.Notes, &p.ValidatedBy,
			&p.ValidatedAt, &p.RegisteredBy, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
