// internal/repository/postgres/event_repo.go
package postgres

import (
	"context"
	"fmt"

	"cobramax-service/internal/domain/payment"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountEventRepository stores the audit trail rows produced by the account
// state machine.
type AccountEventRepository struct {
	db *pgxpool.Pool
}

func NewAccountEventRepository(db *pgxpool.Pool) *AccountEventRepository {
	return &AccountEventRepository{db: db}
}

func (r *AccountEventRepository) Create(ctx context.Context, e *payment.AccountEvent) error {
	query := `
		INSERT INTO account_events (customer_id, kind, detail, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, e.CustomerID, e.Kind, e.Detail, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account event: %w", err)
	}

	return nil
}

func (r *AccountEventRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]payment.AccountEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, customer_id, kind, detail, created_by, created_at
		FROM account_events
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list account events: %w", err)
	}
	defer rows.Close()

	var events []payment.AccountEvent
	for rows.Next() {
		var e payment.AccountEvent
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Kind, &e.Detail, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
