// internal/repository/postgres/ticket_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cobramax-service/internal/domain/chatbot"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `
	id, customer_id, conversation_id, title, description, priority,
	status, category, agent_id, created_by, created_at, updated_at, closed_at
`

func scanTicket(row pgx.Row) (*chatbot.Ticket, error) {
	var t chatbot.Ticket
	err := row.Scan(
		&t.ID, &t.CustomerID, &t.ConversationID, &t.Title, &t.Description,
		&t.Priority, &t.Status, &t.Category, &t.AgentID, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *chatbot.Ticket) error {
	query := `
		INSERT INTO tickets (customer_id, conversation_id, title, description, priority, status, category, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		t.CustomerID, t.ConversationID, t.Title, t.Description,
		t.Priority, t.Status, t.Category, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id int64) (*chatbot.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id = $1`, ticketColumns)
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

// TicketFilter narrows List. Zero values mean no restriction.
type TicketFilter struct {
	CustomerID int64
	Status     string
	Category   string
	Priority   string
}

func (r *TicketRepository) List(ctx context.Context, filter TicketFilter) ([]chatbot.Ticket, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.CustomerID != 0 {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}

	query := fmt.Sprintf(
		`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(conditions, " AND "),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []chatbot.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// UpdateStatus moves a ticket to a new status, stamping closed_at when it
// reaches a terminal state.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id int64, status string, agentID sql.NullInt64) error {
	query := `
		UPDATE tickets
		SET status = $1,
		    agent_id = COALESCE($2, agent_id),
		    closed_at = CASE WHEN $1 IN ('resuelto', 'cerrado') THEN NOW() ELSE closed_at END,
		    updated_at = NOW()
		WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, status, agentID, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *TicketRepository) AddEvent(ctx context.Context, ev *chatbot.TicketEvent) error {
	query := `
		INSERT INTO ticket_events (ticket_id, user_id, action, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, ev.TicketID, ev.UserID, ev.Action, ev.Detail).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add ticket event: %w", err)
	}
	return nil
}

func (r *TicketRepository) ListEvents(ctx context.Context, ticketID int64) ([]chatbot.TicketEvent, error) {
	query := `
		SELECT id, ticket_id, user_id, action, detail, created_at
		FROM ticket_events
		WHERE ticket_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket events: %w", err)
	}
	defer rows.Close()

	var events []chatbot.TicketEvent
	for rows.Next() {
		var ev chatbot.TicketEvent
		if err := rows.Scan(&ev.ID, &ev.TicketID, &ev.UserID, &ev.Action, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
