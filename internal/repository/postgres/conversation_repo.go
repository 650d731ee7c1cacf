// internal/repository/postgres/conversation_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"cobramax-service/internal/domain/chatbot"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

const conversationColumns = `
	id, customer_id, status, started_at, ended_at, agent_id, satisfaction
`

func scanConversation(row pgx.Row) (*chatbot.Conversation, error) {
	var c chatbot.Conversation
	err := row.Scan(
		&c.ID, &c.CustomerID, &c.Status, &c.StartedAt,
		&c.EndedAt, &c.AgentID, &c.Satisfaction,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}
	return &c, nil
}

func (r *ConversationRepository) FindByID(ctx context.Context, id int64) (*chatbot.Conversation, error) {
	query := fmt.Sprintf(`SELECT %s FROM conversations WHERE id = $1`, conversationColumns)
	return scanConversation(r.db.QueryRow(ctx, query, id))
}

// GetOrCreateActive returns the customer's open conversation, creating one
// when none exists.
func (r *ConversationRepository) GetOrCreateActive(ctx context.Context, customerID int64) (*chatbot.Conversation, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM conversations WHERE customer_id = $1 AND status = $2 ORDER BY started_at DESC LIMIT 1`,
		conversationColumns,
	)
	conv, err := scanConversation(r.db.QueryRow(ctx, query, customerID, chatbot.ConversationActive))
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	insert := fmt.Sprintf(
		`INSERT INTO conversations (customer_id, status) VALUES ($1, $2) RETURNING %s`,
		conversationColumns,
	)
	return scanConversation(r.db.QueryRow(ctx, insert, customerID, chatbot.ConversationActive))
}

// UpdateStatus moves a conversation to a new status, stamping ended_at when it
// leaves the active state.
func (r *ConversationRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE conversations
		SET status = $1,
		    ended_at = CASE WHEN $1 <> 'activa' THEN NOW() ELSE ended_at END
		WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update conversation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) AddMessage(ctx context.Context, msg *chatbot.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender, body, faq_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, msg.ConversationID, msg.Sender, msg.Body, msg.FAQID).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListMessages returns the most recent messages in chronological order.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int64, limit int) ([]chatbot.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, conversation_id, sender, body, faq_id, created_at
		FROM (
			SELECT id, conversation_id, sender, body, faq_id, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []chatbot.Message
	for rows.Next() {
		var m chatbot.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Body, &m.FAQID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
