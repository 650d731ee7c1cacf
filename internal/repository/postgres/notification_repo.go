// internal/repository/postgres/notification_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cobramax-service/internal/domain/notification"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `
	id, customer_id, zone_id, type, channel, status, subject, message,
	scheduled_for, sent_at, read_at, external_id, last_error, attempts,
	created_by, created_at
`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID, &n.CustomerID, &n.ZoneID, &n.Type, &n.Channel, &n.Status,
		&n.Subject, &n.Message, &n.ScheduledFor, &n.SentAt, &n.ReadAt,
		&n.ExternalID, &n.LastError, &n.Attempts, &n.CreatedBy, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `
		INSERT INTO notifications (customer_id, zone_id, type, channel, status, subject, message, scheduled_for, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		n.CustomerID, n.ZoneID, n.Type, n.Channel, n.Status,
		n.Subject, n.Message, n.ScheduledFor, n.CreatedBy,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListDue returns pending notifications whose schedule has elapsed, oldest
// first.
func (r *NotificationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT %s FROM notifications
		WHERE status = $1 AND (scheduled_for IS NULL OR scheduled_for <= $2)
		ORDER BY created_at ASC
		LIMIT $3`, notificationColumns)

	rows, err := r.db.Query(ctx, query, notification.StatusPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	defer rows.Close()

	var items []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

func (r *NotificationRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s FROM notifications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, notificationColumns)

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, externalID string, sentAt time.Time) error {
	query := `
		UPDATE notifications
		SET status = $1, sent_at = $2, external_id = NULLIF($3, ''),
		    last_error = NULL, attempts = attempts + 1
		WHERE id = $4`
	tag, err := r.db.Exec(ctx, query, notification.StatusSent, sentAt, externalID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE notifications
		SET status = $1, last_error = $2, attempts = attempts + 1
		WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, notification.StatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// PurgeOlderThan removes sent and failed notifications created before the
// cutoff, returning how many rows were deleted.
func (r *NotificationRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE status IN ($1, $2) AND created_at < $3`
	tag, err := r.db.Exec(ctx, query, notification.StatusSent, notification.StatusFailed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) FindTemplateByType(ctx context.Context, notifType string) (*notification.Template, error) {
	query := `
		SELECT id, name, type, content, is_active, created_at
		FROM notification_templates
		WHERE type = $1 AND is_active
		LIMIT 1`

	var t notification.Template
	err := r.db.QueryRow(ctx, query, notifType).Scan(
		&t.ID, &t.Name, &t.Type, &t.Content, &t.IsActive, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find template: %w", err)
	}
	return &t, nil
}
