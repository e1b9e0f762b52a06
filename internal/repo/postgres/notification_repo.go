package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchchat/internal/domain/enums"
	"github.com/ivankudzin/matchchat/internal/domain/model"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, userID int64, ntype enums.NotificationType, content string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	return create(ctx, r.pool, userID, ntype, content)
}

// CreateTx is used when the notification must land in the same transaction
// as the state change that caused it (match formation).
func (r *NotificationRepo) CreateTx(ctx context.Context, tx pgx.Tx, userID int64, ntype enums.NotificationType, content string) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	return create(ctx, tx, userID, ntype, content)
}

// querier covers the shared Exec surface of pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func create(ctx context.Context, q querier, userID int64, ntype enums.NotificationType, content string) error {
	if userID <= 0 || !ntype.Valid() || content == "" {
		return fmt.Errorf("invalid notification payload")
	}

	if _, err := q.Exec(ctx, `
INSERT INTO notifications (
	user_id,
	type,
	content,
	read,
	created_at
) VALUES ($1, $2, $3, FALSE, NOW())
`, userID, string(ntype), content); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, userID int64, limit int, unreadOnly bool) ([]model.Notification, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []model.Notification{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, type, content, read, created_at
FROM notifications
WHERE user_id = $1 AND ($2 = FALSE OR read = FALSE)
ORDER BY created_at DESC, id DESC
LIMIT $3
`, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]model.Notification, 0, limit)
	for rows.Next() {
		var item model.Notification
		var rawType string
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&rawType,
			&item.Content,
			&item.Read,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		item.Type = enums.NotificationType(rawType)
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate notifications: %w", rows.Err())
	}

	return items, nil
}

// MarkRead flips unread to read. The transition is one-way; marking an
// already-read notification reports false rather than erroring.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID int64) (bool, error) {
	if userID <= 0 || notificationID <= 0 {
		return false, fmt.Errorf("invalid notification read payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE notifications
SET read = TRUE
WHERE id = $1 AND user_id = $2 AND read = FALSE
`, notificationID, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
