package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchchat/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Append writes the message into both participants' logs in one statement,
// stamping both rows with the same server-side timestamp. The returned time
// is what the sender's ack carries.
func (r *MessageRepo) Append(ctx context.Context, fromUserID, toUserID int64, content string) (time.Time, error) {
	if fromUserID <= 0 || toUserID <= 0 || content == "" {
		return time.Time{}, fmt.Errorf("invalid message payload")
	}
	if r.pool == nil {
		return time.Time{}, fmt.Errorf("postgres pool is nil")
	}

	var createdAt time.Time
	err := r.pool.QueryRow(ctx, `
WITH stamped AS (
	SELECT NOW() AS created_at
),
inserted AS (
	INSERT INTO message_log (owner_user_id, peer_user_id, from_user_id, content, created_at)
	SELECT v.owner_id, v.peer_id, $1, $3, stamped.created_at
	FROM (VALUES ($1::bigint, $2::bigint), ($2::bigint, $1::bigint)) AS v(owner_id, peer_id), stamped
	RETURNING created_at
)
SELECT created_at FROM inserted LIMIT 1
`, fromUserID, toUserID, content).Scan(&createdAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("append message: %w", err)
	}

	return createdAt, nil
}

// ListBetween returns the owner's log with one peer, oldest first.
func (r *MessageRepo) ListBetween(ctx context.Context, ownerID, peerID int64, limit int) ([]model.Message, error) {
	if ownerID <= 0 || peerID <= 0 {
		return nil, fmt.Errorf("invalid history payload")
	}
	if limit <= 0 {
		limit = 200
	}
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, owner_user_id, peer_user_id, from_user_id, content, created_at
FROM message_log
WHERE owner_user_id = $1 AND peer_user_id = $2
ORDER BY created_at ASC, id ASC
LIMIT $3
`, ownerID, peerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0, limit)
	for rows.Next() {
		var item model.Message
		if err := rows.Scan(
			&item.ID,
			&item.OwnerID,
			&item.PeerID,
			&item.FromUserID,
			&item.Content,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}
