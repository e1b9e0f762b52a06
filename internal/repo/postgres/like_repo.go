package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LikeRepo struct {
	pool *pgxpool.Pool
}

func NewLikeRepo(pool *pgxpool.Pool) *LikeRepo {
	return &LikeRepo{pool: pool}
}

func (r *LikeRepo) Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error {
	if fromUserID <= 0 || toUserID <= 0 {
		return fmt.Errorf("invalid like payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO likes (
	from_user_id,
	to_user_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (from_user_id, to_user_id) DO NOTHING
`, fromUserID, toUserID); err != nil {
		return fmt.Errorf("upsert like: %w", err)
	}

	return nil
}

func (r *LikeRepo) Exists(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error) {
	if fromUserID <= 0 || toUserID <= 0 {
		return false, fmt.Errorf("invalid like lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM likes
WHERE from_user_id = $1 AND to_user_id = $2
LIMIT 1
`, fromUserID, toUserID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup like: %w", err)
	}

	return true, nil
}

// DeletePair removes the one-directional like records in both directions.
// Called when a pair transitions to matched so no stale like rows survive.
func (r *LikeRepo) DeletePair(ctx context.Context, tx pgx.Tx, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 {
		return fmt.Errorf("invalid like delete payload")
	}
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	if _, err := tx.Exec(ctx, `
DELETE FROM likes
WHERE (from_user_id = $1 AND to_user_id = $2)
	OR (from_user_id = $2 AND to_user_id = $1)
`, userID, targetID); err != nil {
		return fmt.Errorf("delete like pair: %w", err)
	}

	return nil
}
