package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

type MatchRecord struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	CreatedAt    time.Time
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Create inserts the match row for the canonical pair. Returns true when this
// call created the row, false when the pair was already matched.
func (r *MatchRepo) Create(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := CanonicalPair(userID, targetID)

	var matchID int64
	err := tx.QueryRow(ctx, `
INSERT INTO matches (
	user_a_id,
	user_b_id,
	created_at
) VALUES ($1, $2, NOW())
ON CONFLICT (user_a_id, user_b_id) DO NOTHING
RETURNING id
`, userA, userB).Scan(&matchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("create match: %w", err)
	}

	return matchID > 0, nil
}

// Exists answers whether the pair is mutually matched right now. Reads the
// pool directly so every call sees the current state; message authorization
// must never run against a cached answer.
func (r *MatchRepo) Exists(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match lookup payload")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	userA, userB := CanonicalPair(userID, targetID)

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup match: %w", err)
	}

	return true, nil
}

func (r *MatchRepo) ExistsTx(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match lookup payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := CanonicalPair(userID, targetID)

	var one int
	err := tx.QueryRow(ctx, `
SELECT 1
FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
LIMIT 1
`, userA, userB).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup match: %w", err)
	}

	return true, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, limit int) ([]MatchRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return []MatchRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	m.id,
	CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END AS target_user_id,
	COALESCE(u.display_name, ''),
	m.created_at
FROM matches m
JOIN users u ON u.id = CASE WHEN m.user_a_id = $1 THEN m.user_b_id ELSE m.user_a_id END
WHERE m.user_a_id = $1 OR m.user_b_id = $1
ORDER BY m.created_at DESC, m.id DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]MatchRecord, 0, limit)
	for rows.Next() {
		var item MatchRecord
		if err := rows.Scan(
			&item.ID,
			&item.TargetUserID,
			&item.DisplayName,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

func (r *MatchRepo) DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("invalid match delete payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	userA, userB := CanonicalPair(userID, targetID)

	result, err := tx.Exec(ctx, `
DELETE FROM matches
WHERE user_a_id = $1 AND user_b_id = $2
`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("delete match: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
