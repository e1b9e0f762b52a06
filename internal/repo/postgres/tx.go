package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context, pgx.Tx) error) error {
	if pool == nil {
		return errors.New("postgres pool is nil")
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// AcquirePairLock serializes all relationship writes for one user pair on a
// transaction-scoped advisory lock. Two concurrent likes between the same two
// users run one after the other, so a mutual like cannot miss the reciprocal
// row and produce a split state.
func AcquirePairLock(ctx context.Context, tx pgx.Tx, userID, targetID int64) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	a, b := CanonicalPair(userID, targetID)
	key := a<<32 | b&0xffffffff
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("acquire pair lock: %w", err)
	}
	return nil
}

// CanonicalPair orders two user ids so a pair is always addressed the same
// way regardless of who acts.
func CanonicalPair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}
