package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const presencePrefix = "presence:"

// PresenceRepo mirrors the connection registry into redis so the surrounding
// CRUD layer can show online state without reaching into this process. The
// TTL caps how long a crashed instance leaves users marked online.
type PresenceRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPresenceRepo(client *goredis.Client, ttl time.Duration) *PresenceRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceRepo{client: client, ttl: ttl}
}

func (r *PresenceRepo) SetOnline(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if err := r.client.Set(ctx, presenceKey(userID), "1", r.ttl).Err(); err != nil {
		return fmt.Errorf("set presence: %w", err)
	}
	return nil
}

func (r *PresenceRepo) SetOffline(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if err := r.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear presence: %w", err)
	}
	return nil
}

func (r *PresenceRepo) IsOnline(ctx context.Context, userID int64) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}

	n, err := r.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check presence: %w", err)
	}
	return n > 0, nil
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("%s%d", presencePrefix, userID)
}
