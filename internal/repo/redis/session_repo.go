package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
)

const sessionPrefix = "sessions:"

// SessionRepo reads the opaque-token sessions the login flow writes. Each
// session is a hash under sessions:<token> with user_id and expires_at; the
// key TTL tracks expiry so stale sessions vanish on their own.
type SessionRepo struct {
	client *goredis.Client
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Get(ctx context.Context, token string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(token) == "" {
		return authsvc.SessionRecord{}, authsvc.ErrInvalidInput
	}

	values, err := r.client.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get session hash: %w", err)
	}
	if len(values) == 0 {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}

	return parseSessionRecord(token, values)
}

// Create exists for the login collaborator and for tests; the relay itself
// only ever reads sessions.
func (r *SessionRepo) Create(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(token) == "" || userID <= 0 || ttl <= 0 {
		return authsvc.ErrInvalidInput
	}

	expiresAt := time.Now().Add(ttl)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(token), map[string]interface{}{
		"user_id":    userID,
		"expires_at": expiresAt.Unix(),
	})
	pipe.Expire(ctx, sessionKey(token), ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create redis session: %w", err)
	}

	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(token) == "" {
		return authsvc.ErrInvalidInput
	}

	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete redis session: %w", err)
	}

	return nil
}

func parseSessionRecord(token string, values map[string]string) (authsvc.SessionRecord, error) {
	userID, err := strconv.ParseInt(values["user_id"], 10, 64)
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("parse session user_id: %w", err)
	}

	record := authsvc.SessionRecord{
		Token:  token,
		UserID: userID,
	}

	if raw := values["expires_at"]; raw != "" {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return authsvc.SessionRecord{}, fmt.Errorf("parse session expires_at: %w", err)
		}
		record.ExpiresAt = time.Unix(unix, 0)
	}

	return record, nil
}

func sessionKey(token string) string {
	return sessionPrefix + token
}
