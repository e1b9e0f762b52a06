package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
)

func TestSessionRepoCreateAndGet(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewSessionRepo(client)
	ctx := context.Background()

	if err := repo.Create(ctx, "tok-1", 42, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}

	record, err := repo.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if record.UserID != 42 || record.Token != "tok-1" {
		t.Fatalf("unexpected session record: %+v", record)
	}
	if record.ExpiresAt.Before(time.Now()) {
		t.Fatalf("session must not be expired immediately: %v", record.ExpiresAt)
	}
}

func TestSessionRepoGetUnknownToken(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewSessionRepo(client)

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionRepoKeyExpires(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewSessionRepo(client)
	ctx := context.Background()

	if err := repo.Create(ctx, "tok-1", 42, time.Minute); err != nil {
		t.Fatalf("create session: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := repo.Get(ctx, "tok-1"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestSessionRepoDelete(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewSessionRepo(client)
	ctx := context.Background()

	if err := repo.Create(ctx, "tok-1", 42, time.Hour); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := repo.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.Get(ctx, "tok-1"); !errors.Is(err, authsvc.ErrSessionNotFound) {
		t.Fatalf("expected deleted session to be gone, got %v", err)
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}
