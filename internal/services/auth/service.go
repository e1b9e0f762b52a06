package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found")
)

// Resolver maps a connection's opaque credential to a user identity. It is
// the single authentication seam: transports hand over whatever credential
// they carry (a session cookie today) and never look inside it.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}

type SessionRecord struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

type SessionStore interface {
	Get(ctx context.Context, token string) (SessionRecord, error)
}

// Service resolves opaque session tokens against the session store written
// by the login flow. It fails closed: any parse failure, unknown token, or
// expired session yields ErrUnauthorized and nothing else.
type Service struct {
	sessions SessionStore
	now      func() time.Time
}

func NewService(sessions SessionStore) *Service {
	return &Service{
		sessions: sessions,
		now:      time.Now,
	}
}

func (s *Service) Resolve(ctx context.Context, credential string) (Identity, error) {
	token := strings.TrimSpace(credential)
	if token == "" {
		return Identity{}, ErrUnauthorized
	}
	if s.sessions == nil {
		return Identity{}, fmt.Errorf("session store is nil")
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID <= 0 {
		return Identity{}, ErrUnauthorized
	}
	if !session.ExpiresAt.IsZero() && s.now().After(session.ExpiresAt) {
		return Identity{}, ErrUnauthorized
	}

	return Identity{UserID: session.UserID}, nil
}
