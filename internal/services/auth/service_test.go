package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestResolveValidSession(t *testing.T) {
	store := sessionStoreStub{record: SessionRecord{
		Token:     "tok-1",
		UserID:    42,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	svc := NewService(store)

	identity, err := svc.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if identity.UserID != 42 {
		t.Fatalf("unexpected user id: %d", identity.UserID)
	}
}

func TestResolveFailsClosed(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		record SessionRecord
		err    error
	}{
		{name: "empty token", token: ""},
		{name: "whitespace token", token: "   "},
		{name: "unknown token", token: "tok-x", err: ErrSessionNotFound},
		{
			name:   "expired session",
			token:  "tok-1",
			record: SessionRecord{Token: "tok-1", UserID: 42, ExpiresAt: time.Now().Add(-time.Minute)},
		},
		{
			name:   "corrupt record",
			token:  "tok-1",
			record: SessionRecord{Token: "tok-1", UserID: 0, ExpiresAt: time.Now().Add(time.Hour)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(sessionStoreStub{record: tc.record, err: tc.err})

			if _, err := svc.Resolve(context.Background(), tc.token); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestResolveSurfacesStoreErrors(t *testing.T) {
	storeErr := errors.New("redis unavailable")
	svc := NewService(sessionStoreStub{err: storeErr})

	_, err := svc.Resolve(context.Background(), "tok-1")
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("infrastructure failure must not read as unauthorized")
	}
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

type sessionStoreStub struct {
	record SessionRecord
	err    error
}

func (s sessionStoreStub) Get(_ context.Context, token string) (SessionRecord, error) {
	if s.err != nil {
		return SessionRecord{}, s.err
	}
	if s.record.Token != token {
		return SessionRecord{}, ErrSessionNotFound
	}
	return s.record, nil
}
