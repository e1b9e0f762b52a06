package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Conn is a live delivery target. Transport owns the socket; the registry
// only needs identity, a non-blocking push, and a way to close.
type Conn interface {
	ID() string
	UserID() int64
	Push(payload []byte) error
	Close()
}

type PresenceStore interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64) error
}

// Registry is the process-local map of user id to authoritative connection.
// It is the one piece of shared mutable state in the relay, so every
// mutation is exclusive; lookups take the read lock only.
type Registry struct {
	mu       sync.RWMutex
	conns    map[int64]Conn
	presence PresenceStore
	log      *zap.Logger
}

func NewRegistry(presence PresenceStore, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		conns:    make(map[int64]Conn),
		presence: presence,
		log:      log,
	}
}

// Register installs conn as the authoritative connection for its user.
// Last connect wins: a previous connection for the same user is closed
// before the new one is installed, so delivery never targets two sockets.
func (r *Registry) Register(ctx context.Context, conn Conn) {
	if conn == nil {
		return
	}
	userID := conn.UserID()

	r.mu.Lock()
	prev, hadPrev := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if hadPrev && prev.ID() != conn.ID() {
		r.log.Info("replacing live connection",
			zap.Int64("user_id", userID),
			zap.String("old_conn_id", prev.ID()),
			zap.String("new_conn_id", conn.ID()),
		)
		prev.Close()
	}

	if r.presence != nil {
		if err := r.presence.SetOnline(ctx, userID); err != nil {
			r.log.Warn("presence set online failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

// Unregister removes the mapping only when conn is still authoritative. A
// late disconnect from a connection that was already replaced must not evict
// its replacement.
func (r *Registry) Unregister(ctx context.Context, conn Conn) {
	if conn == nil {
		return
	}
	userID := conn.UserID()

	r.mu.Lock()
	current, ok := r.conns[userID]
	stillAuthoritative := ok && current.ID() == conn.ID()
	if stillAuthoritative {
		delete(r.conns, userID)
	}
	r.mu.Unlock()

	if !stillAuthoritative {
		return
	}

	if r.presence != nil {
		if err := r.presence.SetOffline(ctx, userID); err != nil {
			r.log.Warn("presence set offline failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

// Lookup is non-blocking; the router uses it to choose between live delivery
// and the offline notification path.
func (r *Registry) Lookup(userID int64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[userID]
	return conn, ok
}

func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
