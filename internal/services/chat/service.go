package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ivankudzin/matchchat/internal/domain/enums"
	"github.com/ivankudzin/matchchat/internal/domain/model"
)

var (
	ErrInvalidFormat     = errors.New("invalid message format")
	ErrNotMatched        = errors.New("users are not matched")
	ErrPersistenceFailed = errors.New("message persistence failed")
	ErrDependenciesNil   = errors.New("chat dependencies are not configured")
)

const defaultMaxContentLength = 4000

type Gate interface {
	IsMatched(ctx context.Context, userID, targetID int64) (bool, error)
}

type MessageStore interface {
	Append(ctx context.Context, fromUserID, toUserID int64, content string) (time.Time, error)
	ListBetween(ctx context.Context, ownerID, peerID int64, limit int) ([]model.Message, error)
}

type NotificationStore interface {
	Create(ctx context.Context, userID int64, ntype enums.NotificationType, content string) error
}

type UserStore interface {
	GetDisplayName(ctx context.Context, userID int64) (string, error)
}

type Config struct {
	MaxContentLength int
}

// Delivery is the payload pushed to a recipient's live connection.
type Delivery struct {
	Type    string    `json:"type"`
	From    int64     `json:"from,string"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

type Ack struct {
	SentAt    time.Time
	Delivered bool
}

// Service routes messages between matched users: authorize against the gate,
// persist, then push live or fall back to a notification. Durability comes
// before delivery; once the message is stored the sender gets an ack no
// matter what the live push does.
type Service struct {
	registry      *Registry
	gate          Gate
	messages      MessageStore
	notifications NotificationStore
	users         UserStore
	cfg           Config
	log           *zap.Logger
}

type Dependencies struct {
	Registry      *Registry
	Gate          Gate
	Messages      MessageStore
	Notifications NotificationStore
	Users         UserStore
	Logger        *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = defaultMaxContentLength
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		registry:      deps.Registry,
		gate:          deps.Gate,
		messages:      deps.Messages,
		notifications: deps.Notifications,
		users:         deps.Users,
		cfg:           cfg,
		log:           log,
	}
}

func (s *Service) Send(ctx context.Context, senderID, recipientID int64, content string) (Ack, error) {
	if s.registry == nil || s.gate == nil || s.messages == nil || s.notifications == nil {
		return Ack{}, ErrDependenciesNil
	}
	if senderID <= 0 || recipientID <= 0 {
		return Ack{}, ErrInvalidFormat
	}
	if content == "" || utf8.RuneCountInString(content) > s.cfg.MaxContentLength {
		return Ack{}, ErrInvalidFormat
	}

	matched, err := s.gate.IsMatched(ctx, senderID, recipientID)
	if err != nil {
		return Ack{}, fmt.Errorf("check match state: %w", err)
	}
	if !matched {
		return Ack{}, ErrNotMatched
	}

	sentAt, err := s.messages.Append(ctx, senderID, recipientID, content)
	if err != nil {
		s.log.Error("message append failed",
			zap.Int64("from", senderID),
			zap.Int64("to", recipientID),
			zap.Error(err),
		)
		return Ack{}, ErrPersistenceFailed
	}

	delivered := s.pushLive(senderID, recipientID, content, sentAt)
	if !delivered {
		s.notifyOffline(ctx, senderID, recipientID)
	}

	return Ack{SentAt: sentAt, Delivered: delivered}, nil
}

func (s *Service) History(ctx context.Context, userID, peerID int64, limit int) ([]model.Message, error) {
	if s.messages == nil {
		return nil, ErrDependenciesNil
	}
	if userID <= 0 || peerID <= 0 {
		return nil, ErrInvalidFormat
	}
	return s.messages.ListBetween(ctx, userID, peerID, limit)
}

// pushLive transmits to the recipient's connection when one is registered.
// Fire and forget: handing the payload to the transport ends the router's
// responsibility. A push failure after persistence is not an error for the
// sender; the message is durable and the notification path covers the
// recipient.
func (s *Service) pushLive(senderID, recipientID int64, content string, sentAt time.Time) bool {
	conn, ok := s.registry.Lookup(recipientID)
	if !ok {
		return false
	}

	payload, err := json.Marshal(Delivery{
		Type:    "message",
		From:    senderID,
		Content: content,
		Date:    sentAt.UTC(),
	})
	if err != nil {
		s.log.Error("marshal delivery payload", zap.Error(err))
		return false
	}

	if err := conn.Push(payload); err != nil {
		s.log.Warn("live push failed, falling back to notification",
			zap.Int64("to", recipientID),
			zap.String("conn_id", conn.ID()),
			zap.Error(err),
		)
		return false
	}

	return true
}

func (s *Service) notifyOffline(ctx context.Context, senderID, recipientID int64) {
	content := "New message"
	if s.users != nil {
		if name, err := s.users.GetDisplayName(ctx, senderID); err == nil && name != "" {
			content = "New message from " + name
		}
	}

	if err := s.notifications.Create(ctx, recipientID, enums.NotificationMessage, content); err != nil {
		// The message itself is durable; losing the nudge is survivable
		// but must be visible in the logs.
		s.log.Error("offline notification failed",
			zap.Int64("to", recipientID),
			zap.Error(err),
		)
	}
}
