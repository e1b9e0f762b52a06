package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatsvc "github.com/ivankudzin/matchchat/internal/services/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 8192
	sendBufferSize = 64
)

var errSendBufferFull = errors.New("send buffer is full")

// client owns one websocket for one authenticated user. One read pump per
// connection keeps a sender's messages in order; the write pump is the only
// goroutine touching the socket for writes.
type client struct {
	id     string
	userID int64
	conn   *websocket.Conn

	registry *chatsvc.Registry
	router   *chatsvc.Service
	log      *zap.Logger

	send chan []byte

	// ctx is connection-scoped: canceled on Close so in-flight sends that
	// have not reached the store yet are abandoned with the socket.
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newClient(userID int64, conn *websocket.Conn, registry *chatsvc.Registry, router *chatsvc.Service, log *zap.Logger) *client {
	ctx, cancel := context.WithCancel(context.Background())
	return &client{
		id:       uuid.NewString(),
		userID:   userID,
		conn:     conn,
		registry: registry,
		router:   router,
		log:      log,
		send:     make(chan []byte, sendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *client) ID() string    { return c.id }
func (c *client) UserID() int64 { return c.userID }

// Push enqueues a payload for the write pump. Never blocks: a recipient that
// cannot drain its buffer reports a transient failure and the router falls
// back to the notification path.
func (c *client) Push(payload []byte) error {
	select {
	case <-c.ctx.Done():
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

func (c *client) Close() {
	c.once.Do(func() {
		c.cancel()
		_ = c.conn.Close()
	})
}

func (c *client) readPump() {
	defer func() {
		c.registry.Unregister(context.Background(), c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("websocket read failed",
					zap.Int64("user_id", c.userID),
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
			}
			return
		}

		frame, err := parseInbound(data)
		if err != nil {
			c.reply(newErrorFrame(errorCode(err)))
			continue
		}

		ack, err := c.router.Send(c.ctx, c.userID, frame.To, frame.Content)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.reply(newErrorFrame(errorCode(err)))
			continue
		}

		c.reply(newAckFrame(ack.SentAt))
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply sends a frame back to this client's own socket, dropping it if the
// buffer is full; acks and errors are advisory, the durable store is the
// source of truth.
func (c *client) reply(payload []byte) {
	if err := c.Push(payload); err != nil {
		c.log.Debug("dropping reply frame",
			zap.Int64("user_id", c.userID),
			zap.Error(err),
		)
	}
}
