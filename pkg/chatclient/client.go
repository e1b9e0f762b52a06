// Package chatclient keeps one logical chat session alive over a websocket.
// It supervises the transport: a drop schedules exactly one reconnect attempt
// after a fixed delay, and sends are at-most-once — nothing is buffered while
// disconnected, the server-side store is the source of truth for history.
package chatclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

var (
	ErrNotConnected = errors.New("chatclient: not connected")
	ErrClosed       = errors.New("chatclient: client is closed")
)

const defaultReconnectDelay = 3 * time.Second

// wireConn is the slice of the websocket the supervisor needs. Tests install
// in-memory fakes through the dial seam.
type wireConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(payload []byte) error
	Close() error
}

type dialFunc func(ctx context.Context) (wireConn, error)

type Config struct {
	URL            string
	SessionToken   string
	SessionCookie  string
	ReconnectDelay time.Duration
	Logger         *zap.Logger

	// OnMessage receives every raw frame pushed by the server. Called from
	// the read loop; a nil handler discards frames.
	OnMessage func(payload []byte)
}

// Client supervises a single chat connection. All exported methods are safe
// for concurrent use.
type Client struct {
	cfg  Config
	log  *zap.Logger
	dial dialFunc

	mu      sync.Mutex
	state   State
	conn    wireConn
	retry   *time.Timer
	closed  bool
	readGen int
}

func New(cfg Config) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = "session"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		cfg:   cfg,
		log:   log,
		state: StateDisconnected,
	}
	c.dial = c.dialWebsocket
	return c
}

// Connect establishes the transport. A failure leaves the client
// disconnected; the supervisor only schedules retries for connections that
// were established and then dropped.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		if conn != nil {
			_ = conn.Close()
		}
		return ErrClosed
	}
	if err != nil {
		c.state = StateDisconnected
		return fmt.Errorf("dial chat server: %w", err)
	}

	c.installLocked(conn)
	return nil
}

// Send transmits one raw frame. There is no queue: while disconnected the
// send fails immediately and the caller decides whether to retry.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	if err := conn.WriteMessage(payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears the session down for good: the connection is closed and any
// scheduled reconnect is canceled.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.state = StateDisconnected
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// installLocked makes conn the live transport and starts its read loop.
// Caller holds c.mu.
func (c *Client) installLocked(conn wireConn) {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.conn = conn
	c.state = StateConnected
	c.readGen++
	go c.readLoop(conn, c.readGen)
}

func (c *Client) readLoop(conn wireConn, gen int) {
	for {
		payload, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(conn, gen, err)
			return
		}
		if c.cfg.OnMessage != nil {
			c.cfg.OnMessage(payload)
		}
	}
}

// handleDrop reacts to a read failure. Only the loop for the current
// transport generation may mutate state; a stale loop from a replaced
// connection exits silently.
func (c *Client) handleDrop(conn wireConn, gen int, cause error) {
	_ = conn.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.readGen {
		return
	}

	c.log.Debug("chat connection dropped", zap.Error(cause))
	c.conn = nil
	c.state = StateDisconnected
	c.scheduleRetryLocked()
}

// scheduleRetryLocked arms one reconnect for ReconnectDelay from now. A timer
// already pending is left alone, so overlapping drops never stack attempts.
// Caller holds c.mu.
func (c *Client) scheduleRetryLocked() {
	if c.retry != nil {
		return
	}
	c.retry = time.AfterFunc(c.cfg.ReconnectDelay, c.retryFired)
}

func (c *Client) retryFired() {
	c.mu.Lock()
	c.retry = nil
	if c.closed || c.state != StateDisconnected {
		// A connection is already up (or being set up); the pending
		// attempt is abandoned rather than opening a duplicate.
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.dial(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.log.Debug("reconnect attempt failed", zap.Error(err))
		c.state = StateDisconnected
		c.scheduleRetryLocked()
		return
	}
	if c.conn != nil {
		// Someone connected while we were dialing; keep the existing
		// transport authoritative.
		_ = conn.Close()
		return
	}

	c.installLocked(conn)
}

func (c *Client) dialWebsocket(ctx context.Context) (wireConn, error) {
	header := http.Header{}
	header.Set("Cookie", (&http.Cookie{Name: c.cfg.SessionCookie, Value: c.cfg.SessionToken}).String())

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("handshake rejected with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	return &gorillaConn{conn: conn}, nil
}

type gorillaConn struct {
	conn *websocket.Conn
}

func (g *gorillaConn) ReadMessage() ([]byte, error) {
	_, payload, err := g.conn.ReadMessage()
	return payload, err
}

func (g *gorillaConn) WriteMessage(payload []byte) error {
	return g.conn.WriteMessage(websocket.TextMessage, payload)
}

func (g *gorillaConn) Close() error {
	return g.conn.Close()
}
