package chatclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeWire struct {
	mu      sync.Mutex
	frames  chan []byte
	readErr chan error
	written [][]byte
	closed  bool
}

func newFakeWire() *fakeWire {
	return &fakeWire{
		frames:  make(chan []byte, 8),
		readErr: make(chan error, 1),
	}
}

func (f *fakeWire) ReadMessage() ([]byte, error) {
	select {
	case payload := <-f.frames:
		return payload, nil
	case err := <-f.readErr:
		return nil, err
	}
}

func (f *fakeWire) WriteMessage(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("write on closed wire")
	}
	f.written = append(f.written, payload)
	return nil
}

func (f *fakeWire) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		select {
		case f.readErr <- errors.New("wire closed"):
		default:
		}
	}
	return nil
}

func (f *fakeWire) sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.written))
	copy(out, f.written)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestConnectDeliversInboundFrames(t *testing.T) {
	var got [][]byte
	var mu sync.Mutex
	client := New(Config{
		ReconnectDelay: 10 * time.Millisecond,
		OnMessage: func(payload []byte) {
			mu.Lock()
			got = append(got, payload)
			mu.Unlock()
		},
	})
	defer client.Close()

	wire := newFakeWire()
	client.dial = func(context.Context) (wireConn, error) { return wire, nil }

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if state := client.State(); state != StateConnected {
		t.Fatalf("state after connect: %s", state)
	}

	wire.frames <- []byte(`{"type":"message","from":"2","content":"hi"}`)
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})
}

func TestSendRequiresConnection(t *testing.T) {
	client := New(Config{ReconnectDelay: time.Hour})
	defer client.Close()

	if err := client.Send([]byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}

	wire := newFakeWire()
	client.dial = func(context.Context) (wireConn, error) { return wire, nil }
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if err := client.Send([]byte(`{"type":"message","to":"2","content":"hi"}`)); err != nil {
		t.Fatalf("send while connected: %v", err)
	}
	if frames := wire.sent(); len(frames) != 1 {
		t.Fatalf("expected 1 written frame, got %d", len(frames))
	}
}

func TestDropSchedulesSingleReconnect(t *testing.T) {
	var dials int32
	first := newFakeWire()
	second := newFakeWire()

	client := New(Config{ReconnectDelay: 10 * time.Millisecond})
	defer client.Close()
	client.dial = func(context.Context) (wireConn, error) {
		switch atomic.AddInt32(&dials, 1) {
		case 1:
			return first, nil
		default:
			return second, nil
		}
	}

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	first.readErr <- errors.New("connection reset")
	waitFor(t, func() bool { return client.State() == StateConnected && atomic.LoadInt32(&dials) == 2 })

	// The replacement transport carries traffic.
	if err := client.Send([]byte("after-reconnect")); err != nil {
		t.Fatalf("send after reconnect: %v", err)
	}
	if frames := second.sent(); len(frames) != 1 {
		t.Fatalf("expected reconnected wire to carry the frame, got %d", len(frames))
	}
}

func TestRetryAbandonedWhenAlreadyConnected(t *testing.T) {
	var dials int32
	client := New(Config{ReconnectDelay: 50 * time.Millisecond})
	defer client.Close()

	first := newFakeWire()
	manual := newFakeWire()
	client.dial = func(context.Context) (wireConn, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return first, nil
		}
		return manual, nil
	}

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	first.readErr <- errors.New("connection reset")
	waitFor(t, func() bool { return client.State() == StateDisconnected })

	// Reconnect manually before the scheduled retry fires.
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("manual reconnect: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&dials); n != 2 {
		t.Fatalf("retry should have been abandoned, dial count %d", n)
	}
	if state := client.State(); state != StateConnected {
		t.Fatalf("state after manual reconnect: %s", state)
	}
}

func TestCloseCancelsPendingRetry(t *testing.T) {
	var dials int32
	wire := newFakeWire()

	client := New(Config{ReconnectDelay: 20 * time.Millisecond})
	client.dial = func(context.Context) (wireConn, error) {
		atomic.AddInt32(&dials, 1)
		return wire, nil
	}

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	wire.readErr <- errors.New("connection reset")
	waitFor(t, func() bool { return client.State() == StateDisconnected })

	client.Close()
	time.Sleep(60 * time.Millisecond)

	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Fatalf("close should cancel the retry, dial count %d", n)
	}
	if err := client.Send([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}

func TestFailedRetryReschedules(t *testing.T) {
	var dials int32
	first := newFakeWire()
	recovered := newFakeWire()

	client := New(Config{ReconnectDelay: 10 * time.Millisecond})
	defer client.Close()
	client.dial = func(context.Context) (wireConn, error) {
		switch atomic.AddInt32(&dials, 1) {
		case 1:
			return first, nil
		case 2:
			return nil, errors.New("server unavailable")
		default:
			return recovered, nil
		}
	}

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	first.readErr <- errors.New("connection reset")
	waitFor(t, func() bool { return client.State() == StateConnected && atomic.LoadInt32(&dials) == 3 })
}
