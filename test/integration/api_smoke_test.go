package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchchat/internal/app/apiapp"
	"github.com/ivankudzin/matchchat/internal/config"
	redrepo "github.com/ivankudzin/matchchat/internal/repo/redis"
)

func newTestApp(t *testing.T) (*apiapp.App, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Redis.Addr = mr.Addr()
	// Postgres is absent in this suite; the app starts degraded and the
	// endpoints that need it report internal errors instead of panicking.
	cfg.Postgres.DSN = "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	return app, mr
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	app, _ := newTestApp(t)

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	for _, path := range []string{"/matches", "/messages/2", "/notifications"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s without session: got %d want %d", path, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}

func TestWebsocketHandshake(t *testing.T) {
	app, mr := newTestApp(t)

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	// No credential: rejected before the upgrade, no payload.
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected handshake rejection without session cookie")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}

	// Valid session: the connection upgrades.
	sessions := redrepo.NewSessionRepo(redrepo.NewClient(mr.Addr(), "", 0))
	if err := sessions.Create(context.Background(), "tok-1", 1, time.Hour); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	header := http.Header{}
	header.Set("Cookie", "session=tok-1")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial with session: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("unexpected upgrade status: %d", resp.StatusCode)
	}
}
