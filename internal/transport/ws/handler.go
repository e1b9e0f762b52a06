package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	chatsvc "github.com/ivankudzin/matchchat/internal/services/chat"
)

// SessionCookie is where the handshake credential travels. Authentication
// happens once, before the upgrade; frames are never re-validated.
const SessionCookie = "session"

type Handler struct {
	upgrader websocket.Upgrader
	resolver authsvc.Resolver
	registry *chatsvc.Registry
	router   *chatsvc.Service
	log      *zap.Logger
}

func NewHandler(resolver authsvc.Resolver, registry *chatsvc.Registry, router *chatsvc.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		resolver: resolver,
		registry: registry,
		router:   router,
		log:      log,
	}
}

func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.resolver == nil || h.registry == nil || h.router == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Failed auth terminates the attempt before any application data
	// is exchanged; the client sees a bare 401 and no websocket.
	credential := ""
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		credential = cookie.Value
	}

	identity, err := h.resolver.Resolve(r.Context(), credential)
	if err != nil {
		h.log.Debug("websocket handshake rejected", zap.Error(err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(identity.UserID, conn, h.registry, h.router, h.log)
	h.registry.Register(r.Context(), c)

	h.log.Info("websocket connected",
		zap.Int64("user_id", identity.UserID),
		zap.String("conn_id", c.ID()),
	)

	go c.writePump()
	go c.readPump()
}
