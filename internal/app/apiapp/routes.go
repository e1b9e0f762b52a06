package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchchat/internal/config"
	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	chatsvc "github.com/ivankudzin/matchchat/internal/services/chat"
	relsvc "github.com/ivankudzin/matchchat/internal/services/relations"
	"github.com/ivankudzin/matchchat/internal/transport/http/handlers"
	"github.com/ivankudzin/matchchat/internal/transport/ws"
)

type Dependencies struct {
	AuthService       *authsvc.Service
	RelationsService  *relsvc.Service
	ChatService       *chatsvc.Service
	NotificationStore handlers.NotificationStore
	WSHandler         *ws.Handler
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	likesHandler := handlers.NewLikesHandler(deps.RelationsService)
	matchesHandler := handlers.NewMatchesHandler(deps.RelationsService)
	messagesHandler := handlers.NewMessagesHandler(deps.ChatService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationStore)
	authMW := SessionAuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	if deps.WSHandler != nil {
		r.Get("/ws", deps.WSHandler.ServeWS)
	}

	r.With(authMW).Post("/likes", likesHandler.Like)
	r.With(authMW).Get("/matches", matchesHandler.List)
	r.With(authMW).Post("/matches/unmatch", matchesHandler.Unmatch)
	r.With(authMW).Get("/messages/{peerID}", messagesHandler.History)
	r.With(authMW).Get("/notifications", notificationsHandler.List)
	r.With(authMW).Post("/notifications/{id}/read", notificationsHandler.MarkRead)
}
