package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/matchchat/internal/config"
	pgrepo "github.com/ivankudzin/matchchat/internal/repo/postgres"
	redrepo "github.com/ivankudzin/matchchat/internal/repo/redis"
	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	chatsvc "github.com/ivankudzin/matchchat/internal/services/chat"
	relsvc "github.com/ivankudzin/matchchat/internal/services/relations"
	"github.com/ivankudzin/matchchat/internal/transport/ws"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	registry   *chatsvc.Registry
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	presenceRepo := redrepo.NewPresenceRepo(redisClient, cfg.Chat.PresenceTTL)
	likeRepo := pgrepo.NewLikeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)

	authService := authsvc.NewService(sessionRepo)
	relationsService := relsvc.NewService(relsvc.Dependencies{
		Pool:       pool,
		LikeStore:  likeRepo,
		MatchStore: matchRepo,
		NotifStore: notificationRepo,
		UserStore:  userRepo,
	})
	registry := chatsvc.NewRegistry(presenceRepo, log)
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		Registry:      registry,
		Gate:          relationsService,
		Messages:      messageRepo,
		Notifications: notificationRepo,
		Users:         userRepo,
		Logger:        log,
	}, chatsvc.Config{
		MaxContentLength: cfg.Chat.MaxMessageLength,
	})
	wsHandler := ws.NewHandler(authService, registry, chatService, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:       authService,
		RelationsService:  relationsService,
		ChatService:       chatService,
		NotificationStore: notificationRepo,
		WSHandler:         wsHandler,
		Logger:            log,
		Config:            cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		registry:   registry,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
