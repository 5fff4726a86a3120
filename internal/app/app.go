package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	swaggerfiles "github.com/swaggo/files"
	swagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Nazarious-ucu/vibe-trading-launch/docs"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/agent"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/config"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/consolidator"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/handlers/admin"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/handlers/chat"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/handlers/middleware"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/handlers/subscription"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/metrics"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/models"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/notifier"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/logger"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/subscriptions"
	pkglogger "github.com/Nazarious-ucu/vibe-trading-launch/pkg/logger"
)

const (
	timeoutDuration = 5 * time.Second
	metricsNS       = "vibe_trading"
)

type chatAgent interface {
	Name() string
	Process(ctx context.Context, message string) (models.ChatResponse, error)
}

type ServiceContainer struct {
	Store               *store.Store
	SubscriptionService *subscriptions.Service
	Agent               chatAgent
	Notifier            *notifier.Telegram
	Consolidator        *consolidator.Consolidator

	Router     *gin.Engine
	Srv        *http.Server
	M          *metrics.Metrics
	fileLogger *zap.Logger
	closeAgent func() error
}

type App struct {
	cfg  config.Config
	base zerolog.Logger
	l    zerolog.Logger
	fs   afero.Fs
}

func New(cfg config.Config, logger zerolog.Logger) *App {
	return &App{
		cfg:  cfg,
		base: logger,
		l:    logger.With().Str("component", "App").Logger(),
		fs:   afero.NewOsFs(),
	}
}

// Start builds the service, serves HTTP until ctx is done and then shuts down.
func (a *App) Start(ctx context.Context) error {
	c, err := a.Build(ctx)
	if err != nil {
		return err
	}

	if a.cfg.Consolidation.Schedule != "" {
		if err := c.Consolidator.Start(ctx); err != nil {
			a.l.Error().Err(err).Msg("consolidator not started")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.l.Info().Str("http_addr", a.cfg.ServerAddress()).Msg("HTTP server listening")
		if err := c.Srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		a.l.Info().Msg("Shutdown signal received")
	case err = <-errCh:
		if err != nil {
			a.l.Error().Err(err).Msg("HTTP server error")
		}
	}

	if stopErr := a.Stop(c); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}

// Stop releases everything Build created.
func (a *App) Stop(c *ServiceContainer) error {
	a.l.Info().Msg("Stopping application")

	ctx, cancel := context.WithTimeout(context.Background(), timeoutDuration)
	defer cancel()

	if err := c.Srv.Shutdown(ctx); err != nil {
		a.l.Error().Err(err).Msg("HTTP shutdown error")
	} else {
		a.l.Info().Msg("HTTP server stopped")
	}

	c.Consolidator.Stop()

	if err := c.Notifier.Wait(ctx); err != nil {
		a.l.Warn().Err(err).Msg("pending notifications abandoned")
	}

	if c.closeAgent != nil {
		if err := c.closeAgent(); err != nil {
			a.l.Error().Err(err).Msg("agent close error")
		}
	}

	var errs []error
	if err := c.Store.Close(); err != nil {
		a.l.Error().Err(err).Msg("storage close error")
		errs = append(errs, err)
	} else {
		a.l.Info().Msg("Storage closed")
	}

	if err := c.fileLogger.Sync(); err != nil {
		a.l.Debug().Err(err).Msg("failed to sync http file logger")
	}

	a.l.Info().Msg("Application shutdown complete")
	return errors.Join(errs...)
}

// Build wires every component without starting background work.
func (a *App) Build(ctx context.Context) (*ServiceContainer, error) {
	a.l.Info().
		Str("db_path", a.cfg.DB.Path).
		Bool("fallbacks_disabled", a.cfg.DB.DisableFallbacks).
		Bool("redis", a.cfg.Redis.Addr != "").
		Bool("gemini", a.cfg.Agent.GeminiAPIKey != "").
		Msg("Initializing application")

	m := metrics.NewMetrics(metricsNS)

	fileLogger := zap.NewNop()
	if a.cfg.Log.HTTPPath != "" {
		fileLogger = pkglogger.NewFileLogger(a.cfg.Log.HTTPPath)
	}
	tg := notifier.NewTelegram(notifier.Options{
		APIURL:  a.cfg.Telegram.APIURL,
		Token:   a.cfg.Telegram.BotToken,
		ChatID:  a.cfg.Telegram.ChatID,
		Timeout: a.cfg.Telegram.Timeout,
	}, logger.NewRoundTripper(fileLogger), a.base, m)

	locations := BuildLocations(a.cfg, a.fs, a.base, m)
	st := store.New(locations, tg, a.base, m)

	initCtx, cancel := context.WithTimeout(ctx, timeoutDuration)
	defer cancel()
	st.Init(initCtx)

	subSvc := subscriptions.NewService(st, a.base, m)
	tool := agent.NewSubscribeTool(subSvc, a.base)

	var (
		chatter    chatAgent = agent.NewScripted(tool)
		closeAgent func() error
	)
	if a.cfg.Agent.GeminiAPIKey != "" {
		g, err := agent.NewGemini(ctx, a.cfg.Agent.GeminiAPIKey, a.cfg.Agent.GeminiModel, tool, a.base)
		if err != nil {
			a.l.Error().Err(err).Msg("gemini unavailable, falling back to scripted agent")
		} else {
			chatter, closeAgent = g, g.Close
		}
	}

	cons := consolidator.New(locations, a.cfg.Consolidation.Enabled, a.cfg.Consolidation.Schedule, a.base, m)

	c := &ServiceContainer{
		Store:               st,
		SubscriptionService: subSvc,
		Agent:               chatter,
		Notifier:            tg,
		Consolidator:        cons,
		M:                   m,
		fileLogger:          fileLogger,
		closeAgent:          closeAgent,
	}
	c.Router = a.router(c)
	c.Srv = &http.Server{
		Addr:              a.cfg.ServerAddress(),
		Handler:           c.Router,
		ReadTimeout:       time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
	}
	return c, nil
}

func (a *App) router(c *ServiceContainer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), c.M.HTTPMiddleware(), middleware.CORS())

	creds := middleware.Credentials{Username: a.cfg.Admin.Username, Password: a.cfg.Admin.Password}
	subHandler := subscription.NewHandler(c.SubscriptionService, a.base)
	chatHandler := chat.NewHandler(c.Agent, a.base, c.M)
	adminHandler := admin.NewHandler(c.SubscriptionService, a.base)

	api := router.Group("/api")
	api.POST("/subscribe", subHandler.Subscribe)
	api.POST("/chat", chatHandler.Chat)
	api.GET("/admin/subscribers", middleware.BasicAuth(creds, a.base), adminHandler.Subscribers)
	api.GET("/admin/subscribers.txt", middleware.BasicAuthText(creds, a.base), adminHandler.SubscribersText)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/swagger/*any", swagger.WrapHandler(swaggerfiles.Handler))
	router.GET("/metrics", gin.WrapH(c.M.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Not Found"})
	})
	return router
}
