package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lefthq/left-backend/internal/auth"
	"github.com/lefthq/left-backend/internal/cache"
	"github.com/lefthq/left-backend/internal/config"
	"github.com/lefthq/left-backend/internal/database"
	"github.com/lefthq/left-backend/internal/feed"
	"github.com/lefthq/left-backend/internal/handlers"
	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/messaging"
	"github.com/lefthq/left-backend/internal/metrics"
	"github.com/lefthq/left-backend/internal/moderation"
	"github.com/lefthq/left-backend/internal/notifications"
	"github.com/lefthq/left-backend/internal/realtime"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		panic(err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("left server starting", zap.String("environment", cfg.Environment))

	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	metrics.Initialize()

	// Redis is optional; without it feeds just skip the cache
	var redisClient *cache.RedisClient
	if cfg.RedisHost != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.Log.Warn("redis unavailable, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	authService := auth.NewService(database.DB, cfg.JWTSecret)
	feedService := feed.NewService(database.DB, redisClient, cfg.FeedPageSize, time.Duration(cfg.FeedCacheTTLSecs)*time.Second)
	moderationService := moderation.NewService(database.DB, cfg.ModerationPerPage)
	notificationService := notifications.NewService(database.DB, hub)
	messagingService := messaging.NewService(database.DB, hub, notificationService)

	h := handlers.NewHandlers(authService, feedService)
	h.SetModerationService(moderationService)
	h.SetMessagingService(messagingService)
	h.SetNotificationService(notificationService)
	h.SetBus(hub)

	router := handlers.SetupRouter(h, authService, handlers.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Hub:            hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}
