package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/feed-engine/config"
	"github.com/d60-Lab/feed-engine/internal/api"
	"github.com/d60-Lab/feed-engine/internal/api/handler"
	"github.com/d60-Lab/feed-engine/internal/api/middleware"
	"github.com/d60-Lab/feed-engine/internal/cache"
	"github.com/d60-Lab/feed-engine/internal/repository"
	"github.com/d60-Lab/feed-engine/internal/service"
	"github.com/d60-Lab/feed-engine/pkg/database"
	"github.com/d60-Lab/feed-engine/pkg/logger"
	"github.com/d60-Lab/feed-engine/pkg/tracing"
)

// @title feed-engine API
// @version 1.0
// @description Feed assembly, trending ranking and ad injection engine.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
		os.Exit(1)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		os.Exit(1)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", zap.Error(err))
		os.Exit(1)
	}

	middleware.InitAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	postRepo := repository.NewPostRepository(db)
	viewRepo := repository.NewViewRepository(db)
	eventRepo := repository.NewTrendingEventRepository(db)
	adCursors := repository.NewAdCursorRepository(rdb)
	store := repository.NewTrendingStore(rdb, cfg.Trending.EntryBoost, cfg.Trending.ViewIncrement)
	snapshots := cache.NewPostSnapshotCache(db, rdb, cfg.Trending.SnapshotTTL)

	userSvc := service.NewUserService(db, userRepo, postRepo, eventRepo, adCursors)
	graphSvc := service.NewSocialGraphService(userRepo, followRepo, blockRepo)
	postSvc := service.NewPostService(db, postRepo, eventRepo, snapshots)
	viewSvc := service.NewViewService(db, postRepo, eventRepo, adCursors)
	injector := service.NewAdInjector(postRepo, adCursors, cfg.Feed.AdMinItems, cfg.Feed.AdSlot)
	feedSvc := service.NewFeedService(userRepo, followRepo, blockRepo, postRepo, injector, cfg.Feed.DefaultLimit)
	trendSvc := service.NewTrendingService(store, snapshots, userRepo, followRepo, blockRepo, viewRepo)

	worker := service.NewTrendingWorker(eventRepo, store,
		cfg.Trending.Workers, cfg.Trending.ClaimLimit, cfg.Trending.PollInterval)
	stopWorker := worker.Start()

	h := handler.New(userSvc, graphSvc, postSvc, viewSvc, feedSvc, trendSvc)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = stopWorker(shutdownCtx)
	_ = shutdownTracing(shutdownCtx)
	logger.Info("server exited")
}
