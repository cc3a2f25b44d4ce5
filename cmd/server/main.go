package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/api/router"
	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/search"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
	"github.com/d60-Lab/gin-blog/pkg/logger"
	"github.com/d60-Lab/gin-blog/pkg/tracing"
)

// @title gin-blog API
// @version 1.0
// @description 博客服务：文章、标签、评论与全文检索
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			logger.Fatal("init sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	postCache := cache.New(redisClient, cfg.Redis.TTL)

	index, err := search.Open(cfg.Search.IndexPath)
	if err != nil {
		logger.Fatal("open search index", zap.Error(err))
	}
	indexer := search.NewIndexer(index, search.IndexerOptions{
		Workers:    cfg.Search.Workers,
		QueueSize:  cfg.Search.QueueSize,
		JobTimeout: cfg.Search.JobTimeout,
		Inline:     cfg.Search.Mode == "sync",
	})
	stopIndexer := indexer.Start()

	// repositories & services
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	linkRepo := repository.NewPostTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer)

	h := handler.NewHandler(
		service.NewPostService(db, postRepo, tagRepo, linkRepo, commentRepo, indexer, postCache, cfg.Blog),
		service.NewTagService(db, postRepo, tagRepo, linkRepo, indexer, postCache, cfg.Blog),
		service.NewCommentService(postRepo, commentRepo, cfg.Blog),
		service.NewSearchService(index, postRepo, linkRepo, cfg.Blog),
		service.NewUserService(userRepo, tokens, cfg.Blog),
	)
	engine, err := router.Setup(cfg, h, tokens)
	if err != nil {
		logger.Fatal("setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("search_mode", cfg.Search.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	// HTTP 停止后再排空索引队列
	_ = stopIndexer(shutdownCtx)
	if err := index.Close(); err != nil {
		logger.Error("close search index", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Error("close database", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("shutdown tracing", zap.Error(err))
	}
	logger.Info("server exited")
}
