package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/search"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// 从数据库全量重建全文索引；服务需停止，bleve 目录同一时间只能被一个进程打开
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	index, err := search.Open(cfg.Search.IndexPath)
	if err != nil {
		logger.Fatal("open search index", zap.Error(err))
	}
	defer func() { _ = index.Close() }()

	svc := service.NewSearchService(index, repository.NewPostRepository(db), repository.NewPostTagRepository(db), cfg.Blog)

	start := time.Now()
	n, err := svc.Reindex(context.Background())
	if err != nil {
		logger.Fatal("reindex", zap.Error(err))
	}
	count, err := index.DocumentCount()
	if err != nil {
		logger.Fatal("count documents", zap.Error(err))
	}
	logger.Info("reindex finished",
		zap.Int("posts", n),
		zap.Uint64("documents", count),
		zap.Duration("took", time.Since(start)),
	)
}
