package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// mapping 变化时递增，启动时版本不一致会重建索引
const mappingVersion = "1"

// Index bleve 索引封装，方法并发安全；mu 只在 Rebuild/Close 时独占
type Index struct {
	index bleve.Index
	path  string
	mu    sync.RWMutex
}

// Open 打开 dir 下的索引；不存在、损坏或 mapping 版本过期时重新创建
func Open(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	indexPath := filepath.Join(dir, "posts.bleve")
	versionPath := filepath.Join(dir, "posts.version")

	if reason := needsRebuild(indexPath, versionPath); reason == "" {
		idx, err := bleve.Open(indexPath)
		if err == nil {
			return &Index{index: idx, path: indexPath}, nil
		}
		logger.Warn("posts index unreadable", zap.String("path", indexPath), zap.Error(err))
	} else if reason != "missing" {
		logger.Info("posts index stale", zap.String("reason", reason), zap.String("mapping", mappingVersion))
	}

	if err := os.RemoveAll(indexPath); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	idx, err := bleve.New(indexPath, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
		logger.Warn("write posts index version", zap.Error(err))
	}
	logger.Info("posts index created", zap.String("path", indexPath))
	return &Index{index: idx, path: indexPath}, nil
}

// needsRebuild 返回需要重建的原因，可直接打开时返回空串
func needsRebuild(indexPath, versionPath string) string {
	if _, err := os.Stat(indexPath); err != nil {
		return "missing"
	}
	v, err := os.ReadFile(versionPath)
	if err != nil {
		return "no version file"
	}
	if string(v) != mappingVersion {
		return "mapping " + string(v)
	}
	return ""
}

func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexPost 写入或覆盖一篇文章
func (s *Index) IndexPost(doc *PostDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexPosts 批量写入，每 500 篇提交一次
func (s *Index) IndexPosts(docs []*PostDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func (s *Index) DeletePost(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild 丢弃现有索引并创建空索引，期间阻塞其它操作
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}
	idx, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = idx
	logger.Info("rebuilt search index", zap.String("path", s.path))
	return nil
}
