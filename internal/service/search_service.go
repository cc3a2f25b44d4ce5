package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/search"
)

// SearchIndex 全文索引查询与重建（search.Index）
type SearchIndex interface {
	Search(ctx context.Context, q string, limit int) ([]string, error)
	Rebuild() error
	IndexPosts(docs []*search.PostDocument) error
}

type SearchService interface {
	Search(ctx context.Context, q string, page int) (*PostPage, error)
	// Reindex 清空索引后按数据库全量写入，返回写入文档数
	Reindex(ctx context.Context) (int, error)
}

type searchService struct {
	index SearchIndex
	posts repository.PostRepository
	links repository.PostTagRepository
	cfg   config.BlogConfig
}

func NewSearchService(index SearchIndex, posts repository.PostRepository, links repository.PostTagRepository, cfg config.BlogConfig) SearchService {
	return &searchService{index: index, posts: posts, links: links, cfg: cfg}
}

func (s *searchService) Search(ctx context.Context, q string, page int) (*PostPage, error) {
	page = normalizePage(page)
	size := s.cfg.PostsPerPage
	result := &PostPage{Posts: []*model.Post{}, Page: page, PageSize: size}

	q = strings.TrimSpace(q)
	if q == "" {
		return result, nil
	}
	ids, err := s.index.Search(ctx, q, s.cfg.MaxSearchResults)
	if err != nil {
		return nil, err
	}
	found, err := s.posts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	// 保持相关度顺序，索引里残留的已删除文章直接跳过
	ranked := make([]*model.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ranked = append(ranked, p)
		}
	}
	result.Total = int64(len(ranked))

	start := (page - 1) * size
	if start >= len(ranked) {
		return result, nil
	}
	end := start + size
	if end > len(ranked) {
		end = len(ranked)
	}
	result.Posts = ranked[start:end]
	if err := attachTags(ctx, s.links, result.Posts); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *searchService) Reindex(ctx context.Context) (int, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := attachTags(ctx, s.links, posts); err != nil {
		return 0, err
	}
	if err := s.index.Rebuild(); err != nil {
		return 0, err
	}
	docs := make([]*search.PostDocument, len(posts))
	for i, p := range posts {
		docs[i] = search.PostToDocument(p)
	}
	if err := s.index.IndexPosts(docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
