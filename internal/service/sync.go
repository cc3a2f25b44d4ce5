package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/search"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// PostIndexer 文章变更写入全文索引的入口（search.Indexer）
type PostIndexer interface {
	Upsert(doc *search.PostDocument)
	Remove(id string)
}

// postSyncer 在事务提交后同步索引与缓存；失败只记日志
type postSyncer struct {
	posts   repository.PostRepository
	links   repository.PostTagRepository
	indexer PostIndexer
	cache   *cache.Cache
}

// refresh 重新加载文章与标签后重建索引文档，并失效缓存
func (s *postSyncer) refresh(ctx context.Context, postID string) *model.Post {
	s.cache.InvalidatePost(ctx, postID)
	s.cache.InvalidateTags(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		logger.Warn("reload post for index failed", zap.String("post", postID), zap.Error(err))
		return nil
	}
	tags, err := s.links.FindTagsForPost(ctx, postID)
	if err != nil {
		logger.Warn("load tags for index failed", zap.String("post", postID), zap.Error(err))
		return nil
	}
	post.Tags = tags
	if s.indexer != nil {
		s.indexer.Upsert(search.PostToDocument(post))
	}
	return post
}

func (s *postSyncer) forget(ctx context.Context, postID string) {
	s.cache.InvalidatePost(ctx, postID)
	s.cache.InvalidateTags(ctx)
	if s.indexer != nil {
		s.indexer.Remove(postID)
	}
}

// validateTags 在任何写入之前执行
func validateTags(names []string) error {
	for _, name := range names {
		if utf8.RuneCountInString(name) > model.MaxTagNameLength {
			return fmt.Errorf("%w: %q exceeds %d characters", ErrTagTooLong, name, model.MaxTagNameLength)
		}
	}
	return nil
}

// addTags 逐个解析或创建标签并建立关联；重复关联为无操作
func addTags(ctx context.Context, tags repository.TagRepository, links repository.PostTagRepository, postID string, names []string) error {
	if err := validateTags(names); err != nil {
		return err
	}
	for _, name := range names {
		tag, err := tags.ResolveOrCreate(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}
		if err := links.Add(ctx, postID, tag.ID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}

func attachTags(ctx context.Context, links repository.PostTagRepository, posts []*model.Post) error {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	byPost, err := links.FindTagsForPosts(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Tags = byPost[p.ID]
		if p.Tags == nil {
			p.Tags = []model.Tag{}
		}
	}
	return nil
}

// PostPage 文章分页结果
type PostPage struct {
	Posts    []*model.Post `json:"posts"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
