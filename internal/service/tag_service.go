package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

// TagService 标签注册表与文章-标签关联
type TagService interface {
	// AddTags 幂等地为文章追加标签，返回文章当前全部标签
	AddTags(ctx context.Context, postID string, names []string) ([]model.Tag, error)
	// RemoveTag 只在该文章自身的标签里查找；不存在返回 ErrTagNotAssociated
	RemoveTag(ctx context.Context, postID, name string) error
	FindTagsForPost(ctx context.Context, postID string) ([]model.Tag, error)
	FindPostsByTag(ctx context.Context, name string, page int) (*PostPage, error)
	List(ctx context.Context) ([]model.TagCount, error)
}

type tagService struct {
	db    *gorm.DB
	posts repository.PostRepository
	tags  repository.TagRepository
	links repository.PostTagRepository
	cache *cache.Cache
	sync  *postSyncer
	cfg   config.BlogConfig
}

func NewTagService(
	db *gorm.DB,
	posts repository.PostRepository,
	tags repository.TagRepository,
	links repository.PostTagRepository,
	indexer PostIndexer,
	c *cache.Cache,
	cfg config.BlogConfig,
) TagService {
	return &tagService{
		db:    db,
		posts: posts,
		tags:  tags,
		links: links,
		cache: c,
		sync:  &postSyncer{posts: posts, links: links, indexer: indexer, cache: c},
		cfg:   cfg,
	}
}

func (s *tagService) AddTags(ctx context.Context, postID string, names []string) ([]model.Tag, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, postErr(err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addTags(ctx, s.tags.WithTx(tx), s.links.WithTx(tx), postID, names)
	})
	if err != nil {
		return nil, err
	}
	if post := s.sync.refresh(ctx, postID); post != nil {
		return post.Tags, nil
	}
	return s.links.FindTagsForPost(ctx, postID)
}

func (s *tagService) RemoveTag(ctx context.Context, postID, name string) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return postErr(err)
	}
	tag, err := s.links.FindTagForPost(ctx, postID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTagNotAssociated
		}
		return err
	}
	if err := s.links.Remove(ctx, postID, tag.ID); err != nil {
		return err
	}
	s.sync.refresh(ctx, postID)
	return nil
}

func (s *tagService) FindTagsForPost(ctx context.Context, postID string) ([]model.Tag, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, postErr(err)
	}
	return s.links.FindTagsForPost(ctx, postID)
}

func (s *tagService) FindPostsByTag(ctx context.Context, name string, page int) (*PostPage, error) {
	if _, err := s.tags.GetByName(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	page = normalizePage(page)
	size := s.cfg.PostsPerPage
	posts, total, err := s.links.FindPostsByTag(ctx, name, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.links, posts); err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page, PageSize: size, Total: total}, nil
}

func (s *tagService) List(ctx context.Context) ([]model.TagCount, error) {
	if tags, ok := s.cache.GetTags(ctx); ok {
		return tags, nil
	}
	tags, err := s.tags.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetTags(ctx, tags)
	return tags, nil
}
