package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/tagging"
)

// PostInput 新建/编辑文章的表单；Tags 为逗号分隔的原始字符串
type PostInput struct {
	Title string
	Body  string
	Slug  string
	Tags  string
}

// PostForm 重新编辑时回填的数据
type PostForm struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Slug  string `json:"slug"`
	Tags  string `json:"tags"`
}

// PostService 文章服务
type PostService interface {
	Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error)
	Update(ctx context.Context, id string, in PostInput) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, page int) (*PostPage, error)
	ToggleComments(ctx context.Context, id string) (*model.Post, error)
	EditForm(ctx context.Context, id string) (*PostForm, error)
}

type postService struct {
	db       *gorm.DB
	posts    repository.PostRepository
	tags     repository.TagRepository
	links    repository.PostTagRepository
	comments repository.CommentRepository
	cache    *cache.Cache
	sync     *postSyncer
	cfg      config.BlogConfig
}

func NewPostService(
	db *gorm.DB,
	posts repository.PostRepository,
	tags repository.TagRepository,
	links repository.PostTagRepository,
	comments repository.CommentRepository,
	indexer PostIndexer,
	c *cache.Cache,
	cfg config.BlogConfig,
) PostService {
	return &postService{
		db:       db,
		posts:    posts,
		tags:     tags,
		links:    links,
		comments: comments,
		cache:    c,
		sync:     &postSyncer{posts: posts, links: links, indexer: indexer, cache: c},
		cfg:      cfg,
	}
}

func (s *postService) Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	now := time.Now()
	post := &model.Post{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Body:            in.Body,
		Slug:            deriveSlug(in.Slug, in.Body, s.cfg.DefaultSlugChars),
		Timestamp:       now,
		AuthorID:        authorID,
		CommentsEnabled: true,
		UpdatedAt:       now,
	}
	names := tagging.ExtractTags(in.Tags)
	if err := validateTags(names); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Create(ctx, post); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		return addTags(ctx, s.tags.WithTx(tx), s.links.WithTx(tx), post.ID, names)
	})
	if err != nil {
		return nil, err
	}

	if fresh := s.sync.refresh(ctx, post.ID); fresh != nil {
		return fresh, nil
	}
	post.Tags = []model.Tag{}
	return post, nil
}

// Update 覆盖标题/正文/摘要，并追加表单中的全部标签；已有关联不会被移除
func (s *postService) Update(ctx context.Context, id string, in PostInput) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, postErr(err)
	}
	post.Title = in.Title
	post.Body = in.Body
	post.Slug = deriveSlug(in.Slug, in.Body, s.cfg.DefaultSlugChars)
	post.UpdatedAt = time.Now()
	names := tagging.ExtractTags(in.Tags)
	if err := validateTags(names); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.posts.WithTx(tx).Update(ctx, post); err != nil {
			return err
		}
		return addTags(ctx, s.tags.WithTx(tx), s.links.WithTx(tx), post.ID, names)
	})
	if err != nil {
		return nil, postErr(err)
	}

	if fresh := s.sync.refresh(ctx, post.ID); fresh != nil {
		return fresh, nil
	}
	return post, nil
}

// Delete 同一事务内删除关联、评论与文章，提交后移除索引文档；标签本身保留
func (s *postService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.links.WithTx(tx).DeleteByPost(ctx, id); err != nil {
			return err
		}
		if err := s.comments.WithTx(tx).DeleteByPost(ctx, id); err != nil {
			return err
		}
		return s.posts.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return postErr(err)
	}
	s.sync.forget(ctx, id)
	return nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	if post, ok := s.cache.GetPost(ctx, id); ok {
		return post, nil
	}
	gen := s.cache.PostVersion(ctx, id)
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, postErr(err)
	}
	if post.Tags, err = s.links.FindTagsForPost(ctx, id); err != nil {
		return nil, err
	}
	s.cache.SetPostIfVersion(ctx, post, gen)
	return post, nil
}

func (s *postService) List(ctx context.Context, page int) (*PostPage, error) {
	page = normalizePage(page)
	size := s.cfg.PostsPerPage
	posts, total, err := s.posts.List(ctx, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, s.links, posts); err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page, PageSize: size, Total: total}, nil
}

func (s *postService) ToggleComments(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, postErr(err)
	}
	post.CommentsEnabled = !post.CommentsEnabled
	post.UpdatedAt = time.Now()
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, postErr(err)
	}
	s.cache.InvalidatePost(ctx, id)
	if post.Tags, err = s.links.FindTagsForPost(ctx, id); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) EditForm(ctx context.Context, id string) (*PostForm, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, postErr(err)
	}
	tags, err := s.links.FindTagsForPost(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return &PostForm{
		ID:    post.ID,
		Title: post.Title,
		Body:  post.Body,
		Slug:  post.Slug,
		Tags:  tagging.CleanTags(tagging.FormatTags(names)),
	}, nil
}

// deriveSlug 未填写摘要时取正文前 limit 个字符
func deriveSlug(slug, body string, limit int) string {
	if slug != "" {
		return slug
	}
	if limit <= 0 || utf8.RuneCountInString(body) <= limit {
		return body
	}
	return string([]rune(body)[:limit]) + "..."
}

func postErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}
