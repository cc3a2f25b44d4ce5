package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

// LastPage 评论分页中表示“最后一页”
const LastPage = -1

type CommentInput struct {
	Author    string
	AuthorURL string
	Body      string
}

// CommentPage 评论分页结果
type CommentPage struct {
	Comments []*model.Comment `json:"comments"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

type CommentService interface {
	Create(ctx context.Context, postID string, in CommentInput) (*model.Comment, error)
	// List page 为 LastPage 时返回最后一页；非管理员看不到已禁用评论的正文
	List(ctx context.Context, postID string, page int, admin bool) (*CommentPage, error)
	Toggle(ctx context.Context, postID, commentID string) (*model.Comment, error)
}

type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	cfg      config.BlogConfig
}

func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository, cfg config.BlogConfig) CommentService {
	return &commentService{posts: posts, comments: comments, cfg: cfg}
}

func (s *commentService) Create(ctx context.Context, postID string, in CommentInput) (*model.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, postErr(err)
	}
	if !post.CommentsEnabled {
		return nil, ErrCommentsDisabled
	}
	c := &model.Comment{
		ID:        uuid.NewString(),
		Author:    in.Author,
		AuthorURL: in.AuthorURL,
		Body:      in.Body,
		Timestamp: time.Now(),
		PostID:    postID,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) List(ctx context.Context, postID string, page int, admin bool) (*CommentPage, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, postErr(err)
	}
	size := s.cfg.CommentsPerPage
	if page == LastPage {
		cnt, err := s.comments.CountByPost(ctx, postID)
		if err != nil {
			return nil, err
		}
		page = int((cnt-1)/int64(size)) + 1
	}
	page = normalizePage(page)

	items, total, err := s.comments.ListByPost(ctx, postID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if !admin {
		for _, c := range items {
			if c.Disabled {
				c.Body = ""
			}
		}
	}
	return &CommentPage{Comments: items, Page: page, PageSize: size, Total: total}, nil
}

func (s *commentService) Toggle(ctx context.Context, postID, commentID string) (*model.Comment, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if c.PostID != postID {
		return nil, ErrCommentNotFound
	}
	c.Disabled = !c.Disabled
	if err := s.comments.SetDisabled(ctx, c.ID, c.Disabled); err != nil {
		return nil, err
	}
	return c, nil
}
