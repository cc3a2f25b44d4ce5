package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// PostTagRepository 文章-标签关联（tagged_posts）
type PostTagRepository interface {
	// Add 幂等：已关联时不报错
	Add(ctx context.Context, postID, tagID string) error
	Remove(ctx context.Context, postID, tagID string) error
	DeleteByPost(ctx context.Context, postID string) error
	// FindTagForPost 只在该文章自身的标签中按名查找
	FindTagForPost(ctx context.Context, postID, name string) (*model.Tag, error)
	FindTagsForPost(ctx context.Context, postID string) ([]model.Tag, error)
	FindTagsForPosts(ctx context.Context, postIDs []string) (map[string][]model.Tag, error)
	FindPostsByTag(ctx context.Context, name string, offset, limit int) ([]*model.Post, int64, error)
	WithTx(tx *gorm.DB) PostTagRepository
}

type postTagRepository struct{ db *gorm.DB }

func NewPostTagRepository(db *gorm.DB) PostTagRepository { return &postTagRepository{db: db} }

func (r *postTagRepository) WithTx(tx *gorm.DB) PostTagRepository { return &postTagRepository{db: tx} }

func (r *postTagRepository) Add(ctx context.Context, postID, tagID string) error {
	link := &model.PostTag{PostID: postID, TagID: tagID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
}

func (r *postTagRepository) Remove(ctx context.Context, postID, tagID string) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND tag_id = ?", postID, tagID).
		Delete(&model.PostTag{}).Error
}

func (r *postTagRepository) DeleteByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.PostTag{}).Error
}

func (r *postTagRepository) FindTagForPost(ctx context.Context, postID, name string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).
		Select("tags.id, tags.name").
		Joins("JOIN tagged_posts ON tagged_posts.tag_id = tags.id").
		Where("tagged_posts.post_id = ? AND tags.name = ?", postID, name).
		First(&tag).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

func (r *postTagRepository) FindTagsForPost(ctx context.Context, postID string) ([]model.Tag, error) {
	res := make([]model.Tag, 0)
	err := r.db.WithContext(ctx).
		Select("tags.id, tags.name").
		Joins("JOIN tagged_posts ON tagged_posts.tag_id = tags.id").
		Where("tagged_posts.post_id = ?", postID).
		Order("tags.name").
		Find(&res).Error
	return res, err
}

func (r *postTagRepository) FindTagsForPosts(ctx context.Context, postIDs []string) (map[string][]model.Tag, error) {
	out := make(map[string][]model.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	type row struct {
		PostID string
		ID     string
		Name   string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("tagged_posts").
		Select("tagged_posts.post_id, tags.id, tags.name").
		Joins("JOIN tags ON tags.id = tagged_posts.tag_id").
		Where("tagged_posts.post_id IN ?", postIDs).
		Order("tags.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		out[rw.PostID] = append(out[rw.PostID], model.Tag{ID: rw.ID, Name: rw.Name})
	}
	return out, nil
}

func (r *postTagRepository) FindPostsByTag(ctx context.Context, name string, offset, limit int) ([]*model.Post, int64, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&model.Post{}).
			Joins("JOIN tagged_posts ON tagged_posts.post_id = posts.id").
			Joins("JOIN tags ON tags.id = tagged_posts.tag_id").
			Where("tags.name = ?", name)
	}
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	posts := make([]*model.Post, 0)
	err := scope().
		Select("posts.*").
		Order("posts.timestamp DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, total, err
}
