package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// TagRepository 标签注册表：名称唯一，按名查找或创建
type TagRepository interface {
	// ResolveOrCreate 按精确名称查找，不存在则创建；并发同名创建收敛到同一行
	ResolveOrCreate(ctx context.Context, name string) (*model.Tag, error)
	GetByName(ctx context.Context, name string) (*model.Tag, error)
	// ListWithCounts 按名称排序返回所有标签及关联文章数
	ListWithCounts(ctx context.Context) ([]model.TagCount, error)
	WithTx(tx *gorm.DB) TagRepository
}

type tagRepository struct{ db *gorm.DB }

func NewTagRepository(db *gorm.DB) TagRepository { return &tagRepository{db: db} }

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository { return &tagRepository{db: tx} }

func (r *tagRepository) ResolveOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	tag, err := r.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	t := &model.Tag{ID: uuid.New().String(), Name: name}
	// 唯一索引拒绝并发的同名插入，落空时回退为查询
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(t)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return t, nil
	}
	return r.GetByName(ctx, name)
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, translate(err)
	}
	return &tag, nil
}

func (r *tagRepository) ListWithCounts(ctx context.Context) ([]model.TagCount, error) {
	var res []model.TagCount
	err := r.db.WithContext(ctx).
		Model(&model.Tag{}).
		Select("tags.id, tags.name, COUNT(tagged_posts.post_id) AS post_count").
		Joins("LEFT JOIN tagged_posts ON tagged_posts.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("tags.name").
		Scan(&res).Error
	return res, err
}
