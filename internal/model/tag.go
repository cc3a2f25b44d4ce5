package model

// MaxTagNameLength 与 name 列宽一致
const MaxTagNameLength = 64

// Tag 标签，name 全局唯一（唯一索引兜底并发创建）
type Tag struct {
	ID   string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:ux_tag_name"`
}

func (Tag) TableName() string { return "tags" }

// TagCount 标签及其文章数
type TagCount struct {
	Tag
	PostCount int64 `json:"post_count"`
}

// PostTag 文章-标签关联，复合主键 (post_id, tag_id) 保证同一标签在一篇文章上至多一次
type PostTag struct {
	PostID string `gorm:"primaryKey;type:varchar(36);index:idx_tagged_post"`
	TagID  string `gorm:"primaryKey;type:varchar(36);index:idx_tagged_tag"`
}

func (PostTag) TableName() string { return "tagged_posts" }
