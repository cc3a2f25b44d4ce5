package model

import "time"

// Post 博文；Tags 由仓储显式加载，不随行持久化
type Post struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title           string    `json:"title" gorm:"type:varchar(128);not null"`
	Body            string    `json:"body" gorm:"type:text"`
	Slug            string    `json:"slug" gorm:"type:text"`
	Timestamp       time.Time `json:"timestamp" gorm:"index:idx_post_timestamp;not null"`
	AuthorID        string    `json:"author_id" gorm:"type:varchar(36);index:idx_post_author"`
	CommentsEnabled bool      `json:"comments_enabled" gorm:"not null;default:true"`
	UpdatedAt       time.Time `json:"updated_at"`

	Tags []Tag `json:"tags" gorm:"-"`
}

func (Post) TableName() string { return "posts" }
