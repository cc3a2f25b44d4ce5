package model

import "time"

// Comment 匿名评论，仅可由管理员启用/禁用
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Author    string    `json:"author" gorm:"type:varchar(64)"`
	AuthorURL string    `json:"author_url" gorm:"type:varchar(64)"`
	Body      string    `json:"body" gorm:"type:text"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_comment_post_ts,priority:2;not null"`
	Disabled  bool      `json:"disabled" gorm:"not null;default:false"`
	PostID    string    `json:"post_id" gorm:"type:varchar(36);index:idx_comment_post_ts,priority:1;not null"`
}

func (Comment) TableName() string { return "comments" }
