package model

import "time"

// User 用户；邮箱与博客管理员邮箱一致时自动为管理员
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"type:varchar(64);uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(128);not null"`
	Admin        bool      `json:"admin" gorm:"not null;default:false"`
	Name         string    `json:"name" gorm:"type:varchar(64)"`
	Location     string    `json:"location" gorm:"type:varchar(64)"`
	AboutMe      string    `json:"about_me" gorm:"type:text"`
	MemberSince  time.Time `json:"member_since"`
	LastSeen     time.Time `json:"last_seen"`
}

func (User) TableName() string { return "users" }
