package service

import "errors"

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
	// ErrTagNotAssociated 文章上没有该标签，取消标签为无操作
	ErrTagNotAssociated   = errors.New("tag not associated with post")
	ErrCommentsDisabled   = errors.New("comments are disabled for this post")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("email or username already registered")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrTagTooLong         = errors.New("tag name too long")
)
