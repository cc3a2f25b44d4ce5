package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type commentRequest struct {
	Author    string `json:"author" binding:"required,notblank,max=64"`
	AuthorURL string `json:"author_url" binding:"omitempty,max=64"`
	Body      string `json:"body" binding:"required,notblank"`
}

// ListComments 文章评论
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param id path string true "文章ID"
// @Param page query int false "页码，-1 表示最后一页" default(1)
// @Success 200 {object} response.Response{data=service.CommentPage}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	res, err := h.commentService.List(c.Request.Context(), c.Param("id"), pageParam(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// CreateComment 匿名发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param id path string true "文章ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), c.Param("id"), service.CommentInput{
		Author:    req.Author,
		AuthorURL: req.AuthorURL,
		Body:      req.Body,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}

// ToggleComment 启用/禁用单条评论
// @Summary 切换评论状态
// @Tags 评论
// @Security Bearer
// @Param id path string true "文章ID"
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response{data=model.Comment}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments/{comment_id}/toggle [post]
func (h *Handler) ToggleComment(c *gin.Context) {
	comment, err := h.commentService.Toggle(c.Request.Context(), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, comment)
}
