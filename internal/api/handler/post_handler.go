package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type postRequest struct {
	Title string `json:"title" binding:"required,notblank,max=128"`
	Body  string `json:"body" binding:"required,notblank"`
	Slug  string `json:"slug"`
	// 逗号分隔，如 "go, web"
	Tags string `json:"tags"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{Title: r.Title, Body: r.Body, Slug: r.Slug, Tags: r.Tags}
}

type postDetail struct {
	Post     *model.Post          `json:"post"`
	Comments *service.CommentPage `json:"comments"`
}

// ListPosts 文章列表，按时间倒序
// @Summary 文章列表
// @Tags 文章
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	res, err := h.postService.List(c.Request.Context(), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, toPage(res))
}

// GetPost 文章详情及一页评论，page=-1 为最后一页
// @Summary 文章详情
// @Tags 文章
// @Produce json
// @Param id path string true "文章ID"
// @Param page query int false "评论页码，-1 表示最后一页" default(1)
// @Success 200 {object} response.Response{data=postDetail}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.postService.Get(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	comments, err := h.commentService.List(ctx, post.ID, pageParam(c), middleware.IsAdmin(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, postDetail{Post: post, Comments: comments})
}

// CreatePost 发表文章，解析标签并写入索引
// @Summary 发表文章
// @Tags 文章
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body postRequest true "文章内容"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	post, err := h.postService.Create(c.Request.Context(), middleware.CurrentUserID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, post)
}

// UpdatePost 编辑文章，表单中的标签追加到文章上
// @Summary 编辑文章
// @Tags 文章
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "文章ID"
// @Param request body postRequest true "文章内容"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	post, err := h.postService.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除文章及其标签关联与评论
// @Summary 删除文章
// @Tags 文章
// @Security Bearer
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// EditPostForm 编辑表单回填数据
// @Summary 编辑表单
// @Tags 文章
// @Security Bearer
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response{data=service.PostForm}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/edit [get]
func (h *Handler) EditPostForm(c *gin.Context) {
	form, err := h.postService.EditForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, form)
}

// ToggleComments 开启/关闭文章评论
// @Summary 切换评论开关
// @Tags 文章
// @Security Bearer
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/comments-toggle [post]
func (h *Handler) ToggleComments(c *gin.Context) {
	post, err := h.postService.ToggleComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

func toPage(p *service.PostPage) response.Page {
	return response.Page{Page: p.Page, PageSize: p.PageSize, Total: p.Total, List: p.Posts}
}

