package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/pkg/response"
)

// ListPostTags 文章的标签，按名称排序
// @Summary 文章标签
// @Tags 标签
// @Produce json
// @Param id path string true "文章ID"
// @Success 200 {object} response.Response{data=[]model.Tag}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/tags [get]
func (h *Handler) ListPostTags(c *gin.Context) {
	tags, err := h.tagService.FindTagsForPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tags)
}

// RemovePostTag 取消文章上的某个标签；文章上没有该标签时返回 404
// @Summary 取消标签
// @Tags 标签
// @Security Bearer
// @Param id path string true "文章ID"
// @Param tag_name path string true "标签名"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id}/tags/{tag_name} [delete]
func (h *Handler) RemovePostTag(c *gin.Context) {
	if err := h.tagService.RemoveTag(c.Request.Context(), c.Param("id"), c.Param("tag_name")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListTags 标签云
// @Summary 全部标签及文章数
// @Tags 标签
// @Produce json
// @Success 200 {object} response.Response{data=[]model.TagCount}
// @Router /api/v1/tags [get]
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tagService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tags)
}

// ListTagPosts 某标签下的文章
// @Summary 标签下的文章
// @Tags 标签
// @Produce json
// @Param name path string true "标签名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=response.Page}
// @Failure 404 {object} response.Response
// @Router /api/v1/tags/{name}/posts [get]
func (h *Handler) ListTagPosts(c *gin.Context) {
	res, err := h.tagService.FindPostsByTag(c.Request.Context(), c.Param("name"), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, toPage(res))
}
