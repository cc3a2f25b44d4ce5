package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Search 全文检索，结果按相关度排序
// @Summary 搜索文章
// @Tags 搜索
// @Produce json
// @Param q query string true "关键词"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=response.Page}
// @Router /api/v1/search [get]
func (h *Handler) Search(c *gin.Context) {
	res, err := h.searchService.Search(c.Request.Context(), c.Query("q"), pageParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, toPage(res))
}
