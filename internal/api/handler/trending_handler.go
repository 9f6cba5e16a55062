package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feed-engine/internal/service"
	"github.com/d60-Lab/feed-engine/pkg/response"
)

// TrendingPosts 热帖榜（分数倒序，隐私 / 拉黑过滤，续页）
// @Summary 热帖榜
// @Tags 热榜
// @Param limit query int false "数量上限" default(20)
// @Param next_token query string false "续页令牌"
// @Param viewed_status query string false "VIEWED / NOT_VIEWED"
// @Param is_verified query bool false "仅看已核验媒体"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/trending/posts [get]
func (h *Handler) TrendingPosts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.BadRequest(c, "invalid limit")
		return
	}
	q := service.TrendingPostsQuery{
		Limit:        limit,
		NextToken:    c.Query("next_token"),
		ViewedStatus: c.Query("viewed_status"),
	}
	if raw, ok := c.GetQuery("is_verified"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid is_verified")
			return
		}
		q.IsVerified = &v
	}

	page, err := h.trendService.TrendingPosts(c.Request.Context(), viewerID(c), q)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, page)
}

// TrendingUsers 热用户榜
// @Summary 热用户榜
// @Tags 热榜
// @Param limit query int false "数量上限" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/trending/users [get]
func (h *Handler) TrendingUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.BadRequest(c, "invalid limit")
		return
	}
	items, err := h.trendService.TrendingUsers(c.Request.Context(), viewerID(c), limit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"items": items})
}
