package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feed-engine/pkg/response"
)

type reportViewsRequest struct {
	PostIDs []string `json:"post_ids" binding:"required"`
	// Dedup 为 false 时重复浏览仍会刷新广告游标
	Dedup *bool `json:"dedup"`
}

// ReportViews 批量上报浏览（1..100 条，部分生效）
// @Summary 上报浏览
// @Tags 浏览
// @Accept json
// @Produce json
// @Param request body reportViewsRequest true "帖子ID列表"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/views [post]
func (h *Handler) ReportViews(c *gin.Context) {
	var req reportViewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dedup := true
	if req.Dedup != nil {
		dedup = *req.Dedup
	}
	if err := h.viewService.ReportViews(c.Request.Context(), viewerID(c), req.PostIDs, dedup); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// SelfFeed 组装阅读时 feed（含至多一条注入广告）
// @Summary 个人 feed
// @Tags feed
// @Param limit query int false "数量上限" default(20)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) SelfFeed(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		response.BadRequest(c, "invalid limit")
		return
	}
	items, err := h.feedService.BuildFeed(c.Request.Context(), viewerID(c), limit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"items": items})
}
