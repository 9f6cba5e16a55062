package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feed-engine/internal/service"
	"github.com/d60-Lab/feed-engine/pkg/response"
)

type addPostRequest struct {
	PostType  string  `json:"post_type" binding:"required,oneof=TEXT IMAGE VIDEO"`
	Payload   string  `json:"payload"`
	IsAd      bool    `json:"is_ad"`
	AdPayment float64 `json:"ad_payment"`
	// LifetimeSec 非零表示限时 story
	LifetimeSec int64 `json:"lifetime_sec"`
}

type completePostRequest struct {
	Checksum string `json:"checksum" binding:"required"`
	Verified bool   `json:"verified"`
}

// AddPost 建帖；文本与广告帖直接 COMPLETED
// @Summary 发布帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body addPostRequest true "帖子内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) AddPost(c *gin.Context) {
	var req addPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.AddPost(c.Request.Context(), service.AddPostInput{
		OwnerID:   viewerID(c),
		PostType:  req.PostType,
		Payload:   req.Payload,
		IsAd:      req.IsAd,
		AdPayment: req.AdPayment,
		Lifetime:  time.Duration(req.LifetimeSec) * time.Second,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, post)
}

// CompletePost 媒体校验完成回调（PENDING → COMPLETED）
// @Summary 完成帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子ID"
// @Param request body completePostRequest true "校验结果"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/complete [post]
func (h *Handler) CompletePost(c *gin.Context) {
	var req completePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.CompletePost(c.Request.Context(), c.Param("id"), req.Checksum, req.Verified)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, post)
}

// FailPost 媒体校验失败回调（PENDING → ERROR）
// @Summary 帖子媒体处理失败
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/fail [post]
func (h *Handler) FailPost(c *gin.Context) {
	if err := h.postService.FailPost(c.Request.Context(), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// ArchivePost 归档（下榜立即生效，可恢复）
// @Summary 归档帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/archive [post]
func (h *Handler) ArchivePost(c *gin.Context) {
	if err := h.postService.ArchivePost(c.Request.Context(), viewerID(c), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// RestorePost 恢复归档；不回填历史分数
// @Summary 恢复帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/restore [post]
func (h *Handler) RestorePost(c *gin.Context) {
	if err := h.postService.RestorePost(c.Request.Context(), viewerID(c), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// DeletePost 删除（终态，不可恢复）
// @Summary 删除帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.Request.Context(), viewerID(c), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// ApproveAd 广告审批（外部审批方调用）
// @Summary 审批广告帖
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/approve-ad [post]
func (h *Handler) ApproveAd(c *gin.Context) {
	if err := h.postService.ApproveAd(c.Request.Context(), c.Param("id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// GetPost 读单帖；已删除返回空
// @Summary 查询帖子
// @Tags 帖子
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, post)
}
