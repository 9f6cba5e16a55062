package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feed-engine/pkg/response"
)

type relationRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// Follow 发起关注（对方私密则进入 REQUESTED）
// @Summary 关注用户
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status, err := h.graphService.Follow(c.Request.Context(), viewerID(c), req.UserID)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, gin.H{"follow_status": status})
}

// Unfollow 取消关注 / 撤回请求
// @Summary 取消关注
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/unfollow [post]
func (h *Handler) Unfollow(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.graphService.Unfollow(c.Request.Context(), viewerID(c), req.UserID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// AcceptFollower 放行关注请求（REQUESTED/DENIED → FOLLOWING）
// @Summary 接受粉丝
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body relationRequest true "请求方用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/accept [post]
func (h *Handler) AcceptFollower(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.graphService.AcceptFollower(c.Request.Context(), viewerID(c), req.UserID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// DenyFollower 拒绝关注请求
// @Summary 拒绝粉丝
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body relationRequest true "请求方用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/relations/deny [post]
func (h *Handler) DenyFollower(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.graphService.DenyFollower(c.Request.Context(), viewerID(c), req.UserID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// Block 拉黑用户；既有关注边在可见性上立即失效
// @Summary 拉黑用户
// @Tags 关系链
// @Accept json
// @Produce json
// @Param request body relationRequest true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/blocks [post]
func (h *Handler) Block(c *gin.Context) {
	var req relationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.graphService.Block(c.Request.Context(), viewerID(c), req.UserID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// Unblock 取消拉黑
// @Summary 取消拉黑
// @Tags 关系链
// @Param user_id path string true "目标用户"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/blocks/{user_id} [delete]
func (h *Handler) Unblock(c *gin.Context) {
	if err := h.graphService.Unblock(c.Request.Context(), viewerID(c), c.Param("user_id")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}

// ListFollowRequests 查询待处理的关注请求
// @Summary 查询关注请求
// @Tags 关系链
// @Success 200 {object} response.Response
// @Router /api/v1/relations/requests [get]
func (h *Handler) ListFollowRequests(c *gin.Context) {
	list, err := h.graphService.ListRequests(c.Request.Context(), viewerID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": list})
}
