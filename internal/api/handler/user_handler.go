package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feed-engine/internal/api/middleware"
	"github.com/d60-Lab/feed-engine/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type updateMeRequest struct {
	PrivacyStatus *string `json:"privacy_status" binding:"omitempty,oneof=PUBLIC PRIVATE"`
	AdsDisabled   *bool   `json:"ads_disabled"`
}

// Register 注册并返回访问令牌
// @Summary 注册用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.userService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, err := middleware.GenerateToken(u.ID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"user_id": u.ID, "token": token})
}

// UpdateMe 修改隐私 / 广告开关；转公开自动放行待定入边
// @Summary 修改个人设置
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body updateMeRequest true "设置项"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	uid := viewerID(c)
	if req.PrivacyStatus != nil {
		if err := h.graphService.SetPrivacy(c.Request.Context(), uid, *req.PrivacyStatus); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	if req.AdsDisabled != nil {
		if err := h.userService.SetAdsDisabled(c.Request.Context(), uid, *req.AdsDisabled); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	response.Success(c, nil)
}

// ResetMe 注销账号，级联清除全部数据
// @Summary 注销账号
// @Tags 用户
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/users/me [delete]
func (h *Handler) ResetMe(c *gin.Context) {
	if err := h.userService.Reset(c.Request.Context(), viewerID(c)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Success(c, nil)
}
