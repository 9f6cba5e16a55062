package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/feed-engine/internal/service"
)

// Handler 聚合全部 HTTP 入口
type Handler struct {
	userService  service.UserService
	graphService service.SocialGraphService
	postService  service.PostService
	viewService  service.ViewService
	feedService  service.FeedService
	trendService service.TrendingService
}

func New(
	userService service.UserService,
	graphService service.SocialGraphService,
	postService service.PostService,
	viewService service.ViewService,
	feedService service.FeedService,
	trendService service.TrendingService,
) *Handler {
	return &Handler{
		userService:  userService,
		graphService: graphService,
		postService:  postService,
		viewService:  viewService,
		feedService:  feedService,
		trendService: trendService,
	}
}

// viewerID 由认证中间件注入
func viewerID(c *gin.Context) string {
	return c.GetString("user_id")
}
