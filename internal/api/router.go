package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/feed-engine/config"
	_ "github.com/d60-Lab/feed-engine/docs"
	"github.com/d60-Lab/feed-engine/internal/api/handler"
	"github.com/d60-Lab/feed-engine/internal/api/middleware"
)

// NewRouter 装配路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.Otel.Enabled {
		r.Use(otelgin.Middleware("feed-engine"))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.POST("/users", h.Register)

	auth := v1.Group("")
	auth.Use(middleware.Auth())
	{
		auth.PATCH("/users/me", h.UpdateMe)
		auth.DELETE("/users/me", h.ResetMe)

		auth.POST("/relations/follow", h.Follow)
		auth.POST("/relations/unfollow", h.Unfollow)
		auth.POST("/relations/accept", h.AcceptFollower)
		auth.POST("/relations/deny", h.DenyFollower)
		auth.GET("/relations/requests", h.ListFollowRequests)
		auth.POST("/blocks", h.Block)
		auth.DELETE("/blocks/:user_id", h.Unblock)

		auth.POST("/posts", h.AddPost)
		auth.GET("/posts/:id", h.GetPost)
		auth.POST("/posts/:id/complete", h.CompletePost)
		auth.POST("/posts/:id/fail", h.FailPost)
		auth.POST("/posts/:id/archive", h.ArchivePost)
		auth.POST("/posts/:id/restore", h.RestorePost)
		auth.DELETE("/posts/:id", h.DeletePost)
		auth.POST("/posts/:id/approve-ad", h.ApproveAd)

		auth.POST("/views",
			middleware.RateLimit(cfg.Server.ViewRateLimit, cfg.Server.ViewRateBurst),
			h.ReportViews)
		auth.GET("/feed", h.SelfFeed)
		auth.GET("/trending/posts", h.TrendingPosts)
		auth.GET("/trending/users", h.TrendingUsers)
	}

	return r
}
