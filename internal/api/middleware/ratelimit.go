package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/feed-engine/pkg/response"
)

// RateLimit 按 user_id 限流，用于浏览上报这类高扇入写路径
func RateLimit(rps, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	return func(c *gin.Context) {
		key := c.GetString("user_id")
		if key == "" {
			key = c.ClientIP()
		}
		mu.Lock()
		lim, ok := limiters[key]
		if !ok {
			lim = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[key] = lim
		}
		mu.Unlock()
		if !lim.Allow() {
			c.JSON(http.StatusTooManyRequests, response.Response{Code: 429, Message: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
