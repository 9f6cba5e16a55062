package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// 非数字 limit 直接 400，不落到默认值
func TestLimitQuery_NonNumericRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{}

	cases := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{"feed", h.SelfFeed},
		{"trending posts", h.TrendingPosts},
		{"trending users", h.TrendingUsers},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
			tc.handler(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
