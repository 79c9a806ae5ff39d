package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/configs"
)

// requesterKey gin context 中存放请求者标识的键.
const requesterKey = "requester"

// RequesterMiddleware 从请求头解析请求者标识并注入 gin context。
//   - 标识来自配置的请求头（默认 X-Requester），通常由网关或 oauth2-proxy 注入
//   - 开发模式可允许 query requester 兜底（由 configs.auth.allow_query_requester 控制）
//   - 缺失标识的请求直接拒绝，保管库的所有操作都以所有者为边界.
func RequesterMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester := strings.TrimSpace(c.GetHeader(conf.RequesterHeader))

		if requester == "" && conf.AllowQueryRequester {
			requester = strings.TrimSpace(c.Query("requester"))
		}

		if requester == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing requester identity"})

			return
		}

		c.Set(requesterKey, requester)
		c.Next()
	}
}

// Requester 取出当前请求的请求者标识.
func Requester(c *gin.Context) string {
	return c.GetString(requesterKey)
}
