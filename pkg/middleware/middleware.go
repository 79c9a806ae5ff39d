// Package middleware 提供 Gin 中间件：请求日志、指标、追踪、限流、CORS 与请求者识别.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/metrics"
)

// PrometheusMiddleware 创建Gin的Prometheus中间件.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// 执行下一个中间件/处理器
		c.Next()

		// 使用路由模板而不是原始路径，避免对象 ID 导致标签爆炸
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		status := c.Writer.Status()
		duration := time.Since(start).Seconds()

		metrics.RequestCounter.WithLabelValues(method, endpoint, statusClass(status)).Inc()
		metrics.RequestDuration.WithLabelValues(method, endpoint).Observe(duration)
	}
}

// statusClass 把状态码归并为 2xx/3xx/4xx/5xx.
func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
