package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/internal/storage"
)

const healthTimeout = 2 * time.Second

// Health 聚合健康检查, 任一启用组件不可用则整体 503.
// 存储管理器由 app 层注入到请求 context.
func (h *Handler) Health(c *gin.Context) {
	mgr := storage.GetManagerFromContext(c.Request.Context())
	if mgr == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"healthy": false, "error": "storage not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	components := gin.H{}
	healthy := true

	if dbc := storage.GetDBClientFromContext(c.Request.Context()); dbc != nil && dbc.DB != nil {
		sqlDB, err := dbc.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			components["db"] = gin.H{"status": "unhealthy", "error": err.Error()}
			healthy = false
		} else {
			components["db"] = gin.H{"status": "ok"}
		}
	} else {
		components["db"] = gin.H{"status": "unhealthy", "error": "not initialized"}
		healthy = false
	}

	if s3c := storage.GetS3ClientFromContext(c.Request.Context()); s3c != nil {
		if err := s3c.HealthCheck(ctx); err != nil {
			components["s3"] = gin.H{"status": "unhealthy", "error": err.Error()}
			healthy = false
		} else {
			components["s3"] = gin.H{"status": "ok"}
		}
	}

	if mqc := mgr.GetMQClient(); mqc != nil {
		components["mq"] = gin.H{"status": "ok"}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "components": components})
}
