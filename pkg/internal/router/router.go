// Package router 将保管库的 HTTP 路由绑定到 gin 引擎.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/internal/handle"
)

// Register 绑定全部业务路由.
//
//	POST   /api/v1/files            上传
//	GET    /api/v1/files            列表
//	GET    /api/v1/files/:id        下载
//	GET    /api/v1/files/:id/meta   元数据
//	DELETE /api/v1/files/:id        删除
//	GET    /api/v1/stats/usage      请求者用量
//	GET    /api/v1/admin/usage      全局用量（管理员）
//	POST   /api/v1/admin/sweep      手动清扫（管理员）
//	GET    /api/v1/admin/jobs       定时任务状态（管理员）
//	GET    /health                  健康检查（无需请求者标识）
func Register(engine *gin.Engine, h *handle.Handler, auth gin.HandlerFunc) {
	engine.GET("/health", h.Health)

	api := engine.Group("/api/v1", auth)
	{
		files := api.Group("/files")
		{
			files.POST("", h.Upload)
			files.GET("", h.List)
			files.GET("/:id", h.Download)
			files.GET("/:id/meta", h.Stat)
			files.DELETE("/:id", h.Delete)
		}

		stats := api.Group("/stats")
		{
			stats.GET("/usage", h.Usage)
		}

		admin := api.Group("/admin")
		{
			admin.GET("/usage", h.GlobalUsage)
			admin.POST("/sweep", h.Sweep)
			admin.GET("/jobs", h.Jobs)
		}
	}
}
