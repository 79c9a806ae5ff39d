package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/middleware"
)

// Usage 返回请求者自己的配额用量.
func (h *Handler) Usage(c *gin.Context) {
	requester := middleware.Requester(c)

	summary, err := h.vault.Usage(c.Request.Context(), requester)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GlobalUsage 返回全局用量统计, 仅管理员可用.
func (h *Handler) GlobalUsage(c *gin.Context) {
	requester := middleware.Requester(c)
	if !h.requireAdmin(c, requester) {
		return
	}

	usage, err := h.vault.GlobalUsage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

// Sweep 手动触发一轮过期清扫, 仅管理员可用.
func (h *Handler) Sweep(c *gin.Context) {
	requester := middleware.Requester(c)
	if !h.requireAdmin(c, requester) {
		return
	}

	report, err := h.vault.SweepExpired(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Jobs 列出定时任务及其状态, 仅管理员可用.
func (h *Handler) Jobs(c *gin.Context) {
	requester := middleware.Requester(c)
	if !h.requireAdmin(c, requester) {
		return
	}

	if h.sched == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scheduler not running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": h.sched.GetJobInfos()})
}
