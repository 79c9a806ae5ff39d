// Package handle 提供 HTTP 请求处理器, 将请求解析后交给 vault 核心执行.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/vault"
	"github.com/yeisme/taskvault/pkg/scheduler"
)

// Handler 持有处理请求所需的依赖.
type Handler struct {
	vault *vault.Vault
	cfg   *configs.AppConfig
	sched *scheduler.Scheduler
}

func New(v *vault.Vault, cfg *configs.AppConfig, sched *scheduler.Scheduler) *Handler {
	return &Handler{vault: v, cfg: cfg, sched: sched}
}

// writeError 将保管库错误映射到 HTTP 状态码.
func writeError(c *gin.Context, err error) {
	var (
		verr *vault.ValidationError
		serr *vault.SecurityError
		qerr *vault.QuotaExceededError
		ierr *vault.StorageIOError
	)

	switch {
	case errors.Is(err, vault.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &serr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": serr.Error(), "quarantined": serr.Quarantine})
	case errors.As(err, &qerr):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":     qerr.Error(),
			"usage":     qerr.Usage,
			"cap":       qerr.Cap,
			"requested": qerr.Requested,
		})
	case errors.As(err, &ierr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// requireAdmin 校验请求者是否在管理员名单内.
func (h *Handler) requireAdmin(c *gin.Context, requester string) bool {
	if !h.cfg.Auth.IsAdmin(requester) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return false
	}
	return true
}
