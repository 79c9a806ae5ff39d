package handle

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/taskvault/pkg/internal/types"
	"github.com/yeisme/taskvault/pkg/middleware"
)

// Upload 接收 multipart 上传并执行入库流水线.
//
// 表单字段:
//   - file         文件内容（必填）
//   - tags         逗号分隔的标签
//   - is_public    是否公开
//   - project_ref  关联项目标识
//   - task_ref     关联任务标识
//   - expiry_days  过期天数，0 用全局默认
func (h *Handler) Upload(c *gin.Context) {
	requester := middleware.Requester(c)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	// 略高于上限读取，超限交给校验层报出一致的错误
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("open upload: %v", err)})
		return
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, h.cfg.Vault.MaxFileSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("read upload: %v", err)})
		return
	}

	req := types.UploadRequest{
		OwnerID:      requester,
		FileName:     fh.Filename,
		Content:      content,
		DeclaredMime: fh.Header.Get("Content-Type"),
		Tags:         splitTags(c.PostForm("tags")),
		IsPublic:     c.PostForm("is_public") == "true",
		ProjectRef:   c.PostForm("project_ref"),
		TaskRef:      c.PostForm("task_ref"),
	}
	if days := c.PostForm("expiry_days"); days != "" {
		n, perr := strconv.Atoi(days)
		if perr != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiry_days"})
			return
		}
		req.ExpiryDays = n
	}

	res, err := h.vault.Upload(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Deduplicated {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// Download 返回对象内容, 元数据放在响应头里.
func (h *Handler) Download(c *gin.Context) {
	requester := middleware.Requester(c)
	objectID := c.Param("id")

	res, err := h.vault.Download(c.Request.Context(), requester, objectID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.StoredName))
	c.Header("X-Checksum-Sha256", res.Checksum)
	c.Data(http.StatusOK, res.MimeType, res.Content)
}

// Stat 返回对象元数据.
func (h *Handler) Stat(c *gin.Context) {
	requester := middleware.Requester(c)

	info, err := h.vault.Stat(c.Request.Context(), requester, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Delete 删除请求者自己的对象, permanent=true 时连同元数据一并移除.
func (h *Handler) Delete(c *gin.Context) {
	requester := middleware.Requester(c)
	permanent := c.Query("permanent") == "true"

	if err := h.vault.Delete(c.Request.Context(), requester, c.Param("id"), permanent); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List 列出请求者自己的对象.
func (h *Handler) List(c *gin.Context) {
	requester := middleware.Requester(c)

	var req types.ListObjectsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.vault.List(c.Request.Context(), requester, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// splitTags 解析逗号分隔的标签, 去掉空白项.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
