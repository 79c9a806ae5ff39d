// Package types 定义对外接口的请求与响应结构.
package types

import "time"

// UploadRequest 单个文件上传请求.
type UploadRequest struct {
	// OwnerID 对象所有者，来自请求者标识
	OwnerID string `json:"owner_id"`
	// FileName 原始文件名，允许包含路径分隔符与特殊字符，入库前会被清洗
	FileName string `json:"file_name"`
	// Content 文件内容
	Content []byte `json:"-"`
	// DeclaredMime 客户端声明的内容类型，仅作参考，服务端会做嗅探
	DeclaredMime string `json:"declared_mime,omitempty"`
	// Tags 可选标签
	Tags []string `json:"tags,omitempty"`
	// IsPublic 是否公开，公开对象任何请求者可下载
	IsPublic bool `json:"is_public,omitempty"`
	// ProjectRef/TaskRef 可选关联标识，对保管库不透明
	ProjectRef string `json:"project_ref,omitempty"`
	TaskRef    string `json:"task_ref,omitempty"`
	// ExpiryDays 可选过期天数，0 表示用全局默认保留期
	ExpiryDays int `json:"expiry_days,omitempty"`
}

// UploadResult 上传结果.
type UploadResult struct {
	// ObjectID 对象 ID；去重命中时为已有对象的 ID
	ObjectID string `json:"object_id"`
	// Deduplicated 是否命中内容去重
	Deduplicated bool `json:"deduplicated"`
	// StoredName 实际存储文件名
	StoredName string `json:"stored_name"`
	Checksum   string `json:"checksum"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	Category   string `json:"category"`
	// Optimized 图片是否经过入库前压缩
	Optimized bool       `json:"optimized,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// DownloadResult 下载结果，内容与元数据一起返回.
type DownloadResult struct {
	ObjectID     string `json:"object_id"`
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	Size         int64  `json:"size"`
	Checksum     string `json:"checksum"`
	Content      []byte `json:"-"`
}

// ObjectInfo 对象元数据视图.
type ObjectInfo struct {
	ObjectID     string     `json:"object_id"`
	OwnerID      string     `json:"owner_id"`
	StoredName   string     `json:"stored_name"`
	OriginalName string     `json:"original_name"`
	Checksum     string     `json:"checksum"`
	Size         int64      `json:"size"`
	MimeType     string     `json:"mime_type"`
	Category     string     `json:"category"`
	State        string     `json:"state"`
	Tags         []string   `json:"tags,omitempty"`
	IsPublic     bool       `json:"is_public"`
	ProjectRef   string     `json:"project_ref,omitempty"`
	TaskRef      string     `json:"task_ref,omitempty"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// ListObjectsRequest 对象列表查询.
type ListObjectsRequest struct {
	Category string `form:"category" json:"category,omitempty"`
	Limit    int    `form:"limit"    json:"limit,omitempty"`
	Offset   int    `form:"offset"   json:"offset,omitempty"`
}

// ListObjectsResponse 对象列表结果.
type ListObjectsResponse struct {
	Objects []ObjectInfo `json:"objects"`
	Total   int64        `json:"total"`
}
