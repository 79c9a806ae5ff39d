// Package model 定义保管库的数据库模型.
package model

import (
	"time"

	"gorm.io/gorm"
)

// LifecycleState 对象生命周期状态.
type LifecycleState string

const (
	StateActive      LifecycleState = "active"      // 正常可访问
	StateQuarantined LifecycleState = "quarantined" // 未通过安全校验，内容已隔离
	StateDeleted     LifecycleState = "deleted"     // 已删除（软删除保留审计记录）
)

// FileObject 保管库中的文件对象元数据.
type FileObject struct {
	// ID 为 ULID，字典序即时间序
	ID string `gorm:"primaryKey;size:26" json:"id"`
	// OwnerID 所有者标识，所有访问都以它为边界
	OwnerID string `gorm:"size:255;index;index:idx_owner_checksum" json:"owner_id"`
	// Checksum 内容的 SHA-256 十六进制摘要，owner 内相同摘要即去重命中
	Checksum string `gorm:"size:64;index:idx_owner_checksum;index" json:"checksum"`
	// OriginalName 上传时的原始文件名
	OriginalName string `gorm:"size:512" json:"original_name"`
	// StoredName 清洗后的存储文件名
	StoredName string `gorm:"size:512;index" json:"stored_name"`
	// StoragePath 相对保管库根目录的存储路径
	StoragePath string `gorm:"size:1024" json:"storage_path"`
	Size        int64  `gorm:"index"     json:"size"`
	MimeType    string `gorm:"size:255"  json:"mime_type"`
	Category    string `gorm:"size:64;index" json:"category"`
	// State 生命周期状态
	State LifecycleState `gorm:"size:16;index;default:active" json:"state"`
	// QuarantineReason 进入隔离状态的原因，仅隔离对象有值
	QuarantineReason string `gorm:"size:512" json:"quarantine_reason,omitempty"`
	// TagsJSON 以 JSON 字符串形式存储标签，便于模糊搜索
	TagsJSON string `gorm:"type:text" json:"tags_json"`
	// IsPublic 公开对象允许任意请求者下载
	IsPublic bool `gorm:"default:false" json:"is_public"`
	// ProjectRef/TaskRef 上层应用的关联标识，对保管库不透明
	ProjectRef string `gorm:"size:255;index" json:"project_ref,omitempty"`
	TaskRef    string `gorm:"size:255;index" json:"task_ref,omitempty"`
	// BackupPath 备份副本位置，空值表示无备份
	BackupPath string `gorm:"size:1024" json:"backup_path,omitempty"`
	// Version 元数据版本，从 1 开始，每次更新递增
	Version int `gorm:"default:1" json:"version"`
	// LastAccessedAt 最近一次成功下载时间
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	// ExpiresAt 过期时间，空值表示永不过期
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	// 软删除与审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定表名.
func (FileObject) TableName() string {
	return "file_objects"
}

// IsExpired 判断对象在给定时刻是否已过期.
func (f *FileObject) IsExpired(now time.Time) bool {
	return f.ExpiresAt != nil && !f.ExpiresAt.After(now)
}
