package configs

import (
	"time"

	"github.com/spf13/viper"
)

// VaultConfig 保管库核心配置，覆盖存储布局、准入策略与生命周期.
type VaultConfig struct {
	// BasePath 保管库根目录，所有对象按日期分片存放在其下
	BasePath string `mapstructure:"base_path" rule:"required"`
	// TempDir 暂存目录名(相对 BasePath)，写入先落此处再原子改名
	TempDir string `mapstructure:"temp_dir"`
	// QuarantineDir 隔离目录名(相对 BasePath)，安全校验失败的内容移入此处
	QuarantineDir string `mapstructure:"quarantine_dir"`

	// MaxFileSize 单文件大小上限(字节)
	MaxFileSize int64 `mapstructure:"max_file_size" rule:"gt=0"`
	// AllowedExtensions 允许的扩展名白名单(小写、不含点)，空表示放行全部
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	// DeniedExtensions 拒绝的扩展名黑名单，优先级高于白名单
	DeniedExtensions []string `mapstructure:"denied_extensions"`

	// DefaultQuotaBytes 每个所有者的默认配额(字节)
	DefaultQuotaBytes int64 `mapstructure:"default_quota_bytes" rule:"gt=0"`
	// QuotaOverrides 按所有者覆盖配额，key 为所有者标识
	QuotaOverrides map[string]int64 `mapstructure:"quota_overrides"`

	// OptimizeImages 是否对超尺寸图片做入库前压缩
	OptimizeImages bool `mapstructure:"optimize_images"`
	MaxImageWidth  int  `mapstructure:"max_image_width"`
	MaxImageHeight int  `mapstructure:"max_image_height"`
	ImageQuality   int  `mapstructure:"image_quality" rule:"gte=1,lte=100"`

	// ScanEnabled 是否调用外部扫描器，命中或扫描失败的对象进入 quarantined 状态；
	// 内置的启发式特征检查始终执行，不受该开关影响
	ScanEnabled bool `mapstructure:"scan_enabled"`
	// ScanMaxBytes 内容扫描读取的最大字节数
	ScanMaxBytes int64 `mapstructure:"scan_max_bytes"`

	// BackupEnabled 是否向 S3 写入备份副本
	BackupEnabled bool `mapstructure:"backup_enabled"`

	// RetentionDays 对象默认保留天数，0 表示永不过期
	RetentionDays int `mapstructure:"retention_days" rule:"gte=0"`
	// SweepCron 过期清扫任务的 cron 表达式
	SweepCron string `mapstructure:"sweep_cron"`
	// SweepConcurrency 清扫阶段并行删除的上限
	SweepConcurrency int `mapstructure:"sweep_concurrency" rule:"gt=0"`
}

const (
	DefaultMaxFileSize    = 10 << 20 // 默认单文件上限 10MB
	DefaultQuotaBytes     = 1 << 30  // 默认所有者配额 1GB
	DefaultScanMaxBytes   = 4 << 20  // 默认扫描前 4MB
	DefaultMaxImageWidth  = 1920
	DefaultMaxImageHeight = 1080
	DefaultImageQuality   = 85
)

// GetRetention 获取默认保留期，0 表示永不过期.
func (c *VaultConfig) GetRetention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// QuotaFor 获取指定所有者的配额，优先取覆盖值.
func (c *VaultConfig) QuotaFor(owner string) int64 {
	if q, ok := c.QuotaOverrides[owner]; ok {
		return q
	}

	return c.DefaultQuotaBytes
}

// setDefaults 设置保管库配置的默认值.
func (c *VaultConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("vault.base_path", "data/vault")
	v.SetDefault("vault.temp_dir", "tmp")
	v.SetDefault("vault.quarantine_dir", "quarantine")

	v.SetDefault("vault.max_file_size", DefaultMaxFileSize)
	v.SetDefault("vault.allowed_extensions", []string{})
	v.SetDefault("vault.denied_extensions", []string{
		"exe", "dll", "so", "bat", "cmd", "sh", "ps1", "msi", "scr", "com",
	})

	v.SetDefault("vault.default_quota_bytes", DefaultQuotaBytes)

	v.SetDefault("vault.optimize_images", true)
	v.SetDefault("vault.max_image_width", DefaultMaxImageWidth)
	v.SetDefault("vault.max_image_height", DefaultMaxImageHeight)
	v.SetDefault("vault.image_quality", DefaultImageQuality)

	v.SetDefault("vault.scan_enabled", true)
	v.SetDefault("vault.scan_max_bytes", DefaultScanMaxBytes)

	v.SetDefault("vault.backup_enabled", false)

	v.SetDefault("vault.retention_days", 0)
	v.SetDefault("vault.sweep_cron", "0 3 * * *")
	v.SetDefault("vault.sweep_concurrency", 4)
}
