package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置.
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
	// EnableGormMetrics 是否采集 GORM 数据库连接池指标
	EnableGormMetrics bool `mapstructure:"enable_gorm_metrics"`
	// RefreshInterval GORM 指标刷新间隔(秒)
	RefreshInterval int `mapstructure:"refresh_interval"`
}

// setDefaults 设置指标配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.enable_gorm_metrics", true)
	v.SetDefault("metrics.refresh_interval", 15)
}
