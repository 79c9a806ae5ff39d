package configs

import (
	"github.com/spf13/viper"
)

// RateLimitConfig 接口限流配置，基于令牌桶实现.
type RateLimitConfig struct {
	Enable bool `mapstructure:"enable"`
	// RPS 每秒放行的请求数
	RPS float64 `mapstructure:"rps" rule:"gt=0"`
	// Burst 突发容量
	Burst int `mapstructure:"burst" rule:"gt=0"`
	// Key 限流维度: global, ip, 或 header:<名称>
	Key string `mapstructure:"key"`
}

// setDefaults 设置限流配置的默认值.
func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enable", false)
	v.SetDefault("rate_limit.rps", 50.0)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("rate_limit.key", "ip")
}
