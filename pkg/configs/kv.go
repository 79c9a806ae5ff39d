package configs

import (
	"time"

	"github.com/spf13/viper"
)

// KVType 键值缓存类型.
type KVType string

const (
	KVTypeMemory KVType = "memory"
	KVTypeRedis  KVType = "redis"
)

// KVConfig 元数据缓存配置，下载路径用它减少数据库往返.
type KVConfig struct {
	Enable bool          `mapstructure:"enable"`
	Type   KVType        `mapstructure:"type"`
	TTL    int           `mapstructure:"ttl"` // 缓存条目有效期(秒)
	Memory KVMemoryConf  `mapstructure:"memory"`
	Redis  KVRedisConf   `mapstructure:"redis"`
}

// KVMemoryConf 内存缓存配置.
type KVMemoryConf struct {
	// MaxEntries 缓存最大条目数，超过后按插入顺序淘汰
	MaxEntries int `mapstructure:"max_entries"`
}

// KVRedisConf Redis 缓存配置.
type KVRedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GetTTL 获取缓存有效期.
func (c *KVConfig) GetTTL() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// setDefaults 设置缓存配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("kv.enable", true)
	v.SetDefault("kv.type", string(KVTypeMemory))
	v.SetDefault("kv.ttl", 300)

	v.SetDefault("kv.memory.max_entries", 4096)

	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 1)
}
