package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS  MQType = "nats"
	MQTypeRedis MQType = "redis"
)

// MQConfig 消息队列配置，保管库的对象事件通过它发布.
type MQConfig struct {
	Enable bool           `mapstructure:"enable"`
	Type   MQType         `mapstructure:"type"`
	Common CommonMQConfig `mapstructure:"common"`
	NATS   NATSConfig     `mapstructure:"nats"`
	Redis  RedisMQConfig  `mapstructure:"redis"`
}

// CommonMQConfig 各类消息队列共享的通用配置.
type CommonMQConfig struct {
	// ConsumerGroup 消费者组名称，空值表示广播模式
	ConsumerGroup string `mapstructure:"consumer_group"`
	// AckWaitSeconds 消息确认等待时间(秒)
	AckWaitSeconds int `mapstructure:"ack_wait_seconds"`
	// MaxRetry 消息处理最大重试次数
	MaxRetry int `mapstructure:"max_retry"`
}

// NATSConfig NATS JetStream 配置.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	// DurableName JetStream 持久化订阅名称
	DurableName string `mapstructure:"durable_name"`
}

// RedisMQConfig Redis Stream 配置.
type RedisMQConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// setDefaults 设置消息队列配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.enable", false)
	v.SetDefault("mq.type", string(MQTypeNATS))

	v.SetDefault("mq.common.consumer_group", "taskvault")
	v.SetDefault("mq.common.ack_wait_seconds", 30)
	v.SetDefault("mq.common.max_retry", 3)

	v.SetDefault("mq.nats.url", "nats://localhost:4222")
	v.SetDefault("mq.nats.subject_prefix", "tv")
	v.SetDefault("mq.nats.durable_name", "taskvault")

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
}
