package configs

import (
	"github.com/spf13/viper"
)

// EventsConfig 对象事件发布配置.
// 各开关控制对应生命周期事件是否发布到消息队列.
type EventsConfig struct {
	// PublishStored 对象入库成功后发布 stored 事件
	PublishStored bool `mapstructure:"publish_stored"`
	// PublishDeduplicated 命中去重时发布 deduplicated 事件
	PublishDeduplicated bool `mapstructure:"publish_deduplicated"`
	// PublishQuarantined 对象被隔离时发布 quarantined 事件
	PublishQuarantined bool `mapstructure:"publish_quarantined"`
	// PublishDeleted 对象删除时发布 deleted 事件
	PublishDeleted bool `mapstructure:"publish_deleted"`
	// PublishExpired 清扫过期对象时发布 expired 事件
	PublishExpired bool `mapstructure:"publish_expired"`
}

// setDefaults 设置事件配置的默认值.
func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.publish_stored", true)
	v.SetDefault("events.publish_deduplicated", true)
	v.SetDefault("events.publish_quarantined", true)
	v.SetDefault("events.publish_deleted", true)
	v.SetDefault("events.publish_expired", true)
}
