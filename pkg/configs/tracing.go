package configs

import (
	"github.com/spf13/viper"
)

// TracingConfig OpenTelemetry 链路追踪配置.
type TracingConfig struct {
	Enable bool `mapstructure:"enable"`
	// Exporter 导出器类型: otlp-grpc, otlp-http, zipkin
	Exporter string `mapstructure:"exporter" rule:"oneof=otlp-grpc otlp-http zipkin"`
	Endpoint string `mapstructure:"endpoint"`
	// SampleRate 采样率，0~1 之间
	SampleRate  float64 `mapstructure:"sample_rate" rule:"gte=0,lte=1"`
	ServiceName string  `mapstructure:"service_name"`
}

// setDefaults 设置链路追踪配置的默认值.
func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enable", false)
	v.SetDefault("tracing.exporter", "otlp-grpc")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.service_name", "taskvault")
}
