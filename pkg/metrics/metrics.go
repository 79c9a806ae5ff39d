// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用、保管库和数据库指标.
//
// Example:
//
//	import "github.com/yeisme/taskvault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.UploadTotal.WithLabelValues("stored").Inc()
//	metrics.StoredBytes.WithLabelValues("alice").Add(1024)
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/taskvault/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// UploadTotal 上传结果计数器，outcome 取值 stored/deduplicated/rejected/quarantined/failed.
	UploadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_uploads_total",
			Help: "Total number of upload attempts by outcome",
		},
		[]string{"outcome"},
	)

	// QuotaRejections 配额拒绝计数器.
	QuotaRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_quota_rejections_total",
			Help: "Total number of uploads rejected due to quota",
		},
	)

	// StoredBytes 按所有者累计入库字节数.
	StoredBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vault_stored_bytes_total",
			Help: "Total bytes written to the vault by owner",
		},
		[]string{"owner"},
	)

	// SweepRemoved 清扫移除的对象计数器.
	SweepRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vault_sweep_removed_total",
			Help: "Total number of expired objects removed by the sweeper",
		},
	)

	// SweepDuration 清扫任务耗时.
	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vault_sweep_duration_seconds",
			Help:    "Duration of expiry sweep runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enable {
		return nil
	}

	// 注册标准收集器
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration,
		UploadTotal, QuotaRejections, StoredBytes,
		SweepRemoved, SweepDuration,
	)

	return nil
}

// RegisterMetricsRoute 注册Metrics HTTP端点.
func RegisterMetricsRoute(config configs.MetricsConfig, engine *gin.Engine) {
	if !config.Enable {
		return
	}

	engine.GET(config.Path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
