// Package metrics 提供监控指标功能，基于 Prometheus 独立注册表.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RequestCounter.WithLabelValues("GET", "/api/v1/dashboard", "200").Inc()
//	metrics.ObserveUsage("alice@example.com", totals, summaries)
package metrics

import (
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/usage"
)

const namespace = "spacedash"

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// DashboardBuilds 仪表盘构建次数，result 取 ok / no_data / invalid / cached.
	DashboardBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_builds_total",
			Help:      "Dashboard builds by result",
		},
		[]string{"result"},
	)

	// DashboardDuration 仪表盘构建耗时（不含缓存命中）.
	DashboardDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_build_duration_seconds",
			Help:      "Time spent fetching and aggregating a dashboard",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// SourceErrors 数据源错误次数.
	SourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Errors returned by record and quota sources",
		},
		[]string{"source"},
	)

	// JobRuns 定时任务执行次数，result 取 ok / panic.
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by result",
		},
		[]string{"job", "result"},
	)

	// JobDuration 定时任务耗时.
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Scheduled job duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	// UsedBytes 用户已用字节.
	UsedBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_used_bytes",
			Help:      "Bytes used per user at the last snapshot",
		},
		[]string{"user"},
	)

	// QuotaBytes 用户配额字节.
	QuotaBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_quota_bytes",
			Help:      "Quota bytes per user",
		},
		[]string{"user"},
	)

	// UsedRatio 用户配额占比 [0,1].
	UsedRatio = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_used_ratio",
			Help:      "Used fraction of quota per user",
		},
		[]string{"user"},
	)

	// CategoryBytes 用户各分类字节.
	CategoryBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "usage_category_bytes",
			Help:      "Bytes used per user and category",
		},
		[]string{"user", "category"},
	)

	// registry Prometheus注册表.
	registry      = prometheus.NewRegistry()
	registerOnce  sync.Once
	exposeDefault bool
)

// InitMetrics 初始化Metrics，重复调用安全.
// 运行时、gorm 与 watermill 指标位于默认注册表，RuntimeMetrics 控制是否一并暴露.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	registerOnce.Do(func() {
		exposeDefault = config.RuntimeMetrics

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration,
			DashboardBuilds, DashboardDuration, SourceErrors,
			JobRuns, JobDuration,
			UsedBytes, QuotaBytes, UsedRatio, CategoryBytes,
		} {
			if err = registry.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// ObserveUsage 刷新某个用户的用量指标.
func ObserveUsage(user string, totals usage.UsageTotals, sums usage.Summaries) {
	UsedBytes.WithLabelValues(user).Set(float64(totals.UsedBytes))
	QuotaBytes.WithLabelValues(user).Set(float64(totals.QuotaBytes))
	UsedRatio.WithLabelValues(user).Set(totals.UsedFraction)

	for c, s := range sums {
		CategoryBytes.WithLabelValues(user, string(c)).Set(float64(s.TotalSizeBytes))
	}
}

// Handler 返回 Prometheus 抓取处理器.
func Handler() http.Handler {
	var g prometheus.Gatherer = registry
	if exposeDefault {
		g = prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	}

	return promhttp.HandlerFor(g, promhttp.HandlerOpts{Registry: registry})
}

// Register 在 gin 引擎上注册 /metrics 与可选的 pprof 端点.
func Register(engine *gin.Engine, config configs.MetricsConfig, enablePprof bool) {
	if config.Enabled {
		path := config.Path
		if path == "" {
			path = "/metrics"
		}

		engine.GET(path, gin.WrapH(Handler()))
	}

	if enablePprof {
		pp := engine.Group("/debug/pprof")
		pp.GET("/", gin.WrapF(pprof.Index))
		pp.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/symbol", gin.WrapF(pprof.Symbol))
		pp.GET("/trace", gin.WrapF(pprof.Trace))
		pp.GET("/:name", func(c *gin.Context) {
			pprof.Handler(c.Param("name")).ServeHTTP(c.Writer, c.Request)
		})
	}
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
