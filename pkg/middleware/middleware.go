// Package middleware 提供 gin 中间件：用户识别、限流、熔断、指标、追踪与请求日志.
package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	"github.com/yeisme/spacedash/pkg/scheduler"
)

// Setup 按配置注册全局中间件，注册顺序即执行顺序.
// sched 为 nil 时不注入调度器.
func Setup(r *gin.Engine, cfg *configs.AppConfig, mgr *storage.Manager, sched *scheduler.Scheduler) {
	r.Use(gin.Recovery(), GinLoggerMiddleware())

	if cfg.Tracing.Enabled {
		r.Use(TracingMiddleware())
	}

	if cfg.Metrics.Enabled {
		r.Use(PrometheusMiddleware())
	}

	// promhttp 自行协商压缩
	r.Use(CORSMiddleware(cfg.Server), gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{cfg.Metrics.Path})))

	r.Use(StorageMiddleware(mgr))

	if sched != nil {
		r.Use(SchedulerMiddleware(sched))
	}

	r.Use(
		AuthMiddleware(cfg.Auth),
		RateLimitMiddleware(cfg.RateLimit),
		CircuitBreakerMiddleware(cfg.CircuitBreaker),
	)
}
