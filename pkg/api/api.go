// Package api 组装对外的 HTTP 接口：业务路由挂载在 /api/v1 下，指标、pprof 与调试模式下的 Swagger 挂在根路径.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/router"
	"github.com/yeisme/spacedash/pkg/metrics"
)

// Prefix 业务接口前缀.
const Prefix = "/api/v1"

// RegisterGroup 注册全部路由到传入的 gin 引擎.
func RegisterGroup(e *gin.Engine, cfg *configs.AppConfig) *gin.Engine {
	router.Register(e.Group(Prefix))
	router.RegisterSwaggerRoute(e, cfg.Server)
	metrics.Register(e, cfg.Metrics, cfg.Server.Pprof)

	return e
}
