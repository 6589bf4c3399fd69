// Package router 管理路由配置，将路径与 handle 包中的处理器绑定.
package router

import "github.com/gin-gonic/gin"

// Register 在 /api/v1 路由组上注册全部业务路由.
func Register(g *gin.RouterGroup) {
	RegisterUsageRoutes(g)
	RegisterFilesRoutes(g)
	RegisterQuotaRoutes(g)
	RegisterHealthCheckRoute(g)
	RegisterSchedulerRoutes(g)
}
