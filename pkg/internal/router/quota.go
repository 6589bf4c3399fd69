package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/internal/handle"
)

// RegisterQuotaRoutes 注册配额路由.
func RegisterQuotaRoutes(g *gin.RouterGroup) {
	g.GET("/quota", handle.GetQuota)
	g.PUT("/quota", handle.SetQuota)
}
