package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/internal/handle"
)

// RegisterUsageRoutes 注册仪表盘与用量统计路由.
func RegisterUsageRoutes(g *gin.RouterGroup) {
	g.GET("/dashboard", handle.GetDashboard)

	usageRoutes := g.Group("/usage")
	{
		usageRoutes.GET("/summary", handle.GetUsageSummary) // 分类卡片
		usageRoutes.GET("/totals", handle.GetUsageTotals)   // 已用与配额
		usageRoutes.GET("/history", handle.GetUsageHistory) // 快照历史
		usageRoutes.POST("/snapshot", handle.CaptureUsage)  // 立即记录快照
	}
}
