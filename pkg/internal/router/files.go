package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/internal/handle"
)

// RegisterFilesRoutes 注册文件元数据相关路由.
func RegisterFilesRoutes(g *gin.RouterGroup) {
	filesRoutes := g.Group("/files")
	{
		filesRoutes.GET("/recent", handle.GetRecentFiles)
		filesRoutes.POST("", handle.RegisterFile)
		filesRoutes.DELETE("/:id", handle.DeleteFile)
	}
}
