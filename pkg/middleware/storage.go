package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器注入 request.Context，service 层据此取得各客户端.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
