package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/yeisme/spacedash/docs"
	"github.com/yeisme/spacedash/pkg/configs"
)

// SwaggerPath Swagger UI 与 doc.json 的挂载路径.
const SwaggerPath = "/swagger"

// RegisterSwaggerRoute 仅在调试模式下注册 Swagger 文档路由.
func RegisterSwaggerRoute(r *gin.Engine, cfg configs.ServerConfig) {
	if !cfg.Debug {
		return
	}

	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	r.GET(SwaggerPath+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
