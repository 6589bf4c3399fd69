package middleware

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
)

// CORSMiddleware CORS中间件，允许的来源取自 server.cors_origins.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, DefaultUserHeader, "Authorization")

	if cfg.Debug || len(cfg.CorsOrigins) == 0 || slices.Contains(cfg.CorsOrigins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.CorsOrigins
	}

	return cors.New(config)
}
