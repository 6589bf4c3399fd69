package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/rule"
)

const (
	// DefaultUserHeader 默认的用户标识请求头.
	DefaultUserHeader = "X-User"

	userKey = "user"
)

type userCtxKey struct{}

// proxyHeaders oauth2-proxy 等反向代理注入的邮箱头，按顺序回退.
var proxyHeaders = []string{"X-Auth-Request-Email", "X-Forwarded-Email"}

// AuthMiddleware 识别当前请求的用户并写入上下文.
//   - 依次读取配置的请求头、反向代理注入的邮箱头
//   - dev_allow_query 打开时允许 ?user= 兜底
//   - 用户必须是合法邮箱，否则 400；启用校验且缺失用户时 401
//   - skip_paths 前缀匹配的路径直接放行.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		user := ResolveUser(c, conf)
		if user == "" {
			if conf.Enabled {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
				return
			}

			c.Next()

			return
		}

		if err := rule.ValidateUser(user); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user", "details": rule.Errors(err)})
			return
		}

		SetUser(c, user)
		c.Next()
	}
}

// ResolveUser 从请求中提取用户标识，未找到返回空串.
func ResolveUser(c *gin.Context, conf configs.AuthConfig) string {
	header := conf.Header
	if header == "" {
		header = DefaultUserHeader
	}

	if user := strings.TrimSpace(c.GetHeader(header)); user != "" {
		return user
	}

	for _, h := range proxyHeaders {
		if user := strings.TrimSpace(c.GetHeader(h)); user != "" {
			return user
		}
	}

	if conf.DevAllowQuery {
		return strings.TrimSpace(c.Query("user"))
	}

	return ""
}

// SetUser 将已校验的用户写入 gin.Context 与 request.Context.
func SetUser(c *gin.Context, user string) {
	c.Set(userKey, user)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userCtxKey{}, user))
}

// GetUser 返回中间件识别出的用户.
func GetUser(c *gin.Context) (string, bool) {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(string); ok && user != "" {
			return user, true
		}
	}

	return UserFromContext(c.Request.Context())
}

// UserFromContext 从 request.Context 读取用户，供 service 层日志使用.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userCtxKey{}).(string)
	return user, ok && user != ""
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
