package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/spacedash/pkg/context"
)

const timeout = 2 * time.Second

// healthCheck 输出组件健康状态，check 为 nil 表示组件未初始化.
func healthCheck(c *gin.Context, component string, check func(ctx context.Context) error) {
	if check == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": component + " client not initialized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := check(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

// HealthDB 文件元数据库健康检查.
//
//	@Summary	文件元数据库健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/db [get]
func HealthDB(c *gin.Context) {
	var check func(context.Context) error
	if dbc := ctxPkg.GetDBClient(c.Request.Context()); dbc != nil {
		check = dbc.HealthCheck
	}

	healthCheck(c, "db", check)
}

// HealthS3 对象存储健康检查，未启用 S3 时返回 503.
//
//	@Summary	对象存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/s3 [get]
func HealthS3(c *gin.Context) {
	var check func(context.Context) error
	if s3c := ctxPkg.GetS3Client(c.Request.Context()); s3c != nil {
		check = s3c.HealthCheck
	}

	healthCheck(c, "s3", check)
}

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/mq [get]
func HealthMQ(c *gin.Context) {
	var check func(context.Context) error
	if mqc := ctxPkg.GetMQClient(c.Request.Context()); mqc != nil {
		check = mqc.HealthCheck
	}

	healthCheck(c, "mq", check)
}

// HealthKV 缓存健康检查.
//
//	@Summary	缓存健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/health/kv [get]
func HealthKV(c *gin.Context) {
	var check func(context.Context) error
	if kvc := ctxPkg.GetKVClient(c.Request.Context()); kvc != nil {
		check = kvc.HealthCheck
	}

	healthCheck(c, "kv", check)
}
