// Package handle 提供 HTTP 请求处理器，负责参数解析、用户识别与错误到状态码的映射.
package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/middleware"
	"github.com/yeisme/spacedash/pkg/rule"
	"github.com/yeisme/spacedash/pkg/usage"
)

// DevUser 非 release 模式下缺省的测试用户.
const DevUser = "test-user@example.com"

func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"message": "Not Implemented"})
}

// checkUser 取得当前请求的用户：中间件已识别的优先，其次按 auth 配置重新读取请求，
// 非 release 模式下缺省为测试用户.
func checkUser(c *gin.Context) (string, error) {
	if user, ok := middleware.GetUser(c); ok {
		return user, nil
	}

	user := middleware.ResolveUser(c, configs.GetConfig().Auth)
	if user == "" && gin.Mode() != gin.ReleaseMode {
		user = DevUser
	}

	if user == "" {
		return "", service.ErrUserRequired
	}

	if err := rule.ValidateUser(user); err != nil {
		return "", err
	}

	return user, nil
}

// doUsage 是一个通用封装：
//  1. 统一抽取并校验用户
//  2. 调用业务回调
//  3. 统一错误映射与 JSON 输出
func doUsage(c *gin.Context, errLogMsg string, fn func(user string) (any, error)) {
	user, err := checkUser(c)
	if err != nil {
		writeError(c, err, "invalid user")
		return
	}

	data, err := fn(user)
	if err != nil {
		writeError(c, err, errLogMsg)
		return
	}

	c.JSON(http.StatusOK, data)
}

// bindQuery 绑定并校验查询参数，失败时已写出 400.
func bindQuery[T any](c *gin.Context, q *T) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		badRequest(c, err)
		return false
	}

	if err := rule.ValidateStruct(q); err != nil {
		writeError(c, err, "")
		return false
	}

	return true
}

// bindJSON 绑定并校验请求体，失败时已写出 400.
func bindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err)
		return false
	}

	if err := rule.ValidateStruct(req); err != nil {
		writeError(c, err, "")
		return false
	}

	return true
}

// badRequest 输出绑定错误，校验错误带字段详情.
func badRequest(c *gin.Context, err error) {
	if rule.Errors(err) != nil {
		writeError(c, err, "")
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// StatusOf 将错误映射为 HTTP 状态码.
func StatusOf(err error) int {
	switch {
	case rule.Errors(err) != nil, errors.Is(err, service.ErrUserRequired):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrFileExists):
		return http.StatusConflict
	case errors.Is(err, usage.ErrInvalidRecord), errors.Is(err, usage.ErrInvalidQuota), errors.Is(err, usage.ErrInvalidSize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoData):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError 输出错误响应，5xx 记录日志.
func writeError(c *gin.Context, err error, logMsg string) {
	status := StatusOf(err)

	body := gin.H{"error": err.Error()}
	if details := rule.Errors(err); details != nil {
		body = gin.H{"error": "validation failed", "details": details}
	}

	if status >= http.StatusInternalServerError {
		if logMsg == "" {
			logMsg = "request failed"
		}

		l := ctxPkg.Logger(c.Request.Context(), "handle")
		l.Error().Err(err).Int("status", status).Msg(logMsg)
		_ = c.Error(err)
	}

	c.JSON(status, body)
}
