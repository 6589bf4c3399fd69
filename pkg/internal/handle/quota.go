package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/usage"
)

// GetQuota 返回当前用户配额.
//
//	@Summary	查询配额
//	@Tags		配额
//	@Produce	json
//	@Success	200	{object}	types.QuotaResponse
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/quota [get]
func GetQuota(c *gin.Context) {
	doUsage(c, "get quota failed", func(user string) (any, error) {
		return service.NewQuotaService(c.Request.Context()).Get(c.Request.Context(), user)
	})
}

// SetQuota 设置当前用户配额，大小使用可读格式，如 "5 GB".
//
//	@Summary	设置配额
//	@Tags		配额
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.SetQuotaRequest	true	"配额"
//	@Success	200		{object}	types.QuotaResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	422		{object}	map[string]string
//	@Router		/api/v1/quota [put]
func SetQuota(c *gin.Context) {
	var req types.SetQuotaRequest
	if !bindJSON(c, &req) {
		return
	}

	doUsage(c, "set quota failed", func(user string) (any, error) {
		bytes, err := usage.ParseSize(req.Size)
		if err != nil {
			return nil, err
		}

		return service.NewQuotaService(c.Request.Context()).Set(c.Request.Context(), user, bytes)
	})
}
