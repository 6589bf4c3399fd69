package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/types"
)

// GetDashboard 返回完整仪表盘：分类卡片、总量与配额、最近文件.
//
//	@Summary	用量仪表盘
//	@Tags		用量
//	@Produce	json
//	@Param		X-User	header		string	false	"用户邮箱"
//	@Success	200		{object}	types.Dashboard
//	@Failure	400		{object}	map[string]string
//	@Failure	422		{object}	map[string]string
//	@Failure	503		{object}	map[string]string
//	@Router		/api/v1/dashboard [get]
func GetDashboard(c *gin.Context) {
	doUsage(c, "dashboard failed", func(user string) (any, error) {
		return service.NewDashboardService(c.Request.Context()).Build(c.Request.Context(), user)
	})
}

// GetUsageSummary 返回按展示顺序排列的分类卡片.
//
//	@Summary	分类汇总
//	@Tags		用量
//	@Produce	json
//	@Success	200	{object}	types.SummaryResponse
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/usage/summary [get]
func GetUsageSummary(c *gin.Context) {
	doUsage(c, "usage summary failed", func(user string) (any, error) {
		d, err := service.NewDashboardService(c.Request.Context()).Build(c.Request.Context(), user)
		if err != nil {
			return nil, err
		}

		return types.SummaryResponse{User: user, Summary: d.Summary}, nil
	})
}

// GetUsageTotals 返回已用、配额与占比.
//
//	@Summary	用量总计
//	@Tags		用量
//	@Produce	json
//	@Success	200	{object}	types.Totals
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/usage/totals [get]
func GetUsageTotals(c *gin.Context) {
	doUsage(c, "usage totals failed", func(user string) (any, error) {
		d, err := service.NewDashboardService(c.Request.Context()).Build(c.Request.Context(), user)
		if err != nil {
			return nil, err
		}

		return d.Totals, nil
	})
}

// GetUsageHistory 返回最近 N 天的用量快照.
//
//	@Summary	用量历史
//	@Tags		用量
//	@Produce	json
//	@Param		days	query		int	false	"天数，1-365"
//	@Success	200		{object}	types.HistoryResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	503		{object}	map[string]string
//	@Router		/api/v1/usage/history [get]
func GetUsageHistory(c *gin.Context) {
	var q types.HistoryQuery
	if !bindQuery(c, &q) {
		return
	}

	doUsage(c, "usage history failed", func(user string) (any, error) {
		return service.NewSnapshotService(c.Request.Context()).History(c.Request.Context(), user, q.Days)
	})
}

// CaptureUsage 立即记录一次当前用户的用量快照.
//
//	@Summary	记录用量快照
//	@Tags		用量
//	@Produce	json
//	@Success	200	{object}	types.HistoryPoint
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/usage/snapshot [post]
func CaptureUsage(c *gin.Context) {
	doUsage(c, "capture snapshot failed", func(user string) (any, error) {
		snap, err := service.NewSnapshotService(c.Request.Context()).Capture(c.Request.Context(), user)
		if err != nil {
			return nil, err
		}

		return service.HistoryPointOf(snap), nil
	})
}
