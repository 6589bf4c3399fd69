package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/model"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/metrics"
	"github.com/yeisme/spacedash/pkg/queue"
)

// SnapshotService 定期记录用量快照，并在超额时告警.
type SnapshotService struct {
	dashboard   *DashboardService
	files       *FileService
	dbClient    *dbc.Client
	events      queue.Publisher
	evCfg       configs.EventsConfig
	historyDays int
	now         func() time.Time
}

// NewSnapshotService opts 透传给内部的 DashboardService.
func NewSnapshotService(c context.Context, opts ...DashboardOption) *SnapshotService {
	cfg := configs.GetConfig()

	return &SnapshotService{
		dashboard:   NewDashboardService(c, opts...),
		files:       NewFileService(c),
		dbClient:    ctxPkg.GetDBClient(c),
		events:      publisherOf(ctxPkg.GetMQClient(c)),
		evCfg:       cfg.Events,
		historyDays: cfg.Usage.HistoryDays,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Capture 统计并保存一次用量快照.
func (s *SnapshotService) Capture(ctx context.Context, user string) (model.UsageSnapshot, error) {
	if s.dbClient == nil {
		return model.UsageSnapshot{}, ErrNoData
	}

	snap, err := s.dashboard.Compute(ctx, user)
	if err != nil {
		return model.UsageSnapshot{}, err
	}

	row := model.NewUsageSnapshot(user, snap.Totals, snap.Summaries, s.now())
	if err := s.dbClient.WithContext(ctx).Create(&row).Error; err != nil {
		return model.UsageSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	metrics.ObserveUsage(user, snap.Totals, snap.Summaries)

	if snap.Totals.OverQuota() && s.evCfg.Enabled && s.evCfg.Usage.QuotaExceeded && s.events != nil {
		payload := queue.QuotaExceededPayload{UsedBytes: snap.Totals.UsedBytes, QuotaBytes: snap.Totals.QuotaBytes}
		if err := queue.PublishQuotaExceeded(ctx, s.events, user, payload); err != nil {
			logger := ctxPkg.Logger(ctx, "snapshot")
			logger.Warn().Err(err).Str("user", user).Msg("publish quota exceeded failed")
		}
	}

	return row, nil
}

// CaptureAll 为所有登记过文件的用户记录快照，返回成功数量.
func (s *SnapshotService) CaptureAll(ctx context.Context) (int, error) {
	users, err := s.files.Users(ctx)
	if err != nil {
		return 0, err
	}

	var (
		n    int
		errs []error
	)

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return n, err
		}

		if _, err := s.Capture(ctx, u); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}

		n++
	}

	return n, errors.Join(errs...)
}

// History 返回最近 days 天的快照，days <= 0 时使用配置的默认值.
func (s *SnapshotService) History(ctx context.Context, user string, days int) (types.HistoryResponse, error) {
	if user == "" {
		return types.HistoryResponse{}, ErrUserRequired
	}

	if s.dbClient == nil {
		return types.HistoryResponse{}, ErrNoData
	}

	if days <= 0 {
		days = s.historyDays
	}

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)

	var rows []model.UsageSnapshot
	if err := s.dbClient.WithContext(ctx).
		Where(&model.UsageSnapshot{User: user}).
		Where("created_at >= ?", since).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return types.HistoryResponse{}, fmt.Errorf("%w: %w", ErrNoData, err)
	}

	points := make([]types.HistoryPoint, 0, len(rows))
	for i := range rows {
		points = append(points, HistoryPointOf(rows[i]))
	}

	return types.HistoryResponse{User: user, Days: days, Points: points}, nil
}

// HistoryPointOf 将快照行转换为接口输出.
func HistoryPointOf(row model.UsageSnapshot) types.HistoryPoint {
	cats := make(map[string]int64, 4)
	for c, b := range row.CategoryBytes() {
		cats[string(c)] = b
	}

	return types.HistoryPoint{
		At:         row.CreatedAt,
		Used:       row.UsedBytes,
		Quota:      row.QuotaBytes,
		FileCount:  row.FileCount,
		Categories: cats,
	}
}
