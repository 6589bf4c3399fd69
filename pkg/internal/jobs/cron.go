// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	"github.com/yeisme/spacedash/pkg/log"
	"github.com/yeisme/spacedash/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按 usage.snapshot_cron（默认每小时）为所有用户记录用量快照
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager, cfg configs.UsageConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if mgr == nil {
		return errors.New("storage manager is nil")
	}

	cron := cfg.SnapshotCron
	if cron == "" {
		cron = configs.DefaultSnapshotCron
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if err := sched.AddCron(JobUsageSnapshot, cron, RunUsageSnapshot, baseCtx); err != nil {
		return fmt.Errorf("register %s: %w", JobUsageSnapshot, err)
	}

	return nil
}

// RunUsageSnapshot 为所有登记过文件的用户记录快照.
func RunUsageSnapshot(ctx context.Context) {
	l := log.Logger().With().Str("job", JobUsageSnapshot).Logger()
	start := time.Now()

	n, err := service.NewSnapshotService(ctx).CaptureAll(ctx)
	if err != nil {
		l.Error().Err(err).Int("captured", n).Msg("usage snapshot finished with errors")
		return
	}

	l.Info().Int("captured", n).Dur("took", time.Since(start)).Msg("usage snapshot done")
}
