package jobs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/jobs"
	"github.com/yeisme/spacedash/pkg/internal/model"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	kvc "github.com/yeisme/spacedash/pkg/internal/storage/kv"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/scheduler"
)

func newManager(t *testing.T) *storage.Manager {
	t.Helper()

	cfg := configs.Default()
	cfg.CircuitBreaker.Enabled = false
	cfg.Metrics.Enabled = false
	configs.SetConfig(cfg)
	t.Cleanup(func() { configs.SetConfig(configs.Default()) })

	ctx := context.Background()

	db, err := dbc.Open(ctx, sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), dbc.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, model.All()...))

	kv, err := kvc.New(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	require.NoError(t, err)

	mgr := &storage.Manager{DB: db, KV: kv}
	t.Cleanup(func() { _ = mgr.Close() })

	return mgr
}

func TestRegisterCronJobs(t *testing.T) {
	mgr := newManager(t)

	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)
	defer sched.Stop()

	require.NoError(t, jobs.RegisterCronJobs(sched, mgr, configs.UsageConfig{}))

	infos := sched.GetJobInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, jobs.JobUsageSnapshot, infos[0].Name)
	assert.Equal(t, configs.DefaultSnapshotCron, infos[0].CronExpr)

	// 重复注册失败
	assert.Error(t, jobs.RegisterCronJobs(sched, mgr, configs.UsageConfig{}))
	assert.Error(t, jobs.RegisterCronJobs(nil, mgr, configs.UsageConfig{}))
	assert.Error(t, jobs.RegisterCronJobs(sched, nil, configs.UsageConfig{}))
}

func TestRunUsageSnapshot(t *testing.T) {
	mgr := newManager(t)
	ctx := ctxPkg.WithStorageManager(context.Background(), mgr)

	files := service.NewFileService(ctx)
	for _, u := range []string{"alice@example.com", "bob@example.com"} {
		_, err := files.Register(ctx, u, types.RegisterFileRequest{Name: "notes.txt", Size: 100})
		require.NoError(t, err)
	}

	jobs.RunUsageSnapshot(ctx)

	var n int64
	require.NoError(t, mgr.DB.Model(&model.UsageSnapshot{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
