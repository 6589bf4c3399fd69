package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/configs"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/model"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	kvc "github.com/yeisme/spacedash/pkg/internal/storage/kv"
	mqc "github.com/yeisme/spacedash/pkg/internal/storage/mq"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/usage"
)

const alice = "alice@example.com"

// testEnv 基于 sqlite 文件库、内存 KV 与内存 MQ 的测试环境.
type testEnv struct {
	ctx context.Context
	mgr *storage.Manager
}

func newTestEnv(t *testing.T, mutate ...func(*configs.AppConfig)) *testEnv {
	t.Helper()

	cfg := configs.Default()
	cfg.CircuitBreaker.Enabled = false
	cfg.Metrics.Enabled = false

	for _, m := range mutate {
		m(&cfg)
	}

	configs.SetConfig(cfg)
	t.Cleanup(func() { configs.SetConfig(configs.Default()) })

	ctx := context.Background()

	db, err := dbc.Open(ctx, sqlite.Open(filepath.Join(t.TempDir(), "spacedash.db")), dbc.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, model.All()...))

	kv, err := kvc.New(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	require.NoError(t, err)

	mq, err := mqc.New(ctx, configs.MQConfig{Type: configs.MQTypeMemory}, mqc.Options{})
	require.NoError(t, err)

	mgr := &storage.Manager{DB: db, KV: kv, MQ: mq}
	t.Cleanup(func() { _ = mgr.Close() })

	return &testEnv{ctx: ctxPkg.WithStorageManager(ctx, mgr), mgr: mgr}
}

// register 登记文件并返回结果.
func (e *testEnv) register(t *testing.T, user, name string, size int64, at time.Time) types.RecentFile {
	t.Helper()

	f, err := service.NewFileService(e.ctx).Register(e.ctx, user, types.RegisterFileRequest{
		Name:      name,
		Size:      size,
		CreatedAt: &at,
	})
	require.NoError(t, err)

	return f
}

// staticRecords 固定返回的记录源.
type staticRecords struct {
	records []usage.FileRecord
	err     error
}

func (s staticRecords) Name() string { return "static" }

func (s staticRecords) ListRecords(context.Context, string) ([]usage.FileRecord, error) {
	return s.records, s.err
}

// staticQuota 固定返回的配额源.
type staticQuota struct {
	store service.StoreUsage
	err   error
}

func (s staticQuota) Name() string { return "static-quota" }

func (s staticQuota) Usage(context.Context, string) (service.StoreUsage, error) {
	return s.store, s.err
}
