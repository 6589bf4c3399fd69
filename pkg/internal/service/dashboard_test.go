package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/service"
	kvc "github.com/yeisme/spacedash/pkg/internal/storage/kv"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/queue"
	"github.com/yeisme/spacedash/pkg/usage"
)

func TestDashboard_Build(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	env.register(t, alice, "report.pdf", 1024, base)
	env.register(t, alice, "holiday.jpg", 512, base.Add(time.Hour))
	env.register(t, alice, "song.mp3", 1536, base.Add(2*time.Hour))
	env.register(t, alice, "archive.zip", 100, base.Add(3*time.Hour))
	env.register(t, "bob@example.com", "other.pdf", 999, base)

	d, err := service.NewDashboardService(env.ctx).Build(env.ctx, alice)
	require.NoError(t, err)

	require.Len(t, d.Summary, 4)
	assert.Equal(t, "Documents", d.Summary[0].Title)
	assert.Equal(t, "1 KB", d.Summary[0].Size)
	assert.Equal(t, "Images", d.Summary[1].Title)
	assert.Equal(t, "512 Bytes", d.Summary[1].Size)
	assert.Equal(t, "Media", d.Summary[2].Title)
	assert.Equal(t, "1.5 KB", d.Summary[2].Size)
	assert.Equal(t, "Others", d.Summary[3].Title)
	assert.Equal(t, 1, d.Summary[3].Count)

	var sum int64
	for _, c := range d.Summary {
		sum += c.TotalSize
	}

	assert.Equal(t, int64(3172), d.Totals.Used)
	assert.Equal(t, d.Totals.Used, sum)
	assert.Equal(t, int64(2<<30), d.Totals.Quota)
	assert.False(t, d.Totals.OverQuota)

	require.Len(t, d.Recent, 4)
	assert.Equal(t, "archive.zip", d.Recent[0].Name)
	assert.Equal(t, "report.pdf", d.Recent[3].Name)
}

func TestDashboard_EmptyUser(t *testing.T) {
	env := newTestEnv(t)

	d, err := service.NewDashboardService(env.ctx).Build(env.ctx, alice)
	require.NoError(t, err)

	require.Len(t, d.Summary, 4)
	for _, c := range d.Summary {
		assert.Zero(t, c.TotalSize)
		assert.Equal(t, "0 Bytes", c.Size)
		assert.Nil(t, c.LatestAt)
	}

	assert.Zero(t, d.Totals.UsedFraction)
	assert.Empty(t, d.Recent)
}

func TestDashboard_SourceFailureIsNoData(t *testing.T) {
	env := newTestEnv(t)
	boom := errors.New("connection refused")

	svc := service.NewDashboardService(env.ctx,
		service.WithRecordSource(staticRecords{err: boom}),
		service.WithCache(nil),
	)

	_, err := svc.Build(env.ctx, alice)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNoData)
	assert.ErrorIs(t, err, boom)
}

func TestDashboard_InvalidRecord(t *testing.T) {
	env := newTestEnv(t)

	svc := service.NewDashboardService(env.ctx,
		service.WithRecordSource(staticRecords{records: []usage.FileRecord{{ID: "x", SizeBytes: -1}}}),
		service.WithCache(nil),
	)

	_, err := svc.Build(env.ctx, alice)
	assert.ErrorIs(t, err, usage.ErrInvalidRecord)
}

func TestDashboard_InvalidQuota(t *testing.T) {
	env := newTestEnv(t)

	svc := service.NewDashboardService(env.ctx,
		service.WithRecordSource(staticRecords{}),
		service.WithQuotaSource(staticQuota{store: service.StoreUsage{QuotaBytes: 0}}),
		service.WithCache(nil),
	)

	_, err := svc.Build(env.ctx, alice)
	assert.ErrorIs(t, err, usage.ErrInvalidQuota)
}

func TestDashboard_OverQuotaClamped(t *testing.T) {
	env := newTestEnv(t)

	svc := service.NewDashboardService(env.ctx,
		service.WithRecordSource(staticRecords{records: []usage.FileRecord{
			{ID: "a", Category: usage.CategoryImage, SizeBytes: 300},
		}}),
		service.WithQuotaSource(staticQuota{store: service.StoreUsage{QuotaBytes: 100}}),
		service.WithCache(nil),
	)

	d, err := svc.Build(env.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(300), d.Totals.Used)
	assert.Equal(t, 1.0, d.Totals.UsedFraction)
	assert.Equal(t, 100, d.Totals.UsedPercent)
	assert.True(t, d.Totals.OverQuota)
	assert.Zero(t, d.Totals.Available)
}

// countingRecords 统计调用次数.
type countingRecords struct {
	calls atomic.Int32
	delay time.Duration
	name  string
	size  int64
}

func (c *countingRecords) Name() string {
	if c.name == "" {
		return "counting"
	}

	return c.name
}

func (c *countingRecords) ListRecords(ctx context.Context, _ string) ([]usage.FileRecord, error) {
	c.calls.Add(1)

	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	size := c.size
	if size == 0 {
		size = 10
	}

	return []usage.FileRecord{{ID: "1", Category: usage.CategoryDocument, SizeBytes: size}}, nil
}

func TestDashboard_CacheAndInvalidate(t *testing.T) {
	env := newTestEnv(t)
	src := &countingRecords{}
	svc := service.NewDashboardService(env.ctx, service.WithRecordSource(src))

	for range 3 {
		_, err := svc.Build(env.ctx, alice)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), src.calls.Load())

	require.NoError(t, svc.Invalidate(env.ctx, alice))

	_, err := svc.Build(env.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestDashboard_ConcurrentBuildsCollapse(t *testing.T) {
	env := newTestEnv(t)
	src := &countingRecords{delay: 100 * time.Millisecond}
	svc := service.NewDashboardService(env.ctx, service.WithRecordSource(src))

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			d, err := svc.Build(env.ctx, alice)
			assert.NoError(t, err)
			assert.Equal(t, int64(10), d.Totals.Used)
		})
	}

	wg.Wait()
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestDashboard_RegisterInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewDashboardService(env.ctx)

	d, err := svc.Build(env.ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, d.Totals.Used)

	env.register(t, alice, "notes.txt", 2048, time.Now())

	d, err = svc.Build(env.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), d.Totals.Used)
	assert.Equal(t, "2 KB", d.Summary[0].Size)
}

func TestDashboard_PublishesComputed(t *testing.T) {
	env := newTestEnv(t, func(c *configs.AppConfig) { c.Events.Usage.Computed = true })

	ctx, cancel := context.WithTimeout(env.ctx, 5*time.Second)
	defer cancel()

	ch, err := env.mgr.MQ.Subscribe(ctx, queue.TopicUsageComputed)
	require.NoError(t, err)

	env.register(t, alice, "a.png", 10, time.Now())

	_, err = service.NewDashboardService(env.ctx).Build(env.ctx, alice)
	require.NoError(t, err)

	select {
	case msg := <-ch:
		msg.Ack()

		hdr, err := queue.ParseHeader(msg)
		require.NoError(t, err)
		assert.Equal(t, alice, hdr.User)
	case <-ctx.Done():
		t.Fatal("usage computed event not published")
	}
}

func TestDashboard_DefaultPaging(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 7 {
		env.register(t, alice, string(rune('a'+i))+".txt", 1, base.Add(time.Duration(i)*time.Minute))
	}

	records, err := service.NewDBRecordSource(env.mgr.DB, 3).ListRecords(env.ctx, alice)
	require.NoError(t, err)
	assert.Len(t, records, 7)
}

func TestDashboard_CancelledCallerDoesNotFailOthers(t *testing.T) {
	env := newTestEnv(t)
	src := &countingRecords{delay: 200 * time.Millisecond}
	svc := service.NewDashboardService(env.ctx, service.WithRecordSource(src))

	first, cancel := context.WithCancel(env.ctx)

	var (
		wg       sync.WaitGroup
		firstErr error
	)

	wg.Go(func() {
		_, firstErr = svc.Build(first, alice)
	})

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	var (
		second    types.Dashboard
		secondErr error
	)

	wg.Go(func() {
		second, secondErr = svc.Build(env.ctx, alice)
	})

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()

	require.ErrorIs(t, firstErr, service.ErrNoData)
	assert.ErrorIs(t, firstErr, context.Canceled)

	require.NoError(t, secondErr)
	assert.Equal(t, int64(10), second.Totals.Used)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestDashboard_CollapseKeyedBySource(t *testing.T) {
	env := newTestEnv(t)

	otherKV, err := kvc.New(env.ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = otherKV.Close() })

	small := &countingRecords{delay: 50 * time.Millisecond, name: "small", size: 10}
	large := &countingRecords{delay: 50 * time.Millisecond, name: "large", size: 4096}

	a := service.NewDashboardService(env.ctx, service.WithRecordSource(small))
	b := service.NewDashboardService(env.ctx, service.WithRecordSource(large),
		service.WithCache(service.DashboardCache(otherKV)))

	var (
		wg     sync.WaitGroup
		da, db types.Dashboard
		ea, eb error
	)

	wg.Go(func() { da, ea = a.Build(env.ctx, alice) })
	wg.Go(func() { db, eb = b.Build(env.ctx, alice) })
	wg.Wait()

	require.NoError(t, ea)
	require.NoError(t, eb)
	assert.Equal(t, int64(10), da.Totals.Used)
	assert.Equal(t, int64(4096), db.Totals.Used)
	assert.Equal(t, int32(1), small.calls.Load())
	assert.Equal(t, int32(1), large.calls.Load())
}
