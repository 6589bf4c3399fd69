package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/scheduler"
)

type ctxKey struct{}

func TestScheduler_AddCronAndRunNow(t *testing.T) {
	s, err := scheduler.NewScheduler()
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	var (
		runs atomic.Int32
		seen atomic.Value
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "injected")
	err = s.AddCron("test.job", "0 0 1 1 *", func(ctx context.Context) {
		seen.Store(ctx.Value(ctxKey{}))
		runs.Add(1)
	}, ctx)
	require.NoError(t, err)

	// 同名任务不能重复添加
	require.Error(t, s.AddCron("test.job", "* * * * *", func(context.Context) {}, ctx))

	require.NoError(t, s.RunNow("test.job"))

	assert.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("test.job")
		return err == nil && info.Runs == 1 && info.Status == scheduler.StatusScheduled
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, "injected", seen.Load())

	infos := s.GetJobInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, "0 0 1 1 *", infos[0].CronExpr)
	assert.False(t, infos[0].LastSuccess.IsZero())

	name, ok := s.Lookup(infos[0].ID)
	assert.True(t, ok)
	assert.Equal(t, "test.job", name)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)
}

func TestScheduler_PanicMarksError(t *testing.T) {
	s, err := scheduler.NewScheduler()
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.NoError(t, s.AddCron("boom", "0 0 1 1 *", func(context.Context) { panic("bad") }, context.Background()))
	require.NoError(t, s.RunNow("boom"))

	assert.Eventually(t, func() bool {
		info, err := s.GetJobInfoByName("boom")
		return err == nil && info.Status == scheduler.StatusError && info.Error != "" && info.Runs == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestScheduler_Remove(t *testing.T) {
	s, err := scheduler.NewScheduler()
	require.NoError(t, err)
	defer s.Stop()

	require.NoError(t, s.AddCron("gone", "* * * * *", func(context.Context) {}, context.Background()))
	require.NoError(t, s.RemoveJobByName("gone"))

	_, err = s.GetJobInfoByName("gone")
	assert.Error(t, err)
	assert.Error(t, s.RunNow("gone"))
	assert.Error(t, s.RemoveJobByName("gone"))
}
