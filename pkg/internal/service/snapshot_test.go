package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/queue"
)

func TestSnapshotService_CaptureAndHistory(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, alice, "a.pdf", 100, time.Now())
	env.register(t, alice, "b.png", 50, time.Now())
	env.register(t, "bob@example.com", "c.mp4", 7, time.Now())

	svc := service.NewSnapshotService(env.ctx)

	n, err := svc.CaptureAll(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	row, err := svc.Capture(env.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(150), row.UsedBytes)
	assert.Equal(t, int64(100), row.DocumentBytes)
	assert.Equal(t, int64(50), row.ImageBytes)
	assert.Equal(t, int64(2), row.FileCount)

	h, err := svc.History(env.ctx, alice, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, h.Days)
	require.Len(t, h.Points, 2)
	assert.Equal(t, int64(150), h.Points[1].Used)
	assert.Equal(t, int64(50), h.Points[1].Categories["image"])
}

func TestSnapshotService_QuotaExceeded(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(env.ctx, 5*time.Second)
	defer cancel()

	ch, err := env.mgr.MQ.Subscribe(ctx, queue.TopicUsageQuotaExceeded)
	require.NoError(t, err)

	env.register(t, alice, "huge.iso", 4096, time.Now())

	_, err = service.NewQuotaService(env.ctx).Set(env.ctx, alice, 1024)
	require.NoError(t, err)

	_, err = service.NewSnapshotService(env.ctx).Capture(env.ctx, alice)
	require.NoError(t, err)

	select {
	case msg := <-ch:
		msg.Ack()

		ev, err := queue.ParseQuotaExceeded(msg)
		require.NoError(t, err)
		assert.Equal(t, int64(4096), ev.Payload.UsedBytes)
		assert.Equal(t, int64(1024), ev.Payload.QuotaBytes)
	case <-ctx.Done():
		t.Fatal("quota exceeded event not published")
	}
}
