package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/usage"
)

func TestQuotaService(t *testing.T) {
	env := newTestEnv(t, func(c *configs.AppConfig) { c.Usage.DefaultQuota = "1 MB" })
	svc := service.NewQuotaService(env.ctx)

	q, err := svc.Get(env.ctx, alice)
	require.NoError(t, err)
	assert.True(t, q.Default)
	assert.Equal(t, int64(1<<20), q.Bytes)
	assert.Equal(t, "1 MB", q.Text)

	_, err = svc.Set(env.ctx, alice, 0)
	assert.ErrorIs(t, err, usage.ErrInvalidQuota)

	q, err = svc.Set(env.ctx, alice, 5<<30)
	require.NoError(t, err)
	assert.Equal(t, "5 GB", q.Text)

	// 覆盖已有配额
	_, err = svc.Set(env.ctx, alice, 3<<30)
	require.NoError(t, err)

	q, err = svc.Get(env.ctx, alice)
	require.NoError(t, err)
	assert.False(t, q.Default)
	assert.Equal(t, int64(3<<30), q.Bytes)
}

func TestQuotaService_AffectsDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, alice, "big.mov", 2048, time.Now())

	dash := service.NewDashboardService(env.ctx)

	d, err := dash.Build(env.ctx, alice)
	require.NoError(t, err)
	assert.False(t, d.Totals.OverQuota)

	_, err = service.NewQuotaService(env.ctx).Set(env.ctx, alice, 1024)
	require.NoError(t, err)

	d, err = dash.Build(env.ctx, alice)
	require.NoError(t, err)
	assert.True(t, d.Totals.OverQuota)
	assert.Equal(t, 1.0, d.Totals.UsedFraction)
}
