package handle_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/internal/handle"
	"github.com/yeisme/spacedash/pkg/internal/model"
	"github.com/yeisme/spacedash/pkg/internal/router"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/storage"
	dbc "github.com/yeisme/spacedash/pkg/internal/storage/db"
	kvc "github.com/yeisme/spacedash/pkg/internal/storage/kv"
	mqc "github.com/yeisme/spacedash/pkg/internal/storage/mq"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/middleware"
	"github.com/yeisme/spacedash/pkg/rule"
	"github.com/yeisme/spacedash/pkg/usage"
)

const alice = "alice@example.com"

type server struct {
	engine *gin.Engine
	mgr    *storage.Manager
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := configs.Default()
	cfg.CircuitBreaker.Enabled = false
	cfg.Metrics.Enabled = false
	configs.SetConfig(cfg)
	t.Cleanup(func() { configs.SetConfig(configs.Default()) })

	ctx := context.Background()

	db, err := dbc.Open(ctx, sqlite.Open(filepath.Join(t.TempDir(), "handle.db")), dbc.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, model.All()...))

	kv, err := kvc.New(ctx, configs.KVConfig{Type: configs.KVTypeMemory})
	require.NoError(t, err)

	mq, err := mqc.New(ctx, configs.MQConfig{Type: configs.MQTypeMemory}, mqc.Options{})
	require.NoError(t, err)

	mgr := &storage.Manager{DB: db, KV: kv, MQ: mq}
	t.Cleanup(func() { _ = mgr.Close() })

	e := gin.New()
	e.Use(middleware.StorageMiddleware(mgr), middleware.AuthMiddleware(cfg.Auth))
	router.Register(e.Group("/api/v1"))

	return &server{engine: e, mgr: mgr}
}

func (s *server) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		b, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(b)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	if user != "" {
		req.Header.Set("X-User", user)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func TestDashboardFlow(t *testing.T) {
	s := newServer(t)

	for _, f := range []types.RegisterFileRequest{
		{Name: "report.pdf", Size: 1024},
		{Name: "holiday.jpg", Size: 512},
		{Name: "song.mp3", Size: 1536},
		{Name: "archive.zip", Size: 100},
	} {
		w := s.do(t, http.MethodPost, "/api/v1/files", alice, f)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/v1/dashboard", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	d := decode[types.Dashboard](t, w)
	assert.Equal(t, alice, d.User)
	assert.Equal(t, int64(3172), d.Totals.Used)
	assert.Equal(t, "3.1 KB", d.Totals.UsedText)
	require.Len(t, d.Summary, 4)
	assert.Equal(t, "Documents", d.Summary[0].Title)
	assert.Len(t, d.Recent, 4)

	w = s.do(t, http.MethodGet, "/api/v1/usage/summary", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[types.SummaryResponse](t, w).Summary, 4)

	w = s.do(t, http.MethodGet, "/api/v1/files/recent?limit=2", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	recent := decode[types.RecentFilesResponse](t, w)
	assert.Equal(t, 2, recent.Count)

	// 其他用户互不可见
	w = s.do(t, http.MethodGet, "/api/v1/usage/totals", "bob@example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[types.Totals](t, w).Used)
}

func TestUserIdentification(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/dashboard", "not-an-email", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// dev_allow_query 默认开启
	w = s.do(t, http.MethodGet, "/api/v1/dashboard?user="+alice, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterFileErrors(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "a.txt", Size: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "a.txt", Size: 1, Category: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Size: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "a.txt", Size: 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "a.txt", Size: 2})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteFile(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "a.txt", Size: 10})
	require.Equal(t, http.StatusCreated, w.Code)

	f := decode[types.RecentFile](t, w)

	w = s.do(t, http.MethodDelete, "/api/v1/files/"+f.ID, "bob@example.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/files/"+f.ID, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/usage/totals", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[types.Totals](t, w).Used)
}

func TestQuota(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/quota", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.QuotaResponse](t, w).Default)

	w = s.do(t, http.MethodPut, "/api/v1/quota", alice, types.SetQuotaRequest{Size: "nonsense"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/quota", alice, types.SetQuotaRequest{Size: "0"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/quota", alice, types.SetQuotaRequest{Size: "1 KB"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "1 KB", decode[types.QuotaResponse](t, w).Text)

	w = s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "big.bin", Size: 4096})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/usage/totals", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	totals := decode[types.Totals](t, w)
	assert.True(t, totals.OverQuota)
	assert.Equal(t, 1.0, totals.UsedFraction)
	assert.Equal(t, 100, totals.UsedPercent)
}

func TestUsageHistory(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/files", alice, types.RegisterFileRequest{Name: "a.png", Size: 2048})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/usage/snapshot", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/usage/history?days=7", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	h := decode[types.HistoryResponse](t, w)
	assert.Equal(t, 7, h.Days)
	require.Len(t, h.Points, 1)
	assert.Equal(t, int64(2048), h.Points[0].Used)
	assert.Equal(t, int64(2048), h.Points[0].Categories["image"])

	w = s.do(t, http.MethodGet, "/api/v1/usage/history?days=1000", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSourceUnavailable(t *testing.T) {
	s := newServer(t)

	require.NoError(t, s.mgr.DB.Close())

	w := s.do(t, http.MethodGet, "/api/v1/dashboard", alice, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/health/db", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	for path, want := range map[string]int{
		"/api/v1/health/db": http.StatusOK,
		"/api/v1/health/kv": http.StatusOK,
		"/api/v1/health/mq": http.StatusOK,
		"/api/v1/health/s3": http.StatusServiceUnavailable, // 未启用
	} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, want, w.Code, path)
	}
}

func TestStatusOf(t *testing.T) {
	validation := rule.ValidateVar("x", "email")

	tests := []struct {
		err  error
		want int
	}{
		{validation, http.StatusBadRequest},
		{service.ErrUserRequired, http.StatusBadRequest},
		{service.ErrFileNotFound, http.StatusNotFound},
		{service.ErrFileExists, http.StatusConflict},
		{fmt.Errorf("wrap: %w", usage.ErrInvalidRecord), http.StatusUnprocessableEntity},
		{usage.ErrInvalidQuota, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w", service.ErrNoData, errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, handle.StatusOf(tt.err), tt.err.Error())
	}
}
