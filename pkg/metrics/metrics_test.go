package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/metrics"
	"github.com/yeisme/spacedash/pkg/usage"
)

// TestObserveUsage 测试用量指标刷新与导出.
func TestObserveUsage(t *testing.T) {
	cfg := configs.MetricsConfig{Enabled: true, Path: "/metrics"}
	if err := metrics.InitMetrics(cfg); err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}
	// 重复初始化不应报错
	if err := metrics.InitMetrics(cfg); err != nil {
		t.Fatalf("InitMetrics twice: %v", err)
	}

	totals := usage.TotalsFor(512, 1024)
	sums := usage.Summaries{usage.CategoryImage: {Category: usage.CategoryImage, TotalSizeBytes: 512, ElementCount: 1}}
	metrics.ObserveUsage("u@example.com", totals, sums)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	metrics.Register(r, cfg, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{
		`spacedash_usage_category_bytes{category="image",user="u@example.com"} 512`,
		`spacedash_usage_used_ratio{user="u@example.com"} 0.5`,
		`spacedash_usage_quota_bytes{user="u@example.com"} 1024`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}
