package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/metrics"
	"github.com/yeisme/spacedash/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoUser 返回中间件识别出的用户.
func echoUser(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	c.String(http.StatusOK, user)
}

func serve(e *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}

	return m.GetCounter().GetValue()
}

func TestAuthMiddleware(t *testing.T) {
	conf := configs.AuthConfig{
		Enabled:       true,
		Header:        "X-User",
		SkipPaths:     []string{"/health"},
		DevAllowQuery: true,
	}

	e := gin.New()
	e.Use(middleware.AuthMiddleware(conf))
	e.GET("/me", echoUser)
	e.GET("/health", echoUser)

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		code    int
		user    string
	}{
		{"header", "/me", map[string]string{"X-User": "alice@example.com"}, http.StatusOK, "alice@example.com"},
		{"header wins over proxy", "/me", map[string]string{"X-User": "alice@example.com", "X-Forwarded-Email": "bob@example.com"}, http.StatusOK, "alice@example.com"},
		{"proxy header", "/me", map[string]string{"X-Auth-Request-Email": "bob@example.com"}, http.StatusOK, "bob@example.com"},
		{"query", "/me?user=carol@example.com", nil, http.StatusOK, "carol@example.com"},
		{"missing", "/me", nil, http.StatusUnauthorized, ""},
		{"invalid", "/me", map[string]string{"X-User": "carol"}, http.StatusBadRequest, ""},
		{"skipped", "/health", nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(e, tt.path, tt.headers)
			assert.Equal(t, tt.code, w.Code)

			if tt.code == http.StatusOK {
				assert.Equal(t, tt.user, w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e := gin.New()
	e.Use(middleware.AuthMiddleware(configs.AuthConfig{Enabled: false}))
	e.GET("/me", echoUser)

	assert.Equal(t, http.StatusOK, serve(e, "/me", nil).Code)
	// 未开启 dev_allow_query 时忽略 query
	assert.Empty(t, serve(e, "/me?user=alice@example.com", nil).Body.String())
}

func TestRateLimitMiddleware_PerUser(t *testing.T) {
	e := gin.New()
	e.Use(
		middleware.AuthMiddleware(configs.AuthConfig{Header: "X-User"}),
		middleware.RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2, Key: "user"}),
	)
	e.GET("/me", echoUser)

	alice := map[string]string{"X-User": "alice@example.com"}
	bob := map[string]string{"X-User": "bob@example.com"}

	assert.Equal(t, http.StatusOK, serve(e, "/me", alice).Code)
	assert.Equal(t, http.StatusOK, serve(e, "/me", alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, "/me", alice).Code)

	// 其他用户有独立的配额
	assert.Equal(t, http.StatusOK, serve(e, "/me", bob).Code)
}

func TestRateLimitMiddleware_Global(t *testing.T) {
	e := gin.New()
	e.Use(middleware.RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1, Key: "global"}))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, "/", nil).Code)
}

func TestCircuitBreakerMiddleware(t *testing.T) {
	e := gin.New()
	e.Use(middleware.CircuitBreakerMiddleware(configs.CircuitBreakerConfig{
		Enabled:           true,
		FailureRate:       0.5,
		MinRequests:       3,
		IntervalSeconds:   60,
		TimeoutSeconds:    60,
		MaxRequestsInHalf: 1,
	}))
	e.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	e.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	for range 3 {
		assert.Equal(t, http.StatusInternalServerError, serve(e, "/fail", nil).Code)
	}

	// 熔断打开后所有请求直接 503
	assert.Equal(t, http.StatusServiceUnavailable, serve(e, "/ok", nil).Code)
}

func TestPrometheusMiddleware_RouteLabel(t *testing.T) {
	e := gin.New()
	e.Use(middleware.PrometheusMiddleware())
	e.GET("/api/v1/files/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := counterValue(metrics.RequestCounter.WithLabelValues(http.MethodGet, "/api/v1/files/:id", "204"))

	serve(e, "/api/v1/files/a", nil)
	serve(e, "/api/v1/files/b", nil)
	serve(e, "/nowhere", nil)

	assert.Equal(t, before+2, counterValue(metrics.RequestCounter.WithLabelValues(http.MethodGet, "/api/v1/files/:id", "204")))
	assert.Equal(t, 1.0, counterValue(metrics.RequestCounter.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
