package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/spacedash/pkg/configs"
)

const (
	cleanupInterval   = 10 * time.Minute
	maxLimiterEntries = 10000
)

// RateLimitMiddleware 返回一个基于配置的限流中间件.
// key 取值: global、ip、user（需在 AuthMiddleware 之后）、header:Header-Name；取不到键时回退到客户端 IP.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "global" || keyMode == "" {
		limiter := rate.NewLimiter(cfg.Limit(), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}

			c.Next()
		}
	}

	lims := newLimiterSet(cfg.Limit(), cfg.Burst)

	return func(c *gin.Context) {
		if !lims.get(limitKey(c, keyMode)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "rate limit exceeded, request too frequent, please try again later"})

			return
		}

		c.Next()
	}
}

// limiterSet 按键保存限流器，条目过多时整体重置.
type limiterSet struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	swept    time.Time
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		swept:    time.Now(),
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.swept) > cleanupInterval && len(s.limiters) > maxLimiterEntries {
		s.limiters = make(map[string]*rate.Limiter)
		s.swept = time.Now()
	}

	l, ok := s.limiters[key]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = l
	}

	return l
}

func limitKey(c *gin.Context, keyMode string) string {
	var key string

	switch {
	case strings.HasPrefix(keyMode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(keyMode, "header:"))
	case keyMode == "user":
		key, _ = GetUser(c)
	}

	if key == "" {
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
