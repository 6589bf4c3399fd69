package configs

import (
	"golang.org/x/time/rate"

	"github.com/spf13/viper"
)

const (
	// 默认速率限制配置.
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 20.0
	DefaultRateLimitBurst   = 40
	DefaultRateLimitKey     = "user"
)

// RateLimitConfig 速率限制配置，统计接口按用户限流以保护数据源.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`   // 每秒允许的请求数
	Burst   int     `mapstructure:"burst"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、user（按用户）、header:Header-Name（按请求头）
	Key string `mapstructure:"key"`
}

// Limit 返回 rate.Limit，RPS <= 0 时不限速.
func (c *RateLimitConfig) Limit() rate.Limit {
	if c.RPS <= 0 {
		return rate.Inf
	}

	return rate.Limit(c.RPS)
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
}
