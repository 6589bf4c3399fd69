package configs

import "github.com/spf13/viper"

// AuthConfig 控制请求用户的识别方式（优先读取反向代理注入的请求头）。
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 开启用户校验
	Header        string   `mapstructure:"header"`          // 携带用户标识的请求头
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过校验的路径前缀
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 允许用 ?user= 便于本地调试
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.header", "X-User")
	v.SetDefault("auth.dev_allow_query", true)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/api/v1/scheduler",
		"/swagger",
	})
}
