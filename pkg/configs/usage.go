package configs

import (
	"time"

	"github.com/spf13/viper"

	"github.com/yeisme/spacedash/pkg/usage"
)

const (
	DefaultQuota        = "2 GB"      // 默认配额
	DefaultCacheTTL     = time.Minute // 仪表盘缓存时间
	DefaultRecentLimit  = 10          // 最近文件数量
	DefaultSnapshotCron = "0 * * * *" // 每小时记录一次用量快照
	DefaultHistoryDays  = 30          // 用量历史默认天数
	DefaultBuildTimeout = 30 * time.Second
)

// UsageConfig 用量统计配置.
type UsageConfig struct {
	// Source 文件记录来源: db 或 s3
	Source       string            `mapstructure:"source"        rule:"oneof=db s3"`
	DefaultQuota string            `mapstructure:"default_quota" rule:"required,size"`
	Categories   []string          `mapstructure:"categories"    rule:"dive,category"`
	Fallback     string            `mapstructure:"fallback"      rule:"category"`
	Extensions   map[string]string `mapstructure:"extensions"    rule:"dive,category"` // 扩展名 -> 分类
	CacheTTL     time.Duration     `mapstructure:"cache_ttl"`
	RecentLimit  int               `mapstructure:"recent_limit"  rule:"min=1,max=100"`
	SnapshotCron string            `mapstructure:"snapshot_cron"`
	HistoryDays  int               `mapstructure:"history_days"  rule:"min=1,max=365"`
	// BuildTimeout 合并后的仪表盘构建不随单个请求取消，由该超时兜底
	BuildTimeout time.Duration `mapstructure:"build_timeout"`
	// DriftWarn 数据源上报的已用字节与记录求和不一致时告警
	DriftWarn bool `mapstructure:"drift_warn"`
}

// DefaultQuotaBytes 默认配额字节数，解析失败时退回 2 GiB.
func (c *UsageConfig) DefaultQuotaBytes() int64 {
	n, err := usage.ParseSize(c.DefaultQuota)
	if err != nil || n <= 0 {
		return 2 << 30
	}

	return n
}

// BuildTimeoutOrDefault 未配置时使用 DefaultBuildTimeout.
func (c *UsageConfig) BuildTimeoutOrDefault() time.Duration {
	if c.BuildTimeout <= 0 {
		return DefaultBuildTimeout
	}

	return c.BuildTimeout
}

// AggregatorOptions 将配置转换为聚合器选项，无效分类会被忽略.
func (c *UsageConfig) AggregatorOptions() []usage.Option {
	var opts []usage.Option

	cats := make([]usage.Category, 0, len(c.Categories))
	for _, s := range c.Categories {
		if cat, ok := usage.ParseCategory(s); ok {
			cats = append(cats, cat)
		}
	}
	if len(cats) > 0 {
		opts = append(opts, usage.WithCategories(cats...))
	}

	if cat, ok := usage.ParseCategory(c.Fallback); ok {
		opts = append(opts, usage.WithFallback(cat))
	}

	return opts
}

// Classifier 根据扩展名配置构造分类器.
func (c *UsageConfig) Classifier() usage.Classifier {
	ext := make(map[string]usage.Category, len(c.Extensions))
	for k, v := range c.Extensions {
		if cat, ok := usage.ParseCategory(v); ok {
			ext[k] = cat
		}
	}

	return usage.NewClassifier(ext)
}

func (c *UsageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("usage.source", "db")
	v.SetDefault("usage.default_quota", DefaultQuota)
	v.SetDefault("usage.categories", []string{"document", "image", "media", "other"})
	v.SetDefault("usage.fallback", "other")
	v.SetDefault("usage.extensions", map[string]string{})
	v.SetDefault("usage.cache_ttl", DefaultCacheTTL)
	v.SetDefault("usage.recent_limit", DefaultRecentLimit)
	v.SetDefault("usage.snapshot_cron", DefaultSnapshotCron)
	v.SetDefault("usage.history_days", DefaultHistoryDays)
	v.SetDefault("usage.build_timeout", DefaultBuildTimeout)
	v.SetDefault("usage.drift_warn", true)
}
