package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
	Usage   UsageEvents      `mapstructure:"usage"`
}

// FileEventsConfig 文件元数据变更事件。
type FileEventsConfig struct {
	Registered bool `mapstructure:"registered"`
	Deleted    bool `mapstructure:"deleted"`
}

// UsageEvents 用量相关事件。
type UsageEvents struct {
	Computed      bool `mapstructure:"computed"`
	QuotaExceeded bool `mapstructure:"quota_exceeded"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	// 文件事件驱动缓存失效，默认开启
	v.SetDefault("events.file.registered", true)
	v.SetDefault("events.file.deleted", true)

	// 每次统计都会产生 computed 事件，量可能较大，默认关闭
	v.SetDefault("events.usage.computed", false)
	v.SetDefault("events.usage.quota_exceeded", true)
}
