// Package configs 管理应用程序配置，包括数据库、对象存储、队列、缓存与用量统计的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing usage config:
//
//	usageCfg := configs.GetConfig().Usage
//	quota := usageCfg.DefaultQuotaBytes()
//	fmt.Println("quota:", quota)
//
// 环境变量以 SPACEDASH_ 为前缀，层级用下划线分隔，例如 SPACEDASH_SERVER_PORT=9000.
package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/spacedash/pkg/rule"
)

// AppVersion 应用版本，构建时可通过 -ldflags 覆盖.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀.
const EnvPrefix = "SPACEDASH"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // 服务器配置，端口、超时等
		Log            LogConfig            `mapstructure:"log"`             // 日志相关配置
		DB             DBConfig             `mapstructure:"db"`              // 文件元数据库
		S3             S3Config             `mapstructure:"s3"`              // 对象存储
		MQ             MQConfig             `mapstructure:"mq"`              // 消息队列
		KV             KVConfig             `mapstructure:"kv"`              // 缓存
		Tracing        TracingConfig        `mapstructure:"tracing"`         // 链路追踪
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // 指标
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // 数据源熔断
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // 接口限流
		Events         EventsConfig         `mapstructure:"events"`          // 事件开关
		Auth           AuthConfig           `mapstructure:"auth"`            // 用户识别
		Usage          UsageConfig          `mapstructure:"usage"`           // 用量统计
	}
)

// defaulter 每个配置段负责注册自己的默认值.
type defaulter interface {
	setDefaults(v *viper.Viper)
}

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// mu 保护热重载时的并发读写.
	mu sync.RWMutex
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 为空或找不到配置文件时仅使用默认值与环境变量.
func InitConfig(path string) error {
	v := viper.New()
	setAllDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := locateConfig(v, path)
	if found {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	globalConfig = cfg
	appViper = v
	mu.Unlock()

	if found {
		reloadConfigs(v, cfg.Server.ReloadConfig)
	}

	return nil
}

// locateConfig 定位配置文件，找到返回 true.
func locateConfig(v *viper.Viper, path string) bool {
	if path == "" {
		return false
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，Viper 会根据扩展名自动检测类型
		v.SetConfigFile(path)

		return true
	}

	exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}
	for _, dir := range []string{path, filepath.Join(path, "configs")} {
		for _, ext := range exts {
			cfg := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				return true
			}
		}
	}

	return false
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	sections := []defaulter{
		&ServerConfig{},
		&LogConfig{},
		&DBConfig{},
		&S3Config{},
		&MQConfig{},
		&KVConfig{},
		&TracingConfig{},
		&MetricsConfig{},
		&CircuitBreakerConfig{},
		&RateLimitConfig{},
		&EventsConfig{},
		&AuthConfig{},
		&UsageConfig{},
	}

	for _, s := range sections {
		s.setDefaults(v)
	}
}

// Validate 使用 rule 标签校验关键配置段.
func (c *AppConfig) Validate() error {
	for name, section := range map[string]any{
		"server": c.Server,
		"usage":  c.Usage,
	} {
		if err := rule.ValidateStruct(section); err != nil {
			return fmt.Errorf("invalid %s config: %v", name, rule.Errors(err))
		}
	}

	return nil
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载，校验失败时保留旧配置
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("Rejected reloaded config: %v\n", err)
			return
		}

		mu.Lock()
		globalConfig = cfg
		mu.Unlock()
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置快照.
func GetConfig() *AppConfig {
	mu.RLock()
	defer mu.RUnlock()

	cfg := globalConfig

	return &cfg
}

// SetConfig 替换全局配置，主要用于测试.
func SetConfig(cfg AppConfig) {
	mu.Lock()
	globalConfig = cfg
	mu.Unlock()
}

// Default 返回仅包含默认值的配置.
func Default() AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return cfg
}

// GetViper 返回全局 Viper 实例.
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()

	return appViper
}

// ConfigFile 返回当前使用的配置文件路径，未使用文件时为空.
func ConfigFile() string {
	if v := GetViper(); v != nil {
		return v.ConfigFileUsed()
	}

	return ""
}
