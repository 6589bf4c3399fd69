package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/spacedash/pkg/configs"
	"github.com/yeisme/spacedash/pkg/usage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return dir
}

// TestDefault 测试默认值.
func TestDefault(t *testing.T) {
	cfg := configs.Default()

	assert.Equal(t, configs.DefaultPort, cfg.Server.Port)
	assert.Equal(t, configs.SQLite, cfg.DB.Type)
	assert.Equal(t, configs.KVTypeMemory, cfg.KV.Type)
	assert.Equal(t, configs.MQTypeMemory, cfg.MQ.Type)
	assert.Equal(t, time.Minute, cfg.Usage.CacheTTL)
	assert.Equal(t, configs.DefaultBuildTimeout, cfg.Usage.BuildTimeoutOrDefault())
	assert.Equal(t, int64(2<<30), cfg.Usage.DefaultQuotaBytes())
	assert.Equal(t, "X-User", cfg.Auth.Header)
	assert.NoError(t, cfg.Validate())
}

// TestInitConfig_File 测试从目录读取配置文件.
func TestInitConfig_File(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9100
  reload_config: false
usage:
  default_quota: 5 GB
  cache_ttl: 30s
  fallback: documents
  extensions:
    psd: image
`)

	require.NoError(t, configs.InitConfig(dir))

	cfg := configs.GetConfig()
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, int64(5<<30), cfg.Usage.DefaultQuotaBytes())
	assert.Equal(t, 30*time.Second, cfg.Usage.CacheTTL)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), configs.ConfigFile())

	agg := usage.New(cfg.Usage.AggregatorOptions()...)
	assert.Equal(t, usage.CategoryDocument, agg.Fallback())
	assert.Equal(t, usage.CategoryImage, cfg.Usage.Classifier()("layers.psd", ""))
}

// TestInitConfig_Env 测试环境变量覆盖.
func TestInitConfig_Env(t *testing.T) {
	t.Setenv("SPACEDASH_SERVER_PORT", "9200")
	t.Setenv("SPACEDASH_USAGE_RECENT_LIMIT", "25")

	require.NoError(t, configs.InitConfig(""))

	cfg := configs.GetConfig()
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Usage.RecentLimit)
	assert.Empty(t, configs.ConfigFile())
}

// TestInitConfig_Invalid 测试非法配置被拒绝.
func TestInitConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad quota":    "server:\n  reload_config: false\nusage:\n  default_quota: plenty\n",
		"bad category": "server:\n  reload_config: false\nusage:\n  fallback: archive\n",
		"bad source":   "server:\n  reload_config: false\nusage:\n  source: ftp\n",
		"bad port":     "server:\n  port: 0\n  reload_config: false\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			err := configs.InitConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
