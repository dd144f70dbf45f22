package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFromOverridesDefaults(t *testing.T) {
	content := `
storage:
  bucket: custom-bucket
  default_policy: permanent
  ttl_hours: 24
dispatch:
  worker_count: 8
llm:
  provider: openai
  model_name: gpt-4o
  openai_api_key: sk-test
cost:
  max_cost_limit: 5.5
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	conf, err := LoadConfigFrom(path)
	assert.NoError(t, err)

	assert.Equal(t, "custom-bucket", conf.StorageConfig.Bucket)
	assert.Equal(t, "permanent", conf.StorageConfig.DefaultPolicy)
	assert.Equal(t, 24, conf.StorageConfig.TTLHours)
	assert.Equal(t, 8, conf.DispatchConfig.WorkerCount)
	assert.Equal(t, "openai", conf.LLMConfig.Provider)
	assert.Equal(t, 5.5, conf.CostConfig.MaxCostLimit)

	// 未覆盖的字段保留默认值
	assert.Equal(t, int32(8080), conf.HttpServiceConfig.Port)
	assert.Equal(t, 3, conf.DispatchConfig.MaxRetries)
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	_, err := LoadConfigFrom("/no/such/config.yaml")
	assert.Error(t, err)
}

func TestDefaultConfigSaneValues(t *testing.T) {
	conf := DefaultConfig()

	assert.Equal(t, "temporary", conf.StorageConfig.DefaultPolicy)
	assert.Equal(t, 72, conf.StorageConfig.TTLHours)
	assert.Greater(t, conf.DispatchConfig.WorkerCount, 0)
	assert.Greater(t, conf.CostConfig.MaxCostLimit, 0.0)
	assert.NotEmpty(t, conf.StorageConfig.AllowedExtensions)
}
