/*
*

	@author: shiliang
	@date: 2025/3/6
	@note: 读取yaml配置文件，进程启动时解析一次，之后以结构体形式注入各组件

*
*/
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "/home/workspace/config/config.yaml"

// LoadConfig 加载配置。配置在进程启动时解析一次，
// 解析后的 *DocumentServiceConf 传入各组件构造函数，运行期不再重新读取。
func LoadConfig() (*DocumentServiceConf, error) {
	configPath := defaultConfigPath
	if viper.GetString("TestConfig") != "" {
		configPath = "config.yaml"
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom 从指定路径加载配置
func LoadConfigFrom(configPath string) (*DocumentServiceConf, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %v", configPath, err)
	}

	conf := DefaultConfig()
	if err := yaml.Unmarshal(configData, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %v", configPath, err)
	}
	return conf, nil
}

// DefaultConfig 返回填好默认值的配置，yaml中出现的字段会覆盖默认值
func DefaultConfig() *DocumentServiceConf {
	return &DocumentServiceConf{
		HttpServiceConfig: HttpServiceConfig{
			Port:           8080,
			MonitorPort:    9090,
			MonitorEnabled: true,
		},
		LoggerConfig: LoggerConfig{
			Level: "info",
		},
		StorageConfig: StorageConfig{
			Bucket:            "document-data",
			DefaultPolicy:     "temporary",
			TTLHours:          72,
			MaxFileSize:       100 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".doc", ".docx", ".txt", ".md", ".csv", ".json", ".xml", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".xlsx", ".pptx"},
		},
		CleanupConfig: CleanupConfig{
			Enable:          true,
			BatchSize:       100,
			IntervalMinutes: 60,
			DryRun:          false,
		},
		DispatchConfig: DispatchConfig{
			MaxRetries:               3,
			RetryBackoffSeconds:      60,
			ProcessingTimeoutSeconds: 600,
			WorkerCount:              4,
			MaxTasksPerWorker:        200,
		},
		LLMConfig: LLMConfig{
			Provider:  "",
			ModelName: "gpt-4",
		},
		CostConfig: CostConfig{
			MaxCostLimit: 1.0,
		},
	}
}

type DocumentServiceConf struct {
	OSSConfig         OSSConfig         `yaml:"oss"`
	Dbms              DbmsConfig        `yaml:"dbms"`
	RedisConfig       RedisConfig       `yaml:"redis"`
	HttpServiceConfig HttpServiceConfig `yaml:"http"`
	LoggerConfig      LoggerConfig      `yaml:"log"`
	StorageConfig     StorageConfig     `yaml:"storage"`
	CleanupConfig     CleanupConfig     `yaml:"cleanup"`
	DispatchConfig    DispatchConfig    `yaml:"dispatch"`
	LLMConfig         LLMConfig         `yaml:"llm"`
	CostConfig        CostConfig        `yaml:"cost"`
}

type DbmsConfig struct {
	Type         string `yaml:"type"` // mysql / postgres
	Host         string `yaml:"host"`
	Port         int32  `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"db"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type OSSConfig struct {
	Type      string `yaml:"type"`
	Host      string `yaml:"host"`
	Port      int32  `yaml:"port"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// RedisConfig Redis配置结构
type RedisConfig struct {
	Address            string `yaml:"address"`              // Redis服务地址 ip:port
	Password           string `yaml:"password"`             // Redis密码
	DB                 int    `yaml:"db"`                   // Redis数据库
	ClusterType        string `yaml:"cluster_type"`         // Redis部署模式：standalone/sentinel/cluster
	SentinelMasterName string `yaml:"sentinel_master_name"` // Redis哨兵master名称
}

type HttpServiceConfig struct {
	Port           int32 `yaml:"port"`
	MonitorPort    int32 `yaml:"monitorPort"`
	MonitorEnabled bool  `yaml:"monitorEnabled"`
}

type LoggerConfig struct {
	Level      string `yaml:"level"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// StorageConfig 上传文件的存储策略配置
type StorageConfig struct {
	Bucket            string   `yaml:"bucket"`
	DefaultPolicy     string   `yaml:"default_policy"` // permanent / temporary
	TTLHours          int      `yaml:"ttl_hours"`      // temporary策略的保留时长
	MaxFileSize       int64    `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type CleanupConfig struct {
	Enable          bool `yaml:"enable"`
	BatchSize       int  `yaml:"batch_size"`
	IntervalMinutes int  `yaml:"interval"`
	DryRun          bool `yaml:"dry_run"`
}

// DispatchConfig 任务调度与重试配置
type DispatchConfig struct {
	MaxRetries               int `yaml:"max_retries"`
	RetryBackoffSeconds      int `yaml:"retry_backoff_seconds"`
	ProcessingTimeoutSeconds int `yaml:"processing_timeout_seconds"`
	WorkerCount              int `yaml:"worker_count"`
	MaxTasksPerWorker        int `yaml:"max_tasks_per_worker"`
}

// LLMConfig LLM提供方配置，provider为空时按openai、ollama的顺序选择可用的
type LLMConfig struct {
	Provider            string `yaml:"provider"` // openai / ollama
	ModelName           string `yaml:"model_name"`
	OpenAIAPIKey        string `yaml:"openai_api_key"`
	OpenAIBaseURL       string `yaml:"openai_base_url"`
	OllamaHost          string `yaml:"ollama_host"`
	EmbeddingModel      string `yaml:"embedding_model"`
	EnableVectorization bool   `yaml:"enable_vectorization"`
}

type CostConfig struct {
	MaxCostLimit float64 `yaml:"max_cost_limit"` // 单任务成本上限（USD）
}
