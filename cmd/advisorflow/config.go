package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/engine"
	"github.com/norcalsbdc/advisorflow/llm"
	"github.com/spf13/viper"
)

// Config is the binary's configuration, read from file, ADVISORFLOW_* env and flags
type Config struct {
	WorkflowsDir     string      `mapstructure:"workflows_dir"`
	SystemPromptFile string      `mapstructure:"system_prompt_file"`
	LogLevel         string      `mapstructure:"log_level"`
	MetricsAddr      string      `mapstructure:"metrics_addr"`
	Store            StoreConfig `mapstructure:"store"`
	Cache            CacheConfig `mapstructure:"cache"`
	LLM              LLMConfig   `mapstructure:"llm"`
}

// StoreConfig selects the conversation store backend
type StoreConfig struct {
	Backend       string        `mapstructure:"backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	DynamoDBTable string        `mapstructure:"dynamodb_table"`
}

// CacheConfig selects the definition cache backend
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LLMConfig configures the model client
type LLMConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// Store backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
	BackendNone     = "none"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("workflows_dir", "workflows")
	v.SetDefault("system_prompt_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_prefix", "advisorflow")
	v.SetDefault("store.ttl", 24*time.Hour)
	v.SetDefault("store.dynamodb_table", "advisorflow")

	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.ttl", advisorflow.DefaultCacheTTL)

	v.SetDefault("llm.base_url", llm.DefaultBaseURL)
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_retries", advisorflow.DefaultRetryConfig.MaxRetries)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("ADVISORFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", "ADVISORFLOW_LLM_API_KEY", "OPENAI_API_KEY")
}

// loadConfig decodes v into a Config and checks backend names
func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	switch cfg.Store.Backend {
	case BackendMemory, BackendRedis, BackendDynamoDB:
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	switch cfg.Cache.Backend {
	case BackendMemory, BackendRedis, BackendNone:
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	return &cfg, nil
}

// basePrompt returns the configured system prompt, or the engine default
func (c *Config) basePrompt() (string, error) {
	if c.SystemPromptFile == "" {
		return engine.DefaultBaseSystemPrompt, nil
	}

	data, err := os.ReadFile(c.SystemPromptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
