package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/norcalsbdc/advisorflow/engine"
	"github.com/norcalsbdc/advisorflow/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := loadConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "workflows", c.WorkflowsDir)
	assert.Equal(t, BackendMemory, c.Store.Backend)
	assert.Equal(t, 24*time.Hour, c.Store.TTL)
	assert.Equal(t, 5*time.Minute, c.Cache.TTL)
	assert.Equal(t, llm.DefaultModel, c.LLM.Model)
	assert.Equal(t, llm.DefaultBaseURL, c.LLM.BaseURL)
	assert.Equal(t, 3, c.LLM.MaxRetries)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("ADVISORFLOW_STORE_BACKEND", "redis")
	t.Setenv("ADVISORFLOW_STORE_TTL", "2h")
	t.Setenv("ADVISORFLOW_LLM_BASE_URL", llm.DefaultOllamaBaseURL)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	c, err := loadConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, c.Store.Backend)
	assert.Equal(t, 2*time.Hour, c.Store.TTL)
	assert.Equal(t, llm.DefaultOllamaBaseURL, c.LLM.BaseURL)
	assert.Equal(t, "sk-env", c.LLM.APIKey)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisorflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workflows_dir: /srv/workflows
store:
  backend: dynamodb
  dynamodb_table: conversations
cache:
  backend: none
`), 0o644))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	c, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/workflows", c.WorkflowsDir)
	assert.Equal(t, BackendDynamoDB, c.Store.Backend)
	assert.Equal(t, "conversations", c.Store.DynamoDBTable)
	assert.Equal(t, BackendNone, c.Cache.Backend)
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	v := newTestViper()
	v.Set("store.backend", "postgres")
	_, err := loadConfig(v)
	assert.EqualError(t, err, `unknown store backend "postgres"`)

	v = newTestViper()
	v.Set("cache.backend", "memcached")
	_, err = loadConfig(v)
	assert.EqualError(t, err, `unknown cache backend "memcached"`)
}

func TestBasePrompt(t *testing.T) {
	c := &Config{}
	prompt, err := c.basePrompt()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultBaseSystemPrompt, prompt)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("  You advise NorCal businesses.\n"), 0o644))
	c.SystemPromptFile = path
	prompt, err = c.basePrompt()
	require.NoError(t, err)
	assert.Equal(t, "You advise NorCal businesses.", prompt)

	c.SystemPromptFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = c.basePrompt()
	assert.Error(t, err)
}
