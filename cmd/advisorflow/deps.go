package main

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/cache"
	"github.com/norcalsbdc/advisorflow/engine"
	"github.com/norcalsbdc/advisorflow/llm"
	"github.com/norcalsbdc/advisorflow/registry"
	"github.com/norcalsbdc/advisorflow/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// deps holds the collaborators built from Config
type deps struct {
	registry *registry.Registry
	store    advisorflow.ConversationStore
	model    *llm.Client
	redis    *redis.Client
}

func (d *deps) Close() error {
	if d.redis != nil {
		return d.redis.Close()
	}
	return nil
}

func (d *deps) redisClient(addr string) *redis.Client {
	if d.redis == nil {
		d.redis = redis.NewClient(&redis.Options{Addr: addr})
	}
	return d.redis
}

// buildRegistry wires the definition source and cache
func buildRegistry(c *Config, d *deps) *registry.Registry {
	opts := []registry.Option{registry.WithLogger(logger)}

	switch c.Cache.Backend {
	case BackendMemory:
		opts = append(opts, registry.WithCache(cache.NewMemoryCache(), c.Cache.TTL))
	case BackendRedis:
		client := d.redisClient(c.Store.RedisAddr)
		opts = append(opts, registry.WithCache(
			cache.NewRedisCache(client, cache.WithPrefix(c.Store.RedisPrefix+":cache")),
			c.Cache.TTL,
		))
	}

	return registry.New(registry.NewDirSource(c.WorkflowsDir), opts...)
}

// buildStore returns the configured conversation store
func buildStore(ctx context.Context, c *Config, d *deps) (advisorflow.ConversationStore, error) {
	switch c.Store.Backend {
	case BackendRedis:
		client := d.redisClient(c.Store.RedisAddr)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to reach redis at %s: %w", c.Store.RedisAddr, err)
		}
		return store.NewRedisStore(client,
			store.WithTTL(c.Store.TTL),
			store.WithPrefix(c.Store.RedisPrefix),
		), nil

	case BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return store.NewDynamoDBStore(
			dynamodb.NewFromConfig(awsCfg),
			c.Store.DynamoDBTable,
			store.WithItemTTL(c.Store.TTL),
		), nil

	default:
		return store.NewMemoryStore(), nil
	}
}

func buildModel(c *Config) *llm.Client {
	retry := advisorflow.DefaultRetryConfig
	retry.MaxRetries = c.LLM.MaxRetries

	return llm.NewClient(
		llm.WithBaseURL(c.LLM.BaseURL),
		llm.WithAPIKey(c.LLM.APIKey),
		llm.WithModel(c.LLM.Model),
		llm.WithRetryConfig(retry),
		llm.WithLogger(logger.With().Str("component", "llm").Logger()),
	)
}

func buildDeps(ctx context.Context, c *Config) (*deps, error) {
	d := &deps{}
	d.registry = buildRegistry(c, d)

	s, err := buildStore(ctx, c, d)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.store = s
	d.model = buildModel(c)
	return d, nil
}

func buildEngine(c *Config, d *deps, reg prometheus.Registerer) (*engine.Engine, error) {
	prompt, err := c.basePrompt()
	if err != nil {
		return nil, err
	}

	return engine.NewEngine(d.registry, d.store, d.model,
		engine.WithLogger(logger),
		engine.WithMetrics(engine.NewMetrics(reg)),
		engine.WithBaseSystemPrompt(prompt),
	), nil
}
