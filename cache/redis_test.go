package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client, opts...), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "definition:business-plan", []byte(`{"id":"x"}`), time.Minute))
	assert.True(t, mr.Exists("advisorflow:cache:definition:business-plan"))
	assert.Equal(t, time.Minute, mr.TTL("advisorflow:cache:definition:business-plan"))

	before := time.Now()
	entry, ok, err := c.Get(ctx, "definition:business-plan")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"x"}`, string(entry.Value))
	assert.WithinDuration(t, before.Add(time.Minute), entry.ExpiresAt, 5*time.Second)
}

func TestRedisCache_NoTTLHasZeroExpiry(t *testing.T) {
	c, _ := setupRedisCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	entry, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, entry.ExpiresAt.IsZero())
}

func TestRedisCache_MissAndExpiry(t *testing.T) {
	c, mr := setupRedisCache(t, WithPrefix("test"))
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	c, mr := setupRedisCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	require.NoError(t, c.Delete(ctx, "k"))

	assert.False(t, mr.Exists("advisorflow:cache:k"))
}

func TestRedisCache_ConnectionError(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}
