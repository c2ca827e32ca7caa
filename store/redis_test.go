package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/norcalsbdc/advisorflow"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisStore creates a test Redis store with miniredis
func setupRedisStore(t *testing.T, opts ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisStore(client, opts...), mr
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupRedisStore(t)

	workflowID, state, err := store.LoadWorkflowState(context.Background(), "nonexistent")

	require.NoError(t, err)
	assert.Empty(t, workflowID)
	assert.Nil(t, state)
}

func TestRedisStore_InvalidInput(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, _, err := store.LoadWorkflowState(ctx, "")
	assert.ErrorIs(t, err, advisorflow.ErrInvalidConversationID)
	assert.ErrorIs(t, store.SaveWorkflowState(ctx, "conv-1", "w", nil), advisorflow.ErrInvalidState)
	assert.ErrorIs(t, store.DeleteWorkflowState(ctx, ""), advisorflow.ErrInvalidConversationID)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWorkflowState(ctx, "conv-123", "marketing-plan", testState()))
	assert.True(t, mr.Exists("advisorflow:conversation:conv-123:workflow"))

	workflowID, loaded, err := store.LoadWorkflowState(ctx, "conv-123")
	require.NoError(t, err)
	assert.Equal(t, "marketing-plan", workflowID)
	assert.Equal(t, 1, loaded.CurrentStepIndex)
	assert.Equal(t, advisorflow.StepStatusActive, loaded.StepData["channels"].Status)
	assert.Equal(t, "Instagram", loaded.StepData["channels"].Collected[0].User)
}

func TestRedisStore_TTL(t *testing.T) {
	store, mr := setupRedisStore(t, WithTTL(time.Hour), WithPrefix("sbdc"))
	ctx := context.Background()

	require.NoError(t, store.SaveWorkflowState(ctx, "conv-1", "marketing-plan", testState()))

	key := "sbdc:conversation:conv-1:workflow"
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)

	_, state, err := store.LoadWorkflowState(ctx, "conv-1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRedisStore_NoTTL(t *testing.T) {
	store, mr := setupRedisStore(t, WithTTL(0))
	require.NoError(t, store.SaveWorkflowState(context.Background(), "conv-1", "w", testState()))

	assert.Equal(t, time.Duration(0), mr.TTL("advisorflow:conversation:conv-1:workflow"))
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveWorkflowState(ctx, "conv-1", "w", testState()))

	require.NoError(t, store.DeleteWorkflowState(ctx, "conv-1"))
	require.NoError(t, store.DeleteWorkflowState(ctx, "conv-1"))

	assert.False(t, mr.Exists("advisorflow:conversation:conv-1:workflow"))
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := setupRedisStore(t)
	require.NoError(t, mr.Set("advisorflow:conversation:bad:workflow", "not json"))

	_, _, err := store.LoadWorkflowState(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisStore_ConnectionError(t *testing.T) {
	store, mr := setupRedisStore(t)
	mr.Close()

	_, _, err := store.LoadWorkflowState(context.Background(), "conv-1")
	assert.Error(t, err)
}
