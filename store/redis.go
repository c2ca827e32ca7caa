package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/norcalsbdc/advisorflow"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "advisorflow"
	defaultRedisTTL    = 24 * time.Hour
)

// RedisStore implements advisorflow.ConversationStore on Redis.
// Each conversation is one JSON value that expires after the configured TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithTTL sets the expiry of stored workflow state. Zero keeps it forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix. Default is "advisorflow".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a new Redis-backed conversation store
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		ttl:    defaultRedisTTL,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ advisorflow.ConversationStore = (*RedisStore)(nil)

func (s *RedisStore) LoadWorkflowState(ctx context.Context, conversationID string) (string, *advisorflow.WorkflowState, error) {
	if conversationID == "" {
		return "", nil, advisorflow.ErrInvalidConversationID
	}

	data, err := s.client.Get(ctx, redisWorkflowKey(s.prefix, conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("redis get failed: %w", err)
	}

	var record workflowRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal workflow record: %w", err)
	}

	state, err := decodeState(record.State)
	if err != nil {
		return "", nil, err
	}
	return record.WorkflowID, state, nil
}

func (s *RedisStore) SaveWorkflowState(ctx context.Context, conversationID, workflowID string, state *advisorflow.WorkflowState) error {
	if err := validateSave(conversationID, state); err != nil {
		return err
	}

	stateData, err := encodeState(state)
	if err != nil {
		return err
	}

	data, err := json.Marshal(workflowRecord{
		ConversationID: conversationID,
		WorkflowID:     workflowID,
		State:          stateData,
		UpdatedAt:      time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal workflow record: %w", err)
	}

	if err := s.client.Set(ctx, redisWorkflowKey(s.prefix, conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteWorkflowState(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return advisorflow.ErrInvalidConversationID
	}

	if err := s.client.Del(ctx, redisWorkflowKey(s.prefix, conversationID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
