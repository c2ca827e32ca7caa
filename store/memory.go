package store

import (
	"context"
	"sync"
	"time"

	"github.com/norcalsbdc/advisorflow"
)

// MemoryStore implements advisorflow.ConversationStore using in-memory storage.
// States are held as JSON so callers never share memory with the store.
type MemoryStore struct {
	records map[string]workflowRecord // conversationID -> record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory conversation store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]workflowRecord),
	}
}

var _ advisorflow.ConversationStore = (*MemoryStore)(nil)

func (s *MemoryStore) LoadWorkflowState(ctx context.Context, conversationID string) (string, *advisorflow.WorkflowState, error) {
	if conversationID == "" {
		return "", nil, advisorflow.ErrInvalidConversationID
	}

	s.mu.RLock()
	record, exists := s.records[conversationID]
	s.mu.RUnlock()

	if !exists {
		return "", nil, nil
	}

	state, err := decodeState(record.State)
	if err != nil {
		return "", nil, err
	}
	return record.WorkflowID, state, nil
}

func (s *MemoryStore) SaveWorkflowState(ctx context.Context, conversationID, workflowID string, state *advisorflow.WorkflowState) error {
	if err := validateSave(conversationID, state); err != nil {
		return err
	}

	data, err := encodeState(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[conversationID] = workflowRecord{
		ConversationID: conversationID,
		WorkflowID:     workflowID,
		State:          data,
		UpdatedAt:      time.Now(),
	}
	return nil
}

func (s *MemoryStore) DeleteWorkflowState(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return advisorflow.ErrInvalidConversationID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, conversationID)
	return nil
}
