package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/norcalsbdc/advisorflow"
)

// workflowRecord is the stored envelope of a conversation's workflow binding
type workflowRecord struct {
	ConversationID string          `json:"conversation_id"`
	WorkflowID     string          `json:"workflow_id"`
	State          json.RawMessage `json:"state"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func validateSave(conversationID string, state *advisorflow.WorkflowState) error {
	if conversationID == "" {
		return advisorflow.ErrInvalidConversationID
	}
	if state == nil {
		return advisorflow.ErrInvalidState
	}
	return nil
}

func encodeState(state *advisorflow.WorkflowState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (*advisorflow.WorkflowState, error) {
	var state advisorflow.WorkflowState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow state: %w", err)
	}
	if state.StepData == nil {
		state.StepData = make(map[string]*advisorflow.StepProgress)
	}
	return &state, nil
}
