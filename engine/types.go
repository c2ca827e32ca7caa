package engine

import (
	"context"

	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/llm"
)

// DefinitionRegistry resolves workflow definitions
type DefinitionRegistry interface {
	Discover(ctx context.Context) ([]advisorflow.WorkflowSummary, error)
	Load(ctx context.Context, id string) (*advisorflow.WorkflowDefinition, error)
}

// Model streams an assistant reply
type Model interface {
	StreamChat(ctx context.Context, req llm.ChatRequest, onToken func(string)) (*llm.ChatResponse, error)
}

// TurnRequest is one user message in a conversation
type TurnRequest struct {
	ConversationID string
	Message        string

	// History is the prior conversation, oldest first, without the current message
	History []llm.Message

	// WorkflowID starts (or replaces) a workflow when set
	WorkflowID string

	// Model overrides the model's default when set
	Model string

	// OnToken receives reply deltas as they stream
	OnToken func(string)
}

// TurnResult is the outcome of a processed turn
type TurnResult struct {
	ConversationID string                     `json:"conversation_id"`
	Reply          string                     `json:"reply"`
	Command        advisorflow.Command        `json:"command"`
	WorkflowID     string                     `json:"workflow_id,omitempty"`
	State          *advisorflow.WorkflowState `json:"state,omitempty"`
	Progress       *advisorflow.Progress      `json:"progress,omitempty"`
	Actions        []advisorflow.Action       `json:"actions,omitempty"`
	Usage          llm.Usage                  `json:"usage"`

	// ComplianceRequired asks the client to show the compliance footer
	ComplianceRequired bool `json:"compliance_required"`
}

// session is the workflow bound to a conversation during a turn
type session struct {
	def   *advisorflow.WorkflowDefinition
	state *advisorflow.WorkflowState
}

func (s session) bound() bool {
	return s.def != nil && s.state != nil
}

func (s session) active() bool {
	return s.bound() && s.state.Active
}
