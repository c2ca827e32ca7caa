package advisorflow

import "context"

// ConversationStore persists workflow state per conversation
type ConversationStore interface {
	// LoadWorkflowState returns ("", nil, nil) when the conversation has no stored workflow
	LoadWorkflowState(ctx context.Context, conversationID string) (workflowID string, state *WorkflowState, err error)
	SaveWorkflowState(ctx context.Context, conversationID, workflowID string, state *WorkflowState) error
	DeleteWorkflowState(ctx context.Context, conversationID string) error
}

// DefinitionFormat is the serialization of a raw definition blob
type DefinitionFormat string

const (
	FormatJSON DefinitionFormat = "json"
	FormatYAML DefinitionFormat = "yaml"
)

// RawDefinition is an undecoded workflow definition as held by a source
type RawDefinition struct {
	// Name is the conventional name of the blob (the file stem for directory sources)
	Name   string
	Format DefinitionFormat
	Data   []byte
}

// DefinitionSource provides raw workflow definitions
type DefinitionSource interface {
	// List returns every blob, ordered by name
	List(ctx context.Context) ([]RawDefinition, error)

	// Get returns the blob with the given conventional name, or ErrDefinitionNotFound
	Get(ctx context.Context, name string) (RawDefinition, error)
}
