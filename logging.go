package advisorflow

import (
	"github.com/rs/zerolog"
)

// Log event names
const (
	// Workflow-level events
	EventWorkflowStarted   = "workflow_started"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowCancelled = "workflow_cancelled"
	EventWorkflowReplaced  = "workflow_replaced"

	// Step-level events
	EventStepAdvanced = "step_advanced"
	EventStepSkipped  = "step_skipped"
	EventSkipIgnored  = "skip_ignored"

	// Definition events
	EventDefinitionInvalid = "definition_invalid"
	EventDefinitionSkipped = "definition_skipped"

	// Collaborator failures
	EventPersistenceError = "persistence_error"
	EventModelError       = "model_error"
)

// LogWorkflowStarted logs when a workflow is engaged in a conversation
func LogWorkflowStarted(logger zerolog.Logger, conversationID, workflowID string, totalSteps int) {
	logger.Info().
		Str("event", EventWorkflowStarted).
		Str("conversation_id", conversationID).
		Str("workflow_id", workflowID).
		Int("total_steps", totalSteps).
		Msg("Workflow started")
}

// LogWorkflowCompleted logs when the last step is advanced past
func LogWorkflowCompleted(logger zerolog.Logger, conversationID, workflowID string) {
	logger.Info().
		Str("event", EventWorkflowCompleted).
		Str("conversation_id", conversationID).
		Str("workflow_id", workflowID).
		Msg("Workflow completed")
}

// LogWorkflowCancelled logs an explicit cancel
func LogWorkflowCancelled(logger zerolog.Logger, conversationID, workflowID string, stepIndex int) {
	logger.Warn().
		Str("event", EventWorkflowCancelled).
		Str("conversation_id", conversationID).
		Str("workflow_id", workflowID).
		Int("step_index", stepIndex).
		Msg("Workflow cancelled")
}

// LogWorkflowReplaced logs when a new workflow start supersedes an active one
func LogWorkflowReplaced(logger zerolog.Logger, conversationID, previousID, workflowID string) {
	logger.Info().
		Str("event", EventWorkflowReplaced).
		Str("conversation_id", conversationID).
		Str("previous_workflow_id", previousID).
		Str("workflow_id", workflowID).
		Msg("Workflow replaced")
}

// LogStepAdvanced logs a cursor move
func LogStepAdvanced(logger zerolog.Logger, conversationID, fromStepID string, toIndex int) {
	logger.Info().
		Str("event", EventStepAdvanced).
		Str("conversation_id", conversationID).
		Str("step_id", fromStepID).
		Int("step_index", toIndex).
		Msg("Step advanced")
}

// LogStepSkipped logs when a skippable step is skipped
func LogStepSkipped(logger zerolog.Logger, conversationID, stepID string) {
	logger.Info().
		Str("event", EventStepSkipped).
		Str("conversation_id", conversationID).
		Str("step_id", stepID).
		Msg("Step skipped")
}

// LogSkipIgnored logs a skip request on a step that does not allow it
func LogSkipIgnored(logger zerolog.Logger, conversationID, stepID string) {
	logger.Debug().
		Str("event", EventSkipIgnored).
		Str("conversation_id", conversationID).
		Str("step_id", stepID).
		Msg("Skip ignored, step does not allow skipping")
}

// LogDefinitionInvalid logs a definition rejected by validation
func LogDefinitionInvalid(logger zerolog.Logger, source string, errs []string) {
	logger.Error().
		Str("event", EventDefinitionInvalid).
		Str("source", source).
		Strs("errors", errs).
		Msg("Workflow definition failed validation")
}

// LogDefinitionSkipped logs a definition that could not be decoded during discovery
func LogDefinitionSkipped(logger zerolog.Logger, source string, err error) {
	logger.Warn().
		Str("event", EventDefinitionSkipped).
		Str("source", source).
		Err(err).
		Msg("Skipping unreadable workflow definition")
}

// LogPersistenceError logs errors during persistence operations
func LogPersistenceError(logger zerolog.Logger, conversationID, operation string, err error) {
	logger.Error().
		Str("event", EventPersistenceError).
		Str("conversation_id", conversationID).
		Str("operation", operation).
		Err(err).
		Msg("Persistence error")
}

// LogModelError logs a failed language model call
func LogModelError(logger zerolog.Logger, conversationID string, err error) {
	logger.Error().
		Str("event", EventModelError).
		Str("conversation_id", conversationID).
		Err(err).
		Msg("Model call failed")
}

// ConversationLogger creates a logger enriched with conversation context
func ConversationLogger(baseLogger zerolog.Logger, conversationID, workflowID string) zerolog.Logger {
	return baseLogger.With().
		Str("conversation_id", conversationID).
		Str("workflow_id", workflowID).
		Logger()
}
