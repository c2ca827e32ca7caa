package advisorflow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error codes
const (
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeDecode      = "DECODE_ERROR"
	ErrCodePersistence = "PERSISTENCE_ERROR"
	ErrCodeModel       = "MODEL_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

var (
	// ErrWorkflowNotFound is returned when a definition is missing or fails validation
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrDefinitionNotFound is returned by a DefinitionSource that has no blob under a name
	ErrDefinitionNotFound = errors.New("definition not found")

	// ErrInvalidConversationID is returned when a conversation id is empty
	ErrInvalidConversationID = errors.New("invalid conversation id")

	// ErrInvalidState is returned when a nil state is handed to a store
	ErrInvalidState = errors.New("invalid workflow state")
)

// WorkflowError represents a coded error raised around a workflow
type WorkflowError struct {
	Message   string                 `json:"message"`
	Code      string                 `json:"code"`
	Step      string                 `json:"step,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
	cause     error
}

// Error implements the error interface
func (e *WorkflowError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s (step: %s)", e.Code, e.Message, e.Step)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause
func (e *WorkflowError) Unwrap() error {
	return e.cause
}

// NewWorkflowError creates a new workflow error
func NewWorkflowError(code, message string) *WorkflowError {
	return &WorkflowError{
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// WrapWorkflowError creates a workflow error that unwraps to cause
func WrapWorkflowError(code, message string, cause error) *WorkflowError {
	e := NewWorkflowError(code, message)
	e.cause = cause
	if cause != nil {
		e.Message = fmt.Sprintf("%s: %v", message, cause)
	}
	return e
}

// WithStep attaches a step id to the error
func (e *WorkflowError) WithStep(stepID string) *WorkflowError {
	e.Step = stepID
	return e
}

// WithDetails adds details to the error
func (e *WorkflowError) WithDetails(details map[string]interface{}) *WorkflowError {
	e.Details = details
	return e
}

// ErrorCode extracts the code of a WorkflowError anywhere in the chain
func ErrorCode(err error) string {
	var we *WorkflowError
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}

// ValidationError carries every violation found in a workflow definition
type ValidationError struct {
	WorkflowID string
	Errors     []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.WorkflowID != "" {
		return fmt.Sprintf("workflow %q is invalid: %s", e.WorkflowID, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("workflow is invalid: %s", strings.Join(e.Errors, "; "))
}

// Is lets errors.Is(err, ErrWorkflowNotFound) hold for invalid definitions,
// which are never loadable.
func (e *ValidationError) Is(target error) bool {
	return target == ErrWorkflowNotFound
}

// IsValidationError checks if an error is a definition validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
