package advisorflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowError(t *testing.T) {
	err := NewWorkflowError(ErrCodeNotFound, "workflow missing")
	assert.Equal(t, "[NOT_FOUND] workflow missing", err.Error())
	assert.False(t, err.Timestamp.IsZero())

	err = err.WithStep("A").WithDetails(map[string]interface{}{"conversation": "c1"})
	assert.Equal(t, "[NOT_FOUND] workflow missing (step: A)", err.Error())
	assert.Equal(t, "c1", err.Details["conversation"])
}

func TestWrapWorkflowError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapWorkflowError(ErrCodePersistence, "failed to save", cause)

	assert.Equal(t, "[PERSISTENCE_ERROR] failed to save: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("turn failed: %w", err)
	assert.Equal(t, ErrCodePersistence, ErrorCode(wrapped))
	assert.Equal(t, "", ErrorCode(cause))
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{WorkflowID: "w", Errors: []string{"a", "b"}}
	assert.Equal(t, `workflow "w" is invalid: a; b`, err.Error())
	assert.True(t, errors.Is(err, ErrWorkflowNotFound))
	assert.False(t, errors.Is(err, ErrDefinitionNotFound))

	anonymous := &ValidationError{Errors: []string{"x"}}
	assert.Equal(t, "workflow is invalid: x", anonymous.Error())

	assert.True(t, IsValidationError(fmt.Errorf("load: %w", err)))
	assert.False(t, IsValidationError(ErrWorkflowNotFound))
}
