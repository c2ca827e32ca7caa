package advisorflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCommand(t *testing.T) {
	state := InitWorkflowState(threeStepDefinition())

	tests := []struct {
		input string
		want  Command
	}{
		{"start", CommandTrigger},
		{"  START  ", CommandTrigger},
		{"next", CommandAdvance},
		{"Next\n", CommandAdvance},
		{"quit", CommandCancel},
		{"QUIT", CommandCancel},
		{"skip", CommandSkip},
		{" Skip ", CommandSkip},
		{"", CommandNone},
		{"   ", CommandNone},
		{"next please", CommandNone},
		{"what comes next?", CommandNone},
		{"let's start", CommandNone},
		{"exit", CommandNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCommand(tt.input, state))
		})
	}
}

func TestDetectCommand_CustomTokens(t *testing.T) {
	def := threeStepDefinition()
	def.Trigger = "Begin"
	def.AdvanceCommand = "continue"
	def.CancelCommand = "stop"
	state := InitWorkflowState(def)

	assert.Equal(t, CommandTrigger, DetectCommand("begin", state))
	assert.Equal(t, CommandAdvance, DetectCommand("Continue", state))
	assert.Equal(t, CommandCancel, DetectCommand("stop", state))
	assert.Equal(t, CommandSkip, DetectCommand("skip", state))

	// defaults no longer apply once overridden
	assert.Equal(t, CommandNone, DetectCommand("next", state))
	assert.Equal(t, CommandNone, DetectCommand("quit", state))
}

func TestDetectCommand_Priority(t *testing.T) {
	state := InitWorkflowState(threeStepDefinition())
	state.AdvanceCommand = "go"
	state.Trigger = "go"
	state.CancelCommand = "skip"

	assert.Equal(t, CommandTrigger, DetectCommand("go", state))
	assert.Equal(t, CommandCancel, DetectCommand("skip", state))
}

func TestDetectCommand_NilState(t *testing.T) {
	assert.Equal(t, CommandNone, DetectCommand("next", nil))
}
