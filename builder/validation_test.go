package builder

import (
	"errors"
	"testing"

	"github.com/norcalsbdc/advisorflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommands_Defaults(t *testing.T) {
	def := &advisorflow.WorkflowDefinition{}

	assert.Empty(t, ValidateCommands(def))
}

func TestValidateCommands_Collisions(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
		advance string
		cancel  string
		want    []string
	}{
		{
			name:    "advance shadows cancel",
			advance: "done",
			cancel:  "Done",
			want:    []string{`Command 'cancel_command' duplicates 'advance_command' ("done")`},
		},
		{
			name:   "cancel equals skip",
			cancel: "skip",
			want:   []string{`Command 'skip' duplicates 'cancel_command' ("skip")`},
		},
		{
			name:    "multi word",
			advance: "next section",
			want:    []string{`Command 'advance_command' must be a single word, got "next section"`},
		},
		{
			name:    "trigger equals default advance",
			trigger: "next",
			want:    []string{`Command 'advance_command' duplicates 'trigger' ("next")`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &advisorflow.WorkflowDefinition{
				Trigger:        tt.trigger,
				AdvanceCommand: tt.advance,
				CancelCommand:  tt.cancel,
			}
			assert.Equal(t, tt.want, ValidateCommands(def))
		})
	}
}

func TestValidateDefinition(t *testing.T) {
	def := NewWorkflow("w", "W").
		WithCommands("", "go", "go").
		ThenStep(NewStep("a", "A", "first")).
		WithCompletion("done")

	_, err := def.Build()
	require.Error(t, err)

	var ve *advisorflow.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "w", ve.WorkflowID)
	assert.Len(t, ve.Errors, 1)

	assert.Error(t, ValidateDefinition(nil))
}
