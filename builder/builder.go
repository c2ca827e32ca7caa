package builder

import (
	"fmt"

	"github.com/norcalsbdc/advisorflow"
)

// WorkflowBuilder provides a fluent API for building workflow definitions
type WorkflowBuilder struct {
	def *advisorflow.WorkflowDefinition
}

// NewWorkflow creates a new workflow builder
func NewWorkflow(id, name string) *WorkflowBuilder {
	return &WorkflowBuilder{
		def: &advisorflow.WorkflowDefinition{
			ID:   id,
			Name: name,
		},
	}
}

// WithDescription sets the workflow description
func (b *WorkflowBuilder) WithDescription(description string) *WorkflowBuilder {
	b.def.Description = description
	return b
}

// WithIcon sets the icon shown in workflow listings
func (b *WorkflowBuilder) WithIcon(icon string) *WorkflowBuilder {
	b.def.Icon = icon
	return b
}

// WithPersona sets the persona injected into the system prompt
func (b *WorkflowBuilder) WithPersona(persona string) *WorkflowBuilder {
	b.def.Persona = persona
	return b
}

// WithCommands overrides the trigger, advance and cancel tokens. Empty values keep the defaults.
func (b *WorkflowBuilder) WithCommands(trigger, advance, cancel string) *WorkflowBuilder {
	b.def.Trigger = trigger
	b.def.AdvanceCommand = advance
	b.def.CancelCommand = cancel
	return b
}

// WithCompletion sets the message shown once every step is done
func (b *WorkflowBuilder) WithCompletion(completion string) *WorkflowBuilder {
	b.def.Completion = completion
	return b
}

// ThenStep appends a step after the last added step
func (b *WorkflowBuilder) ThenStep(step advisorflow.StepDefinition) *WorkflowBuilder {
	b.def.Steps = append(b.def.Steps, step)
	return b
}

// Sequence appends multiple steps in order
func (b *WorkflowBuilder) Sequence(steps ...advisorflow.StepDefinition) *WorkflowBuilder {
	for _, step := range steps {
		b.ThenStep(step)
	}
	return b
}

// Build finalizes and validates the definition. The builder can keep being
// used afterwards without affecting the returned value.
func (b *WorkflowBuilder) Build() (*advisorflow.WorkflowDefinition, error) {
	def := cloneDefinition(b.def)

	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}

	return def, nil
}

// MustBuild finalizes and validates the definition, panics on error
func (b *WorkflowBuilder) MustBuild() *advisorflow.WorkflowDefinition {
	def, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build workflow: %v", err))
	}
	return def
}

func cloneDefinition(def *advisorflow.WorkflowDefinition) *advisorflow.WorkflowDefinition {
	clone := *def
	if def.Steps != nil {
		clone.Steps = make([]advisorflow.StepDefinition, len(def.Steps))
		for i, step := range def.Steps {
			step.Questions = append([]string(nil), step.Questions...)
			clone.Steps[i] = step
		}
	}
	return &clone
}
