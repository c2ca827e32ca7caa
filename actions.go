package advisorflow

// BuildStepActions returns the action buttons for a running step: one send
// action per question, then next, skip (when allowed) and exit commands.
func BuildStepActions(step *StepDefinition, state *WorkflowState) []Action {
	actions := make([]Action, 0, len(step.Questions)+3)

	for _, q := range step.Questions {
		actions = append(actions, Action{
			Label:  truncateLabel(q),
			Action: ActionSend,
			Value:  q,
		})
	}

	actions = append(actions, Action{
		Label:  LabelNextSection,
		Action: ActionCommand,
		Value:  orDefault(state.AdvanceCommand, DefaultAdvanceCommand),
	})

	if step.AllowSkip {
		actions = append(actions, Action{
			Label:  LabelSkip,
			Action: ActionCommand,
			Value:  SkipCommand,
		})
	}

	actions = append(actions, Action{
		Label:  LabelExitModule,
		Action: ActionCommand,
		Value:  orDefault(state.CancelCommand, DefaultCancelCommand),
	})

	return actions
}

// BuildCompletionActions returns the single action offered once a workflow completes
func BuildCompletionActions(def *WorkflowDefinition) []Action {
	return []Action{
		{
			Label:  LabelStartAnother,
			Action: ActionCommand,
			Value:  orDefault(def.CancelCommand, DefaultCancelCommand),
		},
	}
}
