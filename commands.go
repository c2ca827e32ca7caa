package advisorflow

// DetectCommand classifies a raw chat message against the state's command tokens.
// Matching is exact on the trimmed, case-folded message; a token surrounded by other
// text is ordinary content. Priority: trigger, advance, cancel, skip.
func DetectCommand(userInput string, state *WorkflowState) Command {
	cleaned := normalizeInput(userInput)
	if cleaned == "" || state == nil {
		return CommandNone
	}

	switch cleaned {
	case normalizeInput(state.Trigger):
		return CommandTrigger
	case normalizeInput(state.AdvanceCommand):
		return CommandAdvance
	case normalizeInput(state.CancelCommand):
		return CommandCancel
	case SkipCommand:
		return CommandSkip
	}

	return CommandNone
}
