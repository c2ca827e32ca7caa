package advisorflow

import (
	"fmt"
	"strings"
)

const bannerRule = "=================================================="

// BuildWorkflowSystemPrompt appends the workflow overlay to the base system prompt.
// Sections are emitted in a fixed order and omitted entirely when they have no content.
func BuildWorkflowSystemPrompt(basePrompt string, def *WorkflowDefinition, state *WorkflowState) string {
	parts := []string{basePrompt}

	parts = append(parts, fmt.Sprintf("\n\n%s\nACTIVE WORKFLOW: %s\n%s", bannerRule, def.Name, bannerRule))

	if def.Persona != "" {
		parts = append(parts, "\n"+def.Persona)
	}

	parts = append(parts, buildRulesSection(state.AdvanceCommand, state.CancelCommand))

	progress := GetProgress(state, def)
	parts = append(parts, fmt.Sprintf("\n\nPROGRESS: Step %d of %d — %s",
		progress.CurrentStep, progress.TotalSteps, progress.CurrentTitle))

	if summary := BuildCollectedDataSummary(state, def); summary != "" {
		parts = append(parts, summary)
	}

	if step := GetCurrentStep(state, def); step != nil {
		parts = append(parts, buildStepSection(step))
	}

	return strings.Join(parts, "\n")
}

func buildRulesSection(advance, cancel string) string {
	var b strings.Builder
	b.WriteString("\n\nIMPORTANT WORKFLOW RULES:\n")
	fmt.Fprintf(&b, "- The user types %q to move to the next section.\n", advance)
	fmt.Fprintf(&b, "- The user types %q to exit the workflow entirely.\n", cancel)
	b.WriteString("- Stay focused on the current section.\n")
	fmt.Fprintf(&b, "- When the user types %q, summarize what you captured, then introduce the next section.\n", advance)
	b.WriteString("- Ask questions 2-3 at a time, not all at once.\n")
	b.WriteString("- Acknowledge each answer before asking more.")
	return b.String()
}

func buildStepSection(step *StepDefinition) string {
	parts := []string{
		fmt.Sprintf("\n\n--- CURRENT SECTION: %s ---", step.Header()),
		"\nObjective: " + step.Objective,
	}

	if step.Description != "" {
		parts = append(parts, "\nDescription: "+step.Description)
	}
	if step.WhatIsNeeded != "" {
		parts = append(parts, "\nWhat is needed: "+step.WhatIsNeeded)
	}
	if step.Instructions != "" {
		parts = append(parts, "\nInstructions: "+step.Instructions)
	}
	if len(step.Questions) > 0 {
		parts = append(parts, "\nQuestions to cover:")
		for i, q := range step.Questions {
			parts = append(parts, fmt.Sprintf("  %d. %s", i+1, q))
		}
	}
	if step.Examples != "" {
		parts = append(parts, "\nExample: "+step.Examples)
	}

	parts = append(parts, "\n--- END CURRENT SECTION ---")
	return strings.Join(parts, "\n")
}

// BuildCollectedDataSummary lists the user's answers for every engaged step.
// Control tokens and blank messages are dropped; steps without answers are omitted.
// Returns "" when nothing qualifies.
func BuildCollectedDataSummary(state *WorkflowState, def *WorkflowDefinition) string {
	var summaries []string

	for i := range def.Steps {
		step := &def.Steps[i]
		progress, ok := state.StepData[step.ID]
		if !ok || progress == nil || !progress.Status.IsEngaged() {
			continue
		}

		var answers []string
		for _, exchange := range progress.Collected {
			text := strings.TrimSpace(exchange.User)
			if text == "" || IsControlToken(text) {
				continue
			}
			answers = append(answers, "  - "+text)
		}

		if len(answers) > 0 {
			summaries = append(summaries, fmt.Sprintf("[%s]\n%s", step.Header(), strings.Join(answers, "\n")))
		}
	}

	if len(summaries) == 0 {
		return ""
	}

	return "\n\n=== PREVIOUSLY COLLECTED INFORMATION ===\n\n" +
		strings.Join(summaries, "\n\n") +
		"\n\n=== END PREVIOUSLY COLLECTED INFORMATION ==="
}
