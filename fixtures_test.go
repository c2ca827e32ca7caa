package advisorflow

func threeStepDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		ID:          "business-plan",
		Name:        "Business Plan Builder",
		Description: "Walk through the core sections of a business plan",
		Icon:        "clipboard",
		Persona:     "You are a patient SBDC business advisor.",
		Steps: []StepDefinition{
			{
				ID:            "A",
				Title:         "Executive Summary",
				Objective:     "Capture the business in a paragraph",
				SectionNumber: "1",
				Questions:     []string{"What does your business do?", "Who are your customers?"},
			},
			{
				ID:        "B",
				Title:     "Financials",
				Objective: "Understand revenue and costs",
				AllowSkip: false,
			},
			{
				ID:        "C",
				Title:     "Funding Needs",
				Objective: "Identify capital requirements",
				AllowSkip: true,
			},
		},
		Completion: "Your plan outline is complete.",
	}
}

// begunState returns a fresh state with the first step active
func begunState(def *WorkflowDefinition) *WorkflowState {
	return BeginWorkflow(InitWorkflowState(def), def)
}
