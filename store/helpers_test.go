package store

import (
	"github.com/norcalsbdc/advisorflow"
)

func testDefinition() *advisorflow.WorkflowDefinition {
	return &advisorflow.WorkflowDefinition{
		ID:   "marketing-plan",
		Name: "Marketing Plan",
		Steps: []advisorflow.StepDefinition{
			{ID: "audience", Title: "Target Audience", Objective: "Identify customers"},
			{ID: "channels", Title: "Channels", Objective: "Pick channels", AllowSkip: true},
		},
		Completion: "Done.",
	}
}

// testState returns a running state on the second step with collected answers
func testState() *advisorflow.WorkflowState {
	def := testDefinition()
	state := advisorflow.BeginWorkflow(advisorflow.InitWorkflowState(def), def)
	state = advisorflow.CollectExchange(state, "audience", "Small restaurants", "Got it")
	state = advisorflow.AdvanceStep(state, def)
	return advisorflow.CollectExchange(state, "channels", "Instagram", "Nice")
}
