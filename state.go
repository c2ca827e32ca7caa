package advisorflow

import "time"

// InitWorkflowState builds a fresh state for def. Every step starts pending;
// BeginWorkflow activates the first one once the workflow is engaged with the user.
func InitWorkflowState(def *WorkflowDefinition) *WorkflowState {
	return initWorkflowStateAt(def, time.Now())
}

func initWorkflowStateAt(def *WorkflowDefinition, now time.Time) *WorkflowState {
	stepData := make(map[string]*StepProgress, len(def.Steps))
	for _, step := range def.Steps {
		stepData[step.ID] = &StepProgress{
			Status:    StepStatusPending,
			Collected: []Exchange{},
		}
	}

	return &WorkflowState{
		WorkflowID:       def.ID,
		WorkflowName:     def.Name,
		Active:           true,
		CurrentStepIndex: 0,
		Started:          false,
		Completed:        false,
		StepData:         stepData,
		StartedAt:        now,
		Trigger:          orDefault(def.Trigger, DefaultTrigger),
		AdvanceCommand:   orDefault(def.AdvanceCommand, DefaultAdvanceCommand),
		CancelCommand:    orDefault(def.CancelCommand, DefaultCancelCommand),
	}
}

// BeginWorkflow marks the workflow started and the step at the cursor active.
// It is a no-op for cancelled, completed or already started states.
func BeginWorkflow(state *WorkflowState, def *WorkflowDefinition) *WorkflowState {
	next := state.Clone()
	if !next.IsRunning() || next.Started {
		return next
	}

	next.Started = true
	if step := GetCurrentStep(next, def); step != nil {
		next.StepData[step.ID].Status = StepStatusActive
	}
	return next
}

// AdvanceStep marks the current step done and moves the cursor forward, either
// activating the next step or completing the workflow. Cancelled and completed
// states are returned unchanged.
func AdvanceStep(state *WorkflowState, def *WorkflowDefinition) *WorkflowState {
	next := state.Clone()
	total := len(def.Steps)

	if !next.IsRunning() || next.CurrentStepIndex >= total {
		return next
	}

	idx := next.CurrentStepIndex
	if idx >= 0 {
		if progress := next.StepData[def.Steps[idx].ID]; progress != nil {
			progress.Status = StepStatusDone
		}
	}

	next.CurrentStepIndex = idx + 1

	if next.CurrentStepIndex >= total {
		next.CurrentStepIndex = total
		next.Completed = true
		return next
	}

	if progress := next.StepData[def.Steps[next.CurrentStepIndex].ID]; progress != nil {
		progress.Status = StepStatusActive
	}
	return next
}

// CancelWorkflow abandons the workflow. Cursor, completion and step data are kept for history.
func CancelWorkflow(state *WorkflowState) *WorkflowState {
	next := state.Clone()
	next.Active = false
	return next
}

// GetCurrentStep returns the step at the cursor, or nil once completed or when
// the state no longer matches the definition.
func GetCurrentStep(state *WorkflowState, def *WorkflowDefinition) *StepDefinition {
	if state == nil || def == nil {
		return nil
	}

	idx := state.CurrentStepIndex
	if idx < 0 || idx >= len(def.Steps) {
		return nil
	}

	step := &def.Steps[idx]
	if _, ok := state.StepData[step.ID]; !ok {
		return nil
	}
	return step
}

// CollectExchange appends a user/assistant pair to a step's collected data.
// Unknown step ids leave the state unchanged.
func CollectExchange(state *WorkflowState, stepID, userMsg, assistantMsg string) *WorkflowState {
	next := state.Clone()

	progress, ok := next.StepData[stepID]
	if !ok || progress == nil {
		return next
	}

	progress.Collected = append(progress.Collected, Exchange{
		User:      userMsg,
		Assistant: assistantMsg,
	})
	return next
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
