package advisorflow

// GetProgress projects the state onto a readout. The step at the cursor always
// reads active while the workflow is not completed, even before the caller has
// stored that status.
func GetProgress(state *WorkflowState, def *WorkflowDefinition) Progress {
	total := len(def.Steps)
	idx := state.CurrentStepIndex

	progress := Progress{
		TotalSteps: total,
		Steps:      make([]StepOverview, 0, total),
	}

	switch {
	case state.Completed:
		progress.CurrentStep = total
		progress.CurrentTitle = LabelCompleteTitle
		progress.Percent = 100
	default:
		progress.CurrentStep = idx + 1
		if idx >= 0 && idx < total {
			progress.CurrentTitle = def.Steps[idx].Title
		} else {
			progress.CurrentTitle = LabelCompleteTitle
		}
		if total > 0 {
			progress.Percent = min(max(idx*100/total, 0), 100)
		}
	}

	for i, step := range def.Steps {
		status := StepStatusPending
		if sp, ok := state.StepData[step.ID]; ok && sp != nil && sp.Status != "" {
			status = sp.Status
		}
		if i == idx && !state.Completed {
			status = StepStatusActive
		}

		progress.Steps = append(progress.Steps, StepOverview{
			Title:         step.Title,
			SectionNumber: step.SectionNumber,
			Status:        status,
		})
	}

	return progress
}
