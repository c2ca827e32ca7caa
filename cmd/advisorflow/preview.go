package main

import (
	"fmt"

	"github.com/norcalsbdc/advisorflow"
	"github.com/spf13/cobra"
)

var (
	previewStep   int
	previewStepID string
)

var previewCmd = &cobra.Command{
	Use:   "preview <workflow-id>",
	Short: "Render the system prompt a workflow produces at a given step",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVar(&previewStep, "step", 1, "1-based step to preview; past the last step previews completion")
	previewCmd.Flags().StringVar(&previewStepID, "step-id", "", "step id to preview, overrides --step")
}

func runPreview(cmd *cobra.Command, args []string) error {
	d := &deps{}
	defer d.Close()

	def, err := buildRegistry(cfg, d).Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	prompt, err := cfg.basePrompt()
	if err != nil {
		return err
	}

	step := previewStep
	if previewStepID != "" {
		idx := def.StepIndex(previewStepID)
		if idx < 0 {
			return fmt.Errorf("workflow %s has no step %q", def.ID, previewStepID)
		}
		step = idx + 1
	}

	state := previewState(def, step)
	progress := advisorflow.GetProgress(state, def)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, advisorflow.BuildWorkflowSystemPrompt(prompt, def, state))
	fmt.Fprintf(out, "\n[%d/%d %d%%] %s\n", progress.CurrentStep, progress.TotalSteps, progress.Percent, progress.CurrentTitle)

	actions := advisorflow.BuildCompletionActions(def)
	if step := advisorflow.GetCurrentStep(state, def); step != nil {
		actions = advisorflow.BuildStepActions(step, state)
	}
	printActions(cmd, actions)
	return nil
}

// previewState returns a begun state advanced to the 1-based step
func previewState(def *advisorflow.WorkflowDefinition, step int) *advisorflow.WorkflowState {
	state := advisorflow.BeginWorkflow(advisorflow.InitWorkflowState(def), def)
	for i := 1; i < step && !state.Completed; i++ {
		state = advisorflow.AdvanceStep(state, def)
	}
	return state
}

func printActions(cmd *cobra.Command, actions []advisorflow.Action) {
	out := cmd.OutOrStdout()
	for _, a := range actions {
		fmt.Fprintf(out, "  [%s] %s -> %q\n", a.Action, a.Label, a.Value)
	}
}
