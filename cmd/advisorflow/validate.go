package main

import (
	"fmt"

	"github.com/norcalsbdc/advisorflow/registry"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate workflow definitions",
	Long: `Validate every definition in the workflows directory, or the given files.
Every problem is reported, not just the first. Exits non-zero when any definition is invalid.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var reports []registry.Report

	if len(args) == 0 {
		d := &deps{}
		defer d.Close()

		var err error
		reports, err = buildRegistry(cfg, d).ValidateAll(cmd.Context())
		if err != nil {
			return err
		}
	} else {
		for _, path := range args {
			raw, err := registry.ReadFile(path)
			if err != nil {
				reports = append(reports, registry.Report{Name: path, Errors: []string{err.Error()}})
				continue
			}
			report := registry.ValidateRaw(raw)
			report.Name = path
			reports = append(reports, report)
		}
	}

	out := cmd.OutOrStdout()
	invalid := 0
	for _, report := range reports {
		if report.Valid() {
			fmt.Fprintf(out, "ok    %s (%s)\n", report.Name, report.WorkflowID)
			continue
		}
		invalid++
		fmt.Fprintf(out, "FAIL  %s\n", report.Name)
		for _, msg := range report.Errors {
			fmt.Fprintf(out, "      - %s\n", msg)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d workflow definitions invalid", invalid, len(reports))
	}
	fmt.Fprintf(out, "%d workflow definitions valid\n", len(reports))
	return nil
}
