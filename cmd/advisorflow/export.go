package main

import (
	"github.com/norcalsbdc/advisorflow"
	"github.com/norcalsbdc/advisorflow/builder"
	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export <workflow-id>",
	Short: "Print a validated workflow definition as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", string(advisorflow.FormatYAML), "output format (json, yaml)")
}

func runExport(cmd *cobra.Command, args []string) error {
	d := &deps{}
	defer d.Close()

	def, err := buildRegistry(cfg, d).Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	data, err := builder.Encode(def, advisorflow.DefinitionFormat(exportFormat))
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
