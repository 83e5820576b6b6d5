package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ibankit/internal/xmlwriter"
)

// schemaCmd prints the XSD of the XML validation report, for consumers that
// validate reports before import.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the XML schema (XSD) of validation reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(xmlwriter.GenerateXSD())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
