// =============================================================================
// ibankit - Registry Command
// =============================================================================
//
// This file defines the 'registry' command group.
//
// COMMAND USAGE:
//   ibankit registry list              Print the built-in country table
//   ibankit registry verify [--file]   Compare it with a SWIFT registry export
//
// The registry file defaults to registry.file from the main configuration.
//
// =============================================================================

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ibankit/internal/swiftregistry"
	"github.com/ginjaninja78/ibankit/pkg/iban"
)

var registryFile string

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the built-in IBAN country table",
}

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the supported countries and their BBAN structures",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tCOUNTRY\tIBAN LENGTH\tBBAN STRUCTURE")

		for _, code := range iban.SupportedCountries() {
			s, _ := iban.StructureFor(code)
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", code, code.Name(), s.Length()+4, s.Notation())
		}

		return w.Flush()
	},
}

var registryVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the built-in table against a SWIFT IBAN registry file",
	Long: `Verify compares the built-in BBAN structures with a SWIFT IBAN registry
export (tab-separated text). It reports countries missing on either side and
differences in BBAN length, character layout, bank identifier position and
IBAN length, and checks that every published example IBAN validates.

Example Usage:
  ibankit registry verify --file swift_iban_registry.txt`,

	RunE: func(cmd *cobra.Command, args []string) error {
		path := registryFile
		if path == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path = cfg.Registry.File
		}
		if path == "" {
			return fmt.Errorf("no registry file; use --file or set registry.file in the config")
		}

		reg, err := swiftregistry.Load(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		discrepancies := swiftregistry.Verify(reg)
		for _, d := range discrepancies {
			fmt.Fprintln(out, d.String())
		}

		fmt.Fprintf(out, "\nChecked %d registry countries against %d built-in countries: %d discrepancy(ies)\n",
			len(reg.Entries), len(iban.SupportedCountries()), len(discrepancies))

		if len(discrepancies) > 0 {
			return fmt.Errorf("registry verification found %d discrepancy(ies)", len(discrepancies))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registryCmd)
	registryCmd.AddCommand(registryListCmd, registryVerifyCmd)

	registryVerifyCmd.Flags().StringVar(&registryFile, "file", "", "Path to the SWIFT IBAN registry export")
}
