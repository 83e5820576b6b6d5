// =============================================================================
// ibankit - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks IBANs or BICs given
// on the command line or listed in a file, one per line.
//
// COMMAND USAGE:
//   ibankit validate [identifier...] [flags]
//
// FLAGS:
//   --file    : Read identifiers from a file, one per line ("-" for stdin)
//   --type    : "iban", "bic" or "auto" (default "auto")
//   --output  : "text" or "json" (default "text")
//
// EXIT STATUS:
//   Non-zero when any identifier is invalid.
//
// =============================================================================

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ibankit/internal/validation"
	"github.com/ginjaninja78/ibankit/pkg/iban"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	validateFile   string
	validateType   string
	validateOutput string
)

// =============================================================================
// VALIDATE COMMAND DEFINITION
// =============================================================================

var validateCmd = &cobra.Command{
	Use:   "validate [identifier...]",
	Short: "Validate IBANs and BICs",
	Long: `Validate IBANs and BICs and show their components.

IBANs are accepted in electronic form (DE89370400440532013000) or print form
(DE89 3704 0044 0532 0130 00). With --type auto, identifiers of 8 or 11
characters starting with six letters are treated as BICs.

Example Usage:
  ibankit validate DE89370400440532013000 DEUTDEFF
  ibankit validate --file ibans.txt --output json`,

	RunE: func(cmd *cobra.Command, args []string) error {
		identifiers := args
		if validateFile != "" {
			fromFile, err := readIdentifiers(validateFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			identifiers = append(identifiers, fromFile...)
		}
		if len(identifiers) == 0 {
			return fmt.Errorf("no identifiers given; pass them as arguments or use --file")
		}

		checks := make([]identifierCheck, 0, len(identifiers))
		for _, raw := range identifiers {
			check, err := checkIdentifier(raw, validateType)
			if err != nil {
				return err
			}
			checks = append(checks, check)
		}

		if err := printChecks(cmd.OutOrStdout(), checks, validateOutput); err != nil {
			return err
		}

		invalid := 0
		for _, c := range checks {
			if !c.Valid {
				invalid++
			}
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d identifier(s) are invalid", invalid, len(checks))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFile, "file", "", "Read identifiers from a file, one per line (\"-\" for stdin)")
	validateCmd.Flags().StringVar(&validateType, "type", "auto", "Identifier type: iban, bic or auto")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "text", "Output format: text or json")
}

// =============================================================================
// CHECKS
// =============================================================================

// identifierCheck is the outcome for one identifier.
type identifierCheck struct {
	Input   string            `json:"input"`
	Type    string            `json:"type"`
	Valid   bool              `json:"valid"`
	Value   string            `json:"value,omitempty"`
	Country string            `json:"country_code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Rule    string            `json:"rule,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// checkIdentifier validates raw as the given type.
func checkIdentifier(raw, kind string) (identifierCheck, error) {
	if kind == "auto" {
		kind = guessType(raw)
	}

	check := identifierCheck{Input: raw, Type: kind}

	switch kind {
	case "iban":
		v, err := iban.Parse(strings.ReplaceAll(raw, " ", ""))
		if err != nil {
			check.Rule, check.Error = validation.RuleName(err), err.Error()
			return check, nil
		}
		check.Valid = true
		check.Value = v.Formatted()
		check.Country = string(v.CountryCode())
		check.Fields = make(map[string]string)
		for t, value := range v.Fields() {
			check.Fields[t.String()] = value
		}

	case "bic":
		v, err := iban.ParseBIC(raw)
		if err != nil {
			check.Rule, check.Error = validation.RuleName(err), err.Error()
			return check, nil
		}
		check.Valid = true
		check.Value = v.String()
		check.Country = string(v.CountryCode())
		check.Fields = map[string]string{
			"bank_code":     v.BankCode(),
			"location_code": v.LocationCode(),
		}
		if branch, ok := v.BranchCode(); ok {
			check.Fields["branch_code"] = branch
		}

	default:
		return check, fmt.Errorf("unknown identifier type %q", kind)
	}

	return check, nil
}

// guessType treats 8 or 11 characters beginning with six letters as a BIC.
func guessType(raw string) string {
	if len(raw) != 8 && len(raw) != 11 {
		return "iban"
	}
	for i := 0; i < 6; i++ {
		c := raw[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return "iban"
		}
	}
	return "bic"
}

// readIdentifiers returns the non-blank, non-comment lines of path.
func readIdentifiers(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer file.Close()
		r = file
	}

	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identifiers: %w", err)
	}
	return out, nil
}

func printChecks(w io.Writer, checks []identifierCheck, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(checks)

	case "text":
		for _, c := range checks {
			if !c.Valid {
				fmt.Fprintf(w, "✗ %s (%s): %s [%s]\n", c.Input, c.Type, c.Error, c.Rule)
				continue
			}
			fmt.Fprintf(w, "✓ %s (%s, %s)\n", c.Value, c.Type, c.Country)
			for _, name := range fieldOrder {
				if value, ok := c.Fields[name]; ok {
					fmt.Fprintf(w, "    %-22s %s\n", name+":", value)
				}
			}
		}
		return nil
	}

	return fmt.Errorf("unknown output format %q", format)
}

// fieldOrder lists decomposed fields in display order.
var fieldOrder = func() []string {
	names := []string{}
	for _, t := range iban.FieldTypes() {
		names = append(names, t.String())
	}
	return append(names, "location_code")
}()
