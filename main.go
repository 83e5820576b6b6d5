// =============================================================================
// ibankit - Main Entry Point
// =============================================================================
//
// USAGE:
//   ibankit validate   - Validate IBANs and BICs
//   ibankit generate   - Generate random valid IBANs
//   ibankit process    - Validate batch files in the input directory
//   ibankit registry   - Inspect or verify the built-in country table
//   ibankit serve      - Run the HTTP API
//   ibankit schema     - Print the XSD of XML reports
//   ibankit version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : batch processing, reports, HTTP API, metrics
//   - pkg/iban   : the IBAN and BIC library
//   - pkg/utils  : file management and run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/ibankit/cmd"
)

func main() {
	cmd.Execute()
}
