// =============================================================================
// Order Settlement Reconciler - Main Entry Point
// =============================================================================
//
// USAGE:
//   reconciler process   - Reconcile input files into a report workbook
//   reconciler validate  - Check input files without reconciling
//   reconciler serve     - Start the HTTP upload API
//   reconciler version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Loading, catalog, merging, settlement pivot, report, server
//   - pkg/utils  : Output file handling
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/order-settlement-reconciler/cmd"
)

func main() {
	cmd.Execute()
}
