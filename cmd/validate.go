// =============================================================================
// Order Settlement Reconciler - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the input files
// without reconciling them.
//
// COMMAND USAGE:
//   reconciler validate --seller <file> [--packed <file>] ... [--settlement-dir <dir>]
//
// VALIDATION CHECKS:
//   - Every file can be read
//   - The seller listing has product id, sku code and seller sku code
//   - Shipment extracts have a product id (and the packed extract an order id)
//   - Settlement files have an order release id and an amount column
//   - Packed dates parse
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/validation"
)

// validateInputs holds the input file flags.
var validateInputs inputFlags

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check input files without reconciling",
	Long: `Check that every input file can be read and carries the columns the
reconciliation needs. Nothing is written.`,
	RunE: runValidate,
}

func init() {
	validateInputs.register(validateCmd)
	rootCmd.AddCommand(validateCmd)
}

// runValidate executes the pre-flight check.
func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Input Validation ===")

	cfg, aliases, _, err := setup()
	if err != nil {
		return err
	}

	inputs, err := validateInputs.validationInputs(cfg.CSVSettings)
	if err != nil {
		return err
	}

	result := validation.Validate(inputs, aliases)
	fmt.Print(validation.FormatResult(result))

	if !result.IsValid {
		return fmt.Errorf("validation failed with %d errors", result.ErrorCount)
	}
	return nil
}
