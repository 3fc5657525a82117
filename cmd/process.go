// =============================================================================
// Order Settlement Reconciler - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs one reconciliation
// and writes the report workbook.
//
// COMMAND USAGE:
//   reconciler process --seller <file> [--packed <file>] [--rt <file>]
//       [--rto <file>] [--cost <file>] [--settlement <file>]...
//       [--settlement-dir <dir>] [--out <dir>] [--csv] [--dry-run]
//
// PROCESSING FLOW:
//   1. Load configuration and column aliases
//   2. Build the file sources
//   3. Run the pipeline (catalog, cost map, merges, pivot, final report)
//   4. Print the per-stage summary and every issue
//   5. Write the workbook, optional CSVs and the issue log
//
// EXIT STATUS:
//   Non-zero when the seller listing could not be read or lacks required
//   columns. In the second case the workbook and issue log are still
//   written. A run with skipped files exits zero.
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
	"github.com/ginjaninja78/order-settlement-reconciler/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processInputs holds the input file flags.
var processInputs inputFlags

// outDir overrides the configured output directory.
var outDir string

// writeCSV additionally writes one CSV per sheet.
var writeCSV bool

// dryRun runs the pipeline without writing any files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Reconcile shipments and settlements into one workbook",
	Long: `Run the full reconciliation.

The seller listing is required. Shipment extracts, the cost sheet and the
settlement files are optional; whatever is missing or unusable is reported
in the summary, the issue log and the workbook's Run Log sheet.

Sheets written (when their inputs exist):
  Final Report, Payment Pivot, Packed Merged, RT Merged, RTO Merged,
  SKU Mapping, Run Log`,
	RunE: runProcess,
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	processInputs.register(processCmd)

	processCmd.Flags().StringVar(
		&outDir,
		"out",
		"",
		"Output directory (overrides output_dir from the config)",
	)

	processCmd.Flags().BoolVar(
		&writeCSV,
		"csv",
		false,
		"Also write one CSV file per sheet",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the reconciliation without writing output files",
	)

	rootCmd.AddCommand(processCmd)
}

// =============================================================================
// PROCESS EXECUTION
// =============================================================================

// runProcess executes the reconciliation.
func runProcess(cmd *cobra.Command, args []string) error {
	// =========================================================================
	// STEP 1: Load configuration
	// =========================================================================
	fmt.Println("=== Order Settlement Reconciler ===")

	cfg, aliases, log, err := setup()
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if writeCSV {
		cfg.WriteCSV = true
	}

	// =========================================================================
	// STEP 2: Build the sources
	// =========================================================================
	in, err := processInputs.pipelineInputs(cfg.CSVSettings)
	if err != nil {
		return err
	}
	fmt.Printf("Settlement files: %d\n", len(in.Settlements))

	// =========================================================================
	// STEP 3: Run the pipeline
	// =========================================================================
	fmt.Println("\n=== Reconciling ===")
	out := pipeline.Run(in, pipeline.Options{Aliases: aliases, Logger: pipeline.With(log, "seller", in.Seller.Name())})

	// =========================================================================
	// STEP 4: Print the summary
	// =========================================================================
	printSummary(out)

	if out.SellerErr != nil {
		return exitError(out)
	}

	// =========================================================================
	// STEP 5: Write the output files
	// =========================================================================
	if dryRun {
		fmt.Println("\n[DRY RUN] No files written")
		return exitError(out)
	}

	fm := utils.NewFileManager(cfg.OutputDir, cfg.OutputNameFormat)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	now := time.Now()
	path, err := fm.WriteWorkbook(out.Sheets(), out.RunID, now)
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	fmt.Printf("\nWorkbook: %s\n", path)

	if cfg.WriteCSV {
		csvs, err := fm.WriteCSVs(out.Sheets(), path)
		if err != nil {
			log.Error("Failed to write CSV copies: %v", err)
		}
		for _, p := range csvs {
			fmt.Printf("CSV:      %s\n", p)
		}
	}

	if len(out.Issues) > 0 {
		logPath, err := utils.WriteIssueLog(out.Issues, cfg.OutputDir, out.RunID, now)
		if err != nil {
			log.Error("Failed to write issue log: %v", err)
		} else {
			fmt.Printf("Issues:   %s\n", logPath)
		}
	}

	return exitError(out)
}

// exitError returns the error that makes the command exit non-zero, or nil.
func exitError(out *pipeline.Outcome) error {
	switch {
	case out.SellerErr != nil:
		return fmt.Errorf("failed to read seller listing: %w", out.SellerErr)
	case out.CatalogFailed():
		return fmt.Errorf("seller listing is missing required columns, shipments were not merged")
	}
	return nil
}

// printSummary prints one line per stage followed by every issue.
func printSummary(out *pipeline.Outcome) {
	fmt.Println("\n=== Summary ===")
	fmt.Printf("Run ID:       %s\n", out.RunID)
	fmt.Printf("Duration:     %s\n", out.Duration.Round(time.Millisecond))

	if out.Catalog != nil {
		fmt.Printf("Catalog:      %d SKUs (%d duplicate product ids)\n", out.Catalog.Len(), out.Catalog.Duplicates())
	} else {
		fmt.Println("Catalog:      not built")
	}

	for _, r := range out.Shipments {
		switch {
		case r.Err != nil:
			fmt.Printf("%-13s failed\n", r.Kind.SheetName()+":")
		case !r.Merged:
			fmt.Printf("%-13s passed through (no product id column)\n", r.Kind.SheetName()+":")
		default:
			fmt.Printf("%-13s %d matched, %d not found\n", r.Kind.SheetName()+":", r.Matched, r.Unmatched)
		}
	}

	for _, s := range out.Settlements {
		if s.Skipped {
			fmt.Printf("Settlement:   %s skipped\n", s.Name)
			continue
		}
		fmt.Printf("Settlement:   %s %s, %d lines, %d invalid\n", s.Name, s.Spec.Kind, s.Lines, s.Invalid)
	}
	if out.Pivot != nil {
		fmt.Printf("Pivot:        %d orders\n", out.Pivot.Len())
	}
	if out.Final != nil {
		fmt.Printf("Final Report: %d rows\n", out.Final.Len())
	}

	if len(out.Issues) == 0 {
		return
	}
	counts := out.Counts()
	fmt.Printf("\nIssues: %d critical, %d error, %d warning, %d info\n",
		counts[types.SeverityCritical], counts[types.SeverityError],
		counts[types.SeverityWarning], counts[types.SeverityInfo])
	for _, issue := range out.Issues {
		fmt.Printf("  %s\n", issue.Error())
	}
}
