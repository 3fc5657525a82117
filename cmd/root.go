// =============================================================================
// Order Settlement Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler)
//   ├── processCmd  (reconciler process)
//   ├── validateCmd (reconciler validate)
//   ├── serveCmd    (reconciler serve)
//   └── versionCmd  (reconciler version)
//
// The root command owns the global flags (--config, --verbose) and the
// shared loading of configuration and logging.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose switches logging to debug level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Order Settlement Reconciler - match shipments, SKUs and marketplace payments",
	Long: `Order Settlement Reconciler joins marketplace shipment extracts with the
seller's SKU listing and with any number of payment settlement files, and
produces one multi-sheet workbook.

Key Features:
  - Tolerant column matching ("SKU ID", "sku_id" and "\"sku id\"" are the same)
  - CSV, .xlsx and legacy .xls inputs
  - Per-order settled / outstanding / receivable pivot
  - Every skipped file is reported with the reason

Example Usage:
  reconciler process --seller listing.csv --packed Packed.csv --settlement-dir ./payments
  reconciler validate --seller listing.csv --packed Packed.csv
  reconciler serve --addr :8080`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file (optional)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// setup loads the configuration, resolves the column aliases and builds the
// logger every command uses.
func setup() (*config.MainConfig, schema.AliasSet, pipeline.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	aliases, err := cfg.Aliases()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid column aliases: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return cfg, aliases, pipeline.NewLogger(os.Stderr, level), nil
}
