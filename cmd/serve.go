// =============================================================================
// Order Settlement Reconciler - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which starts the HTTP upload API.
//
// COMMAND USAGE:
//   reconciler serve [--addr :8080]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/server"
)

// serveAddr overrides the configured listen address.
var serveAddr string

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP upload API",
	Long: `Start an HTTP server that accepts the input files as a multipart upload.

Routes:
  GET  /api/health
  POST /api/reconcile   responds with the .xlsx workbook
  POST /api/validate    responds with the validation report as JSON`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(
		&serveAddr,
		"addr",
		"",
		"Listen address (overrides server.addr from the config)",
	)

	rootCmd.AddCommand(serveCmd)
}

// runServe starts the server and blocks until it stops.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, aliases, log, err := setup()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	log.Info("Listening on %s", cfg.Server.Addr)
	if err := server.New(cfg, aliases, log, Version).Run(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
