package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/validation"
	"github.com/ginjaninja78/order-settlement-reconciler/pkg/utils"
)

// inputFlags holds the file flags shared by process and validate.
type inputFlags struct {
	seller        string
	packed        string
	rt            string
	rto           string
	cost          string
	settlements   []string
	settlementDir string
}

// register adds the input flags to a command.
func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.seller, "seller", "", "Seller listing (product id, sku code, seller sku code)")
	cmd.Flags().StringVar(&f.packed, "packed", "", "Packed shipment extract")
	cmd.Flags().StringVar(&f.rt, "rt", "", "Returned-in-transit shipment extract")
	cmd.Flags().StringVar(&f.rto, "rto", "", "Returned-to-origin shipment extract")
	cmd.Flags().StringVar(&f.cost, "cost", "", "Cost sheet (seller SKU and cost price)")
	cmd.Flags().StringArrayVar(&f.settlements, "settlement", nil, "Settlement file (repeatable)")
	cmd.Flags().StringVar(&f.settlementDir, "settlement-dir", "", "Directory of settlement files (.csv, .xlsx, .xls)")
}

// settlementPaths returns the explicit settlement files followed by the
// files discovered in the settlement directory.
func (f *inputFlags) settlementPaths() ([]string, error) {
	paths := append([]string(nil), f.settlements...)
	if f.settlementDir != "" {
		found, err := utils.DiscoverInputFiles(f.settlementDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// pipelineInputs builds file sources for a run.
func (f *inputFlags) pipelineInputs(settings config.CSVSettings) (pipeline.Inputs, error) {
	if f.seller == "" {
		return pipeline.Inputs{}, fmt.Errorf("--seller is required")
	}

	in := pipeline.Inputs{
		Seller: source.NewFile(f.seller, settings),
		Packed: optional(f.packed, settings),
		RT:     optional(f.rt, settings),
		RTO:    optional(f.rto, settings),
		Cost:   optional(f.cost, settings),
	}

	paths, err := f.settlementPaths()
	if err != nil {
		return pipeline.Inputs{}, err
	}
	for _, p := range paths {
		in.Settlements = append(in.Settlements, source.NewFile(p, settings))
	}
	return in, nil
}

// validationInputs builds the role-tagged sources for a pre-flight check.
func (f *inputFlags) validationInputs(settings config.CSVSettings) ([]validation.Input, error) {
	in, err := f.pipelineInputs(settings)
	if err != nil {
		return nil, err
	}

	inputs := []validation.Input{
		{Role: validation.RoleSeller, Source: in.Seller},
		{Role: validation.RolePacked, Source: in.Packed},
		{Role: validation.RoleRT, Source: in.RT},
		{Role: validation.RoleRTO, Source: in.RTO},
		{Role: validation.RoleCost, Source: in.Cost},
	}
	for _, s := range in.Settlements {
		inputs = append(inputs, validation.Input{Role: validation.RoleSettlement, Source: s})
	}
	return inputs, nil
}

// optional returns a file source, or nil for an empty path.
func optional(path string, settings config.CSVSettings) source.TabularSource {
	if path == "" {
		return nil
	}
	return source.NewFile(path, settings)
}
