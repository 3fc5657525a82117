// =============================================================================
// Order Settlement Reconciler - Pipeline
// =============================================================================
//
// This module orchestrates one reconciliation run, from loading the inputs to
// the packaged output tables.
//
// PIPELINE:
//   1. Load the seller listing and build the SKU catalog
//   2. Load the optional cost sheet and build the cost map
//   3. Load and merge the packed, RT and RTO shipment extracts
//   4. Load every settlement file and build the payment pivot
//   5. Assemble the final report from the packed extract
//
// FAILURE POLICY:
//   A stage never aborts the run. Each skipped file or degraded result is
//   recorded as an Issue on the Outcome. Only a missing or unusable catalog
//   prevents shipment merging, and with it the final report.
//
// Run holds no state between calls; concurrent runs share nothing.
//
// =============================================================================

package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/catalog"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/report"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/settlement"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/shipment"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// =============================================================================
// INPUTS AND OPTIONS
// =============================================================================

// Inputs names the sources of one run. Every field except Seller is optional.
type Inputs struct {
	Seller      source.TabularSource
	Packed      source.TabularSource
	RT          source.TabularSource
	RTO         source.TabularSource
	Cost        source.TabularSource
	Settlements []source.TabularSource
}

// Options tunes a run.
type Options struct {
	// Aliases overrides column aliases; nil uses the built-in set.
	Aliases schema.AliasSet

	// Fields overrides the final report layout; nil uses report.DefaultFields.
	Fields []report.Field

	// Logger receives progress messages; nil discards them.
	Logger Logger
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is everything one run produced.
type Outcome struct {
	// RunID identifies the run in logs, file names and HTTP headers.
	RunID uuid.UUID

	StartedAt time.Time
	Duration  time.Duration

	// Catalog is nil when the seller listing could not be loaded or lacks
	// required columns.
	Catalog *catalog.Catalog

	// Shipments holds one result per shipment extract that was loaded.
	Shipments []shipment.Result

	// Pivot is nil when no settlement file could be used.
	Pivot *settlement.Pivot

	// Settlements reports what happened to each settlement file.
	Settlements []settlement.FileReport

	// Final is the final report, nil when there was no packed extract. When
	// the packed extract has no order id column it is that extract,
	// unmodified.
	Final *table.Table

	// Issues lists every skip, failure and degradation, in stage order.
	Issues []types.Issue

	// SellerErr is set when the seller listing could not be read at all.
	SellerErr error
}

// CatalogFailed reports whether shipment merging was aborted.
func (o *Outcome) CatalogFailed() bool {
	return o.Catalog == nil
}

// Shipment returns the merged result of one extract kind.
func (o *Outcome) Shipment(kind shipment.Kind) (shipment.Result, bool) {
	for _, r := range o.Shipments {
		if r.Kind == kind && r.Table != nil {
			return r, true
		}
	}
	return shipment.Result{}, false
}

// Counts tallies issues per severity.
func (o *Outcome) Counts() map[types.Severity]int {
	return types.CountBySeverity(o.Issues)
}

func (o *Outcome) addIssue(issue types.Issue, log Logger) {
	o.Issues = append(o.Issues, issue)
	switch issue.Severity {
	case types.SeverityCritical, types.SeverityError:
		log.Error("%s", issue.Error())
	case types.SeverityWarning:
		log.Warn("%s", issue.Error())
	default:
		log.Debug("%s", issue.Error())
	}
}

// =============================================================================
// RUN
// =============================================================================

// Run executes one reconciliation.
//
// PARAMETERS:
//   - in: The input sources.
//   - opts: Aliases, report layout and logger.
//
// RETURNS:
//   - The outcome. Run never returns nil and never panics; failures are
//     recorded as issues.
func Run(in Inputs, opts Options) *Outcome {
	log := opts.Logger
	if log == nil {
		log = NopLogger{}
	}
	aliases := opts.Aliases
	if aliases == nil {
		aliases = schema.DefaultAliases()
	}

	out := &Outcome{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
	log = With(log, "run_id", out.RunID.String())
	log.Info("Starting reconciliation run")

	// =========================================================================
	// STAGE 1: CATALOG
	// =========================================================================

	stage(out, types.StageCatalog, log, func() {
		out.Catalog = buildCatalog(in.Seller, aliases, out, log)
	})

	// =========================================================================
	// STAGE 2: COST MAP
	// =========================================================================

	var costs catalog.CostMap
	stage(out, types.StageCost, log, func() {
		costs = buildCostMap(in.Cost, aliases, out, log)
	})

	// =========================================================================
	// STAGE 3: SHIPMENTS
	// =========================================================================

	stage(out, types.StageShipment, log, func() {
		out.Shipments = mergeShipments(in, out.Catalog, costs, aliases, out, log)
	})

	// =========================================================================
	// STAGE 4: SETTLEMENTS
	// =========================================================================

	stage(out, types.StageSettlement, log, func() {
		out.Pivot, out.Settlements = aggregateSettlements(in.Settlements, aliases, out, log)
	})

	// =========================================================================
	// STAGE 5: FINAL REPORT
	// =========================================================================

	stage(out, types.StageReport, log, func() {
		packed, ok := out.Shipment(shipment.KindPacked)
		if !ok {
			if !out.CatalogFailed() {
				out.addIssue(types.NewIssue(types.StageReport, "Final Report", types.SeverityInfo,
					"no merged packed extract, final report not produced"), log)
			}
			return
		}

		final, issues := report.Assemble(packed.Table, out.Pivot, opts.Fields, aliases)
		for _, issue := range issues {
			out.addIssue(issue, log)
		}
		out.Final = final
		if final == packed.Table {
			log.Warn("Final report degraded to the unmodified packed extract")
		} else {
			log.Info("Final report assembled: %d rows", final.Len())
		}
	})

	out.Duration = time.Since(out.StartedAt)
	log.Info("Run finished in %s with %d issue(s)", out.Duration.Round(time.Millisecond), len(out.Issues))
	return out
}

// stage runs fn, converting a panic into a critical issue for that stage.
func stage(out *Outcome, name string, log Logger, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			out.addIssue(types.NewIssue(name, name, types.SeverityCritical,
				"stage aborted: %v", r), log)
		}
	}()
	fn()
}

// =============================================================================
// STAGE FUNCTIONS
// =============================================================================

// buildCatalog loads the seller listing and builds the catalog.
func buildCatalog(src source.TabularSource, aliases schema.AliasSet, out *Outcome, log Logger) *catalog.Catalog {
	if src == nil {
		out.SellerErr = fmt.Errorf("no seller listing supplied")
		out.addIssue(types.NewIssue(types.StageLoad, "seller listing", types.SeverityCritical,
			"%v, shipment merging skipped", out.SellerErr), log)
		return nil
	}

	log.Info("Loading seller listing %s...", src.Name())
	l := source.Load(src)
	t, err := l.Table, l.Err
	if err != nil {
		out.SellerErr = err
		out.addIssue(types.NewIssue(types.StageLoad, src.Name(), types.SeverityCritical,
			"failed to read seller listing: %v, shipment merging skipped", err), log)
		return nil
	}

	cat, err := catalog.Build(t, aliases)
	if err != nil {
		out.addIssue(types.NewIssue(types.StageCatalog, src.Name(), types.SeverityCritical,
			"%v, shipment merging skipped", err), log)
		return nil
	}

	if n := cat.Duplicates(); n > 0 {
		out.addIssue(types.NewIssue(types.StageCatalog, src.Name(), types.SeverityInfo,
			"%d duplicate product id row(s) dropped, first occurrence kept", n), log)
	}
	log.Info("Catalog built from %s: %d products", cat.Source(), cat.Len())
	return cat
}

// buildCostMap loads the optional cost sheet.
func buildCostMap(src source.TabularSource, aliases schema.AliasSet, out *Outcome, log Logger) catalog.CostMap {
	if src == nil {
		return nil
	}

	l := source.Load(src)
	t, err := l.Table, l.Err
	if err != nil {
		out.addIssue(types.NewIssue(types.StageCost, src.Name(), types.SeverityWarning,
			"failed to read cost sheet: %v, cost prices skipped", err), log)
		return nil
	}

	costs, issue := catalog.BuildCostMap(t, aliases)
	if issue != nil {
		out.addIssue(*issue, log)
	}
	log.Info("Cost sheet loaded: %d SKUs", len(costs))
	return costs
}

// mergeShipments loads each shipment extract and merges the ones that load.
func mergeShipments(in Inputs, cat *catalog.Catalog, costs catalog.CostMap, aliases schema.AliasSet, out *Outcome, log Logger) []shipment.Result {
	sources := []struct {
		kind shipment.Kind
		src  source.TabularSource
	}{
		{shipment.KindPacked, in.Packed},
		{shipment.KindRT, in.RT},
		{shipment.KindRTO, in.RTO},
	}

	supplied := 0
	var inputs []shipment.Input
	for _, s := range sources {
		if s.src == nil {
			continue
		}
		supplied++
		l := source.Load(s.src)
		if l.Err != nil {
			out.addIssue(types.NewIssue(types.StageLoad, l.Name, types.SeverityWarning,
				"failed to read %s extract: %v", s.kind, l.Err), log)
			continue
		}
		inputs = append(inputs, shipment.Input{Kind: s.kind, Table: l.Table})
	}

	if cat == nil {
		if supplied > 0 {
			log.Warn("Skipping %d shipment extract(s): no catalog", supplied)
		}
		return nil
	}

	results := shipment.MergeAll(inputs, cat, costs, aliases, log)
	processed := 0
	for _, r := range results {
		if r.Issue != nil {
			out.addIssue(*r.Issue, log)
		}
		if r.Table != nil {
			processed++
		}
	}

	if supplied > 0 && processed == 0 {
		out.addIssue(types.NewIssue(types.StageShipment, "shipments", types.SeverityWarning,
			"none of the shipment files were processed"), log)
	}
	return results
}

// aggregateSettlements loads every settlement file and builds the pivot.
func aggregateSettlements(sources []source.TabularSource, aliases schema.AliasSet, out *Outcome, log Logger) (*settlement.Pivot, []settlement.FileReport) {
	var tables []*table.Table
	for _, l := range source.LoadAll(sources) {
		if l.Err != nil {
			out.addIssue(types.NewIssue(types.StageLoad, l.Name, types.SeverityWarning,
				"failed to read settlement file: %v", l.Err), log)
			continue
		}
		tables = append(tables, l.Table)
	}

	pivot, reports := settlement.Aggregate(tables, aliases)
	for _, r := range reports {
		switch {
		case r.Skipped:
			out.addIssue(types.NewIssue(types.StageSettlement, r.Name, types.SeverityWarning,
				"file skipped: %v", r.Err), log)
		case r.Invalid > 0:
			out.addIssue(types.NewIssue(types.StageSettlement, r.Name, types.SeverityInfo,
				"%d invalid row(s): missing release id rows skipped, unreadable %s counted as 0", r.Invalid, r.Spec.AmountColumn), log)
		}
		if !r.Skipped {
			log.Info("Settlement file %s: %d %s line(s)", r.Name, r.Lines, r.Spec.Kind)
		}
	}

	if pivot == nil && len(sources) > 0 {
		out.addIssue(types.NewIssue(types.StageSettlement, "settlements", types.SeverityWarning,
			"no settlement file could be used, payment pivot is empty"), log)
	}
	if pivot != nil {
		log.Info("Payment pivot built: %d orders", pivot.Len())
	}
	return pivot, reports
}
