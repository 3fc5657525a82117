// =============================================================================
// Order Settlement Reconciler - Shipment Merger
// =============================================================================
//
// The merger enriches one shipment extract (packed, returned-in-transit or
// returned-to-origin) with the seller's SKU codes and, when a cost sheet was
// supplied, the unit cost.
//
// ENRICHMENT:
//   key column          product id, as found in the extract
//   key + 1             seller_sku_code  ("Not Found" when unmatched)
//   key + 2             sku_code         ("Not Found" when unmatched)
//   last                cost_price       (only with a non-empty cost map)
//
// Every other column keeps its label and relative order.
//
// FAILURE CONTAINMENT:
//   MergeAll processes each extract on its own. A failure in one (including
//   a panic) is reported on that Result and never affects its siblings.
//
// =============================================================================

package shipment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/catalog"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// NotFound fills the SKU columns of rows with no catalog match.
const NotFound = "Not Found"

// Output column labels.
const (
	ColumnSellerSKUCode = "seller_sku_code"
	ColumnSKUCode       = "sku_code"
	ColumnCostPrice     = "cost_price"
)

// =============================================================================
// TYPES
// =============================================================================

// Kind identifies which shipment extract a table is.
type Kind string

const (
	KindPacked Kind = "packed"
	KindRT     Kind = "rt"
	KindRTO    Kind = "rto"
)

// SheetName returns the output sheet label for the merged extract.
func (k Kind) SheetName() string {
	switch k {
	case KindPacked:
		return "Packed Merged"
	case KindRT:
		return "RT Merged"
	case KindRTO:
		return "RTO Merged"
	default:
		return string(k) + " Merged"
	}
}

// Input is one shipment extract awaiting a merge.
type Input struct {
	Kind  Kind
	Table *table.Table
}

// Result is the outcome of merging one extract.
type Result struct {
	Kind Kind

	// Source is the input table name.
	Source string

	// Table is the enriched table, the unmodified input when Merged is
	// false, or nil when Err is set.
	Table *table.Table

	// Merged is false when no product id column was found.
	Merged bool

	Matched   int
	Unmatched int

	// Issue describes a pass-through or failure, if any.
	Issue *types.Issue

	// Err is set when the extract could not be processed at all.
	Err error
}

// =============================================================================
// MERGE
// =============================================================================

// Merge enriches one shipment table.
//
// PARAMETERS:
//   - t: The shipment extract.
//   - cat: The seller catalog.
//   - costs: The cost map; nil or empty skips cost enrichment.
//   - aliases: Column aliases; nil uses the built-in set.
//
// RETURNS:
//   - The merge result. When the product id column is missing the table is
//     passed through with Merged == false and a warning issue.
//   - An error only for an internal failure building the output table.
func Merge(t *table.Table, cat *catalog.Catalog, costs catalog.CostMap, aliases schema.AliasSet) (Result, error) {
	if t == nil {
		return Result{}, fmt.Errorf("shipment table is nil")
	}

	result := Result{Source: t.Name}

	keyAliases := aliases.Get(schema.FieldProductID)
	key, ok := schema.Resolve(t, keyAliases...)
	if !ok {
		issue := types.NewIssue(types.StageShipment, t.Name, types.SeverityWarning,
			"no product id column (%v), table not merged%s", keyAliases, schema.Hint(t, keyAliases...))
		result.Table = t
		result.Issue = &issue
		return result, nil
	}

	// Existing enrichment columns would shift the contracted positions and
	// shadow the catalog values in the final report.
	base := t
	if stale := enrichmentColumns(t, key); len(stale) > 0 {
		base = t.DropColumns(stale...)
	}
	keyIdx := base.Index(key)

	sellerCodes := make([]string, base.Len())
	skuCodes := make([]string, base.Len())
	for i, row := range base.Rows {
		entry, found := cat.Lookup(row[keyIdx])
		if !found {
			sellerCodes[i] = NotFound
			skuCodes[i] = NotFound
			result.Unmatched++
			continue
		}
		sellerCodes[i] = entry.SellerSKUCode
		skuCodes[i] = entry.SKUCode
		result.Matched++
	}

	out, err := base.InsertColumn(keyIdx+1, ColumnSellerSKUCode, sellerCodes)
	if err != nil {
		return Result{}, fmt.Errorf("failed to insert %s: %w", ColumnSellerSKUCode, err)
	}
	out, err = out.InsertColumn(keyIdx+2, ColumnSKUCode, skuCodes)
	if err != nil {
		return Result{}, fmt.Errorf("failed to insert %s: %w", ColumnSKUCode, err)
	}

	if len(costs) > 0 {
		out, err = appendCost(out, sellerCodes, costs)
		if err != nil {
			return Result{}, err
		}
	}

	result.Table = out
	result.Merged = true
	return result, nil
}

// enrichmentColumns returns the columns of t whose normalized label equals
// one of the columns Merge writes. The key column is never returned.
func enrichmentColumns(t *table.Table, key string) []string {
	written := map[schema.Label]bool{
		schema.Normalize(ColumnSellerSKUCode): true,
		schema.Normalize(ColumnSKUCode):       true,
		schema.Normalize(ColumnCostPrice):     true,
	}

	var stale []string
	for i, label := range schema.NormalizeAll(t.Columns) {
		if written[label] && t.Columns[i] != key {
			stale = append(stale, t.Columns[i])
		}
	}
	return stale
}

// appendCost adds the cost_price column, 0 for unlisted SKUs.
func appendCost(t *table.Table, sellerCodes []string, costs catalog.CostMap) (*table.Table, error) {
	prices := make([]string, len(sellerCodes))
	for i, code := range sellerCodes {
		price := decimal.Zero
		if code != NotFound {
			if p, ok := costs.Price(code); ok {
				price = p
			}
		}
		prices[i] = price.String()
	}

	out, err := t.AppendColumn(ColumnCostPrice, prices)
	if err != nil {
		return nil, fmt.Errorf("failed to append %s: %w", ColumnCostPrice, err)
	}
	return out.WithKind(ColumnCostPrice, table.KindDecimal), nil
}

// =============================================================================
// BATCH
// =============================================================================

// Logger is the subset of the pipeline logger the batch merge uses.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// MergeAll merges every input independently, in order. Nil tables are
// skipped without a result.
func MergeAll(inputs []Input, cat *catalog.Catalog, costs catalog.CostMap, aliases schema.AliasSet, log Logger) []Result {
	results := make([]Result, 0, len(inputs))

	for _, in := range inputs {
		if in.Table == nil {
			continue
		}
		log.Info("Processing %s...", in.Table.Name)

		res := mergeOne(in, cat, costs, aliases)
		switch {
		case res.Err != nil:
			log.Error("Failed to process %s: %v", res.Source, res.Err)
		case !res.Merged:
			log.Warn("%s", res.Issue.Message)
		default:
			log.Info("%s successfully processed: %d rows matched, %d not found",
				res.Source, res.Matched, res.Unmatched)
		}
		results = append(results, res)
	}

	return results
}

// mergeOne runs Merge for one input, turning errors and panics into an
// absent result.
func mergeOne(in Input, cat *catalog.Catalog, costs catalog.CostMap, aliases schema.AliasSet) (res Result) {
	name := in.Table.Name
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while merging: %v", r)
			issue := types.NewIssue(types.StageShipment, name, types.SeverityError, "%v", err)
			res = Result{Kind: in.Kind, Source: name, Err: err, Issue: &issue}
		}
	}()

	res, err := Merge(in.Table, cat, costs, aliases)
	if err != nil {
		issue := types.NewIssue(types.StageShipment, name, types.SeverityError, "merge failed: %v", err)
		return Result{Kind: in.Kind, Source: name, Err: err, Issue: &issue}
	}
	res.Kind = in.Kind
	return res
}
