// =============================================================================
// Order Settlement Reconciler - Settlement Aggregator
// =============================================================================
//
// Payment providers deliver any number of settlement files (prepaid,
// postpaid, outstanding). Provenance does not matter: each file is
// classified only by the columns it carries.
//
// CLASSIFICATION (per file):
//   - id column:     order_release_id / release_id
//   - amount column: settled_amount if present, else unsettled_amount
//   The amount column found decides the kind of every row in the file.
//   A file with neither id nor amount column is skipped and reported.
//
// AGGREGATION:
//   Lines from every surviving file are grouped by release id in the order
//   ids are first seen. Settled and unsettled amounts are summed separately;
//   the receivable is their sum.
//
// =============================================================================

package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoReleaseID is returned for a file without an order release id column.
	ErrNoReleaseID = errors.New("no order release id column")

	// ErrNoAmount is returned for a file without a settled or unsettled amount column.
	ErrNoAmount = errors.New("no settled or unsettled amount column")
)

// =============================================================================
// TYPES
// =============================================================================

// Kind is the amount kind of a settlement line.
type Kind int

const (
	// Settled amounts have been paid out.
	Settled Kind = iota

	// Unsettled amounts are still outstanding.
	Unsettled
)

// String returns the kind label.
func (k Kind) String() string {
	if k == Settled {
		return "settled"
	}
	return "unsettled"
}

// FileSpec records how one file was classified.
type FileSpec struct {
	IDColumn     string
	AmountColumn string
	Kind         Kind
}

// Line is one settlement row.
type Line struct {
	OrderReleaseID string
	Amount         decimal.Decimal
	Kind           Kind
}

// FileReport describes what happened to one input file.
type FileReport struct {
	Name    string
	Skipped bool
	Err     error
	Spec    FileSpec
	Lines   int
	Invalid int
}

// =============================================================================
// CLASSIFY
// =============================================================================

// Classify finds the id and amount columns of a settlement file.
func Classify(t *table.Table, aliases schema.AliasSet) (FileSpec, error) {
	idAliases := aliases.Get(schema.FieldOrderReleaseID)
	id, ok := schema.Resolve(t, idAliases...)
	if !ok {
		return FileSpec{}, fmt.Errorf("%w%s", ErrNoReleaseID, schema.Hint(t, idAliases...))
	}

	if col, ok := schema.ResolveField(t, aliases, schema.FieldSettledAmount); ok {
		return FileSpec{IDColumn: id, AmountColumn: col, Kind: Settled}, nil
	}
	if col, ok := schema.ResolveField(t, aliases, schema.FieldUnsettledAmount); ok {
		return FileSpec{IDColumn: id, AmountColumn: col, Kind: Unsettled}, nil
	}

	return FileSpec{}, fmt.Errorf("%w%s", ErrNoAmount, schema.Hint(t, aliases.Get(schema.FieldSettledAmount)...))
}

// Lines extracts the settlement lines of a classified file. Rows with an
// empty release id are skipped; rows whose amount does not parse contribute
// 0. Both are counted in invalid.
func Lines(t *table.Table, spec FileSpec) ([]Line, int) {
	idIdx := t.Index(spec.IDColumn)
	amountIdx := t.Index(spec.AmountColumn)
	if idIdx < 0 || amountIdx < 0 {
		return nil, t.Len()
	}

	lines := make([]Line, 0, t.Len())
	invalid := 0
	for _, row := range t.Rows {
		id := schema.CanonicalID(row[idIdx])
		if id == "" {
			invalid++
			continue
		}
		amount, ok := schema.ParseAmount(row[amountIdx])
		if !ok {
			invalid++
		}
		lines = append(lines, Line{OrderReleaseID: id, Amount: amount, Kind: spec.Kind})
	}
	return lines, invalid
}

// =============================================================================
// AGGREGATE
// =============================================================================

// Aggregate classifies every table and builds the pivot.
//
// PARAMETERS:
//   - tables: Settlement files, in any order and from any provider.
//   - aliases: Column aliases; nil uses the built-in set.
//
// RETURNS:
//   - The pivot, or nil when no file could be classified.
//   - One report per input table, in input order.
func Aggregate(tables []*table.Table, aliases schema.AliasSet) (*Pivot, []FileReport) {
	reports := make([]FileReport, 0, len(tables))
	var lines []Line
	survivors := 0

	for _, t := range tables {
		if t == nil {
			continue
		}
		report := FileReport{Name: t.Name}

		spec, err := Classify(t, aliases)
		if err != nil {
			report.Skipped = true
			report.Err = err
			reports = append(reports, report)
			continue
		}

		fileLines, invalid := Lines(t, spec)
		report.Spec = spec
		report.Lines = len(fileLines)
		report.Invalid = invalid
		reports = append(reports, report)

		lines = append(lines, fileLines...)
		survivors++
	}

	if survivors == 0 {
		return nil, reports
	}
	return NewPivot(lines), reports
}
