// =============================================================================
// Order Settlement Reconciler - Report Assembler
// =============================================================================
//
// The assembler turns the merged packed-shipment table into the "Final
// Report": one row per shipment row, joined with the settlement pivot on
// order id, with a formatted date and a fixed, renamed column set.
//
// STEPS:
//   1. Resolve the order id column. Without it the shipment table is
//      returned unmodified with a critical issue.
//   2. Left-join the pivot. Orders without settlement lines get 0 settled
//      and 0 outstanding; total payment is their sum.
//   3. Rewrite the packed date to dd-Mon-yyyy. Unparseable dates become
//      blank cells; the row is kept.
//   4. Project the report fields that exist, in order, under their
//      display labels.
//
// =============================================================================

package report

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/settlement"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// ErrNoOrderID is reported when the shipment table has no order id column.
var ErrNoOrderID = errors.New("no order id column")

// SheetFinal is the name of the final report sheet.
const SheetFinal = "Final Report"

// Joined column labels.
const (
	ColumnSettledAmount     = "settled_amount"
	ColumnOutstandingAmount = "outstanding_amount"
	ColumnTotalPayment      = "total_payment"
)

// =============================================================================
// FIELDS
// =============================================================================

// Field is one column of the final report.
type Field struct {
	// Label is the display header.
	Label string

	// Source is resolved through the alias set when Column is empty.
	Source schema.Field

	// Column names a computed column exactly.
	Column string

	// Kind controls rendering in the workbook.
	Kind table.Kind
}

// DefaultFields returns the final report layout.
func DefaultFields() []Field {
	return []Field{
		{Label: "Packed Date", Source: schema.FieldPackedDate},
		{Label: "Order ID", Source: schema.FieldOrderID, Kind: table.KindInteger},
		{Label: "Brand", Source: schema.FieldBrand},
		{Label: "Seller SKU Code", Source: schema.FieldSellerSKUCode},
		{Label: "Shipment Value", Source: schema.FieldShipmentValue, Kind: table.KindDecimal},
		{Label: "Tax Amount", Source: schema.FieldTaxAmount, Kind: table.KindDecimal},
		{Label: "Quantity", Source: schema.FieldQuantity, Kind: table.KindDecimal},
		{Label: "Cost Price", Source: schema.FieldCostPrice, Kind: table.KindDecimal},
		{Label: "Settled Amount", Column: ColumnSettledAmount, Kind: table.KindDecimal},
		{Label: "Outstanding Amount", Column: ColumnOutstandingAmount, Kind: table.KindDecimal},
		{Label: "Total Payment", Column: ColumnTotalPayment, Kind: table.KindDecimal},
	}
}

// =============================================================================
// ASSEMBLE
// =============================================================================

// Assemble builds the final report.
//
// PARAMETERS:
//   - shipments: The merged shipment table.
//   - pivot: The settlement pivot; nil means every order settles at 0.
//   - fields: Output layout; nil uses DefaultFields.
//   - aliases: Column aliases; nil uses the built-in set.
//
// RETURNS:
//   - The final report, or the shipment table itself when it has no order
//     id column.
//   - Issues raised along the way (missing order id, missing pivot,
//     unparseable dates).
func Assemble(shipments *table.Table, pivot *settlement.Pivot, fields []Field, aliases schema.AliasSet) (*table.Table, []types.Issue) {
	if shipments == nil {
		return nil, nil
	}
	if fields == nil {
		fields = DefaultFields()
	}
	var issues []types.Issue

	orderAliases := aliases.Get(schema.FieldOrderID)
	orderCol, ok := schema.Resolve(shipments, orderAliases...)
	if !ok {
		issues = append(issues, types.NewIssue(types.StageReport, shipments.Name, types.SeverityCritical,
			"%v (%v), shipment table passed through unmodified%s",
			ErrNoOrderID, orderAliases, schema.Hint(shipments, orderAliases...)))
		return shipments, issues
	}

	if pivot == nil {
		issues = append(issues, types.NewIssue(types.StageReport, shipments.Name, types.SeverityWarning,
			"no settlement pivot, settled and outstanding amounts default to 0"))
	}

	joined, err := joinPivot(shipments, orderCol, pivot)
	if err != nil {
		issues = append(issues, types.NewIssue(types.StageReport, shipments.Name, types.SeverityCritical,
			"failed to join settlement pivot: %v", err))
		return shipments, issues
	}

	if dateCol, ok := schema.ResolveField(joined, aliases, schema.FieldPackedDate); ok {
		var failed int
		joined, failed = formatDates(joined, dateCol)
		if failed > 0 {
			issues = append(issues, types.NewIssue(types.StageReport, shipments.Name, types.SeverityInfo,
				"%d %s value(s) could not be read as dates and were left blank", failed, dateCol))
		}
	}

	final, err := project(joined, fields, aliases)
	if err != nil {
		issues = append(issues, types.NewIssue(types.StageReport, shipments.Name, types.SeverityCritical,
			"failed to project report columns: %v", err))
		return shipments, issues
	}
	final.Name = SheetFinal
	return final, issues
}

// joinPivot appends the settled, outstanding and total payment columns.
func joinPivot(t *table.Table, orderCol string, pivot *settlement.Pivot) (*table.Table, error) {
	base := t.DropColumns(ColumnSettledAmount, ColumnOutstandingAmount, ColumnTotalPayment)
	orderIdx := base.Index(orderCol)

	settled := make([]string, base.Len())
	outstanding := make([]string, base.Len())
	total := make([]string, base.Len())
	for i, row := range base.Rows {
		s, o := decimal.Zero, decimal.Zero
		if p, ok := pivot.Lookup(row[orderIdx]); ok {
			s, o = p.TotalSettled, p.TotalOutstanding
		}
		settled[i] = s.String()
		outstanding[i] = o.String()
		total[i] = s.Add(o).String()
	}

	out, err := base.AppendColumn(ColumnSettledAmount, settled)
	if err != nil {
		return nil, err
	}
	if out, err = out.AppendColumn(ColumnOutstandingAmount, outstanding); err != nil {
		return nil, err
	}
	return out.AppendColumn(ColumnTotalPayment, total)
}

// formatDates rewrites a date column in a copy of t and counts the
// non-empty cells that could not be parsed.
func formatDates(t *table.Table, column string) (*table.Table, int) {
	out := t.Clone()
	idx := out.Index(column)
	failed := 0
	for _, row := range out.Rows {
		if row[idx] == "" {
			continue
		}
		formatted, ok := FormatDate(row[idx])
		if !ok {
			failed++
		}
		row[idx] = formatted
	}
	return out, failed
}

// project selects and renames the report fields present in t.
func project(t *table.Table, fields []Field, aliases schema.AliasSet) (*table.Table, error) {
	var (
		columns []string
		labels  []string
		kinds   []table.Kind
		used    = make(map[string]bool)
	)
	for _, f := range fields {
		col := f.Column
		if col == "" {
			resolved, ok := schema.ResolveField(t, aliases, f.Source)
			if !ok {
				continue
			}
			col = resolved
		} else if !t.Has(col) {
			continue
		}
		if used[col] {
			continue
		}
		used[col] = true
		columns = append(columns, col)
		labels = append(labels, f.Label)
		kinds = append(kinds, f.Kind)
	}

	out, err := t.Project(columns, labels)
	if err != nil {
		return nil, err
	}
	for i, label := range labels {
		out = out.WithKind(label, kinds[i])
	}
	return out, nil
}
