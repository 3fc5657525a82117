package pipeline

import (
	"github.com/ginjaninja78/order-settlement-reconciler/internal/report"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/shipment"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// Sheets packages the outcome as named output tables, in workbook order:
// Final Report (when produced), Payment Pivot (always), the merged
// extracts, SKU Mapping and Run Log.
func (o *Outcome) Sheets() []*table.Table {
	var sheets []*table.Table

	if o.Final != nil {
		sheets = append(sheets, o.Final.Renamed(report.SheetFinal))
	}
	sheets = append(sheets, o.Pivot.Table())

	for _, kind := range []shipment.Kind{shipment.KindPacked, shipment.KindRT, shipment.KindRTO} {
		if r, ok := o.Shipment(kind); ok {
			sheets = append(sheets, r.Table.Renamed(kind.SheetName()))
		}
	}

	if o.Catalog != nil {
		sheets = append(sheets, o.Catalog.Table())
	}
	if len(o.Issues) > 0 {
		sheets = append(sheets, report.IssuesTable(o.Issues))
	}
	return sheets
}
