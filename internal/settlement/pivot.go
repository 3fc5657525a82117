package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// Pivot column labels.
const (
	ColumnOrderReleaseID   = "order_release_id"
	ColumnTotalSettled     = "total_settled"
	ColumnTotalOutstanding = "total_outstanding"
	ColumnTotalReceivable  = "total_receivable"
)

// PivotRow holds the totals for one order release id.
type PivotRow struct {
	OrderReleaseID   string
	TotalSettled     decimal.Decimal
	TotalOutstanding decimal.Decimal
	TotalReceivable  decimal.Decimal
}

// Pivot is the per-order settlement summary.
type Pivot struct {
	Rows []PivotRow
	byID map[string]int
}

// NewPivot groups lines by release id in first-seen order.
func NewPivot(lines []Line) *Pivot {
	p := &Pivot{byID: make(map[string]int)}

	for _, l := range lines {
		i, ok := p.byID[l.OrderReleaseID]
		if !ok {
			i = len(p.Rows)
			p.byID[l.OrderReleaseID] = i
			p.Rows = append(p.Rows, PivotRow{
				OrderReleaseID:   l.OrderReleaseID,
				TotalSettled:     decimal.Zero,
				TotalOutstanding: decimal.Zero,
			})
		}

		row := &p.Rows[i]
		if l.Kind == Settled {
			row.TotalSettled = row.TotalSettled.Add(l.Amount)
		} else {
			row.TotalOutstanding = row.TotalOutstanding.Add(l.Amount)
		}
	}

	for i := range p.Rows {
		p.Rows[i].TotalReceivable = p.Rows[i].TotalSettled.Add(p.Rows[i].TotalOutstanding)
	}
	return p
}

// Len returns the number of distinct release ids.
func (p *Pivot) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Rows)
}

// Lookup returns the totals for an order id. A nil pivot finds nothing.
func (p *Pivot) Lookup(id string) (PivotRow, bool) {
	if p == nil {
		return PivotRow{}, false
	}
	i, ok := p.byID[schema.CanonicalID(id)]
	if !ok {
		return PivotRow{}, false
	}
	return p.Rows[i], true
}

// Table renders the pivot as the "Payment Pivot" sheet. A nil pivot gives
// a sheet with headers only.
func (p *Pivot) Table() *table.Table {
	rows := make([][]string, 0, p.Len())
	if p != nil {
		for _, r := range p.Rows {
			rows = append(rows, []string{
				r.OrderReleaseID,
				r.TotalSettled.String(),
				r.TotalOutstanding.String(),
				r.TotalReceivable.String(),
			})
		}
	}

	t := table.New("Payment Pivot",
		[]string{ColumnOrderReleaseID, ColumnTotalSettled, ColumnTotalOutstanding, ColumnTotalReceivable},
		rows)
	t.Kinds = map[string]table.Kind{
		ColumnOrderReleaseID:   table.KindInteger,
		ColumnTotalSettled:     table.KindDecimal,
		ColumnTotalOutstanding: table.KindDecimal,
		ColumnTotalReceivable:  table.KindDecimal,
	}
	return t
}
