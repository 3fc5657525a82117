package report_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/report"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/settlement"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"20250115", "15-Jan-2025", true},
		{"20250115.0", "15-Jan-2025", true},
		{"2025-01-15", "15-Jan-2025", true},
		{"2025-01-15 10:30:00", "15-Jan-2025", true},
		{"2025-01-15T10:30:00+05:30", "15-Jan-2025", true},
		{"15-01-2025", "15-Jan-2025", true},
		{"15/1/2025", "15-Jan-2025", true},
		{"2025/01/15", "15-Jan-2025", true},
		{"15-Jan-2025", "15-Jan-2025", true},
		{"45672", "15-Jan-2025", true},
		{"abc", "", false},
		{"20251345", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := report.FormatDate(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FormatDate(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func packedMerged() *table.Table {
	t := table.New("Packed.csv",
		[]string{"packed_date", "order_id", "sku_id", "seller_sku_code", "sku_code", "brand", "qty", "cost_price", "warehouse"},
		[][]string{
			{"20250115", "500", "100", "SS1", "S1", "Acme", "1", "12.5", "W1"},
			{"abc", "501", "999", "Not Found", "Not Found", "Zeta", "2", "0", "W2"},
		})
	return t.WithKind("cost_price", table.KindDecimal)
}

func TestAssembleJoinsPivot(t *testing.T) {
	pivot := settlement.NewPivot([]settlement.Line{
		{OrderReleaseID: "500", Amount: decimal.RequireFromString("30"), Kind: settlement.Settled},
		{OrderReleaseID: "500", Amount: decimal.RequireFromString("70"), Kind: settlement.Unsettled},
	})

	final, issues := report.Assemble(packedMerged(), pivot, nil, nil)

	wantCols := []string{"Packed Date", "Order ID", "Brand", "Seller SKU Code", "Quantity",
		"Cost Price", "Settled Amount", "Outstanding Amount", "Total Payment"}
	if !reflect.DeepEqual(final.Columns, wantCols) {
		t.Fatalf("columns = %q, want %q", final.Columns, wantCols)
	}
	wantRows := [][]string{
		{"15-Jan-2025", "500", "Acme", "SS1", "1", "12.5", "30", "70", "100"},
		{"", "501", "Zeta", "Not Found", "2", "0", "0", "0", "0"},
	}
	if !reflect.DeepEqual(final.Rows, wantRows) {
		t.Fatalf("rows = %q, want %q", final.Rows, wantRows)
	}
	if final.Name != report.SheetFinal {
		t.Fatalf("name = %q", final.Name)
	}
	if final.KindOf("Order ID") != table.KindInteger || final.KindOf("Cost Price") != table.KindDecimal {
		t.Fatalf("kinds = %v", final.Kinds)
	}

	if len(issues) != 1 || issues[0].Severity != types.SeverityInfo {
		t.Fatalf("issues = %v, want one date info issue", issues)
	}
}

func TestAssembleEmptyPivotKeepsRows(t *testing.T) {
	final, issues := report.Assemble(packedMerged(), nil, nil, nil)

	if final.Len() != 2 {
		t.Fatalf("rows = %d, want 2", final.Len())
	}
	for i := 0; i < final.Len(); i++ {
		for _, col := range []string{"Settled Amount", "Outstanding Amount", "Total Payment"} {
			if got := final.Value(i, col); got != "0" {
				t.Fatalf("row %d %s = %q, want 0", i, col, got)
			}
		}
	}

	var warned bool
	for _, issue := range issues {
		if issue.Severity == types.SeverityWarning && strings.Contains(issue.Message, "pivot") {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("issues = %v, want missing pivot warning", issues)
	}
}

func TestAssembleWithoutOrderIDPassesThrough(t *testing.T) {
	shipments := table.New("RT.csv", []string{"sku_id", "brand"}, [][]string{{"1", "x"}})

	out, issues := report.Assemble(shipments, nil, nil, nil)
	if out != shipments {
		t.Fatalf("table was not passed through")
	}
	if len(issues) != 1 || issues[0].Severity != types.SeverityCritical {
		t.Fatalf("issues = %v, want one critical", issues)
	}
	if !strings.Contains(issues[0].Message, report.ErrNoOrderID.Error()) {
		t.Fatalf("message = %q", issues[0].Message)
	}
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   string
		kind table.Kind
		want interface{}
	}{
		{"500", table.KindInteger, int64(500)},
		{"500.0", table.KindInteger, int64(500)},
		{"123456789012345678901234", table.KindInteger, "123456789012345678901234"},
		{"9007199254740992", table.KindInteger, int64(9007199254740992)},
		{"9007199254740993", table.KindInteger, "9007199254740993"},
		{"1234567890123456789", table.KindInteger, "1234567890123456789"},
		{"ORD-1", table.KindInteger, "ORD-1"},
		{"12.5", table.KindDecimal, 12.5},
		{"Not Found", table.KindDecimal, "Not Found"},
		{"007", table.KindText, "007"},
		{"", table.KindDecimal, nil},
	}
	for _, tt := range tests {
		if got := report.CellValue(tt.in, tt.kind); got != tt.want {
			t.Errorf("CellValue(%q, %v) = %#v, want %#v", tt.in, tt.kind, got, tt.want)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	final := table.New("Final Report", []string{"Order ID", "Total Payment"}, [][]string{{"500", "100"}})
	final = final.WithKind("Order ID", table.KindInteger)
	long := table.New("Settlement: a very long sheet name indeed", []string{"x"}, [][]string{{"1"}})

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, []*table.Table{final, nil, settlement.NewPivot(nil).Table(), long}); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Final Report", "Payment Pivot", "Settlement_ a very long sheet n"}
	if !reflect.DeepEqual(sheets, want) {
		t.Fatalf("sheets = %q, want %q", sheets, want)
	}

	rows, err := f.GetRows("Final Report")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"Order ID", "Total Payment"}, {"500", "100"}}) {
		t.Fatalf("rows = %q", rows)
	}

	pivotRows, _ := f.GetRows("Payment Pivot")
	if len(pivotRows) != 1 || len(pivotRows[0]) != 4 {
		t.Fatalf("empty pivot sheet = %q, want header only", pivotRows)
	}
}

func TestWriteWorkbookNothingToWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestIssuesTable(t *testing.T) {
	issues := []types.Issue{
		types.NewIssue(types.StageSettlement, "notes.csv", types.SeverityWarning, "skipped"),
	}
	log := report.IssuesTable(issues)
	if log.Name != report.SheetRunLog || log.Value(0, "source") != "notes.csv" {
		t.Fatalf("run log = %+v", log)
	}
}
