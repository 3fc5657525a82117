package pipeline_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/pipeline"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/shipment"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

func csvSource(name, body string) source.TabularSource {
	return source.NewBytes(name, []byte(body), config.Default().CSVSettings)
}

func scenarioInputs() pipeline.Inputs {
	return pipeline.Inputs{
		Seller: csvSource("Seller Listings.csv",
			"\"sku id\",sku code,seller sku code\n100,S1,SS1\n100,S9,SS9\n"),
		Packed: csvSource("Packed.csv",
			"packed_date,order_id,sku_id,brand\n20250115,500,100,Acme\nabc,501,999,Zeta\n"),
		RT: csvSource("RT.csv",
			"old_parent_order_id,sku id\n600,100\n"),
		Settlements: []source.TabularSource{
			csvSource("prepaid.csv", "order_release_id,Settled_Amount\n500,30\n"),
			csvSource("outstanding.csv", "release_id,Unsettled_Amount\n500,70\n"),
			csvSource("notes.csv", "memo\nhello\n"),
		},
	}
}

func TestRunScenarios(t *testing.T) {
	out := pipeline.Run(scenarioInputs(), pipeline.Options{})

	if out.CatalogFailed() {
		t.Fatalf("catalog failed: %v", out.Issues)
	}

	// Scenario A and B: enrichment at key+1 / key+2 with the sentinel.
	packed, ok := out.Shipment(shipment.KindPacked)
	if !ok {
		t.Fatalf("no packed result")
	}
	key := packed.Table.Index("sku_id")
	if packed.Table.Columns[key+1] != "seller_sku_code" || packed.Table.Columns[key+2] != "sku_code" {
		t.Fatalf("columns = %q", packed.Table.Columns)
	}
	if got := packed.Table.Value(0, "sku_code"); got != "S1" {
		t.Fatalf("row 0 sku_code = %q, want S1", got)
	}
	if got := packed.Table.Value(1, "seller_sku_code"); got != shipment.NotFound {
		t.Fatalf("row 1 seller_sku_code = %q, want %q", got, shipment.NotFound)
	}

	// Scenario C: settled and unsettled files sum per release id.
	row, ok := out.Pivot.Lookup("500")
	if !ok {
		t.Fatalf("500 missing from pivot")
	}
	if row.TotalSettled.String() != "30" || row.TotalOutstanding.String() != "70" || row.TotalReceivable.String() != "100" {
		t.Fatalf("pivot row = %+v", row)
	}

	// Scenario D: formatted and blanked dates.
	if got := out.Final.Value(0, "Packed Date"); got != "15-Jan-2025" {
		t.Fatalf("packed date = %q", got)
	}
	if got := out.Final.Value(1, "Packed Date"); got != "" {
		t.Fatalf("unparseable date = %q, want blank", got)
	}
	if got := out.Final.Value(0, "Total Payment"); got != "100" {
		t.Fatalf("total payment = %q, want 100", got)
	}

	counts := out.Counts()
	if counts[types.SeverityCritical] != 0 {
		t.Fatalf("critical issues: %v", out.Issues)
	}
	if !hasIssue(out.Issues, "notes.csv", types.SeverityWarning) {
		t.Fatalf("skipped settlement file not reported: %v", out.Issues)
	}
	if !hasIssue(out.Issues, "Seller Listings.csv", types.SeverityInfo) {
		t.Fatalf("dropped duplicate not reported: %v", out.Issues)
	}
}

func TestRunSheets(t *testing.T) {
	out := pipeline.Run(scenarioInputs(), pipeline.Options{})

	var names []string
	for _, s := range out.Sheets() {
		names = append(names, s.Name)
	}
	want := "Final Report,Payment Pivot,Packed Merged,RT Merged,SKU Mapping,Run Log"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("sheets = %s, want %s", got, want)
	}
}

func TestRunWithoutCatalog(t *testing.T) {
	in := scenarioInputs()
	in.Seller = csvSource("Seller Listings.csv", "sku,code\n1,2\n")

	out := pipeline.Run(in, pipeline.Options{})
	if !out.CatalogFailed() {
		t.Fatalf("catalog unexpectedly built")
	}
	if out.SellerErr != nil {
		t.Fatalf("SellerErr = %v, listing was readable", out.SellerErr)
	}
	if out.Final != nil || len(out.Shipments) != 0 {
		t.Fatalf("shipments merged without a catalog")
	}
	if out.Pivot == nil {
		t.Fatalf("settlements should still aggregate")
	}
	if !hasIssue(out.Issues, "Seller Listings.csv", types.SeverityCritical) {
		t.Fatalf("catalog failure not reported: %v", out.Issues)
	}

	var names []string
	for _, s := range out.Sheets() {
		names = append(names, s.Name)
	}
	if got, want := strings.Join(names, ","), "Payment Pivot,Run Log"; got != want {
		t.Fatalf("sheets = %s, want %s", got, want)
	}
}

func TestRunUnreadableSeller(t *testing.T) {
	out := pipeline.Run(pipeline.Inputs{Seller: csvSource("seller.pdf", "x")}, pipeline.Options{})
	if out.SellerErr == nil {
		t.Fatalf("SellerErr not set")
	}
}

func TestRunEmptyPivotKeepsRows(t *testing.T) {
	in := scenarioInputs()
	in.Settlements = nil

	out := pipeline.Run(in, pipeline.Options{})
	if out.Pivot != nil {
		t.Fatalf("pivot = %+v, want nil", out.Pivot)
	}
	if out.Final.Len() != 2 {
		t.Fatalf("final rows = %d, want 2", out.Final.Len())
	}
	for i := 0; i < out.Final.Len(); i++ {
		if got := out.Final.Value(i, "Total Payment"); got != "0" {
			t.Fatalf("row %d total = %q, want 0", i, got)
		}
	}
}

// brokenSource panics while reading.
type brokenSource struct{ name string }

func (b brokenSource) Name() string { return b.name }

func (brokenSource) Load() (*table.Table, error) { panic("reader blew up") }

func sheetNames(out *pipeline.Outcome) string {
	var names []string
	for _, s := range out.Sheets() {
		names = append(names, s.Name)
	}
	return strings.Join(names, ",")
}

func TestRunContainsPanickingSettlementSource(t *testing.T) {
	in := scenarioInputs()
	in.Settlements = append(in.Settlements, brokenSource{name: "broken.csv"})

	out := pipeline.Run(in, pipeline.Options{})
	if !hasIssue(out.Issues, "broken.csv", types.SeverityWarning) {
		t.Fatalf("broken settlement file not reported: %v", out.Issues)
	}
	if row, ok := out.Pivot.Lookup("500"); !ok || row.TotalReceivable.String() != "100" {
		t.Fatalf("pivot lost sibling files: %+v", row)
	}
}

func TestRunContainsPanickingShipmentSource(t *testing.T) {
	in := scenarioInputs()
	in.Packed = brokenSource{name: "Packed.csv"}

	out := pipeline.Run(in, pipeline.Options{})
	if _, ok := out.Shipment(shipment.KindRT); !ok {
		t.Fatalf("RT result lost: %v", out.Issues)
	}
	if !hasIssue(out.Issues, "Packed.csv", types.SeverityWarning) {
		t.Fatalf("broken packed extract not reported: %v", out.Issues)
	}
	if out.Counts()[types.SeverityCritical] != 0 {
		t.Fatalf("stage aborted: %v", out.Issues)
	}
}

func TestRunPacksDegradedFinalReport(t *testing.T) {
	in := scenarioInputs()
	in.Packed = csvSource("Packed.csv", "sku_id,brand\n100,Acme\n")

	out := pipeline.Run(in, pipeline.Options{})
	if out.Final == nil {
		t.Fatalf("final report dropped: %v", out.Issues)
	}
	if !hasIssue(out.Issues, "Packed.csv", types.SeverityCritical) {
		t.Fatalf("missing order id not reported: %v", out.Issues)
	}
	want := "Final Report,Payment Pivot,Packed Merged,RT Merged,SKU Mapping,Run Log"
	if got := sheetNames(out); got != want {
		t.Fatalf("sheets = %s, want %s", got, want)
	}
	if got := out.Final.Value(0, "seller_sku_code"); got != "SS1" {
		t.Fatalf("seller_sku_code = %q, want SS1", got)
	}
}

func TestRunFinalReportUsesCatalogOverStaleColumns(t *testing.T) {
	in := scenarioInputs()
	in.Packed = csvSource("Packed.csv", "Seller SKU Code,order_id,sku_id\nstale,500,100\n")

	out := pipeline.Run(in, pipeline.Options{})
	if got := out.Final.Value(0, "Seller SKU Code"); got != "SS1" {
		t.Fatalf("Seller SKU Code = %q, want SS1", got)
	}
	if got := out.Catalog.Source(); got != "Seller Listings.csv" {
		t.Fatalf("catalog source = %q", got)
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := pipeline.NewLogger(&buf, "warn")
	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown 2") {
		t.Fatalf("log output = %q", buf.String())
	}
}

func hasIssue(issues []types.Issue, src string, sev types.Severity) bool {
	for _, i := range issues {
		if i.Source == src && i.Severity == sev {
			return true
		}
	}
	return false
}
