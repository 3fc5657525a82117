package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/catalog"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

func sellerListing() *table.Table {
	return table.New("Seller Listings.csv",
		[]string{`"sku id"`, "SKU_Code", "Seller SKU Code", "brand"},
		[][]string{
			{"100", "S1", "SS1", "Acme"},
			{"100.0", "S1b", "SS1b", "Acme"},
			{"200", "S2", "SS2", "Zeta"},
		})
}

func TestBuildKeepsFirstDuplicate(t *testing.T) {
	cat, err := catalog.Build(sellerListing(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got, want := cat.Len(), 2; got != want {
		t.Fatalf("Len = %d, want %d", got, want)
	}
	if got, want := cat.Duplicates(), 1; got != want {
		t.Fatalf("Duplicates = %d, want %d", got, want)
	}

	e, ok := cat.Lookup("100")
	if !ok {
		t.Fatalf("100 not found")
	}
	if e.SKUCode != "S1" || e.SellerSKUCode != "SS1" {
		t.Fatalf("entry = %+v, want first occurrence", e)
	}
	if _, ok := cat.Lookup(" 200 "); !ok {
		t.Fatalf("padded id not found")
	}
	if _, ok := cat.Lookup("300"); ok {
		t.Fatalf("300 unexpectedly found")
	}
}

func TestBuildMissingColumns(t *testing.T) {
	listing := table.New("listing.csv", []string{"sku idd", "brand"}, [][]string{{"1", "x"}})

	_, err := catalog.Build(listing, nil)
	if !errors.Is(err, types.ErrMissingCatalogColumns) {
		t.Fatalf("err = %v, want ErrMissingCatalogColumns", err)
	}

	var missing *catalog.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("err is %T, want *MissingColumnsError", err)
	}
	if got, want := len(missing.Missing), 3; got != want {
		t.Fatalf("missing = %v, want all three fields", missing.Missing)
	}
	if !strings.Contains(err.Error(), "sku idd") {
		t.Fatalf("error %q lacks a closest-column hint", err)
	}
}

func TestCatalogTable(t *testing.T) {
	cat, err := catalog.Build(sellerListing(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sheet := cat.Table()
	if sheet.Name != "SKU Mapping" || sheet.Len() != 2 {
		t.Fatalf("sheet = %s with %d rows", sheet.Name, sheet.Len())
	}
	if got := sheet.Value(1, "seller_sku_code"); got != "SS2" {
		t.Fatalf("seller_sku_code = %q, want SS2", got)
	}
}

func TestBuildCostMap(t *testing.T) {
	sheet := table.New("costs.xlsx",
		[]string{"Seller SKU", "Unit Cost (INR)"},
		[][]string{
			{"SS1", "12.50"},
			{"SS1", "99"},
			{"SS2", "n/a"},
			{"", "5"},
		})

	costs, issue := catalog.BuildCostMap(sheet, nil)
	if issue != nil {
		t.Fatalf("unexpected issue: %v", issue)
	}
	if got, _ := costs.Price("SS1"); !got.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("SS1 = %s, want 12.5", got)
	}
	if got, ok := costs.Price("SS2"); !ok || !got.IsZero() {
		t.Fatalf("SS2 = %s (%v), want listed with 0", got, ok)
	}
	if len(costs) != 2 {
		t.Fatalf("len = %d, want 2", len(costs))
	}
}

func TestBuildCostMapMissingColumn(t *testing.T) {
	sheet := table.New("costs.csv", []string{"Seller SKU", "Notes"}, [][]string{{"SS1", "x"}})

	costs, issue := catalog.BuildCostMap(sheet, nil)
	if issue == nil || issue.Severity != types.SeverityWarning {
		t.Fatalf("issue = %v, want warning", issue)
	}
	if len(costs) != 0 {
		t.Fatalf("costs = %v, want empty", costs)
	}
}

func TestBuildCostMapAbsent(t *testing.T) {
	costs, issue := catalog.BuildCostMap(nil, schema.DefaultAliases())
	if issue != nil || len(costs) != 0 {
		t.Fatalf("costs = %v, issue = %v", costs, issue)
	}
}
