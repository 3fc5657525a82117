package validation_test

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/validation"
)

func csv(name, body string) source.TabularSource {
	return source.NewBytes(name, []byte(body), config.Default().CSVSettings)
}

func TestValidateUsableInputs(t *testing.T) {
	result := validation.Validate([]validation.Input{
		{Role: validation.RoleSeller, Source: csv("seller.csv", "sku_id,sku_code,seller_sku_code\n1,a,b\n")},
		{Role: validation.RolePacked, Source: csv("packed.csv", "sku_id,order_id,packed_date\n1,5,nope\n")},
		{Role: validation.RoleSettlement, Source: csv("s.csv", "release_id,settled_amount,unsettled_amount\n5,1,2\n")},
	}, nil)

	if !result.IsValid {
		t.Fatalf("result invalid:\n%s", validation.FormatResult(result))
	}
	if len(result.Files) != 3 {
		t.Fatalf("files = %d, want 3", len(result.Files))
	}

	packed := result.Files[1]
	var dateNote bool
	for _, e := range packed.Errors {
		if e.Field == "packed_date" && e.Severity == types.SeverityInfo {
			dateNote = true
		}
	}
	if !dateNote {
		t.Fatalf("packed findings = %v, want a date note", packed.Errors)
	}
}

func TestValidateMissingSeller(t *testing.T) {
	result := validation.Validate([]validation.Input{
		{Role: validation.RoleRT, Source: csv("rt.csv", "order_id\n1\n")},
	}, nil)

	if result.IsValid || result.ErrorCount != 1 {
		t.Fatalf("result = %+v, want one error", result)
	}
	if result.WarningCount != 1 {
		t.Fatalf("warnings = %d, want 1 (rt without product id)", result.WarningCount)
	}
}

func TestCheckSellerColumns(t *testing.T) {
	listing := table.New("seller.csv", []string{"sku id", "brand"}, [][]string{{"1", "x"}})

	report := validation.Check(listing, validation.RoleSeller, nil)
	if len(report.Columns) != 3 || !report.Columns[0].Found || report.Columns[1].Found {
		t.Fatalf("columns = %+v", report.Columns)
	}
	if len(report.Errors) != 2 {
		t.Fatalf("errors = %v, want 2", report.Errors)
	}
}

func TestCheckSettlementSkipped(t *testing.T) {
	sheet := table.New("notes.csv", []string{"memo"}, [][]string{{"x"}})

	report := validation.Check(sheet, validation.RoleSettlement, nil)
	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0].Message, "skipped") {
		t.Fatalf("errors = %v", report.Errors)
	}
}
