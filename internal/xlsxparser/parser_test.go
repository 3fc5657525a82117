package xlsxparser_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/xlsxparser"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()
	defaultSheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	if sheet != defaultSheet {
		if _, err := wb.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
		if err := wb.DeleteSheet(defaultSheet); err != nil {
			t.Fatalf("DeleteSheet: %v", err)
		}
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := wb.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestParseFirstSheetSkipsLeadingBlankRows(t *testing.T) {
	buf := buildWorkbook(t, "Settled", [][]interface{}{
		{nil, nil},
		{"Order_Release_ID", "Settled_Amount"},
		{"500", "30"},
		{nil, nil},
		{"501"},
	})

	tbl, err := xlsxparser.Parse(buf, "prepaid.xlsx", "")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := tbl.Columns, []string{"Order_Release_ID", "Settled_Amount"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %q, want %q", got, want)
	}
	if got, want := tbl.Rows, [][]string{{"500", "30"}, {"501", ""}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %q, want %q", got, want)
	}
}

func TestParseNamedSheetMissing(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]interface{}{{"a"}})
	if _, err := xlsxparser.Parse(buf, "x.xlsx", "Nope"); err == nil {
		t.Fatalf("expected error for missing sheet")
	}
}

func TestFromRowsEmpty(t *testing.T) {
	if _, err := xlsxparser.FromRows("blank", [][]string{{"", " "}}); err == nil {
		t.Fatalf("expected error for blank sheet")
	}
}
