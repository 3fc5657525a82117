// =============================================================================
// Order Settlement Reconciler - Workbook Writer
// =============================================================================
//
// This module packages output tables into one .xlsx workbook, one sheet per
// table, in the order given.
//
// SHEET LAYOUT:
//   - Row 1 holds the column labels: bold, shaded, frozen.
//   - Data starts on row 2, one row per table row.
//   - Column widths follow the longest value, within fixed bounds.
//
// CELL VALUES:
//   Cells are written as text unless the table marks their column:
//   - KindInteger: int64 when the id fits, text otherwise (never lost)
//   - KindDecimal: number when the cell parses, text otherwise
//   Empty cells are left empty.
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/csvparser"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// Sheet names of the packaged workbook.
const (
	SheetPivot      = "Payment Pivot"
	SheetSKUMapping = "SKU Mapping"
	SheetRunLog     = "Run Log"
)

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// Column width bounds, in characters.
const (
	minColumnWidth = 10
	maxColumnWidth = 50
)

// =============================================================================
// WORKBOOK
// =============================================================================

// WriteWorkbook writes every table as a sheet of one workbook.
//
// PARAMETERS:
//   - w: Destination of the .xlsx bytes.
//   - sheets: Tables to write; nil entries are skipped. Table names become
//     sheet names (sanitized and made unique).
//
// RETURNS:
//   - An error if there is nothing to write or excelize fails.
func WriteWorkbook(w io.Writer, sheets []*table.Table) error {
	f, err := BuildWorkbook(sheets)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook creates the in-memory workbook for WriteWorkbook.
func BuildWorkbook(sheets []*table.Table) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool)
	written := 0

	for _, t := range sheets {
		if t == nil {
			continue
		}
		name := uniqueSheetName(sanitizeSheetName(t.Name), used)

		if written == 0 {
			err = f.SetSheetName(defaultSheet, name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, t, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %q: %w", name, err)
		}
		written++
	}

	if written == 0 {
		f.Close()
		return nil, fmt.Errorf("no tables to write")
	}
	f.SetActiveSheet(0)
	return f, nil
}

// writeSheet fills one sheet with a header row and the table rows.
func writeSheet(f *excelize.File, sheet string, t *table.Table, headerStyle int) error {
	header := make([]interface{}, len(t.Columns))
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
		widths[i] = utf8.RuneCountInString(c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return err
		}
	}

	kinds := make([]table.Kind, len(t.Columns))
	for i, c := range t.Columns {
		kinds[i] = t.KindOf(c)
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for i, v := range row {
			values[i] = CellValue(v, kinds[i])
			if n := utf8.RuneCountInString(v); n > widths[i] {
				widths[i] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(clampWidth(w+2))); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// maxExactInt is the largest integer a spreadsheet cell stores exactly;
// larger ids are written as text.
const maxExactInt = 1 << 53

// CellValue converts a cell to the value written for its column kind.
func CellValue(v string, kind table.Kind) interface{} {
	if v == "" {
		return nil
	}
	switch kind {
	case table.KindInteger:
		n, err := strconv.ParseInt(schema.CanonicalID(v), 10, 64)
		if err == nil && n <= maxExactInt && n >= -maxExactInt {
			return n
		}
	case table.KindDecimal:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d.InexactFloat64()
		}
	}
	return v
}

// =============================================================================
// CSV
// =============================================================================

// WriteCSV writes one table as CSV.
func WriteCSV(w io.Writer, t *table.Table) error {
	return csvparser.Write(w, t)
}

// =============================================================================
// RUN LOG
// =============================================================================

// IssuesTable renders issues as the "Run Log" sheet.
func IssuesTable(issues []types.Issue) *table.Table {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		rows[i] = []string{string(issue.Severity), issue.Stage, issue.Source, issue.Message}
	}
	return table.New(SheetRunLog, []string{"severity", "stage", "source", "message"}, rows)
}

// =============================================================================
// HELPERS
// =============================================================================

// sanitizeSheetName removes characters Excel rejects and truncates the name.
func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Sheet"
	}
	return truncateRunes(name, maxSheetName)
}

// uniqueSheetName appends a counter when name is already taken. Excel
// compares sheet names case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func clampWidth(w int) int {
	if w < minColumnWidth {
		return minColumnWidth
	}
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	return w
}
