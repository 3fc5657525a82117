// =============================================================================
// Order Settlement Reconciler - Spreadsheet Parser
// =============================================================================
//
// This module reads spreadsheet extracts into in-memory tables. Payment
// providers and seller portals hand out .xlsx workbooks (and, for older
// settlement reports, legacy .xls files); both are flattened the same way:
//
//   - One sheet per table. The first sheet is used unless a sheet name is
//     requested explicitly.
//   - The first non-empty row is the header row.
//   - Blank rows are skipped; short rows are padded.
//   - Cells are read as displayed text, so ids keep the formatting the
//     seller sees.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads one sheet of an .xlsx workbook.
//
// PARAMETERS:
//   - r: The workbook bytes.
//   - name: The table name used in reports.
//   - sheet: The sheet to read; "" selects the first sheet.
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook cannot be opened or the sheet is missing or empty.
func Parse(r io.Reader, name, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return ParseFile(f, name, sheet)
}

// ParseFile reads one sheet of an already opened workbook.
func ParseFile(f *excelize.File, name, sheet string) (*table.Table, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return FromRows(name, rows)
}

// FromRows converts a raw cell grid into a table, using the first
// non-empty row as the header.
func FromRows(name string, rows [][]string) (*table.Table, error) {
	headerIndex := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	headers := cleanHeaders(rows[headerIndex])

	data := make([][]string, 0, len(rows)-headerIndex-1)
	for _, row := range rows[headerIndex+1:] {
		if isRowEmpty(row) {
			continue
		}
		cells := make([]string, len(headers))
		for i := 0; i < len(headers) && i < len(row); i++ {
			cells[i] = strings.TrimSpace(row[i])
		}
		data = append(data, cells)
	}

	return table.New(name, headers, data), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims headers and names blank ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = h
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
