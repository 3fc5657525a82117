package xlsxparser

import (
	"fmt"
	"io"
	"os"

	"github.com/shakinm/xlsReader/xls"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// ParseXLS reads the first sheet of a legacy (BIFF) .xls workbook on disk.
func ParseXLS(path, name string) (*table.Table, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open .xls workbook: %w", err)
	}

	if workbook.GetNumberSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("failed to read first sheet: %v", err)
	}

	var rows [][]string
	for i := 0; i <= int(sheet.GetNumberRows()); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			continue
		}

		var cells []string
		for _, col := range row.GetCols() {
			if col != nil {
				cells = append(cells, col.GetString())
			} else {
				cells = append(cells, "")
			}
		}
		rows = append(rows, cells)
	}

	return FromRows(name, rows)
}

// ParseXLSReader reads a legacy .xls workbook from a stream. The xls reader
// only opens files, so the stream is spooled to a temporary file first.
func ParseXLSReader(r io.Reader, name string) (*table.Table, error) {
	tmp, err := os.CreateTemp("", "settlement-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to spool .xls upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to spool .xls upload: %w", err)
	}

	return ParseXLS(tmp.Name(), name)
}
