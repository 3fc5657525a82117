// =============================================================================
// Order Settlement Reconciler - CSV Parser Module
// =============================================================================
//
// This module parses CSV extracts (seller listings, shipment reports,
// settlement files) into in-memory tables. Marketplace exports are
// inconsistent, so the reader is deliberately lenient:
//   - Configurable delimiter (comma, pipe, tab, semicolon)
//   - Windows-1252 / ISO-8859-1 decoding for files saved by desktop tools
//   - UTF-8 byte order mark stripped from the first header
//   - Lazy quotes and a variable number of fields per row
//   - Blank rows skipped, blank headers named Column_N
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads CSV data and returns it as a table.
//
// PARAMETERS:
//   - r: The CSV byte stream.
//   - name: The table name used in reports (usually the file name).
//   - settings: Delimiter and encoding settings.
//
// RETURNS:
//   - The parsed table. The first record is the header row.
//   - An error if the stream cannot be decoded or holds no header.
func Parse(r io.Reader, name string, settings config.CSVSettings) (*table.Table, error) {
	decoded, err := decode(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	buffered := bufio.NewReader(decoded)
	skipBOM(buffered)

	csvReader := csv.NewReader(buffered)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])
	return table.New(name, headers, extractDataRows(allRows[1:], len(headers))), nil
}

// decode wraps r with a decoder for the configured encoding.
func decode(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToUpper(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return r, nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// skipBOM discards a leading UTF-8 byte order mark.
func skipBOM(r *bufio.Reader) {
	if ch, _, err := r.ReadRune(); err == nil && ch != '\ufeff' {
		_ = r.UnreadRune()
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports frequently have ragged trailing columns.
	reader.FieldsPerRecord = -1

	// Seller listings quote headers inconsistently ("sku id",sku code,...).
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
}

// cleanHeaders trims headers and names blank headers.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)

		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows trims every cell and drops rows that are entirely blank.
func extractDataRows(rows [][]string, width int) [][]string {
	dataRows := make([][]string, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		cells := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			cells[i] = strings.TrimSpace(row[i])
		}
		dataRows = append(dataRows, cells)
	}

	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// WRITER
// =============================================================================

// Write renders a table as CSV with a header row.
func Write(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
