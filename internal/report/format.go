package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateLayout is the display form of every report date ("15-Jan-2025").
const DateLayout = "02-Jan-2006"

// compactDate matches YYYYMMDD, including the "20250115.0" rendering that
// spreadsheets give an 8-digit number.
var compactDate = regexp.MustCompile(`^(\d{8})(?:\.0+)?$`)

// dateLayouts are tried in order after the compact form.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2-1-2006",
	"2/1/2006",
	"2006/1/2",
	"2-1-2006 15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2-Jan-06",
}

// Excel serial day numbers accepted as dates: 1900-01-01 through 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// FormatDate rewrites a date cell to DateLayout. ok is false when the value
// is not recognizably a date; the returned string is then "".
//
// SUPPORTED INPUTS:
//   - YYYYMMDD (also with a trailing ".0")
//   - ISO dates and datetimes, RFC 3339
//   - dd-mm-yyyy, dd/mm/yyyy, yyyy/mm/dd (with optional time)
//   - dd-Mon-yyyy, "dd Mon yyyy", "Mon dd, yyyy"
//   - Excel serial day numbers
func FormatDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if m := compactDate.FindStringSubmatch(value); m != nil {
		if t, err := time.Parse("20060102", m[1]); err == nil {
			return t.Format(DateLayout), true
		}
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout), true
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(DateLayout), true
		}
	}

	return "", false
}
