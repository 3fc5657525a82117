package schema

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CanonicalID returns the join form of an identifier cell. Spreadsheet
// exports render integer ids as "100.0" or "1.5E+2"; both collapse to the
// plain integer text. Ids with leading zeros or any other text are only
// trimmed, so no id is ever truncated or rounded.
func CanonicalID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	if len(s) > 1 && s[0] == '0' && s[1] != '.' {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return s
	}
	return d.String()
}

// amountNoise is removed from amount cells before parsing.
var amountNoise = strings.NewReplacer(
	",", "",
	"₹", "",
	"$", "",
	"INR", "",
	"Rs.", "",
	"Rs", "",
	" ", "",
	"\u00a0", "",
)

// ParseAmount coerces a cell to a decimal. ok is false for empty and
// unparseable cells, in which case the returned amount is zero.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = amountNoise.Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
