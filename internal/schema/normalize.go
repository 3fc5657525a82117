// =============================================================================
// Order Settlement Reconciler - Schema Normalizer
// =============================================================================
//
// Column headers drift between exports of the same report: "sku id",
// "SKU_ID", "\"sku id\"" and " Sku Id " all name the same field. Normalize
// maps every such spelling to one comparison key.
//
// NORMALIZATION STEPS:
//   1. Unicode NFKC fold (full-width letters, ligatures, compatibility forms)
//   2. Trim surrounding whitespace
//   3. Remove quotation marks (straight, smart and backtick) and BOMs
//   4. Lower-case
//   5. Remove separators (spaces, tabs, underscores)
//
// The result is only ever used for matching. Display always uses the
// original label.
//
// =============================================================================

package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Label is a normalized column label.
type Label string

// quoteChars are stripped wherever they appear in a label.
const quoteChars = "\"'`\u2018\u2019\u201c\u201d\ufeff"

// Normalize returns the comparison key for a column label. It is pure and
// idempotent, and accepts any string including "".
func Normalize(label string) Label {
	s := norm.NFKC.String(label)
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(quoteChars, r) || isSeparator(r) {
			continue
		}
		b.WriteRune(r)
	}
	return Label(b.String())
}

// isSeparator reports whether r is dropped between words.
func isSeparator(r rune) bool {
	return r == '_' || unicode.IsSpace(r)
}

// NormalizeAll normalizes each label, preserving order.
func NormalizeAll(labels []string) []Label {
	out := make([]Label, len(labels))
	for i, l := range labels {
		out[i] = Normalize(l)
	}
	return out
}
