// =============================================================================
// Order Settlement Reconciler - Key Resolver
// =============================================================================
//
// Resolve finds the original column label for a field in an arbitrary table.
//
// MATCHING POLICY:
//   - Resolve: exact match of normalized labels against normalized aliases.
//   - ResolveContaining: normalized alias contained in the normalized label.
//   In both cases the table's column order is the tie-break: the first
//   column that matches any alias wins.
//
// NOT FOUND:
//   A miss is reported as ok == false. It is never fatal on its own; the
//   caller decides whether to skip the operation, the file, or the stage.
//
// =============================================================================

package schema

import (
	"strings"

	"github.com/schollz/closestmatch"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
)

// Resolve returns the first column of t whose normalized label equals the
// normalized form of any candidate.
func Resolve(t *table.Table, candidates ...string) (string, bool) {
	if t == nil {
		return "", false
	}
	want := make(map[Label]bool, len(candidates))
	for _, c := range candidates {
		want[Normalize(c)] = true
	}
	for _, col := range t.Columns {
		if want[Normalize(col)] {
			return col, true
		}
	}
	return "", false
}

// ResolveContaining returns the first column of t whose normalized label
// contains the normalized form of any candidate.
func ResolveContaining(t *table.Table, candidates ...string) (string, bool) {
	if t == nil {
		return "", false
	}
	needles := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if n := string(Normalize(c)); n != "" {
			needles = append(needles, n)
		}
	}
	for _, col := range t.Columns {
		label := string(Normalize(col))
		for _, n := range needles {
			if strings.Contains(label, n) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveField resolves a field through the alias set.
func ResolveField(t *table.Table, aliases AliasSet, f Field) (string, bool) {
	return Resolve(t, aliases.Get(f)...)
}

// Suggest returns the column of t that looks closest to the first candidate,
// for "did you mean" hints in NOT_FOUND warnings. It returns "" when the
// table has no columns.
func Suggest(t *table.Table, candidates ...string) string {
	if t == nil || len(t.Columns) == 0 || len(candidates) == 0 {
		return ""
	}

	byLabel := make(map[string]string, len(t.Columns))
	labels := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		l := string(Normalize(col))
		if l == "" {
			continue
		}
		if _, dup := byLabel[l]; !dup {
			byLabel[l] = col
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return ""
	}

	cm := closestmatch.New(labels, []int{2, 3})
	best := cm.Closest(string(Normalize(candidates[0])))
	return byLabel[best]
}

// Hint formats a suggestion for a warning message, or "" if there is none.
func Hint(t *table.Table, candidates ...string) string {
	if s := Suggest(t, candidates...); s != "" {
		return " (closest column: " + quote(s) + ")"
	}
	return ""
}

func quote(s string) string {
	return "'" + s + "'"
}
