// =============================================================================
// Order Settlement Reconciler - Input Validation
// =============================================================================
//
// This module performs the pre-flight check behind `reconciler validate` and
// POST /api/validate. It loads every input and reports, per file, which of
// the columns the pipeline looks for can be resolved, without running the
// pipeline.
//
// CHECKS PER ROLE:
//   - seller:     product id, sku code, seller sku code        (error)
//   - packed:     product id (warning), order id (warning), report fields (info)
//   - rt, rto:    product id                                     (warning)
//   - cost:       seller SKU and cost/price columns, by substring (warning)
//   - settlement: release id and a settled or unsettled amount   (warning)
//
// Value checks sample the packed dates and settlement amounts and report how
// many cells will be blanked or counted as 0.
//
// ERROR HANDLING:
//   Findings are collected, not thrown. The result is valid when no finding
//   has error severity, i.e. when the pipeline can build its catalog.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/report"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/settlement"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// =============================================================================
// ROLES
// =============================================================================

// Role is the part an input plays in a run.
type Role string

const (
	RoleSeller     Role = "seller"
	RolePacked     Role = "packed"
	RoleRT         Role = "rt"
	RoleRTO        Role = "rto"
	RoleCost       Role = "cost"
	RoleSettlement Role = "settlement"
)

// Input pairs a source with its role.
type Input struct {
	Role   Role
	Source source.TabularSource
}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is a single pre-flight finding.
type ValidationError struct {
	Severity types.Severity `json:"severity"`

	// Source is the file name.
	Source string `json:"source"`

	// Field is the semantic column concerned, if any.
	Field string `json:"field,omitempty"`

	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(e.Severity)), e.Source, e.Message)
	}
	return fmt.Sprintf("[%s] %s, field '%s': %s",
		strings.ToUpper(string(e.Severity)), e.Source, e.Field, e.Message)
}

// ColumnCheck records whether one field resolved.
type ColumnCheck struct {
	Field  string `json:"field"`
	Column string `json:"column,omitempty"`
	Found  bool   `json:"found"`
}

// FileReport is the pre-flight result for one input.
type FileReport struct {
	Role    Role               `json:"role"`
	Name    string             `json:"name"`
	Rows    int                `json:"rows"`
	Columns []ColumnCheck      `json:"columns"`
	Errors  []*ValidationError `json:"errors,omitempty"`
}

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no error findings.
	IsValid bool `json:"valid"`

	Files []FileReport `json:"files"`

	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Validate loads and checks every input.
//
// PARAMETERS:
//   - inputs: Sources with their roles; exactly one should be the seller.
//   - aliases: Column aliases; nil uses the built-in set.
//
// RETURNS:
//   - The collected findings.
func Validate(inputs []Input, aliases schema.AliasSet) *ValidationResult {
	result := &ValidationResult{}

	sellerSeen := false
	for _, in := range inputs {
		if in.Source == nil {
			continue
		}
		if in.Role == RoleSeller {
			sellerSeen = true
		}

		t, err := in.Source.Load()
		if err != nil {
			severity := types.SeverityWarning
			if in.Role == RoleSeller {
				severity = types.SeverityError
			}
			result.add(FileReport{
				Role: in.Role,
				Name: in.Source.Name(),
				Errors: []*ValidationError{{
					Severity: severity,
					Source:   in.Source.Name(),
					Message:  fmt.Sprintf("cannot be read: %v", err),
				}},
			})
			continue
		}

		result.add(Check(t, in.Role, aliases))
	}

	if !sellerSeen {
		result.add(FileReport{
			Role: RoleSeller,
			Name: "seller listing",
			Errors: []*ValidationError{{
				Severity: types.SeverityError,
				Source:   "seller listing",
				Message:  "no seller listing supplied",
			}},
		})
	}

	result.IsValid = result.ErrorCount == 0
	return result
}

// add appends a file report and updates the counters.
func (r *ValidationResult) add(f FileReport) {
	for _, e := range f.Errors {
		switch e.Severity {
		case types.SeverityError, types.SeverityCritical:
			r.ErrorCount++
		case types.SeverityWarning:
			r.WarningCount++
		}
	}
	r.Files = append(r.Files, f)
}

// Check validates one loaded table for its role.
func Check(t *table.Table, role Role, aliases schema.AliasSet) FileReport {
	f := FileReport{Role: role, Name: t.Name, Rows: t.Len()}

	switch role {
	case RoleSeller:
		for _, field := range []schema.Field{schema.FieldProductID, schema.FieldSKUCode, schema.FieldSellerSKUCode} {
			f.require(t, aliases, field, types.SeverityError)
		}

	case RolePacked:
		f.require(t, aliases, schema.FieldProductID, types.SeverityWarning)
		f.require(t, aliases, schema.FieldOrderID, types.SeverityWarning)
		for _, field := range []schema.Field{
			schema.FieldPackedDate, schema.FieldBrand, schema.FieldShipmentValue,
			schema.FieldTaxAmount, schema.FieldQuantity,
		} {
			f.require(t, aliases, field, types.SeverityInfo)
		}
		f.checkDates(t, aliases)

	case RoleRT, RoleRTO:
		f.require(t, aliases, schema.FieldProductID, types.SeverityWarning)

	case RoleCost:
		f.contains(t, aliases, schema.FieldCostSheetSKU)
		f.contains(t, aliases, schema.FieldCostSheetPrice)

	case RoleSettlement:
		f.checkSettlement(t, aliases)

	default:
		f.finding(types.SeverityWarning, "", fmt.Sprintf("unknown role %q", role))
	}

	if t.Len() == 0 {
		f.finding(types.SeverityWarning, "", "file has a header but no data rows")
	}
	return f
}

// =============================================================================
// CHECK HELPERS
// =============================================================================

func (f *FileReport) finding(severity types.Severity, field, message string) {
	f.Errors = append(f.Errors, &ValidationError{
		Severity: severity,
		Source:   f.Name,
		Field:    field,
		Message:  message,
	})
}

// require records an exact-alias field and reports it when missing.
func (f *FileReport) require(t *table.Table, aliases schema.AliasSet, field schema.Field, severity types.Severity) {
	col, ok := schema.ResolveField(t, aliases, field)
	f.Columns = append(f.Columns, ColumnCheck{Field: string(field), Column: col, Found: ok})
	if !ok {
		f.finding(severity, string(field), fmt.Sprintf("no column matches %v%s",
			aliases.Get(field), schema.Hint(t, aliases.Get(field)...)))
	}
}

// contains records a substring field of the cost sheet.
func (f *FileReport) contains(t *table.Table, aliases schema.AliasSet, field schema.Field) {
	col, ok := schema.ResolveContaining(t, aliases.Get(field)...)
	f.Columns = append(f.Columns, ColumnCheck{Field: string(field), Column: col, Found: ok})
	if !ok {
		f.finding(types.SeverityWarning, string(field), fmt.Sprintf("no column contains any of %v, cost prices will be skipped",
			aliases.Get(field)))
	}
}

// checkDates counts packed dates that will be blanked.
func (f *FileReport) checkDates(t *table.Table, aliases schema.AliasSet) {
	col, ok := schema.ResolveField(t, aliases, schema.FieldPackedDate)
	if !ok {
		return
	}
	values, err := t.Column(col)
	if err != nil {
		return
	}
	bad := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := report.FormatDate(v); !ok {
			bad++
		}
	}
	if bad > 0 {
		f.finding(types.SeverityInfo, string(schema.FieldPackedDate),
			fmt.Sprintf("%d of %d value(s) are not dates and will be left blank", bad, len(values)))
	}
}

// checkSettlement classifies the file the way the aggregator will.
func (f *FileReport) checkSettlement(t *table.Table, aliases schema.AliasSet) {
	spec, err := settlement.Classify(t, aliases)

	idCol, idOK := schema.ResolveField(t, aliases, schema.FieldOrderReleaseID)
	f.Columns = append(f.Columns, ColumnCheck{Field: string(schema.FieldOrderReleaseID), Column: idCol, Found: idOK})
	f.Columns = append(f.Columns, ColumnCheck{Field: "amount", Column: spec.AmountColumn, Found: spec.AmountColumn != ""})

	if err != nil {
		f.finding(types.SeverityWarning, "", fmt.Sprintf("will be skipped: %v", err))
		return
	}

	if other, ok := schema.ResolveField(t, aliases, schema.FieldUnsettledAmount); ok && spec.Kind == settlement.Settled {
		f.finding(types.SeverityInfo, string(schema.FieldUnsettledAmount),
			fmt.Sprintf("column %q is ignored, the file is read as settled", other))
	}

	_, invalid := settlement.Lines(t, spec)
	if invalid > 0 {
		f.finding(types.SeverityInfo, spec.AmountColumn,
			fmt.Sprintf("%d row(s) with a missing release id or unreadable amount will count as 0", invalid))
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatResult renders a validation result for the terminal.
func FormatResult(r *ValidationResult) string {
	var b strings.Builder

	for _, f := range r.Files {
		fmt.Fprintf(&b, "%s (%s, %d rows)\n", f.Name, f.Role, f.Rows)
		for _, c := range f.Columns {
			mark := "missing"
			if c.Found {
				mark = "-> " + c.Column
			}
			fmt.Fprintf(&b, "  %-18s %s\n", c.Field, mark)
		}
		for _, e := range f.Errors {
			fmt.Fprintf(&b, "  %s\n", e.Error())
		}
	}

	if r.IsValid {
		fmt.Fprintf(&b, "\nInputs are usable (%d warning(s)).\n", r.WarningCount)
	} else {
		fmt.Fprintf(&b, "\nValidation failed with %d error(s) and %d warning(s).\n", r.ErrorCount, r.WarningCount)
	}
	return b.String()
}
