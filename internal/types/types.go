// =============================================================================
// Order Settlement Reconciler - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - catalog
//   - shipment
//   - settlement
//   - report
//   - validation
//   - pipeline
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity classifies how much of a run an issue affected.
type Severity string

const (
	// SeverityInfo is purely informational (duplicates dropped, dates blanked).
	SeverityInfo Severity = "info"

	// SeverityWarning means one file or table was skipped or degraded.
	SeverityWarning Severity = "warning"

	// SeverityError means a stage could not produce its result for one input.
	SeverityError Severity = "error"

	// SeverityCritical means a whole stage was aborted or produced
	// pass-through output.
	SeverityCritical Severity = "critical"
)

// =============================================================================
// STAGES
// =============================================================================

// Stage names used in issue reports.
const (
	StageLoad       = "load"
	StageCatalog    = "catalog"
	StageCost       = "cost"
	StageShipment   = "shipment"
	StageSettlement = "settlement"
	StageReport     = "report"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrMissingCatalogColumns is returned when the seller listing lacks one of
// the columns the catalog is built from.
var ErrMissingCatalogColumns = errors.New("seller listing is missing required columns")

// =============================================================================
// ISSUE
// =============================================================================

// Issue is one reported skip, failure or degradation. Every table or file
// that is dropped from a run gets exactly one Issue naming it.
type Issue struct {
	// Stage is the pipeline stage that raised the issue.
	Stage string `json:"stage"`

	// Source is the name of the input table or file concerned.
	Source string `json:"source"`

	// Severity classifies the impact.
	Severity Severity `json:"severity"`

	// Message is a human-readable explanation of what to fix.
	Message string `json:"message"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s: %s: %s",
		strings.ToUpper(string(i.Severity)),
		i.Stage,
		i.Source,
		i.Message,
	)
}

// NewIssue builds an Issue with a formatted message.
func NewIssue(stage, source string, severity Severity, format string, args ...interface{}) Issue {
	return Issue{
		Stage:    stage,
		Source:   source,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
}

// CountBySeverity tallies issues per severity.
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}
