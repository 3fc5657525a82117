// =============================================================================
// Order Settlement Reconciler - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a run:
//   - Output directory management
//   - Settlement file discovery in a directory
//   - Output file naming
//   - Per-sheet CSV export
//   - Issue log generation
//
// OUTPUT LAYOUT (one run):
//   <output_dir>/reconciliation_20250115_143022_<run id>.xlsx
//   <output_dir>/reconciliation_..._Final_Report.csv      (with --csv)
//   <output_dir>/issues_<run id>.txt                      (when issues exist)
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/report"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/source"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/types"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the files written by a run.
type FileManager struct {
	// OutputDir is the directory where output files are placed.
	OutputDir string

	// NameFormat is the workbook file name format (see GenerateOutputFileName).
	NameFormat string
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir, nameFormat string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		NameFormat: nameFormat,
	}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// WorkbookPath returns the output path of a run's workbook.
func (fm *FileManager) WorkbookPath(runID uuid.UUID, now time.Time) string {
	return filepath.Join(fm.OutputDir, GenerateOutputFileName(fm.NameFormat, runID, now))
}

// WriteWorkbook writes the sheets to the run's workbook path.
//
// RETURNS:
//   - The path written.
//   - An error if the file cannot be created or written.
func (fm *FileManager) WriteWorkbook(sheets []*table.Table, runID uuid.UUID, now time.Time) (string, error) {
	path := fm.WorkbookPath(runID, now)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create workbook: %w", err)
	}
	if err := report.WriteWorkbook(file, sheets); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close workbook: %w", err)
	}
	return path, nil
}

// WriteCSVs writes one CSV per sheet next to the workbook. File names are
// the workbook name (without extension) followed by the sheet name.
func (fm *FileManager) WriteCSVs(sheets []*table.Table, workbookPath string) ([]string, error) {
	base := strings.TrimSuffix(workbookPath, filepath.Ext(workbookPath))

	var paths []string
	for _, sheet := range sheets {
		if sheet == nil {
			continue
		}
		path := fmt.Sprintf("%s_%s.csv", base, SafeFileName(sheet.Name))
		file, err := os.Create(path)
		if err != nil {
			return paths, fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = report.WriteCSV(file, sheet)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the readable spreadsheet and CSV files directly
// inside dir, sorted by name. Subdirectories are not scanned.
func DiscoverInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") || !source.Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a workbook file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - The run id
//               {timestamp} - Run timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Run date (YYYYMMDD)
//               {time}      - Run time (HHMMSS)
//   - runID: The run id.
//   - now: The run time.
//
// RETURNS:
//   - The generated file name, always ending in .xlsx.
//
// EXAMPLE:
//   format: "reconciliation_{timestamp}_{uuid}.xlsx"
//   output: "reconciliation_20250115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xlsx"
func GenerateOutputFileName(format string, runID uuid.UUID, now time.Time) string {
	if format == "" {
		format = "reconciliation_{timestamp}_{uuid}.xlsx"
	}

	replacer := strings.NewReplacer(
		"{uuid}", runID.String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
	)
	result := replacer.Replace(format)

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}
	return result
}

// SafeFileName replaces characters that are awkward in file names.
func SafeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// =============================================================================
// ISSUE LOG GENERATION
// =============================================================================

// WriteIssueLog writes a run's issues to a text file in outputDir.
//
// RETURNS:
//   - The path to the log file, or "" when there are no issues.
//   - An error if writing fails.
func WriteIssueLog(issues []types.Issue, outputDir string, runID uuid.UUID, now time.Time) (string, error) {
	if len(issues) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("issues_%s.txt", runID))
	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	counts := types.CountBySeverity(issues)
	fmt.Fprintf(writer, "Order Settlement Reconciler - Issue Log\n"+
		"Run:       %s\n"+
		"Generated: %s\n"+
		"Issues:    %d (critical %d, error %d, warning %d, info %d)\n"+
		"================================================================================\n\n",
		runID,
		now.Format("2006-01-02 15:04:05"),
		len(issues),
		counts[types.SeverityCritical],
		counts[types.SeverityError],
		counts[types.SeverityWarning],
		counts[types.SeverityInfo])

	for i, issue := range issues {
		fmt.Fprintf(writer, "Issue #%d\n"+
			"  Severity: %s\n"+
			"  Stage:    %s\n"+
			"  Source:   %s\n"+
			"  Message:  %s\n\n",
			i+1, issue.Severity, issue.Stage, issue.Source, issue.Message)
	}

	writer.WriteString("================================================================================\n" +
		"End of Issue Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush issue log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// FILE UTILITIES
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
