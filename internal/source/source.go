// =============================================================================
// Order Settlement Reconciler - Tabular Sources
// =============================================================================
//
// A TabularSource is anything that can produce one table: a file on disk for
// the CLI, or an uploaded buffer for the HTTP surface. The pipeline only ever
// sees TabularSource values, so it is indifferent to where inputs came from.
//
// SUPPORTED FORMATS (chosen by file extension):
//   - .csv, .txt   CSV with the configured delimiter and encoding
//   - .xlsx, .xlsm Office Open XML workbook, first sheet
//   - .xls         Legacy BIFF workbook, first sheet
//
// =============================================================================

package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/config"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/csvparser"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/table"
	"github.com/ginjaninja78/order-settlement-reconciler/internal/xlsxparser"
)

// ErrUnsupportedFormat is returned for a file extension no reader handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// TabularSource produces one named table.
type TabularSource interface {
	// Name identifies the input in logs and issues (usually the file name).
	Name() string

	// Load reads the table. It may be called more than once.
	Load() (*table.Table, error)
}

// Extensions lists every supported file extension.
func Extensions() []string {
	return []string{".csv", ".txt", ".xlsx", ".xlsm", ".xls"}
}

// Supported reports whether the file name has a readable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// File reads a table from a path on disk.
type File struct {
	Path     string
	Settings config.CSVSettings
}

// NewFile creates a file source.
func NewFile(path string, settings config.CSVSettings) *File {
	return &File{Path: path, Settings: settings}
}

// Name returns the base name of the file.
func (f *File) Name() string {
	return filepath.Base(f.Path)
}

// Load opens the file and parses it according to its extension.
func (f *File) Load() (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(f.Path))
	if ext == ".xls" {
		return xlsxparser.ParseXLS(f.Path, f.Name())
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name(), err)
	}
	defer file.Close()

	return parse(file, f.Name(), ext, f.Settings)
}

// =============================================================================
// BYTES SOURCE
// =============================================================================

// Bytes reads a table from an in-memory buffer, such as an HTTP upload.
type Bytes struct {
	FileName string
	Data     []byte
	Settings config.CSVSettings
}

// NewBytes creates an in-memory source. The extension of fileName selects
// the reader.
func NewBytes(fileName string, data []byte, settings config.CSVSettings) *Bytes {
	return &Bytes{FileName: fileName, Data: data, Settings: settings}
}

// Name returns the original file name.
func (b *Bytes) Name() string {
	return filepath.Base(b.FileName)
}

// Load parses the buffer.
func (b *Bytes) Load() (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(b.FileName))
	if ext == ".xls" {
		return xlsxparser.ParseXLSReader(bytes.NewReader(b.Data), b.Name())
	}
	return parse(bytes.NewReader(b.Data), b.Name(), ext, b.Settings)
}

// parse dispatches a stream to the reader for ext.
func parse(r io.Reader, name, ext string, settings config.CSVSettings) (*table.Table, error) {
	var (
		t   *table.Table
		err error
	)
	switch ext {
	case ".csv", ".txt":
		t, err = csvparser.Parse(r, name, settings)
	case ".xlsx", ".xlsm":
		t, err = xlsxparser.Parse(r, name, "")
	default:
		return nil, fmt.Errorf("%s: %w (%q)", name, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return t, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Loaded is the result of loading one source.
type Loaded struct {
	Name  string
	Table *table.Table
	Err   error
}

// LoadAll loads every source in order. A failing or panicking source
// yields a Loaded with Err set and does not stop the others; nil sources
// are skipped.
func LoadAll(sources []TabularSource) []Loaded {
	loaded := make([]Loaded, 0, len(sources))
	for _, s := range sources {
		if s == nil {
			continue
		}
		loaded = append(loaded, Load(s))
	}
	return loaded
}

// Load reads one source, converting a panic inside the reader into an
// error.
func Load(s TabularSource) (l Loaded) {
	l.Name = s.Name()
	defer func() {
		if r := recover(); r != nil {
			l.Table = nil
			l.Err = fmt.Errorf("failed to read %s: %v", l.Name, r)
		}
	}()
	l.Table, l.Err = s.Load()
	return l
}
