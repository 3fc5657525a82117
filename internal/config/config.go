// =============================================================================
// Order Settlement Reconciler - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration. Every setting has a default, so the tool runs without any
// configuration file at all; the file only overrides what it mentions.
//
// CONFIGURATION FILE (config.yaml):
//   output_dir: ./output
//   output_name_format: "reconciliation_{timestamp}_{uuid}.xlsx"
//   write_csv: false
//   log_level: info
//   csv_settings:
//     delimiter: ","
//     encoding: UTF-8
//   columns:
//     order_id: [order_id, old_parent_order_id, old_parent_id]
//   server:
//     addr: ":8080"
//     max_upload_mb: 32
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/order-settlement-reconciler/internal/schema"
)

// DefaultPath is the configuration file looked up when --config is not set.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where the report workbook is written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputNameFormat defines the report file name.
	// Placeholders:
	//   {uuid}      - The run id
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "reconciliation_{timestamp}_{uuid}.xlsx"
	OutputNameFormat string `yaml:"output_name_format"`

	// WriteCSV additionally writes one CSV file per output sheet.
	// Default: false
	WriteCSV bool `yaml:"write_csv"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// CSVSettings contains settings for parsing CSV inputs.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Columns overrides the alias lists used to find semantic columns.
	// Keys are field names (see schema.KnownFields), values replace the
	// built-in list entirely.
	Columns map[string][]string `yaml:"columns"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// Server configures the HTTP upload surface.
	Server ServerConfig `yaml:"server"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab), ";" (semicolon)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file.
	// Valid values: "UTF-8", "Windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// SERVER SETTINGS STRUCTURE
// =============================================================================

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadMB caps the size of one multipart request.
	// Default: 32
	MaxUploadMB int `yaml:"max_upload_mb"`

	// DevMode keeps gin in debug mode.
	DevMode bool `yaml:"dev_mode"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration holding only default values.
func Default() *MainConfig {
	var cfg MainConfig
	applyDefaults(&cfg)
	return &cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
//
// A missing file at DefaultPath is not an error: the defaults are returned.
// A missing file at any other (explicitly requested) path is.
func Load(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && configPath == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (*MainConfig, error) {
	var cfg MainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *MainConfig) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "reconciliation_{timestamp}_{uuid}.xlsx"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = ","
	}
	if cfg.CSVSettings.Encoding == "" {
		cfg.CSVSettings.Encoding = "UTF-8"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
}

// validate checks the configuration for values the pipeline cannot use.
func validate(cfg *MainConfig) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	switch strings.ToUpper(strings.ReplaceAll(cfg.CSVSettings.Encoding, "_", "-")) {
	case "UTF-8", "UTF8", "WINDOWS-1252", "CP1252", "ISO-8859-1", "LATIN1", "LATIN-1":
	default:
		return fmt.Errorf("unsupported csv encoding %q", cfg.CSVSettings.Encoding)
	}

	if cfg.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}

	if _, err := cfg.Aliases(); err != nil {
		return err
	}

	return nil
}

// Aliases returns the built-in alias table with the configured overrides
// applied.
func (c *MainConfig) Aliases() (schema.AliasSet, error) {
	return schema.DefaultAliases().WithOverrides(c.Columns)
}
