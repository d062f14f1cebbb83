// Package config provides configuration for the migrator: destination
// database, report output, logging, the HTTP server and the migration plan.
// Settings come from a TOML or YAML file and environment variables, and are
// validated up front so that a misconfiguration fails before any work is
// done.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Output   OutputConfig   `toml:"output" yaml:"output"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Targets  []Target       `toml:"targets" yaml:"targets"`
}

// DatabaseConfig holds the destination database settings.
type DatabaseConfig struct {
	// DSN is a go-sql-driver/mysql data source name. Empty means schema
	// only: nothing is loaded.
	DSN string `toml:"dsn" yaml:"dsn" env:"DATAMIGRATOR_DSN"`

	// CreateDatabase creates the DSN's database when it is missing.
	CreateDatabase bool `toml:"create_database" yaml:"create_database" env:"DATAMIGRATOR_CREATE_DATABASE" default:"true"`

	// BatchSize is the number of rows per INSERT (default: 500)
	BatchSize int `toml:"batch_size" yaml:"batch_size" env:"DATAMIGRATOR_BATCH_SIZE" default:"500"`
}

// OutputConfig controls where DDL scripts and reports are written.
type OutputConfig struct {
	Dir    string `toml:"dir" yaml:"dir" env:"DATAMIGRATOR_OUT_DIR" default:"."`
	Format string `toml:"format" yaml:"format" env:"DATAMIGRATOR_REPORT_FORMAT" default:"markdown"`
}

// LoggingConfig holds log/slog settings.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level" env:"DATAMIGRATOR_LOG_LEVEL" default:"info"`
	Format string `toml:"format" yaml:"format" env:"DATAMIGRATOR_LOG_FORMAT" default:"text"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" env:"DATAMIGRATOR_ADDR" default:":3000"`

	// MaxUploadBytes limits the size of an uploaded file (default: 32MB)
	MaxUploadBytes int64 `toml:"max_upload_bytes" yaml:"max_upload_bytes" env:"DATAMIGRATOR_MAX_UPLOAD_BYTES" default:"33554432"`

	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" env:"DATAMIGRATOR_SHUTDOWN_TIMEOUT" default:"15s"`
}

// Target is one entry of a migration plan: a source file and how its table
// is keyed.
type Target struct {
	File string `toml:"file" yaml:"file"`

	// Table overrides the name derived from the file name.
	Table string `toml:"table" yaml:"table"`

	// PrimaryKey names the key column; empty means the first column.
	PrimaryKey string `toml:"primary_key" yaml:"primary_key"`

	// UniqueColumns lists columns that must not repeat. Absent means the
	// primary key alone; an explicit empty list disables the check.
	UniqueColumns []string `toml:"unique_columns" yaml:"unique_columns"`
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.BatchSize <= 0 {
		errs = append(errs, fmt.Sprintf("database.batch_size (%d) must be positive", c.Database.BatchSize))
	}

	validReportFormats := map[string]bool{"markdown": true, "md": true, "text": true, "txt": true, "json": true}
	if !validReportFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, fmt.Sprintf("output.format (%q) must be one of: markdown, text, json", c.Output.Format))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("logging.level (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("logging.format (%q) must be one of: text, json", c.Logging.Format))
	}

	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "server.max_upload_bytes must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "server.shutdown_timeout must be positive")
	}

	for i, t := range c.Targets {
		if strings.TrimSpace(t.File) == "" {
			errs = append(errs, fmt.Sprintf("targets[%d].file is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The DSN is masked since it carries credentials.
func (c *Config) String() string {
	dsn := "[NONE]"
	if c.Database.DSN != "" {
		dsn = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Database: {DSN: %s, CreateDatabase: %v, BatchSize: %d}, ",
		dsn, c.Database.CreateDatabase, c.Database.BatchSize)
	fmt.Fprintf(&b, "Output: {Dir: %q, Format: %q}, ", c.Output.Dir, c.Output.Format)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}, ", c.Logging.Level, c.Logging.Format)
	fmt.Fprintf(&b, "Server: {Addr: %q, MaxUploadBytes: %d}, ", c.Server.Addr, c.Server.MaxUploadBytes)
	fmt.Fprintf(&b, "Targets: %d", len(c.Targets))
	b.WriteString("}")
	return b.String()
}
