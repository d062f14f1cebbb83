// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datamigrator/internal/config"
	"datamigrator/internal/logging"
	"datamigrator/internal/pipeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every command. Flags that were set explicitly
// take precedence over the config file and the environment.
type globalFlags struct {
	configPath string
	dsn        string
	outDir     string
	format     string
	logLevel   string
	logFormat  string
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "datamigrator",
		Short: "Infer MySQL schemas from CSV, JSON and XML files and load them",
		Long: `datamigrator reads flat or nested CSV, JSON and XML files, infers a MySQL
table for each one, validates every record, and loads the accepted records.
A DDL script and a migration report are exported for every table.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (.toml, .yaml or .yml)")
	pf.StringVar(&flags.dsn, "dsn", "", "MySQL DSN, e.g. user:pass@tcp(localhost:3306)/db; empty means schema only")
	pf.StringVarP(&flags.outDir, "out", "o", "", "Directory for exported DDL scripts and reports")
	pf.StringVarP(&flags.format, "format", "f", "", "Report format: markdown, text or json")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Print the statements instead of executing them")

	rootCmd.AddCommand(migrateCmd(flags))
	rootCmd.AddCommand(planCmd(flags))
	rootCmd.AddCommand(inferCmd(flags))
	rootCmd.AddCommand(serveCmd(flags))

	return rootCmd
}

// loadConfig resolves the configuration for cmd and sets up logging.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("dsn") {
		cfg.Database.DSN = g.dsn
	}
	if set("out") {
		cfg.Output.Dir = g.outDir
	}
	if set("format") {
		cfg.Output.Format = g.format
	}
	if set("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	if set("log-format") {
		cfg.Logging.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func (g *globalFlags) newPipeline(cmd *cobra.Command, cfg *config.Config) (*pipeline.Pipeline, error) {
	opts, err := pipeline.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.DryRun = g.dryRun
	opts.Out = cmd.OutOrStdout()
	return pipeline.New(opts)
}

// targetFlags describe a single source file on the command line.
type targetFlags struct {
	file       string
	table      string
	primaryKey string
	unique     []string
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.file, "file", "", "Source file (.csv, .json or .xml)")
	cmd.Flags().StringVarP(&t.table, "table", "t", "", "Table name (default: derived from the file name)")
	cmd.Flags().StringVar(&t.primaryKey, "primary-key", "", "Primary key column (default: the first column)")
	cmd.Flags().StringSliceVar(&t.unique, "unique", nil, "Columns that must not repeat (default: the primary key); pass \"\" for none")
	_ = cmd.MarkFlagRequired("file")
}

func (t *targetFlags) target(cmd *cobra.Command) config.Target {
	target := config.Target{
		File:       t.file,
		Table:      t.table,
		PrimaryKey: t.primaryKey,
	}
	if cmd.Flags().Changed("unique") {
		target.UniqueColumns = append([]string{}, t.unique...)
	}
	return target
}
