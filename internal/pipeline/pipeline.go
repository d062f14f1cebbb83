// Package pipeline drives a migration end to end: a source file is parsed,
// normalized, typed and validated, optionally loaded into MySQL, and its
// DDL script and report are exported. A plan runs several files strictly
// one after another.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"datamigrator/internal/apply"
	"datamigrator/internal/config"
	"datamigrator/internal/core"
	"datamigrator/internal/logging"
	"datamigrator/internal/migration"
	"datamigrator/internal/normalize"
	"datamigrator/internal/output"
	"datamigrator/internal/parser"
)

// Options configures a Pipeline.
type Options struct {
	// DSN of the destination database. Empty runs in schema-only mode:
	// DDL and reports are produced but nothing is loaded.
	DSN            string
	CreateDatabase bool
	BatchSize      int
	DryRun         bool

	OutDir string
	Format output.Format

	// Out receives the loader's progress and dry-run output.
	Out io.Writer
	// Now is used for export timestamps; nil means time.Now.
	Now func() time.Time
}

// FromConfig maps the relevant settings of cfg onto Options.
func FromConfig(cfg *config.Config) (Options, error) {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return Options{}, err
	}
	return Options{
		DSN:            cfg.Database.DSN,
		CreateDatabase: cfg.Database.CreateDatabase,
		BatchSize:      cfg.Database.BatchSize,
		OutDir:         cfg.Output.Dir,
		Format:         format,
	}, nil
}

// Pipeline runs migrations with a fixed set of options.
type Pipeline struct {
	opts     Options
	database string
	exporter *output.Exporter
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	format, err := output.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts.Format = format

	var database string
	if opts.DSN != "" {
		cfg, err := gomysql.ParseDSN(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid DSN: %w", err)
		}
		database = cfg.DBName
	}

	exporter := output.NewExporter(opts.OutDir, format)
	exporter.Now = opts.Now

	return &Pipeline{opts: opts, database: database, exporter: exporter}, nil
}

// Exporter returns the exporter the pipeline writes through.
func (p *Pipeline) Exporter() *output.Exporter {
	return p.exporter
}

// Analysis is a source file that went through inference and validation.
type Analysis struct {
	Dataset *parser.Dataset
	Result  *migration.Result
	Report  *output.TableReport
}

// FileResult is the outcome of RunFile.
type FileResult struct {
	Analysis
	Load  *apply.LoadResult
	Files output.ExportedFiles
}

// Analyze parses target and runs inference and validation on it. Nothing
// is loaded or written.
func (p *Pipeline) Analyze(ctx context.Context, target config.Target) (*Analysis, error) {
	return p.analyze(ctx, uuid.NewString(), target)
}

func (p *Pipeline) analyze(ctx context.Context, runID string, target config.Target) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := parser.ParseFile(target.File)
	if err != nil {
		return nil, err
	}

	table := ds.Table
	if target.Table != "" {
		table = normalize.TableName(target.Table)
	}

	records := normalize.NormalizeAll(ds.Records)
	res, err := migration.Run(table, records, keyOptions(target))
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", filepath.Base(target.File), err)
	}

	report := output.NewTableReport(res)
	report.RunID = runID
	report.Source = filepath.Base(target.File)
	report.Database = p.database

	logger := logging.WithFields(ctx, "run_id", runID, "table", table)
	for _, name := range unmatchedKeys(target, res.Table) {
		logger.Warn("designated key column not found in source", "column", name)
		report.Notes = append(report.Notes, fmt.Sprintf("key column %q not found in the source; ignored", name))
	}

	logger.Debug("records analyzed",
		"format", ds.Format,
		"processed", report.Processed,
		"valid", report.Valid,
		"errors", report.ErrorCount(),
	)

	return &Analysis{Dataset: ds, Result: res, Report: report}, nil
}

// keyOptions maps the key columns named in target onto record keys, which
// are always sanitized. A nil unique list stays nil so the primary key
// default still applies.
func keyOptions(target config.Target) migration.Options {
	opts := migration.Options{PrimaryKey: normalize.SanitizeKey(target.PrimaryKey)}
	if target.UniqueColumns == nil {
		return opts
	}
	opts.UniqueColumns = make([]string, 0, len(target.UniqueColumns))
	for _, name := range target.UniqueColumns {
		key := normalize.SanitizeKey(name)
		if key != "" && !slices.Contains(opts.UniqueColumns, key) {
			opts.UniqueColumns = append(opts.UniqueColumns, key)
		}
	}
	return opts
}

// unmatchedKeys returns the key columns named in target that match no
// column of t, as written by the user.
func unmatchedKeys(target config.Target, t *core.Table) []string {
	var out []string
	check := func(name string) {
		if strings.TrimSpace(name) == "" || slices.Contains(out, name) {
			return
		}
		if key := normalize.SanitizeKey(name); key == "" || t.FindColumn(key) == nil {
			out = append(out, name)
		}
	}
	check(target.PrimaryKey)
	for _, name := range target.UniqueColumns {
		check(name)
	}
	return out
}

// RunFile migrates a single source file and exports its DDL script and
// report. Any returned error is fatal for the file; rejected records are
// not errors and are listed in the report instead.
func (p *Pipeline) RunFile(ctx context.Context, target config.Target) (*FileResult, error) {
	return p.runFile(ctx, uuid.NewString(), target)
}

func (p *Pipeline) runFile(ctx context.Context, runID string, target config.Target) (*FileResult, error) {
	start := time.Now()

	analysis, err := p.analyze(ctx, runID, target)
	if err != nil {
		return nil, err
	}
	out := &FileResult{Analysis: *analysis}
	logger := logging.WithFields(ctx, "run_id", runID, "table", out.Report.Table)

	if p.opts.DSN != "" {
		lr, err := p.load(ctx, out.Result)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", out.Report.Table, err)
		}
		out.Load = lr
		out.Report.Inserted = lr.Inserted
		out.Report.Loaded = !p.opts.DryRun
		if drift := lr.Drift.Summary(); len(drift) > 0 {
			logger.Warn("created table differs from the synthesized schema", "differences", drift)
			for _, line := range drift {
				out.Report.Notes = append(out.Report.Notes, "server table differs: "+line)
			}
		}
	}

	out.Report.Duration = time.Since(start)

	files, err := p.exporter.ExportTable(out.Report)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", out.Report.Table, err)
	}
	out.Files = files

	logger.Info("table migrated",
		"status", out.Report.Status(),
		"processed", out.Report.Processed,
		"inserted", out.Report.Inserted,
		"errors", out.Report.ErrorCount(),
		"report", files.Report,
	)
	return out, nil
}

func (p *Pipeline) load(ctx context.Context, res *migration.Result) (*apply.LoadResult, error) {
	loader := apply.NewLoader(apply.Options{
		DSN:       p.opts.DSN,
		DryRun:    p.opts.DryRun,
		BatchSize: p.opts.BatchSize,
		Out:       p.opts.Out,
	})
	defer loader.Close()

	if p.opts.CreateDatabase {
		if err := loader.EnsureDatabase(ctx); err != nil {
			return nil, err
		}
	}
	if !p.opts.DryRun {
		if err := loader.Connect(ctx); err != nil {
			return nil, err
		}
		flavor, version := loader.Server()
		logging.FromContext(ctx).Debug("connected", "flavor", flavor, "version", version)
	}

	lr, err := loader.Load(ctx, res)
	if err != nil {
		return nil, err
	}
	if apply.HasDestructiveOperations(lr.Preflight) && !p.opts.DryRun {
		logging.FromContext(ctx).Info("existing table replaced", "statements", res.DestructiveStatements())
	}
	return lr, nil
}

// PlanResult is the outcome of RunPlan.
type PlanResult struct {
	Report     *output.PlanReport
	Tables     []*FileResult
	ReportFile string
}

// ErrPlanFailed is returned by Err when a table failed fatally.
var ErrPlanFailed = errors.New("migration plan failed")

// Err returns ErrPlanFailed wrapped with the fatal table's error when the
// plan ended in GLOBAL FAILURE.
func (r *PlanResult) Err() error {
	for _, t := range r.Report.Tables {
		if t.Status == output.TableFatal {
			return fmt.Errorf("%w: %s: %s", ErrPlanFailed, t.Table, t.Fatal)
		}
	}
	return nil
}

// RunPlan migrates targets in order. The first fatal error stops the
// remaining targets. The consolidated report is always exported; the
// returned error is only set when that export fails. Use PlanResult.Err
// for the outcome of the plan itself.
func (p *Pipeline) RunPlan(ctx context.Context, targets []config.Target) (*PlanResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := logging.WithFields(ctx, "run_id", runID)

	plan := &output.PlanReport{
		RunID:    runID,
		Database: p.database,
		Planned:  len(targets),
	}
	out := &PlanResult{Report: plan}

	logger.Info("plan started", "targets", len(targets))
	for i, target := range targets {
		res, err := p.runFile(ctx, runID, target)
		if err != nil {
			table := target.Table
			if table == "" {
				table = normalize.TableName(target.File)
			}
			plan.Tables = append(plan.Tables, output.FatalOutcome(table, filepath.Base(target.File), err))
			logger.Error("table failed, aborting plan",
				"table", table,
				"position", i+1,
				"skipped", len(targets)-i-1,
				"error", err,
			)
			break
		}
		out.Tables = append(out.Tables, res)
		plan.Tables = append(plan.Tables, output.OutcomeFromReport(res.Report))
	}
	plan.Duration = time.Since(start)

	name, err := p.exporter.ExportPlan(plan)
	if err != nil {
		return out, fmt.Errorf("export plan report: %w", err)
	}
	out.ReportFile = name

	logger.Info("plan finished",
		"status", plan.Status(),
		"succeeded", plan.Succeeded(),
		"failed", plan.Failed(),
		"report", name,
	)
	return out, nil
}
