// Package apply loads a migration result into a MySQL database: it makes
// sure the target database exists, recreates the table from the generated
// DDL and inserts the accepted records in batches.
package apply

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"datamigrator/internal/core"
	"datamigrator/internal/dialect"
	"datamigrator/internal/dialect/mysql"
	"datamigrator/internal/diff"
	"datamigrator/internal/introspect"
	introspectmysql "datamigrator/internal/introspect/mysql"
	"datamigrator/internal/migration"
)

// PreflightResult contains the warnings and transactionality info of the
// statements a load is about to run.
type PreflightResult struct {
	Analyses        []*StatementAnalysis
	Warnings        []Warning
	IsTransactional bool
	NonTxReasons    []string
}

// Warning contains a Level of a warning, message, and actual SQL from migration.
type Warning struct {
	Level   WarningLevel
	Message string
	SQL     string
}

type WarningLevel string

const WarnDanger WarningLevel = "DANGER"

// ErrNotConnected is returned by Load when Connect was not called.
var ErrNotConnected = errors.New("loader is not connected")

// Options configures a Loader.
type Options struct {
	DSN string
	// DryRun prints the statements instead of executing them.
	DryRun bool
	// BatchSize is the number of rows per INSERT; 0 means
	// mysql.DefaultBatchSize. Wide tables get smaller batches, see
	// mysql.RowsPerBatch.
	BatchSize int
	Out       io.Writer
}

// LoadResult describes what a Load did.
type LoadResult struct {
	Preflight  *PreflightResult
	Statements int
	Batches    int
	Inserted   int64
	// Table is the table as read back from the server; nil on dry runs.
	Table *core.Table
	// Drift lists where Table differs from the synthesized table; nil when
	// they match.
	Drift *diff.TableDiff
}

// Loader writes migration results to a database.
type Loader struct {
	db        *sql.DB
	options   Options
	analyzer  *StatementAnalyzer
	generator *mysql.Generator
	out       io.Writer

	flavor  string
	version string
}

// NewLoader returns a Loader for the given options.
func NewLoader(options Options) *Loader {
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	if options.BatchSize <= 0 {
		options.BatchSize = mysql.DefaultBatchSize
	}
	return &Loader{
		options:   options,
		analyzer:  NewStatementAnalyzer(),
		generator: mysql.NewMySQLGenerator(),
		out:       out,
	}
}

func (l *Loader) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out, format, args...)
}

func (l *Loader) println(args ...any) {
	_, _ = fmt.Fprintln(l.out, args...)
}

// Connect opens the database named by the DSN and pings it.
func (l *Loader) Connect(ctx context.Context) error {
	db, err := open(ctx, l.options.DSN)
	if err != nil {
		return err
	}
	l.db = db

	if flavor, version, err := introspectmysql.DetectServer(ctx, db); err == nil {
		l.flavor, l.version = flavor, version
		l.printf("Connected to %s %s\n", flavor, version)
	}
	return nil
}

// Server returns the flavor (mysql, mariadb or tidb) and version of the
// connected server. Both are empty before Connect or when detection failed.
func (l *Loader) Server() (flavor, version string) {
	return l.flavor, l.version
}

// DB returns the open connection pool, or nil before Connect.
func (l *Loader) DB() *sql.DB {
	return l.db
}

// Close closes the connection; it is safe to call more than once.
func (l *Loader) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return db, nil
}

// EnsureDatabase creates the database named in the DSN if it does not exist
// yet. It connects without selecting a database, so it can run before
// Connect.
func (l *Loader) EnsureDatabase(ctx context.Context) error {
	stmt, serverDSN, err := createDatabaseStatement(l.options.DSN, l.generator)
	if err != nil {
		return err
	}
	if stmt == "" {
		return nil
	}
	if _, err := l.analyzer.AnalyzeStatement(stmt); err != nil {
		return err
	}

	if l.options.DryRun {
		l.printf("-- %s\n", stmt)
		return nil
	}

	db, err := open(ctx, serverDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}

// createDatabaseStatement returns the CREATE DATABASE statement for the
// database named in dsn together with a DSN that selects no database. The
// statement is empty when dsn names no database.
func createDatabaseStatement(dsn string, g *mysql.Generator) (stmt, serverDSN string, err error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", "", fmt.Errorf("invalid DSN: %w", err)
	}
	name := cfg.DBName
	if name == "" {
		return "", dsn, nil
	}
	cfg.DBName = ""
	stmt = fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET %s;",
		g.QuoteIdentifier(name), core.DefaultCharset)
	return stmt, cfg.FormatDSN(), nil
}

// Preflight analyzes the DDL and the first INSERT batch of res.
func (l *Loader) Preflight(res *migration.Result) (*PreflightResult, error) {
	statements := res.SQLStatements()
	if len(res.ValidRecords) > 0 {
		sample := l.generator.GenerateInsert(res.Table, res.ValidRecords[:1], 1)
		statements = append(statements, sample...)
	}
	return l.analyzer.AnalyzeStatements(statements)
}

// Load recreates res.Table and inserts res.ValidRecords. The DDL runs
// statement by statement since it commits implicitly; the inserts run in a
// single transaction.
func (l *Loader) Load(ctx context.Context, res *migration.Result) (*LoadResult, error) {
	preflight, err := l.Preflight(res)
	if err != nil {
		return nil, fmt.Errorf("preflight checks failed: %w", err)
	}

	statements := res.SQLStatements()
	out := &LoadResult{
		Preflight:  preflight,
		Statements: len(statements),
	}

	if l.options.DryRun {
		out.Batches = l.dryRun(res, statements, preflight)
		return out, nil
	}

	if l.db == nil {
		return nil, ErrNotConnected
	}

	for i, stmt := range statements {
		l.printf("Executing statement %d/%d...\n", i+1, len(statements))
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("statement %d failed: %w\n  Statement: %s", i+1, err, truncateSQL(stmt))
		}
	}

	batches, inserted, err := l.insert(ctx, res.Table, res.ValidRecords)
	if err != nil {
		return nil, err
	}
	out.Batches = batches
	out.Inserted = inserted

	ins, err := introspect.NewIntrospecter(dialect.MySQL)
	if err != nil {
		return nil, err
	}
	table, err := ins.DescribeTable(ctx, l.db, res.Table.Name)
	if err != nil {
		return nil, fmt.Errorf("read back table %q: %w", res.Table.Name, err)
	}
	out.Table = table
	if out.Drift = diff.Tables(res.Table, table); out.Drift != nil {
		l.printf("Warning: %s", out.Drift)
	}

	l.printf("Inserted %d rows into %s in %d batches\n", inserted, res.Table.Name, batches)
	return out, nil
}

func (l *Loader) insert(ctx context.Context, t *core.Table, records []core.FlatRecord) (batches int, inserted int64, err error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	size := mysql.RowsPerBatch(t, l.options.BatchSize)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batch := records[start:end]

		query := l.generator.InsertTemplate(t, len(batch))
		res, err := tx.ExecContext(ctx, query, mysql.InsertArgs(t, batch)...)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return 0, 0, fmt.Errorf("insert rows %d-%d failed: %w; rollback also failed: %v", start+1, end, err, rbErr)
			}
			return 0, 0, fmt.Errorf("insert rows %d-%d failed (rolled back): %w", start+1, end, err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			inserted += n
		}
		batches++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return batches, inserted, nil
}

func truncateSQL(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if len(stmt) > 80 {
		return stmt[:77] + "..."
	}
	return stmt
}

func (l *Loader) dryRun(res *migration.Result, statements []string, preflight *PreflightResult) int {
	l.println("=== DRY RUN MODE ===")

	l.println("--- Preflight Checks ---")
	if len(preflight.Warnings) == 0 {
		l.println("No warnings")
	} else {
		for _, w := range preflight.Warnings {
			l.printf("[%s] %s\n", w.Level, w.Message)
			if w.SQL != "" {
				l.printf("    SQL: %s\n", w.SQL)
			}
		}
	}

	l.println("--- Statements to Execute ---")
	for i, stmt := range statements {
		l.printf("%d. %s\n\n", i+1, stmt)
	}

	inserts := l.generator.GenerateInsert(res.Table, res.ValidRecords, mysql.RowsPerBatch(res.Table, l.options.BatchSize))
	l.printf("--- Data (%d rows, %d batches) ---\n", len(res.ValidRecords), len(inserts))
	for _, stmt := range inserts {
		l.println(stmt)
	}

	l.println("=== DRY RUN COMPLETE ===")
	return len(inserts)
}

// HasDestructiveOperations reports whether preflight holds a danger warning.
func HasDestructiveOperations(preflight *PreflightResult) bool {
	for _, w := range preflight.Warnings {
		if w.Level == WarnDanger {
			return true
		}
	}
	return false
}
