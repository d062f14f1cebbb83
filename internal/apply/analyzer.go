package apply

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // required to register TiDB parser driver implementations
)

// StatementAnalysis contains the results of analyzing a SQL statement.
type StatementAnalysis struct {
	StatementType     string
	IsDestructive     bool
	DestructiveReason string
	IsTransactionSafe bool
	TxUnsafeReason    string
	Table             string
}

// StatementAnalyzer uses TiDB's AST parser to check generated statements
// before they reach the server.
type StatementAnalyzer struct {
	parser *parser.Parser
}

// NewStatementAnalyzer creates a new AST-based statement analyzer.
func NewStatementAnalyzer() *StatementAnalyzer {
	return &StatementAnalyzer{
		parser: parser.New(),
	}
}

// AnalyzeStatement parses a single SQL statement. A statement that does not
// parse is an error: generated SQL must always be valid.
func (a *StatementAnalyzer) AnalyzeStatement(sql string) (*StatementAnalysis, error) {
	stmtNodes, _, err := a.parser.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("statement does not parse: %w\n  Statement: %s", err, truncateSQL(sql))
	}
	if len(stmtNodes) != 1 {
		return nil, fmt.Errorf("expected one statement, found %d\n  Statement: %s", len(stmtNodes), truncateSQL(sql))
	}

	return a.analyzeNode(stmtNodes[0], sql), nil
}

// AnalyzeStatements analyzes every statement and collects the warnings into
// a PreflightResult. The first statement that does not parse aborts the
// analysis.
func (a *StatementAnalyzer) AnalyzeStatements(statements []string) (*PreflightResult, error) {
	result := &PreflightResult{
		IsTransactional: true,
	}

	for _, stmt := range statements {
		analysis, err := a.AnalyzeStatement(stmt)
		if err != nil {
			return nil, err
		}

		result.Analyses = append(result.Analyses, analysis)
		a.addDestructiveWarning(result, analysis, stmt)
		a.addTransactionSafety(result, analysis, stmt)
	}

	return result, nil
}

func (a *StatementAnalyzer) addDestructiveWarning(result *PreflightResult, analysis *StatementAnalysis, stmt string) {
	if !analysis.IsDestructive {
		return
	}
	result.Warnings = append(result.Warnings, Warning{
		Level:   WarnDanger,
		Message: analysis.DestructiveReason,
		SQL:     stmt,
	})
}

func (a *StatementAnalyzer) addTransactionSafety(result *PreflightResult, analysis *StatementAnalysis, stmt string) {
	if analysis.IsTransactionSafe {
		return
	}
	result.IsTransactional = false
	reason := analysis.TxUnsafeReason
	if reason == "" {
		reason = "DDL statement causes implicit commit"
	}
	result.NonTxReasons = append(result.NonTxReasons, fmt.Sprintf("%s: %s", reason, truncateSQL(stmt)))
}

func (a *StatementAnalyzer) analyzeNode(node ast.StmtNode, originalSQL string) *StatementAnalysis {
	analysis := &StatementAnalysis{
		IsTransactionSafe: true,
	}

	switch stmt := node.(type) {
	case *ast.DropTableStmt:
		analysis.StatementType = "DROP TABLE"
		analysis.IsDestructive = true
		analysis.DestructiveReason = "DROP TABLE will permanently delete the table and all its data"
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = "DROP TABLE causes an implicit commit in MySQL"
		if len(stmt.Tables) > 0 {
			analysis.Table = stmt.Tables[0].Name.O
		}
	case *ast.CreateTableStmt:
		analysis.StatementType = "CREATE TABLE"
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = "CREATE TABLE causes an implicit commit in MySQL"
		if stmt.Table != nil {
			analysis.Table = stmt.Table.Name.O
		}
	case *ast.CreateDatabaseStmt:
		analysis.StatementType = "CREATE DATABASE"
		analysis.IsTransactionSafe = false
		analysis.TxUnsafeReason = "CREATE DATABASE causes an implicit commit in MySQL"
	case *ast.InsertStmt:
		analysis.StatementType = "INSERT"
	default:
		analysis.StatementType = "OTHER"
		upper := strings.ToUpper(strings.TrimSpace(originalSQL))
		if strings.HasPrefix(upper, "CREATE ") ||
			strings.HasPrefix(upper, "DROP ") ||
			strings.HasPrefix(upper, "ALTER ") {
			analysis.IsTransactionSafe = false
		}
	}

	return analysis
}
