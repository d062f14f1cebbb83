package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var analyzeStatementTests = []struct {
	name              string
	sql               string
	wantDestructive   bool
	wantTxSafe        bool
	wantStatementType string
	wantTable         string
}{
	{
		name:              "DROP TABLE is destructive and non-transactional",
		sql:               "DROP TABLE IF EXISTS `users`;",
		wantDestructive:   true,
		wantTxSafe:        false,
		wantStatementType: "DROP TABLE",
		wantTable:         "users",
	},
	{
		name: "CREATE TABLE is non-transactional",
		sql: "CREATE TABLE `users` (\n  `id` INT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n" +
			"  `price` DECIMAL(10, 2) NOT NULL,\n  `bio` TEXT,\n  UNIQUE KEY `uq_bio` (`bio`(255))\n" +
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
		wantDestructive:   false,
		wantTxSafe:        false,
		wantStatementType: "CREATE TABLE",
		wantTable:         "users",
	},
	{
		name:              "CREATE DATABASE is non-transactional",
		sql:               "CREATE DATABASE IF NOT EXISTS `shop` CHARACTER SET utf8mb4;",
		wantTxSafe:        false,
		wantStatementType: "CREATE DATABASE",
	},
	{
		name:              "INSERT is transactional",
		sql:               "INSERT INTO `users` (`id`, `name`) VALUES\n  (1, 'Ann'),\n  (2, NULL);",
		wantTxSafe:        true,
		wantStatementType: "INSERT",
	},
	{
		name:              "other DDL is non-transactional",
		sql:               "ALTER TABLE users ADD COLUMN email VARCHAR(255);",
		wantTxSafe:        false,
		wantStatementType: "OTHER",
	},
}

func TestStatementAnalyzerAnalyzeStatement(t *testing.T) {
	analyzer := NewStatementAnalyzer()
	for _, tt := range analyzeStatementTests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := analyzer.AnalyzeStatement(tt.sql)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDestructive, analysis.IsDestructive, "IsDestructive mismatch")
			assert.Equal(t, tt.wantTxSafe, analysis.IsTransactionSafe, "IsTransactionSafe mismatch")
			assert.Equal(t, tt.wantStatementType, analysis.StatementType, "StatementType mismatch")
			assert.Equal(t, tt.wantTable, analysis.Table, "Table mismatch")
		})
	}
}

func TestStatementAnalyzerRejectsInvalidSQL(t *testing.T) {
	analyzer := NewStatementAnalyzer()

	_, err := analyzer.AnalyzeStatement("CREATE TABLE `t` (`a` NOTATYPE);")
	assert.ErrorContains(t, err, "statement does not parse")

	_, err = analyzer.AnalyzeStatement("SELECT 1; SELECT 2;")
	assert.ErrorContains(t, err, "expected one statement, found 2")
}

func TestStatementAnalyzerPreflightResult(t *testing.T) {
	analyzer := NewStatementAnalyzer()

	statements := []string{
		"DROP TABLE IF EXISTS `users`;",
		"CREATE TABLE `users` (`id` INT NOT NULL PRIMARY KEY);",
		"INSERT INTO `users` (`id`) VALUES (1);",
	}

	result, err := analyzer.AnalyzeStatements(statements)
	require.NoError(t, err)

	assert.False(t, result.IsTransactional, "expected IsTransactional to be false for DDL statements")
	assert.Len(t, result.NonTxReasons, 2)
	require.Len(t, result.Analyses, 3)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarnDanger, result.Warnings[0].Level)
	assert.True(t, HasDestructiveOperations(result))
}

func TestStatementAnalyzerFalsePositiveAvoidance(t *testing.T) {
	analyzer := NewStatementAnalyzer()

	analysis, err := analyzer.AnalyzeStatement("INSERT INTO logs (message) VALUES ('User tried to DROP TABLE');")
	require.NoError(t, err)
	assert.False(t, analysis.IsDestructive, "false positive detected")
}

func TestStatementAnalyzerStopsAtFirstError(t *testing.T) {
	analyzer := NewStatementAnalyzer()
	_, err := analyzer.AnalyzeStatements([]string{"DROP TABLE `a`;", "CREATE TABLE ("})
	assert.Error(t, err)
}
