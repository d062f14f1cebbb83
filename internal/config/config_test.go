package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Database.DSN)
	assert.True(t, cfg.Database.CreateDatabase)
	assert.Equal(t, 500, cfg.Database.BatchSize)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, "markdown", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, int64(32<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.toml", `
[database]
dsn = "root:pw@tcp(localhost:3306)/shop"
batch_size = 100

[output]
dir = "out"
format = "json"

[[targets]]
file = "customers.csv"
primary_key = "customer_id"
unique_columns = ["customer_id", "email"]

[[targets]]
file = "/data/orders.json"
table = "orders"
unique_columns = []
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "root:pw@tcp(localhost:3306)/shop", cfg.Database.DSN)
	assert.Equal(t, 100, cfg.Database.BatchSize)
	assert.True(t, cfg.Database.CreateDatabase)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.Len(t, cfg.Targets, 2)
	assert.Equal(t, filepath.Join(dir, "customers.csv"), cfg.Targets[0].File)
	assert.Equal(t, "customer_id", cfg.Targets[0].PrimaryKey)
	assert.Equal(t, []string{"customer_id", "email"}, cfg.Targets[0].UniqueColumns)
	assert.Equal(t, "/data/orders.json", cfg.Targets[1].File)
	assert.Equal(t, "orders", cfg.Targets[1].Table)
	assert.NotNil(t, cfg.Targets[1].UniqueColumns)
	assert.Empty(t, cfg.Targets[1].UniqueColumns)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.yaml", `
logging:
  level: debug
  format: json
server:
  addr: ":8080"
  shutdown_timeout: 5s
targets:
  - file: products.xml
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Len(t, cfg.Targets, 1)
	assert.Nil(t, cfg.Targets[0].UniqueColumns)
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yml", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Database.BatchSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATAMIGRATOR_DSN", "u:p@tcp(db:3306)/env")
	t.Setenv("DATAMIGRATOR_LOG_LEVEL", "warn")
	t.Setenv("DATAMIGRATOR_CREATE_DATABASE", "false")
	t.Setenv("DATAMIGRATOR_BATCH_SIZE", "25")

	path := writeFile(t, t.TempDir(), "c.toml", "[database]\ndsn = \"from-file\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "u:p@tcp(db:3306)/env", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Database.CreateDatabase)
	assert.Equal(t, 25, cfg.Database.BatchSize)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "nope.toml"),
			wantErr: "read config file",
		},
		{
			name:    "unsupported extension",
			path:    writeFile(t, dir, "c.ini", "x=1"),
			wantErr: "unsupported config format",
		},
		{
			name:    "unknown toml key",
			path:    writeFile(t, dir, "unknown.toml", "[database]\nhost = \"x\"\n"),
			wantErr: "unknown keys",
		},
		{
			name:    "unknown yaml key",
			path:    writeFile(t, dir, "unknown.yaml", "database:\n  host: x\n"),
			wantErr: "field host not found",
		},
		{
			name:    "invalid env value",
			env:     map[string]string{"DATAMIGRATOR_BATCH_SIZE": "many"},
			wantErr: "invalid value for DATAMIGRATOR_BATCH_SIZE",
		},
		{
			name:    "validation",
			path:    writeFile(t, dir, "bad.toml", "[logging]\nlevel = \"loud\"\n[[targets]]\ntable = \"x\"\n"),
			wantErr: "targets[0].file is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Database.BatchSize = 0
	cfg.Output.Format = "html"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.batch_size (0) must be positive")
	assert.Contains(t, err.Error(), `output.format ("html")`)
	assert.Contains(t, err.Error(), `logging.format ("xml")`)
}

func TestStringMasksDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = "root:secret@tcp(localhost)/db"
	s := cfg.String()
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "DSN: [MASKED]")
}
