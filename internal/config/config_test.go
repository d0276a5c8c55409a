package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockSentinel/internal/collector"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, collector.DefaultBaseURL, cfg.DataSource.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, "ticker.txt", cfg.Ingestion.TickersFile)
	assert.Equal(t, time.Second, cfg.Ingestion.Pacing)
	assert.Equal(t, 1, cfg.Ingestion.Workers)
	assert.Equal(t, 365, cfg.Ingestion.LookbackDays)
	assert.Equal(t, 30*time.Second, cfg.Ingestion.FetchTimeout)
	assert.Equal(t, "data/stocks.db", cfg.Database.SQLitePath)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Error(t, cfg.Validate(), "api key is required")
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
data_source:
  api_key: from-yaml
  timeout: 10s
ingestion:
  tickers_file: symbols.txt
  from: "2023-11-16"
  to: "2024-11-15"
  pacing: 500ms
  workers: 3
  max_retries: 2
database:
  sqlite_path: /tmp/x.db
schedule:
  cron: "0 30 22 * * 1-5"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-yaml", cfg.DataSource.APIKey)
	assert.Equal(t, 10*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Ingestion.FetchTimeout)
	assert.Equal(t, "symbols.txt", cfg.Ingestion.TickersFile)
	assert.Equal(t, 500*time.Millisecond, cfg.Ingestion.Pacing)
	assert.Equal(t, 3, cfg.Ingestion.Workers)
	assert.Equal(t, 2, cfg.Ingestion.MaxRetries)
	assert.Equal(t, "0 30 22 * * 1-5", cfg.Schedule.Cron)

	from, to, err := cfg.DateRange(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "2023-11-16", from.Format("2006-01-02"))
	assert.Equal(t, "2024-11-15", to.Format("2006-01-02"))
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "data_source:\n  api_key: from-yaml\ningestion:\n  workers: 2\n")
	t.Setenv("MARKETDATA_API_KEY", "from-env")
	t.Setenv("PACING", "2s")
	t.Setenv("SQLITE_PATH", "env.db")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DataSource.APIKey)
	assert.Equal(t, 2*time.Second, cfg.Ingestion.Pacing)
	assert.Equal(t, 2, cfg.Ingestion.Workers, "unset variables keep YAML values")
	assert.Equal(t, "env.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Schedule.RunOnStart)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [unterminated"))
	assert.ErrorContains(t, err, "parse config")
}

func TestDateRange_Lookback(t *testing.T) {
	cfg := &Config{}
	cfg.Ingestion.LookbackDays = 30
	now := time.Date(2024, 3, 31, 17, 45, 0, 0, time.UTC)

	from, to, err := cfg.DateRange(now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", to.Format("2006-01-02"))
	assert.Equal(t, "2024-03-01", from.Format("2006-01-02"))
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		cfg.DataSource.APIKey = "k"
		return cfg
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Ingestion.From, cfg.Ingestion.To = "2024-02-01", "2024-01-01"
	assert.ErrorContains(t, cfg.Validate(), "after")

	cfg = base()
	cfg.Ingestion.To = "15/11/2024"
	assert.ErrorContains(t, cfg.Validate(), "ingestion.to")

	cfg = base()
	cfg.Ingestion.Workers = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "database.driver")

	cfg = base()
	cfg.Ingestion.MaxRetries = -1
	assert.Error(t, cfg.Validate())
}
