package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL string        `yaml:"base_url" envconfig:"MARKETDATA_BASE_URL"`
		APIKey  string        `yaml:"api_key" envconfig:"MARKETDATA_API_KEY"`
		Timeout time.Duration `yaml:"timeout" envconfig:"MARKETDATA_TIMEOUT"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Ingestion struct {
		TickersFile  string        `yaml:"tickers_file" envconfig:"TICKERS_FILE"`
		From         string        `yaml:"from" envconfig:"FROM_DATE"`
		To           string        `yaml:"to" envconfig:"TO_DATE"`
		LookbackDays int           `yaml:"lookback_days" envconfig:"LOOKBACK_DAYS"`
		Pacing       time.Duration `yaml:"pacing" envconfig:"PACING"`
		Workers      int           `yaml:"workers" envconfig:"WORKERS"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
		MaxRetries   int           `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	} `yaml:"ingestion" envconfig:"INGESTION"`
	Database struct {
		Driver     string `yaml:"driver" envconfig:"STORE_DRIVER"`
		SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	} `yaml:"database" envconfig:"DATABASE"`
	Schedule struct {
		Cron       string `yaml:"cron" envconfig:"CRON"`
		RunOnStart bool   `yaml:"run_on_start" envconfig:"RUN_ON_START"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()

	// Unset variables leave the YAML values alone.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = collector.DefaultBaseURL
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Ingestion.TickersFile == "" {
		cfg.Ingestion.TickersFile = "ticker.txt"
	}
	if cfg.Ingestion.LookbackDays == 0 {
		cfg.Ingestion.LookbackDays = 365
	}
	if cfg.Ingestion.Pacing == 0 {
		cfg.Ingestion.Pacing = time.Second
	}
	if cfg.Ingestion.Workers == 0 {
		cfg.Ingestion.Workers = 1
	}
	if cfg.Ingestion.FetchTimeout == 0 {
		cfg.Ingestion.FetchTimeout = cfg.DataSource.Timeout
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocks.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required")
	}
	if c.Database.Driver != DriverSQLite && c.Database.Driver != DriverMemory {
		return fmt.Errorf("database.driver must be %q or %q", DriverSQLite, DriverMemory)
	}
	if c.Ingestion.Workers < 1 {
		return fmt.Errorf("ingestion.workers must be positive")
	}
	if c.Ingestion.Pacing < 0 {
		return fmt.Errorf("ingestion.pacing must not be negative")
	}
	if c.Ingestion.MaxRetries < 0 {
		return fmt.Errorf("ingestion.max_retries must not be negative")
	}
	if c.Ingestion.LookbackDays < 1 {
		return fmt.Errorf("ingestion.lookback_days must be positive")
	}
	if _, _, err := c.DateRange(time.Now()); err != nil {
		return err
	}
	return nil
}

// DateRange resolves the ingestion window. Fixed from/to dates win; a
// missing to defaults to today and a missing from to lookback_days before to.
func (c *Config) DateRange(now time.Time) (from, to time.Time, err error) {
	to = model.Day(now)
	if c.Ingestion.To != "" {
		if to, err = time.Parse(model.DateLayout, c.Ingestion.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("ingestion.to: %w", err)
		}
	}
	from = to.AddDate(0, 0, -c.Ingestion.LookbackDays)
	if c.Ingestion.From != "" {
		if from, err = time.Parse(model.DateLayout, c.Ingestion.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("ingestion.from: %w", err)
		}
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("ingestion.from %s is after ingestion.to %s",
			from.Format(model.DateLayout), to.Format(model.DateLayout))
	}
	return from, to, nil
}
