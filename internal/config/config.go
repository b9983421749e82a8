// Package config loads application configuration from defaults, an optional
// YAML file, a .env file and RPI_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"rpi-index-lab/internal/domain"
)

// EnvPrefix is the prefix of every environment variable, e.g. RPI_SERVER_ADDR.
const EnvPrefix = "RPI"

// Backends a dataset can be loaded from.
const (
	BackendFile       = "file"
	BackendPostgres   = "postgres"
	BackendClickhouse = "clickhouse"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Data     DataConfig     `yaml:"data" envconfig:"DATA"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
	Explorer ExplorerConfig `yaml:"explorer" envconfig:"EXPLORER"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// DataConfig locates the two datasets. Sources are file paths or http(s) URLs.
type DataConfig struct {
	IndexSource  string        `yaml:"index_source" envconfig:"INDEX_SOURCE"`
	PriceSource  string        `yaml:"price_source" envconfig:"PRICE_SOURCE"`
	CacheDir     string        `yaml:"cache_dir" envconfig:"CACHE_DIR"`
	CacheTTL     time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT"`
}

// DatabaseConfig selects where datasets are read from when not loaded from files.
type DatabaseConfig struct {
	Backend       string `yaml:"backend" envconfig:"BACKEND"`
	PostgresDSN   string `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	ClickhouseDSN string `yaml:"clickhouse_dsn" envconfig:"CLICKHOUSE_DSN"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
}

// TracingConfig toggles diagnostic tracing.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ENABLED"`
}

// ExplorerConfig holds the initial base period.
type ExplorerConfig struct {
	BaseYear        int  `yaml:"base_year" envconfig:"BASE_YEAR"`
	BaseQuarter     int  `yaml:"base_quarter" envconfig:"BASE_QUARTER"`
	ApplyBaseOnLoad bool `yaml:"apply_base_on_load" envconfig:"APPLY_BASE_ON_LOAD"`
}

// BasePeriod returns the configured base period.
func (c ExplorerConfig) BasePeriod() domain.Period {
	return domain.Period{Year: c.BaseYear, Quarter: c.BaseQuarter}
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			IndexSource:  "data/RRPI_calculated.csv",
			PriceSource:  "data/median_prices.csv",
			CacheTTL:     24 * time.Hour,
			FetchTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Backend: BackendFile,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Explorer: ExplorerConfig{
			BaseYear:    domain.DefaultBasePeriod.Year,
			BaseQuarter: domain.DefaultBasePeriod.Quarter,
		},
	}
}

// Load builds the configuration. envFile and configFile may be empty;
// when configFile is empty RPI_CONFIG_FILE is consulted.
// A missing .env file is not an error; a missing explicit config file is.
func Load(envFile, configFile string) (*Config, error) {
	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG_FILE")
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable keep their file or default value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes enum fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Data.FetchTimeout <= 0 {
		return fmt.Errorf("data fetch timeout must be positive")
	}

	c.Database.Backend = strings.ToLower(strings.TrimSpace(c.Database.Backend))
	switch c.Database.Backend {
	case BackendFile:
		if c.Data.IndexSource == "" || c.Data.PriceSource == "" {
			return fmt.Errorf("file backend requires index and price sources")
		}
	case BackendPostgres:
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("postgres backend requires a postgres DSN")
		}
	case BackendClickhouse:
		if c.Database.ClickhouseDSN == "" {
			return fmt.Errorf("clickhouse backend requires a clickhouse DSN")
		}
	default:
		return fmt.Errorf("unknown database backend %q", c.Database.Backend)
	}

	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if !c.Explorer.BasePeriod().Valid() {
		return fmt.Errorf("explorer base quarter must be within 1..4, got %d", c.Explorer.BaseQuarter)
	}
	return nil
}
