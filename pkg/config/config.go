// Package config loads and validates the benchmetrics configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultListen is the default metrics server listen address.
	DefaultListen = "127.0.0.1:9091"

	// DefaultResultsDir is the default benchmark output root scanned in
	// discovery mode.
	DefaultResultsDir = "./benchmark/build/outputs/connected_android_test_additional_output"

	// DefaultSQLitePath is the default run history database location.
	DefaultSQLitePath = "./benchmetrics.db"
)

// Config is the root configuration for benchmetrics.
type Config struct {
	Global   GlobalConfig    `yaml:"global"`
	Ingest   IngestConfig    `yaml:"ingest"`
	Server   ServerConfig    `yaml:"server"`
	Database *DatabaseConfig `yaml:"database,omitempty"`
	Upload   *UploadConfig   `yaml:"upload,omitempty"`
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel string `yaml:"log_level"`
}

// IngestConfig controls discovery and rendering of benchmark output.
type IngestConfig struct {
	ResultsDir string `yaml:"results_dir"`

	// RefreshInterval enables the serve-mode refresher: the results
	// directory is re-scanned and the served snapshot replaced at this
	// interval. Empty disables refreshing.
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
}

// ServerConfig contains metrics server settings.
type ServerConfig struct {
	Listen      string          `yaml:"listen"`
	CORSOrigins []string        `yaml:"cors_origins,omitempty"`
	RateLimit   RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// RateLimitConfig configures per-IP scrape rate limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute,omitempty"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// SQLiteConfig contains SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode,omitempty"`
}

// UploadConfig contains snapshot upload settings.
type UploadConfig struct {
	S3 *S3Config `yaml:"s3,omitempty"`
}

// S3Config contains S3-compatible storage settings for snapshot pushes.
type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	EndpointURL     string `yaml:"endpoint_url,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when
// no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// applyDefaults sets default values for unspecified configuration options.
func (c *Config) applyDefaults() {
	if c.Global.LogLevel == "" {
		c.Global.LogLevel = DefaultLogLevel
	}

	if c.Ingest.ResultsDir == "" {
		c.Ingest.ResultsDir = DefaultResultsDir
	}

	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}

	if c.Database != nil && c.Database.Enabled {
		if c.Database.Driver == "" {
			c.Database.Driver = "sqlite"
		}

		if c.Database.Driver == "sqlite" && c.Database.SQLite.Path == "" {
			c.Database.SQLite.Path = DefaultSQLitePath
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Ingest.RefreshInterval != "" {
		if _, err := time.ParseDuration(c.Ingest.RefreshInterval); err != nil {
			return fmt.Errorf("parsing ingest.refresh_interval: %w", err)
		}
	}

	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_minute must be positive")
	}

	if c.Database != nil && c.Database.Enabled {
		switch c.Database.Driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
		}
	}

	if c.Upload != nil && c.Upload.S3 != nil && c.Upload.S3.Enabled {
		if c.Upload.S3.Bucket == "" {
			return fmt.Errorf("upload.s3.bucket is required when S3 upload is enabled")
		}
	}

	return nil
}

// RefreshInterval returns the parsed refresh interval, or zero when
// refreshing is disabled. Validate must have accepted the config first.
func (c *Config) RefreshInterval() time.Duration {
	if c.Ingest.RefreshInterval == "" {
		return 0
	}

	d, err := time.ParseDuration(c.Ingest.RefreshInterval)
	if err != nil {
		return 0
	}

	return d
}
