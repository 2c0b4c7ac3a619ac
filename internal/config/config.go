package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the jlcsnap CLI.
type Config struct {
	BaseURL     string      `yaml:"base_url"`
	WorkDir     string      `yaml:"work_dir"`
	Database    string      `yaml:"database"`
	Output      string      `yaml:"output"`
	Format      string      `yaml:"format"`
	MaxVolumes  int         `yaml:"max_volumes"`
	KeepVolumes bool        `yaml:"keep_volumes"`
	Bucket      string      `yaml:"bucket"`
	Object      string      `yaml:"object"`
	Progress    bool        `yaml:"progress"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig defines retry behavior for volume fetches.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		BaseURL:    "https://yaqwsx.github.io/jlcparts/data/cache",
		WorkDir:    ".",
		Database:   "cache.sqlite3",
		Output:     "parts.csv.xz",
		MaxVolumes: 9,
		Retry: RetryConfig{
			Attempts:   3,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	BaseURL     string          `yaml:"base_url"`
	WorkDir     string          `yaml:"work_dir"`
	Database    string          `yaml:"database"`
	Output      string          `yaml:"output"`
	Format      string          `yaml:"format"`
	MaxVolumes  int             `yaml:"max_volumes"`
	KeepVolumes bool            `yaml:"keep_volumes"`
	Bucket      string          `yaml:"bucket"`
	Object      string          `yaml:"object"`
	Progress    bool            `yaml:"progress"`
	Retry       yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.BaseURL != "" {
		cfg.BaseURL = yc.BaseURL
	}
	if yc.WorkDir != "" {
		cfg.WorkDir = yc.WorkDir
	}
	if yc.Database != "" {
		cfg.Database = yc.Database
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Format != "" {
		cfg.Format = yc.Format
	}
	if yc.MaxVolumes != 0 {
		cfg.MaxVolumes = yc.MaxVolumes
	}
	cfg.KeepVolumes = yc.KeepVolumes
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Object != "" {
		cfg.Object = yc.Object
	}
	cfg.Progress = yc.Progress
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the JLCSNAP_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("JLCSNAP_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("JLCSNAP_WORK_DIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("JLCSNAP_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("JLCSNAP_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("JLCSNAP_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("JLCSNAP_MAX_VOLUMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse JLCSNAP_MAX_VOLUMES: %w", err)
		}
		c.MaxVolumes = n
	}
	if v := os.Getenv("JLCSNAP_KEEP_VOLUMES"); v != "" {
		c.KeepVolumes = v == "true" || v == "1"
	}
	if v := os.Getenv("JLCSNAP_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("JLCSNAP_OBJECT"); v != "" {
		c.Object = v
	}
	if v := os.Getenv("JLCSNAP_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("JLCSNAP_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse JLCSNAP_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("JLCSNAP_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse JLCSNAP_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("JLCSNAP_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse JLCSNAP_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("config: base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: base_url %q is not a valid URL", c.BaseURL)
	}
	if strings.HasSuffix(c.BaseURL, ".zip") {
		return errors.New("config: base_url must not include the .zip suffix")
	}
	if c.Database == "" {
		return errors.New("config: database is required")
	}
	if c.Output == "" {
		return errors.New("config: output is required")
	}
	if c.MaxVolumes <= 0 {
		return errors.New("config: max_volumes must be positive")
	}
	if c.Format != "" && c.Format != "csv" && c.Format != "parquet" {
		return fmt.Errorf("config: unknown format %q", c.Format)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.WorkDir != "" {
		c.WorkDir = override.WorkDir
	}
	if override.Database != "" {
		c.Database = override.Database
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Format != "" {
		c.Format = override.Format
	}
	if override.MaxVolumes != 0 {
		c.MaxVolumes = override.MaxVolumes
	}
	if override.KeepVolumes {
		c.KeepVolumes = override.KeepVolumes
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Object != "" {
		c.Object = override.Object
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
