// Package config loads and validates ingestion configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Logging    LoggingConfig           `mapstructure:"logging"`
	Browser    BrowserConfig           `mapstructure:"browser"`
	Crawl      CrawlConfig             `mapstructure:"crawl"`
	DB         DBConfig                `mapstructure:"db"`
	Enrichment EnrichmentConfig        `mapstructure:"enrichment"`
	Sources    map[string]SourceConfig `mapstructure:"sources"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// BrowserConfig configures the headless rendering subsystem.
type BrowserConfig struct {
	MaxTabs       int    `mapstructure:"max_tabs"`
	UserAgent     string `mapstructure:"user_agent"`
	NavTimeoutSec int    `mapstructure:"nav_timeout_seconds"`
	ExtraWaitMs   int    `mapstructure:"extra_wait_ms"`
}

// CrawlConfig governs page-crawl batching behavior.
type CrawlConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	CooldownMs  int `mapstructure:"cooldown_ms"`
	// MaxAttempts bounds tries per page and per enrichment batch; 1 means
	// no retries.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxConns        int32  `mapstructure:"max_conns"`
	MinConns        int32  `mapstructure:"min_conns"`
	ConnLifetimeSec int    `mapstructure:"conn_lifetime_seconds"`
}

// EnrichmentConfig points at the external detail-scraping service.
type EnrichmentConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BaseURL        string `mapstructure:"base_url"`
	BatchSize      int    `mapstructure:"batch_size"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SourceConfig holds per-source overrides for the builtin adapters.
type SourceConfig struct {
	Enabled *bool  `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("browser.max_tabs", 5)
	v.SetDefault("browser.user_agent", "imovelhub-ingest/1.0")
	v.SetDefault("browser.nav_timeout_seconds", 25)
	v.SetDefault("browser.extra_wait_ms", 500)
	v.SetDefault("crawl.concurrency", 5)
	v.SetDefault("crawl.cooldown_ms", 500)
	v.SetDefault("crawl.max_attempts", 3)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.conn_lifetime_seconds", 1800)
	v.SetDefault("enrichment.enabled", false)
	v.SetDefault("enrichment.batch_size", 25)
	v.SetDefault("enrichment.timeout_seconds", 120)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be > 0")
	}
	if c.Crawl.CooldownMs < 0 {
		return fmt.Errorf("crawl.cooldown_ms must be >= 0")
	}
	if c.Crawl.MaxAttempts < 1 {
		return fmt.Errorf("crawl.max_attempts must be >= 1")
	}
	if c.Browser.MaxTabs <= 0 {
		return fmt.Errorf("browser.max_tabs must be > 0")
	}
	if c.Browser.NavTimeoutSec <= 0 {
		return fmt.Errorf("browser.nav_timeout_seconds must be > 0")
	}
	if c.Enrichment.Enabled {
		if c.Enrichment.BaseURL == "" {
			return fmt.Errorf("enrichment.base_url must be set when enrichment is enabled")
		}
		if c.Enrichment.BatchSize <= 0 {
			return fmt.Errorf("enrichment.batch_size must be > 0")
		}
	}
	return nil
}

// Cooldown converts the batch cooldown config into a duration.
func (c CrawlConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMs) * time.Millisecond
}

// NavTimeout converts the navigation timeout config into a duration.
func (c BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// ExtraWait converts the post-load settle delay into a duration.
func (c BrowserConfig) ExtraWait() time.Duration {
	return time.Duration(c.ExtraWaitMs) * time.Millisecond
}

// ConnLifetime converts the pool connection lifetime into a duration.
func (c DBConfig) ConnLifetime() time.Duration {
	return time.Duration(c.ConnLifetimeSec) * time.Second
}

// Timeout converts the enrichment request timeout into a duration.
func (c EnrichmentConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
