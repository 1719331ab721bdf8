// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Output  OutputConfig  `mapstructure:"output"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl pipeline.
type CrawlerConfig struct {
	BaseURL               string   `mapstructure:"base_url"`
	Collections           []string `mapstructure:"collections"`
	UserAgent             string   `mapstructure:"user_agent"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds"`
	BlockCooldownSeconds  int      `mapstructure:"block_cooldown_seconds"`
	BlockMaxRetries       int      `mapstructure:"block_max_retries"`
	ProductDelaySeconds   int      `mapstructure:"product_delay_seconds"`
}

// OutputConfig sets where rows and raw page snapshots land.
type OutputConfig struct {
	Path        string `mapstructure:"path"`
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

// DBConfig controls the optional Postgres row sink. An empty DSN disables it.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// MetricsConfig controls the optional metrics listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Override mutates a Config after unmarshalling and before validation,
// letting command-line flags take precedence over file and environment.
type Override func(*Config)

// Load builds a Config from disk/environment.
func Load(path string, overrides ...Override) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHOPCRAWL")
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

	for _, override := range overrides {
		override(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("crawler.request_timeout_seconds", 15)
	v.SetDefault("crawler.block_cooldown_seconds", 180)
	v.SetDefault("crawler.block_max_retries", 0)
	v.SetDefault("crawler.product_delay_seconds", 1)
	v.SetDefault("output.path", "products.csv")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Crawler.BaseURL) == "" {
		return fmt.Errorf("crawler.base_url must be set")
	}
	if c.Crawler.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.request_timeout_seconds must be > 0")
	}
	if c.Crawler.BlockCooldownSeconds < 0 {
		return fmt.Errorf("crawler.block_cooldown_seconds must be >= 0")
	}
	if c.Crawler.BlockMaxRetries < 0 {
		return fmt.Errorf("crawler.block_max_retries must be >= 0")
	}
	if c.Crawler.ProductDelaySeconds < 0 {
		return fmt.Errorf("crawler.product_delay_seconds must be >= 0")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path must be set")
	}
	return nil
}

// RequestTimeout converts the configured timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Crawler.RequestTimeoutSeconds) * time.Second
}

// BlockCooldown converts the configured cooldown into a duration.
func (c Config) BlockCooldown() time.Duration {
	return time.Duration(c.Crawler.BlockCooldownSeconds) * time.Second
}

// ProductDelay converts the configured pacing delay into a duration.
func (c Config) ProductDelay() time.Duration {
	return time.Duration(c.Crawler.ProductDelaySeconds) * time.Second
}
