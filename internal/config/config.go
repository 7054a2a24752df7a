// Package config handles configuration loading for MarketPulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pulseworks/marketpulse/internal/newsfeed"
)

// Config represents the complete application configuration.
type Config struct {
	News     NewsConfig     `mapstructure:"news"     yaml:"news"`
	Stocks   StocksConfig   `mapstructure:"stocks"   yaml:"stocks"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// NewsConfig holds news ingestion settings.
type NewsConfig struct {
	Sources           []newsfeed.Source `mapstructure:"sources"             yaml:"sources"`
	ArticlesPerSource int               `mapstructure:"articles_per_source" yaml:"articles_per_source"`
	FetchTimeoutSec   int               `mapstructure:"fetch_timeout_sec"   yaml:"fetch_timeout_sec"`
	FetchRetries      int               `mapstructure:"fetch_retries"       yaml:"fetch_retries"`
	SourceIntervalSec int               `mapstructure:"source_interval_sec" yaml:"source_interval_sec"`
	CacheTTLSec       int               `mapstructure:"cache_ttl_sec"       yaml:"cache_ttl_sec"`
}

// StocksConfig holds price data settings.
type StocksConfig struct {
	DataDir         string `mapstructure:"data_dir"           yaml:"data_dir"`
	MemCacheTTLSec  int    `mapstructure:"mem_cache_ttl_sec"  yaml:"mem_cache_ttl_sec"`
	DiskCacheTTLSec int    `mapstructure:"disk_cache_ttl_sec" yaml:"disk_cache_ttl_sec"`
	RequestsPerSec  int    `mapstructure:"requests_per_sec"   yaml:"requests_per_sec"`
}

// AnalysisConfig holds pipeline tuning settings.
type AnalysisConfig struct {
	Workers     int `mapstructure:"workers"      yaml:"workers"`
	DeadlineSec int `mapstructure:"deadline_sec" yaml:"deadline_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
	Output string `mapstructure:"output" yaml:"output"` // "stdout", "stderr" or a file path
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketpulse/config.yaml (home directory)
//  3. /etc/marketpulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETPULSE_<SECTION>_<KEY>, e.g., MARKETPULSE_LOGGING_LEVEL
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketpulse"))
	v.AddConfigPath("/etc/marketpulse")

	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults + env vars.
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("MARKETPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if len(cfg.News.Sources) == 0 {
		cfg.News.Sources = newsfeed.DefaultSources
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.articles_per_source", 10)
	v.SetDefault("news.fetch_timeout_sec", 15)
	v.SetDefault("news.fetch_retries", 3)
	v.SetDefault("news.source_interval_sec", 3)
	v.SetDefault("news.cache_ttl_sec", 900) // 15 minutes

	// Stock data defaults
	v.SetDefault("stocks.data_dir", "data/stocks")
	v.SetDefault("stocks.mem_cache_ttl_sec", 300) // 5 minutes
	v.SetDefault("stocks.disk_cache_ttl_sec", 3600)
	v.SetDefault("stocks.requests_per_sec", 5)

	// Analysis defaults
	v.SetDefault("analysis.workers", 5)
	v.SetDefault("analysis.deadline_sec", 120)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
