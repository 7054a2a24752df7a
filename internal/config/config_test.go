package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.News.ArticlesPerSource != 10 {
		t.Errorf("articles per source = %d, want 10", cfg.News.ArticlesPerSource)
	}
	if cfg.News.FetchRetries != 3 {
		t.Errorf("fetch retries = %d, want 3", cfg.News.FetchRetries)
	}
	if cfg.News.SourceIntervalSec != 3 {
		t.Errorf("source interval = %d, want 3", cfg.News.SourceIntervalSec)
	}
	if cfg.News.CacheTTLSec != 900 {
		t.Errorf("news cache ttl = %d, want 900", cfg.News.CacheTTLSec)
	}
	if len(cfg.News.Sources) == 0 {
		t.Error("default sources must be populated")
	}
	if cfg.Stocks.MemCacheTTLSec != 300 || cfg.Stocks.DiskCacheTTLSec != 3600 {
		t.Errorf("stock cache ttls = %d/%d", cfg.Stocks.MemCacheTTLSec, cfg.Stocks.DiskCacheTTLSec)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
news:
  articles_per_source: 25
  sources:
    - name: Custom Wire
      url: https://example.com/rss
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.News.ArticlesPerSource != 25 {
		t.Errorf("articles per source = %d, want 25", cfg.News.ArticlesPerSource)
	}
	if len(cfg.News.Sources) != 1 || cfg.News.Sources[0].Name != "Custom Wire" {
		t.Errorf("sources = %+v", cfg.News.Sources)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Unset sections still get defaults.
	if cfg.News.FetchTimeoutSec != 15 {
		t.Errorf("fetch timeout = %d, want default 15", cfg.News.FetchTimeoutSec)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MARKETPULSE_LOGGING_LEVEL", "warn")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override ignored, level = %q", cfg.Logging.Level)
	}
}
