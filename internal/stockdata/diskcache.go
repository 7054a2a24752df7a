package stockdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

// DiskCache persists fetched price series as JSON files so a restarted
// process can reuse recent data. Freshness is judged by file modification
// time, so an entry needs no embedded metadata.
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache rooted at dir. The directory is created
// on first write.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

// NewDiskCacheWithClock creates a disk cache with an injected clock.
func NewDiskCacheWithClock(dir string, ttl time.Duration, now func() time.Time) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl, now: now}
}

func (dc *DiskCache) path(symbol string, days int) string {
	return filepath.Join(dc.dir, fmt.Sprintf("%s_%dd.json", symbol, days))
}

// Load returns the cached series if a fresh file exists. A stale or missing
// file reports ok=false without error; corrupt files are treated as missing.
func (dc *DiskCache) Load(symbol string, days int) ([]models.OHLCV, bool) {
	p := dc.path(symbol, days)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if dc.now().Sub(info.ModTime()) > dc.ttl {
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	var candles []models.OHLCV
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, false
	}
	return candles, true
}

// Store writes the series to disk, replacing any prior entry.
func (dc *DiskCache) Store(symbol string, days int, candles []models.OHLCV) error {
	if err := os.MkdirAll(dc.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}
	p := dc.path(symbol, days)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	// Stamp with the cache clock so freshness checks and writes agree.
	now := dc.now()
	return os.Chtimes(p, now, now)
}
