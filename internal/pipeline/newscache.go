package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pulseworks/marketpulse/pkg/models"
)

// resultCache persists a run's ranked impacts so repeated queries within
// the freshness window skip refetching every source. Freshness is judged
// by file modification time, like the price series disk cache.
type resultCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func newResultCache(dir string, ttl time.Duration, now func() time.Time) *resultCache {
	return &resultCache{dir: dir, ttl: ttl, now: now}
}

func (rc *resultCache) path(key string) string {
	safe := strings.NewReplacer(":", "_", "/", "_").Replace(key)
	return filepath.Join(rc.dir, safe+".json")
}

func (rc *resultCache) Load(key string) ([]models.NewsImpact, bool) {
	p := rc.path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if rc.now().Sub(info.ModTime()) > rc.ttl {
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	var impacts []models.NewsImpact
	if err := json.Unmarshal(data, &impacts); err != nil {
		return nil, false
	}
	return impacts, true
}

func (rc *resultCache) Store(key string, impacts []models.NewsImpact) error {
	if err := os.MkdirAll(rc.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(impacts)
	if err != nil {
		return fmt.Errorf("encode impacts: %w", err)
	}
	p := rc.path(key)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	now := rc.now()
	return os.Chtimes(p, now, now)
}
