package stockdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pulseworks/marketpulse/internal/infra"
	"github.com/pulseworks/marketpulse/pkg/models"
)

// ErrUnavailable is returned when a symbol's data could not be fetched and
// no fresh cached copy exists.
var ErrUnavailable = errors.New("stock data unavailable")

const (
	// metricsWindowDays covers enough trading days that yesterday's close
	// exists even across a weekend.
	metricsWindowDays = 5

	defaultMemTTL  = 5 * time.Minute
	defaultDiskTTL = time.Hour
)

// Store serves price history and derived metrics through a two-level cache:
// an in-memory TTL cache in front of a disk cache in front of the provider.
// Concurrent requests for a cold key are coalesced into a single fetch.
type Store struct {
	provider Provider
	mem      *infra.Cache
	disk     *DiskCache
	limiter  *infra.RateLimiter
	group    singleflight.Group
	log      zerolog.Logger
}

// Options configures a Store. Zero values pick the defaults.
type Options struct {
	MemTTL  time.Duration
	DiskTTL time.Duration
	DataDir string
	Clock   func() time.Time
}

// NewStore creates a store over the given provider.
func NewStore(provider Provider, limiter *infra.RateLimiter, opts Options, log zerolog.Logger) *Store {
	if opts.MemTTL == 0 {
		opts.MemTTL = defaultMemTTL
	}
	if opts.DiskTTL == 0 {
		opts.DiskTTL = defaultDiskTTL
	}
	if opts.DataDir == "" {
		opts.DataDir = "data/stocks"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{
		provider: provider,
		mem:      infra.NewCacheWithClock(opts.MemTTL, opts.Clock),
		disk:     NewDiskCacheWithClock(opts.DataDir, opts.DiskTTL, opts.Clock),
		limiter:  limiter,
		log:      log,
	}
}

// History returns the candle series for a symbol over the lookback window.
// Cached entries are shared by all callers; a fetch failure never evicts
// what is already cached.
func (s *Store) History(ctx context.Context, symbol string, days int) ([]models.OHLCV, error) {
	key := fmt.Sprintf("hist:%s:%d", symbol, days)
	if cached, ok := s.mem.Get(key); ok {
		return cached.([]models.OHLCV), nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have filled
		// the cache between our miss and acquiring the flight.
		if cached, ok := s.mem.Get(key); ok {
			return cached.([]models.OHLCV), nil
		}
		if candles, ok := s.disk.Load(symbol, days); ok {
			s.mem.Set(key, candles)
			return candles, nil
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		candles, err := s.provider.History(ctx, symbol, days)
		if err != nil {
			s.log.Warn().Str("symbol", symbol).Int("days", days).Err(err).
				Msg("history fetch failed")
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, err)
		}

		s.mem.Set(key, candles)
		if err := s.disk.Store(symbol, days, candles); err != nil {
			s.log.Warn().Str("symbol", symbol).Err(err).Msg("disk cache write failed")
		}
		return candles, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.OHLCV), nil
}

// Metrics returns the current metrics snapshot for a symbol.
func (s *Store) Metrics(ctx context.Context, symbol string) (*models.StockMetrics, error) {
	candles, err := s.History(ctx, symbol, metricsWindowDays)
	if err != nil {
		return nil, err
	}
	return ComputeMetrics(symbol, candles)
}

// Compare fetches each symbol's history for the period concurrently and
// summarizes it. Symbols that fail are logged and skipped; the result keeps
// the input order. An error is returned only when every symbol failed.
func (s *Store) Compare(ctx context.Context, symbols []string, period models.Period) ([]models.Comparison, error) {
	days := period.Days()
	results := make([]*models.Comparison, len(symbols))

	var g errgroup.Group
	g.SetLimit(4)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			candles, err := s.History(ctx, symbol, days)
			if err != nil {
				s.log.Warn().Str("symbol", symbol).Err(err).Msg("comparison fetch failed")
				return nil
			}
			results[i] = summarize(symbol, candles)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Comparison, 0, len(symbols))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(out) == 0 && len(symbols) > 0 {
		return nil, fmt.Errorf("%w: no symbol could be compared", ErrUnavailable)
	}
	return out, nil
}

func summarize(symbol string, candles []models.OHLCV) *models.Comparison {
	if len(candles) == 0 {
		return nil
	}
	c := &models.Comparison{
		Symbol:       symbol,
		InitialPrice: candles[0].Close,
		CurrentPrice: candles[len(candles)-1].Close,
		High:         candles[0].High,
		Low:          candles[0].Low,
	}
	var totalVol int64
	for _, bar := range candles {
		if bar.High > c.High {
			c.High = bar.High
		}
		if bar.Low < c.Low {
			c.Low = bar.Low
		}
		totalVol += bar.Volume
	}
	c.ChangePct = pctOf(c.CurrentPrice-c.InitialPrice, c.InitialPrice)
	c.AvgVolume = float64(totalVol) / float64(len(candles))
	return c
}

// SortComparisons orders comparisons by change percent, best first. Ties
// fall back to symbol order for a stable listing.
func SortComparisons(cmps []models.Comparison) {
	sort.SliceStable(cmps, func(i, j int) bool {
		if cmps[i].ChangePct != cmps[j].ChangePct {
			return cmps[i].ChangePct > cmps[j].ChangePct
		}
		return cmps[i].Symbol < cmps[j].Symbol
	})
}
