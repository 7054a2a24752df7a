// Package pipeline wires news ingestion, symbol extraction, sentiment
// scoring and price data into ranked impact results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pulseworks/marketpulse/internal/analysis/technical"
	"github.com/pulseworks/marketpulse/internal/config"
	"github.com/pulseworks/marketpulse/internal/extract"
	"github.com/pulseworks/marketpulse/internal/impact"
	"github.com/pulseworks/marketpulse/internal/infra"
	"github.com/pulseworks/marketpulse/internal/newsfeed"
	"github.com/pulseworks/marketpulse/internal/registry"
	"github.com/pulseworks/marketpulse/internal/sentiment"
	"github.com/pulseworks/marketpulse/internal/stockdata"
	"github.com/pulseworks/marketpulse/pkg/models"
)

// ErrUnknownSymbol is returned for symbols the registry does not track.
// Unlike a fetch failure, this marks invalid input.
var ErrUnknownSymbol = errors.New("unknown symbol")

// SourceFetcher retrieves a news source's raw payload.
type SourceFetcher interface {
	Fetch(ctx context.Context, src newsfeed.Source) ([]byte, error)
}

// StockSource serves price history, metrics and comparisons.
type StockSource interface {
	History(ctx context.Context, symbol string, days int) ([]models.OHLCV, error)
	Metrics(ctx context.Context, symbol string) (*models.StockMetrics, error)
	Compare(ctx context.Context, symbols []string, period models.Period) ([]models.Comparison, error)
}

// Pipeline is the application's orchestration layer. One instance serves
// all operations; every method is safe for concurrent use.
type Pipeline struct {
	cfg       *config.Config
	reg       *registry.Registry
	extractor *extract.Extractor
	fetcher   SourceFetcher
	parser    newsfeed.Parser
	stocks    StockSource
	newsCache *infra.Cache
	newsDisk  *resultCache
	log       zerolog.Logger
	now       func() time.Time
}

// New builds a fully wired pipeline from configuration.
func New(cfg *config.Config, log zerolog.Logger) *Pipeline {
	reg := registry.Default()

	client := &http.Client{Timeout: time.Duration(cfg.News.FetchTimeoutSec) * time.Second}
	limiter := infra.NewSourceLimiter(time.Duration(cfg.News.SourceIntervalSec) * time.Second)
	fetcher := newsfeed.NewFetcher(client, limiter, log).
		WithRetry(cfg.News.FetchRetries, time.Second)

	stockClient := &http.Client{Timeout: 15 * time.Second}
	store := stockdata.NewStore(
		stockdata.NewYahooProvider(stockClient),
		infra.NewRateLimiter(cfg.Stocks.RequestsPerSec, time.Second),
		stockdata.Options{
			MemTTL:  time.Duration(cfg.Stocks.MemCacheTTLSec) * time.Second,
			DiskTTL: time.Duration(cfg.Stocks.DiskCacheTTLSec) * time.Second,
			DataDir: cfg.Stocks.DataDir,
		},
		log,
	)

	newsTTL := time.Duration(cfg.News.CacheTTLSec) * time.Second
	return &Pipeline{
		cfg:       cfg,
		reg:       reg,
		extractor: extract.New(reg),
		fetcher:   fetcher,
		parser:    newsfeed.NewRSSParser(),
		stocks:    store,
		newsCache: infra.NewCache(newsTTL),
		newsDisk:  newResultCache(filepath.Join(cfg.Stocks.DataDir, "news"), time.Hour, time.Now),
		log:       log,
		now:       time.Now,
	}
}

// NewWithDeps builds a pipeline from explicit dependencies. Tests use it to
// substitute fakes for the network-facing pieces.
func NewWithDeps(cfg *config.Config, reg *registry.Registry, fetcher SourceFetcher,
	parser newsfeed.Parser, stocks StockSource, log zerolog.Logger, now func() time.Time) *Pipeline {
	newsTTL := time.Duration(cfg.News.CacheTTLSec) * time.Second
	return &Pipeline{
		cfg:       cfg,
		reg:       reg,
		extractor: extract.New(reg),
		fetcher:   fetcher,
		parser:    parser,
		stocks:    stocks,
		newsCache: infra.NewCacheWithClock(newsTTL, now),
		newsDisk:  newResultCache(filepath.Join(cfg.Stocks.DataDir, "news"), time.Hour, now),
		log:       log,
		now:       now,
	}
}

// GetRecentNews fetches the configured sources, enriches each unique
// article with symbols, sentiment and market metrics, and returns the
// results ranked by impact. With todayOnly set, only articles published on
// the current calendar day are kept; otherwise the query covers the
// previous calendar day. Undated articles default to fetch time upstream,
// so they count as today's.
//
// An unavailable source degrades the result instead of failing it; an error
// is returned only when every source failed. No matching news is an empty
// slice, not an error.
func (p *Pipeline) GetRecentNews(ctx context.Context, todayOnly bool) ([]models.NewsImpact, error) {
	if p.cfg.Analysis.DeadlineSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.Analysis.DeadlineSec)*time.Second)
		defer cancel()
	}

	key := fmt.Sprintf("news:%s:%t", p.now().UTC().Format("2006-01-02"), todayOnly)
	if cached, ok := p.newsCache.Get(key); ok {
		return cached.([]models.NewsImpact), nil
	}
	if impacts, ok := p.newsDisk.Load(key); ok {
		p.newsCache.Set(key, impacts)
		return impacts, nil
	}

	articles, fetched, err := p.collectArticles(ctx)
	if err != nil {
		return nil, err
	}
	day := p.now().UTC().Truncate(24 * time.Hour)
	if !todayOnly {
		day = day.AddDate(0, 0, -1)
	}
	articles = filterDay(articles, day)

	impacts := p.enrich(ctx, articles)
	impact.Rank(impacts)

	p.newsCache.Set(key, impacts)
	if err := p.newsDisk.Store(key, impacts); err != nil {
		p.log.Warn().Err(err).Msg("news disk cache write failed")
	}

	p.log.Info().Int("sources", fetched).Int("articles", len(articles)).
		Int("impacts", len(impacts)).Msg("news run complete")
	return impacts, nil
}

// collectArticles fetches and parses every configured source concurrently.
// Returns the merged article list and the number of sources that answered.
func (p *Pipeline) collectArticles(ctx context.Context) ([]models.Article, int, error) {
	var (
		mu       sync.Mutex
		articles []models.Article
		fetched  int
	)

	var g errgroup.Group
	for _, src := range p.cfg.News.Sources {
		src := src
		g.Go(func() error {
			raw, err := p.fetcher.Fetch(ctx, src)
			if err != nil {
				p.log.Warn().Str("source", src.Name).Err(err).Msg("source skipped")
				return nil
			}
			parsed, err := p.parser.Parse(raw, src)
			if err != nil {
				p.log.Warn().Str("source", src.Name).Err(err).Msg("parse failed")
				return nil
			}
			if limit := p.cfg.News.ArticlesPerSource; limit > 0 && len(parsed) > limit {
				parsed = parsed[:limit]
			}

			mu.Lock()
			articles = append(articles, parsed...)
			fetched++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if fetched == 0 && len(p.cfg.News.Sources) > 0 {
		return nil, 0, fmt.Errorf("%w: all sources failed", newsfeed.ErrSourceUnavailable)
	}
	return articles, fetched, nil
}

// filterDay keeps articles published on the given calendar day.
func filterDay(articles []models.Article, day time.Time) []models.Article {
	out := articles[:0]
	for _, a := range articles {
		if a.PublishedAt.UTC().Truncate(24 * time.Hour).Equal(day) {
			out = append(out, a)
		}
	}
	return out
}

// enrich extracts symbols, scores sentiment and attaches metrics for each
// unique article. Articles mentioning no tracked symbol are dropped.
func (p *Pipeline) enrich(ctx context.Context, articles []models.Article) []models.NewsImpact {
	dedup := newsfeed.NewDedupStore()
	results := make([]*models.NewsImpact, len(articles))

	var g errgroup.Group
	g.SetLimit(p.workers())
	for i, a := range articles {
		i, a := i, a
		g.Go(func() error {
			if dedup.Seen(a.Title) {
				return nil
			}

			// The title is doubled so its terms dominate symbol matching
			// over boilerplate in the summary.
			symbols := p.extractor.Extract(a.Title + " " + a.Title + " " + a.Summary)
			if len(symbols) == 0 {
				return nil
			}

			sent := sentiment.ScoreArticle(a.Title, a.Summary)
			metrics := p.symbolMetrics(ctx, symbols)

			results[i] = &models.NewsImpact{
				Article:     a,
				Symbols:     symbols,
				Sentiment:   sent,
				Metrics:     metrics,
				ImpactScore: impact.Score(metrics, sent),
				ImpactLevel: impact.Categorize(metrics, sent),
				Timestamp:   p.now(),
			}
			return nil
		})
	}
	g.Wait()

	impacts := make([]models.NewsImpact, 0, len(articles))
	for _, r := range results {
		if r != nil {
			impacts = append(impacts, *r)
		}
	}
	return impacts
}

// symbolMetrics fetches metrics for each symbol. Failures are logged and
// omitted from the map; the article still carries the symbol itself.
func (p *Pipeline) symbolMetrics(ctx context.Context, symbols []string) map[string]*models.StockMetrics {
	metrics := make(map[string]*models.StockMetrics, len(symbols))
	for _, sym := range symbols {
		m, err := p.stocks.Metrics(ctx, sym)
		if err != nil {
			p.log.Warn().Str("symbol", sym).Err(err).Msg("metrics unavailable")
			continue
		}
		metrics[sym] = m
	}
	return metrics
}

// GetStockMetrics returns the current metrics snapshot for one symbol.
// Aliases resolve to their canonical ticker; untracked symbols are invalid
// input rather than a lookup failure.
func (p *Pipeline) GetStockMetrics(ctx context.Context, symbol string) (*models.StockMetrics, error) {
	canonical, ok := p.reg.Resolve(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return p.stocks.Metrics(ctx, canonical)
}

// Compare summarizes each symbol's performance over the period.
func (p *Pipeline) Compare(ctx context.Context, symbols []string, period models.Period) ([]models.Comparison, error) {
	canonical := make([]string, len(symbols))
	for i, sym := range symbols {
		c, ok := p.reg.Resolve(sym)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, sym)
		}
		canonical[i] = c
	}
	return p.stocks.Compare(ctx, canonical, period)
}

// TechnicalIndicators computes indicator values for a symbol over the period.
func (p *Pipeline) TechnicalIndicators(ctx context.Context, symbol string, period models.Period) (*models.TechnicalIndicators, error) {
	canonical, ok := p.reg.Resolve(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	candles, err := p.stocks.History(ctx, canonical, period.Days())
	if err != nil {
		return nil, err
	}
	ti := technical.ComputeAll(canonical, candles)
	if ti == nil {
		return nil, fmt.Errorf("%w: %s", stockdata.ErrNoData, canonical)
	}
	return ti, nil
}

// Signals runs signal generation for a symbol over the period and returns
// the individual signals with their weighted aggregate.
func (p *Pipeline) Signals(ctx context.Context, symbol string, period models.Period) ([]models.Signal, models.SignalType, float64, error) {
	canonical, ok := p.reg.Resolve(symbol)
	if !ok {
		return nil, models.SignalNeutral, 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	candles, err := p.stocks.History(ctx, canonical, period.Days())
	if err != nil {
		return nil, models.SignalNeutral, 0, err
	}
	signals := technical.GenerateSignals(candles)
	agg, conf := technical.AggregateSignal(signals)
	return signals, agg, conf, nil
}

func (p *Pipeline) workers() int {
	if p.cfg.Analysis.Workers > 0 {
		return p.cfg.Analysis.Workers
	}
	return 5
}
