// Package newsfeed handles news ingestion: rate-limited retried fetches,
// feed parsing into article records, and title-based deduplication.
package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseworks/marketpulse/internal/infra"
)

// Source identifies one upstream news feed.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ErrSourceUnavailable is returned when a source could not be fetched after
// all retry attempts. It is never fatal to a pipeline run.
var ErrSourceUnavailable = errors.New("news source unavailable")

// ErrHTTP wraps an HTTP error status.
type ErrHTTP struct {
	StatusCode int
	Status     string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Status)
}

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const defaultAttempts = 3

// Fetcher performs retried GETs against news sources while honoring a
// minimum inter-request interval per source.
type Fetcher struct {
	client   *http.Client
	limiter  *infra.SourceLimiter
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	log      zerolog.Logger
}

// NewFetcher creates a fetcher. The client's timeout bounds each individual
// attempt; the limiter spaces requests per source.
func NewFetcher(client *http.Client, limiter *infra.SourceLimiter, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		limiter:  limiter,
		attempts: defaultAttempts,
		backoff:  time.Second,
		sleep:    sleepCtx,
		log:      log,
	}
}

// WithRetry overrides the attempt count and backoff base.
func (f *Fetcher) WithRetry(attempts int, backoff time.Duration) *Fetcher {
	if attempts > 0 {
		f.attempts = attempts
	}
	f.backoff = backoff
	return f
}

// Fetch retrieves the raw payload of a source. Transient failures (network
// errors, 429, 5xx) are retried with linear backoff; other HTTP errors fail
// immediately. After the final attempt the error wraps ErrSourceUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.attempts; attempt++ {
		if err := f.limiter.Wait(ctx, src.Name); err != nil {
			return nil, err
		}

		body, err := f.get(ctx, src.URL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var httpErr *ErrHTTP
		if errors.As(err, &httpErr) && !retryableStatus(httpErr.StatusCode) {
			return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Name, err)
		}

		f.log.Warn().Str("source", src.Name).Int("attempt", attempt).Err(err).
			Msg("fetch failed")

		if attempt < f.attempts {
			if err := f.sleep(ctx, f.backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Name, lastErr)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
